/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package match

import (
	"fmt"
	"net"

	"github.com/superkkt/oxm/openflow"
	"github.com/superkkt/oxm/openflow/legacy"

	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
)

func fieldTypeSet(types ...FieldType) map[FieldType]bool {
	result := make(map[FieldType]bool)
	for _, v := range types {
		result[v] = true
	}

	return result
}

var (
	of10Fields = fieldTypeSet(
		OFPXMT_OFB_IN_PORT, OFPXMT_OFB_ETH_SRC, OFPXMT_OFB_ETH_DST, OFPXMT_OFB_VLAN_VID,
		OFPXMT_OFB_VLAN_PCP, OFPXMT_OFB_ETH_TYPE, OFPXMT_OFB_IP_DSCP, OFPXMT_OFB_IP_PROTO,
		OFPXMT_OFB_ARP_OP, OFPXMT_OFB_ARP_SPA, OFPXMT_OFB_ARP_TPA, OFPXMT_OFB_IPV4_SRC,
		OFPXMT_OFB_IPV4_DST, OFPXMT_OFB_TCP_SRC, OFPXMT_OFB_TCP_DST, OFPXMT_OFB_UDP_SRC,
		OFPXMT_OFB_UDP_DST, OFPXMT_OFB_ICMPV4_TYPE, OFPXMT_OFB_ICMPV4_CODE,
	)
	of11Fields = fieldTypeSet(
		OFPXMT_OFB_IN_PORT, OFPXMT_OFB_ETH_SRC, OFPXMT_OFB_ETH_DST, OFPXMT_OFB_VLAN_VID,
		OFPXMT_OFB_VLAN_PCP, OFPXMT_OFB_ETH_TYPE, OFPXMT_OFB_IP_DSCP, OFPXMT_OFB_IP_PROTO,
		OFPXMT_OFB_ARP_OP, OFPXMT_OFB_ARP_SPA, OFPXMT_OFB_ARP_TPA, OFPXMT_OFB_IPV4_SRC,
		OFPXMT_OFB_IPV4_DST, OFPXMT_OFB_TCP_SRC, OFPXMT_OFB_TCP_DST, OFPXMT_OFB_UDP_SRC,
		OFPXMT_OFB_UDP_DST, OFPXMT_OFB_SCTP_SRC, OFPXMT_OFB_SCTP_DST, OFPXMT_OFB_ICMPV4_TYPE,
		OFPXMT_OFB_ICMPV4_CODE, OFPXMT_OFB_MPLS_LABEL, OFPXMT_OFB_MPLS_TC, OFPXMT_OFB_METADATA,
	)
)

// legacyFields returns the basic fields a legacy match of version can carry.
func legacyFields(version openflow.Version) map[FieldType]bool {
	switch version {
	case openflow.OF10_VERSION:
		return of10Fields
	case openflow.OF11_VERSION:
		return of11Fields
	default:
		return nil
	}
}

// requiredVersion returns the oldest version whose match can carry t.
func requiredVersion(t FieldType) openflow.Version {
	switch {
	case of10Fields[t]:
		return openflow.OF10_VERSION
	case of11Fields[t]:
		return openflow.OF11_VERSION
	default:
		desc, ok := DefaultRegistry.Describe(t)
		if !ok {
			return openflow.OF13_VERSION
		}
		return desc.MinVersion
	}
}

// fabricator appends fields to a builder and remembers the first error.
type fabricator struct {
	b   *Builder
	err error
}

func (r *fabricator) add(f Field, err error) {
	if r.err != nil {
		return
	}
	if err != nil {
		r.err = err
		return
	}
	r.err = r.b.Append(f)
}

// Fabricate converts a legacy layout into a Match using DefaultRegistry.
func Fabricate(layout *legacy.Layout) (*Match, error) {
	return DefaultRegistry.Fabricate(layout)
}

// Fabricate converts every attribute the layout does not wildcard into a
// basic field.
func (r *Registry) Fabricate(layout *legacy.Layout) (*Match, error) {
	if layout == nil {
		panic("nil legacy layout")
	}
	v := layout.Version
	if v.IsOXM() {
		return nil, errors.Wrapf(openflow.ErrUnsupportedVersion, "legacy layout of version %v", v)
	}
	b, err := r.NewBuilder(v)
	if err != nil {
		return nil, err
	}
	w := layout.Wildcards
	fab := &fabricator{b: b}

	if !w.Has(legacy.WildcardInPort) {
		fab.add(NewPortField(v, OFPXMT_OFB_IN_PORT, layout.InPort))
	}
	fab.fabricateMAC(OFPXMT_OFB_ETH_SRC, w.Has(legacy.WildcardSrcMAC), layout.SrcMAC, layout.SrcMACMask)
	fab.fabricateMAC(OFPXMT_OFB_ETH_DST, w.Has(legacy.WildcardDstMAC), layout.DstMAC, layout.DstMACMask)
	if !w.Has(legacy.WildcardVLANID) {
		fab.add(fabricateVLAN(v, layout.VLANID))
	}
	if !w.Has(legacy.WildcardVLANPriority) {
		fab.add(NewIntField(v, OFPXMT_OFB_VLAN_PCP, uint32(layout.VLANPriority)))
	}
	isARP := false
	if !w.Has(legacy.WildcardEtherType) {
		ethType := layers.EthernetType(layout.EtherType)
		isARP = ethType == layers.EthernetTypeARP
		fab.add(NewEthTypeField(v, ethType))
	}
	if !w.Has(legacy.WildcardTOS) {
		fab.add(NewIntField(v, OFPXMT_OFB_IP_DSCP, uint32(layout.TOS>>2)))
	}
	protoKnown := false
	if !w.Has(legacy.WildcardProtocol) {
		if isARP {
			fab.add(NewIntField(v, OFPXMT_OFB_ARP_OP, uint32(layout.Protocol)))
		} else {
			protoKnown = true
			fab.add(NewIPProtoField(v, layers.IPProtocol(layout.Protocol)))
		}
	}

	src, dst := OFPXMT_OFB_IPV4_SRC, OFPXMT_OFB_IPV4_DST
	if isARP {
		src, dst = OFPXMT_OFB_ARP_SPA, OFPXMT_OFB_ARP_TPA
	}
	fab.fabricateIP(src, layout.SrcIP, layout.SrcIPMask)
	fab.fabricateIP(dst, layout.DstIP, layout.DstIPMask)

	if protoKnown {
		proto := layers.IPProtocol(layout.Protocol)
		if !w.Has(legacy.WildcardSrcPort) {
			fab.fabricatePort(proto, true, layout.SrcPort)
		}
		if !w.Has(legacy.WildcardDstPort) {
			fab.fabricatePort(proto, false, layout.DstPort)
		}
	} else if !w.Has(legacy.WildcardSrcPort) || !w.Has(legacy.WildcardDstPort) {
		logger.Debugf("dropping legacy transport ports without an IP protocol: tp_src=%v, tp_dst=%v", layout.SrcPort, layout.DstPort)
	}

	if v == openflow.OF11_VERSION {
		if !w.Has(legacy.WildcardMPLSLabel) {
			fab.add(NewIntField(v, OFPXMT_OFB_MPLS_LABEL, layout.MPLSLabel))
		}
		if !w.Has(legacy.WildcardMPLSTC) {
			fab.add(NewIntField(v, OFPXMT_OFB_MPLS_TC, uint32(layout.MPLSTC)))
		}
		switch layout.MetadataMask {
		case 0:
			// Wildcarded
		case ^uint64(0):
			fab.add(NewUint64Field(v, OFPXMT_OFB_METADATA, layout.Metadata))
		default:
			fab.add(NewMaskedUint64Field(v, OFPXMT_OFB_METADATA, layout.Metadata, layout.MetadataMask))
		}
	}
	if fab.err != nil {
		return nil, fab.err
	}

	return b.Freeze()
}

func (r *fabricator) fabricateMAC(t FieldType, wildcard bool, mac, mask net.HardwareAddr) {
	if wildcard {
		return
	}
	v := r.b.Version()
	// 1.0 has no hardware address masks.
	if v == openflow.OF10_VERSION || mask == nil || legacy.IsExact(mask) {
		r.add(NewMACField(v, t, mac))
		return
	}
	if legacy.IsAllWild(mask) {
		return
	}
	r.add(NewMaskedMACField(v, t, mac, mask))
}

func fabricateVLAN(v openflow.Version, id uint16) (VLANField, error) {
	switch {
	case id == legacy.OFPVID_NONE:
		return NewVLANField(v, VLANNone, 0)
	case id == legacy.OFPVID_ANY && v == openflow.OF11_VERSION:
		return NewVLANField(v, VLANAny, 0)
	default:
		return NewVLANField(v, VLANExact, id)
	}
}

// fabricateIP adds the address unless its netmask ignores every bit. The
// generic wildcard set does not cover addresses.
func (r *fabricator) fabricateIP(t FieldType, ip net.IP, mask net.IPMask) {
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if legacy.IsAllWild(mask) {
		return
	}
	v := r.b.Version()
	if legacy.IsExact(mask) {
		r.add(NewIPField(v, t, ip))
		return
	}
	r.add(NewMaskedIPField(v, t, ip, mask))
}

// fabricatePort interprets a legacy transport port slot by the IP protocol.
// ICMP carries its type in the source slot and its code in the destination slot.
func (r *fabricator) fabricatePort(proto layers.IPProtocol, source bool, port uint16) {
	v := r.b.Version()

	var t FieldType
	switch proto {
	case layers.IPProtocolTCP:
		t = pick(source, OFPXMT_OFB_TCP_SRC, OFPXMT_OFB_TCP_DST)
	case layers.IPProtocolUDP:
		t = pick(source, OFPXMT_OFB_UDP_SRC, OFPXMT_OFB_UDP_DST)
	case layers.IPProtocolSCTP:
		if v == openflow.OF10_VERSION {
			logger.Debugf("dropping SCTP port %v from an OpenFlow 1.0 match", port)
			return
		}
		t = pick(source, OFPXMT_OFB_SCTP_SRC, OFPXMT_OFB_SCTP_DST)
	case layers.IPProtocolICMPv4:
		if port > 0xff {
			r.add(nil, newDecodeError(ErrOutOfRange, "icmp type/code", port))
			return
		}
		if source {
			r.add(NewICMPTypeField(v, OFPXMT_OFB_ICMPV4_TYPE, uint8(port)))
		} else {
			r.add(NewIntField(v, OFPXMT_OFB_ICMPV4_CODE, uint32(port)))
		}
		return
	default:
		logger.Debugf("dropping legacy transport port %v of IP protocol %v", port, proto)
		return
	}
	r.add(NewIntField(v, t, uint32(port)))
}

func pick(first bool, a, b FieldType) FieldType {
	if first {
		return a
	}

	return b
}

// ConvertToLegacy converts a legacy version Match back into its fixed layout.
// It starts from a fully wildcarded layout and clears the wildcard of every
// field found.
func ConvertToLegacy(m *Match) (*legacy.Layout, error) {
	v := m.Version()
	if m.Kind() != KindStandard {
		return nil, errors.Wrapf(openflow.ErrUnsupportedVersion, "legacy layout of version %v", v)
	}

	layout := legacy.NewLayout(v)
	for _, f := range m.fields {
		if err := toLegacy(layout, f); err != nil {
			return nil, err
		}
	}

	return layout, nil
}

func toLegacy(layout *legacy.Layout, f Field) error {
	h := f.Header()
	v := layout.Version
	if h.Class != ClassBasic || !legacyFields(v)[h.Type] {
		panic(fmt.Sprintf("unexpected field %v in an OpenFlow %v match", h.Name(), v))
	}

	switch h.Type {
	case OFPXMT_OFB_IN_PORT:
		layout.InPort = f.(PortField).Port
		layout.Wildcards.Clear(legacy.WildcardInPort)

	case OFPXMT_OFB_ETH_SRC, OFPXMT_OFB_ETH_DST:
		mac := f.(MACField)
		if h.HasMask && v == openflow.OF10_VERSION {
			return &VersionMismatchError{What: "masked " + h.Name(), Required: openflow.OF11_VERSION, Actual: v}
		}
		if h.Type == OFPXMT_OFB_ETH_SRC {
			layout.SrcMAC, layout.SrcMACMask = mac.Value, mac.Mask
			layout.Wildcards.Clear(legacy.WildcardSrcMAC)
		} else {
			layout.DstMAC, layout.DstMACMask = mac.Value, mac.Mask
			layout.Wildcards.Clear(legacy.WildcardDstMAC)
		}

	case OFPXMT_OFB_VLAN_VID:
		vlan := f.(VLANField)
		switch vlan.State {
		case VLANNone:
			layout.VLANID = legacy.OFPVID_NONE
		case VLANAny:
			if v == openflow.OF10_VERSION {
				return &VersionMismatchError{What: "vlan_vid=any", Required: openflow.OF11_VERSION, Actual: v}
			}
			layout.VLANID = legacy.OFPVID_ANY
		default:
			layout.VLANID = vlan.ID
		}
		layout.Wildcards.Clear(legacy.WildcardVLANID)

	case OFPXMT_OFB_VLAN_PCP:
		layout.VLANPriority = uint8(f.(IntField).Value)
		layout.Wildcards.Clear(legacy.WildcardVLANPriority)

	case OFPXMT_OFB_ETH_TYPE:
		layout.EtherType = uint16(f.(EthTypeField).Value)
		layout.Wildcards.Clear(legacy.WildcardEtherType)

	case OFPXMT_OFB_IP_DSCP:
		layout.TOS = uint8(f.(IntField).Value << 2)
		layout.Wildcards.Clear(legacy.WildcardTOS)

	case OFPXMT_OFB_IP_PROTO:
		layout.Protocol = uint8(f.(IPProtoField).Value)
		layout.Wildcards.Clear(legacy.WildcardProtocol)

	case OFPXMT_OFB_ARP_OP:
		op := f.(IntField).Value
		if op > 0xff {
			return newDecodeError(ErrOutOfRange, h.Name(), op)
		}
		layout.Protocol = uint8(op)
		layout.Wildcards.Clear(legacy.WildcardProtocol)

	case OFPXMT_OFB_IPV4_SRC, OFPXMT_OFB_ARP_SPA:
		ip, mask, err := legacyIP(v, f.(IPField))
		if err != nil {
			return err
		}
		layout.SrcIP, layout.SrcIPMask = ip, mask

	case OFPXMT_OFB_IPV4_DST, OFPXMT_OFB_ARP_TPA:
		ip, mask, err := legacyIP(v, f.(IPField))
		if err != nil {
			return err
		}
		layout.DstIP, layout.DstIPMask = ip, mask

	case OFPXMT_OFB_TCP_SRC, OFPXMT_OFB_UDP_SRC, OFPXMT_OFB_SCTP_SRC, OFPXMT_OFB_ICMPV4_CODE, OFPXMT_OFB_TCP_DST, OFPXMT_OFB_UDP_DST, OFPXMT_OFB_SCTP_DST:
		port := uint16(f.(IntField).Value)
		switch h.Type {
		case OFPXMT_OFB_TCP_SRC, OFPXMT_OFB_UDP_SRC, OFPXMT_OFB_SCTP_SRC:
			layout.SrcPort = port
			layout.Wildcards.Clear(legacy.WildcardSrcPort)
		default:
			layout.DstPort = port
			layout.Wildcards.Clear(legacy.WildcardDstPort)
		}

	case OFPXMT_OFB_ICMPV4_TYPE:
		layout.SrcPort = uint16(f.(ICMPTypeField).Value)
		layout.Wildcards.Clear(legacy.WildcardSrcPort)

	case OFPXMT_OFB_MPLS_LABEL:
		layout.MPLSLabel = f.(IntField).Value
		layout.Wildcards.Clear(legacy.WildcardMPLSLabel)

	case OFPXMT_OFB_MPLS_TC:
		layout.MPLSTC = uint8(f.(IntField).Value)
		layout.Wildcards.Clear(legacy.WildcardMPLSTC)

	case OFPXMT_OFB_METADATA:
		md := f.(Uint64Field)
		layout.Metadata = md.Value
		layout.MetadataMask = ^uint64(0)
		if h.HasMask {
			layout.MetadataMask = md.Mask
		}

	default:
		panic(fmt.Sprintf("unexpected field %v in an OpenFlow %v match", h.Name(), v))
	}

	return nil
}

func legacyIP(v openflow.Version, f IPField) (net.IP, net.IPMask, error) {
	mask := net.CIDRMask(32, 32)
	if f.Header().HasMask {
		mask = f.Mask
	}
	// 1.0 can only express contiguous prefixes.
	if v == openflow.OF10_VERSION {
		if _, err := legacy.WildcardBits(mask); err != nil {
			return nil, nil, &ValidationError{Kind: ErrInvalidNetmask, Field: f.Header().Name()}
		}
	}

	return f.Value, mask, nil
}

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
	"net"

	"github.com/superkkt/oxm/openflow"
	"github.com/superkkt/oxm/openflow/buffer"

	"github.com/google/gopacket/layers"
)

const (
	OFPVID_NONE    = 0x0000
	OFPVID_PRESENT = 0x1000
)

// Field is an immutable match field. The concrete type is one of PortField,
// Uint64Field, MACField, IPField, IntField, EthTypeField, VLANField,
// IPProtoField, ICMPTypeField, IPv6ExtHdrField, ExperimenterField and
// OpaqueField.
type Field interface {
	Header() Header
	Version() openflow.Version
	String() string
	encodePayload(w buffer.Writer) error
	withHeader(h Header) Field
}

type base struct {
	header  Header
	version openflow.Version
}

func (r base) Header() Header {
	return r.header
}

func (r base) Version() openflow.Version {
	return r.version
}

// basicHeader builds the header of a basic field of shape s. The payload
// length comes from DefaultRegistry; a Builder normalizes it to its own registry.
func basicHeader(t FieldType, hasMask bool, shapes ...Shape) (Header, Descriptor, error) {
	desc, ok := DefaultRegistry.Describe(t)
	if !ok {
		return Header{}, Descriptor{}, newDecodeError(ErrUnknownFieldCode, "oxm_field", uint8(t))
	}

	match := false
	for _, s := range shapes {
		if desc.Shape == s {
			match = true
			break
		}
	}
	if !match {
		return Header{}, Descriptor{}, newDecodeError(ErrWrongFieldShape, desc.Name, desc.Shape)
	}
	if hasMask && !desc.Maskable {
		return Header{}, Descriptor{}, newDecodeError(ErrUnexpectedMask, desc.Name, nil)
	}

	return newBasicHeader(DefaultRegistry, t, hasMask), desc, nil
}

// PortField carries IN_PORT or IN_PHY_PORT.
type PortField struct {
	base
	Port uint32
}

func NewPortField(version openflow.Version, t FieldType, port uint32) (PortField, error) {
	h, _, err := basicHeader(t, false, ShapePort)
	if err != nil {
		return PortField{}, err
	}

	return PortField{base: base{h, version}, Port: port}, nil
}

func (r PortField) withHeader(h Header) Field {
	r.header = h
	return r
}

// Uint64Field carries METADATA or TUNNEL_ID. Mask is meaningful only when the
// header has its mask bit set.
type Uint64Field struct {
	base
	Value uint64
	Mask  uint64
}

func NewUint64Field(version openflow.Version, t FieldType, value uint64) (Uint64Field, error) {
	h, _, err := basicHeader(t, false, ShapeUint64)
	if err != nil {
		return Uint64Field{}, err
	}

	return Uint64Field{base: base{h, version}, Value: value}, nil
}

func NewMaskedUint64Field(version openflow.Version, t FieldType, value, mask uint64) (Uint64Field, error) {
	h, _, err := basicHeader(t, true, ShapeUint64)
	if err != nil {
		return Uint64Field{}, err
	}

	return Uint64Field{base: base{h, version}, Value: value, Mask: mask}, nil
}

func (r Uint64Field) withHeader(h Header) Field {
	r.header = h
	return r
}

// MACField carries an Ethernet address. Mask is nil when the field is unmasked.
type MACField struct {
	base
	Value net.HardwareAddr
	Mask  net.HardwareAddr
}

func NewMACField(version openflow.Version, t FieldType, mac net.HardwareAddr) (MACField, error) {
	return newMACField(version, t, mac, nil, false)
}

func NewMaskedMACField(version openflow.Version, t FieldType, mac, mask net.HardwareAddr) (MACField, error) {
	return newMACField(version, t, mac, mask, true)
}

func newMACField(version openflow.Version, t FieldType, mac, mask net.HardwareAddr, hasMask bool) (MACField, error) {
	h, desc, err := basicHeader(t, hasMask, ShapeMAC)
	if err != nil {
		return MACField{}, err
	}
	if len(mac) != 6 {
		return MACField{}, newDecodeError(ErrOutOfRange, desc.Name, mac)
	}
	f := MACField{base: base{h, version}, Value: cloneBytes(mac)}
	if hasMask {
		if len(mask) != 6 {
			return MACField{}, newDecodeError(ErrOutOfRange, desc.Name+" mask", mask)
		}
		f.Mask = cloneBytes(mask)
	}

	return f, nil
}

func (r MACField) withHeader(h Header) Field {
	r.header = h
	return r
}

// IPField carries an IPv4 or IPv6 address. IPv4 values are always stored in
// their 4-byte form. Mask is nil when the field is unmasked.
type IPField struct {
	base
	Value net.IP
	Mask  net.IPMask
}

func NewIPField(version openflow.Version, t FieldType, ip net.IP) (IPField, error) {
	return newIPField(version, t, ip, nil, false)
}

func NewMaskedIPField(version openflow.Version, t FieldType, ip net.IP, mask net.IPMask) (IPField, error) {
	return newIPField(version, t, ip, mask, true)
}

func newIPField(version openflow.Version, t FieldType, ip net.IP, mask net.IPMask, hasMask bool) (IPField, error) {
	h, desc, err := basicHeader(t, hasMask, ShapeIPv4, ShapeIPv6)
	if err != nil {
		return IPField{}, err
	}

	var addr net.IP
	switch desc.Shape {
	case ShapeIPv4:
		addr = ip.To4()
	case ShapeIPv6:
		if len(ip) == net.IPv6len && ip.To4() == nil {
			addr = ip
		}
	}
	if addr == nil {
		return IPField{}, newDecodeError(ErrFamilyNotAppropriate, desc.Name, ip)
	}

	f := IPField{base: base{h, version}, Value: cloneBytes(addr)}
	if hasMask {
		if len(mask) != desc.Length {
			return IPField{}, newDecodeError(ErrFamilyMismatch, desc.Name, mask)
		}
		f.Mask = net.IPMask(cloneBytes(mask))
	}

	return f, nil
}

func (r IPField) withHeader(h Header) Field {
	r.header = h
	return r
}

// IntField carries the integer fields narrower than 64 bits: transport ports,
// ARP opcode, ICMP codes, VLAN priority, DSCP, ECN, MPLS, flow label and ISID.
// Mask is meaningful only when the header has its mask bit set.
type IntField struct {
	base
	Value uint32
	Mask  uint32
}

func NewIntField(version openflow.Version, t FieldType, value uint32) (IntField, error) {
	return newIntField(version, t, value, 0, false)
}

func NewMaskedIntField(version openflow.Version, t FieldType, value, mask uint32) (IntField, error) {
	return newIntField(version, t, value, mask, true)
}

func newIntField(version openflow.Version, t FieldType, value, mask uint32, hasMask bool) (IntField, error) {
	h, desc, err := basicHeader(t, hasMask, ShapeInt)
	if err != nil {
		return IntField{}, err
	}
	if err := checkBits(desc, "", uint64(value)); err != nil {
		return IntField{}, err
	}
	if hasMask {
		if err := checkBits(desc, " mask", uint64(mask)); err != nil {
			return IntField{}, err
		}
	}

	return IntField{base: base{h, version}, Value: value, Mask: mask}, nil
}

func checkBits(desc Descriptor, suffix string, v uint64) error {
	if desc.Bits < 64 && v>>uint(desc.Bits) != 0 {
		return newDecodeError(ErrOutOfRange, desc.Name+suffix, v)
	}

	return nil
}

func (r IntField) withHeader(h Header) Field {
	r.header = h
	return r
}

// EthTypeField carries ETH_TYPE.
type EthTypeField struct {
	base
	Value layers.EthernetType
}

func NewEthTypeField(version openflow.Version, v layers.EthernetType) (EthTypeField, error) {
	h, _, err := basicHeader(OFPXMT_OFB_ETH_TYPE, false, ShapeEthType)
	if err != nil {
		return EthTypeField{}, err
	}

	return EthTypeField{base: base{h, version}, Value: v}, nil
}

func (r EthTypeField) withHeader(h Header) Field {
	r.header = h
	return r
}

// VLANState is the tri-state of a VLAN_VID field. A match without VLAN_VID
// does not care about tagging at all.
type VLANState uint8

const (
	// VLANNone matches untagged frames only.
	VLANNone VLANState = iota
	// VLANAny matches frames carrying any VLAN tag.
	VLANAny
	// VLANExact matches frames tagged with a particular VLAN id.
	VLANExact
)

func (r VLANState) String() string {
	switch r {
	case VLANNone:
		return "none"
	case VLANAny:
		return "any"
	case VLANExact:
		return "exact"
	default:
		return "invalid"
	}
}

// VLANField carries VLAN_VID. ID is meaningful only for VLANExact.
type VLANField struct {
	base
	State VLANState
	ID    uint16
}

func NewVLANField(version openflow.Version, state VLANState, id uint16) (VLANField, error) {
	var h Header
	var err error

	switch state {
	case VLANNone:
		h, _, err = basicHeader(OFPXMT_OFB_VLAN_VID, false, ShapeVLAN)
		id = 0
	case VLANAny:
		h, _, err = basicHeader(OFPXMT_OFB_VLAN_VID, true, ShapeVLAN)
		id = 0
	case VLANExact:
		if id > 0x0fff {
			return VLANField{}, newDecodeError(ErrOutOfRange, "vlan_vid", id)
		}
		h, _, err = basicHeader(OFPXMT_OFB_VLAN_VID, false, ShapeVLAN)
	default:
		return VLANField{}, newDecodeError(ErrVlanBadMaskCombination, "vlan_vid", state)
	}
	if err != nil {
		return VLANField{}, err
	}

	return VLANField{base: base{h, version}, State: state, ID: id}, nil
}

func (r VLANField) withHeader(h Header) Field {
	r.header = h
	return r
}

// IPProtoField carries IP_PROTO.
type IPProtoField struct {
	base
	Value layers.IPProtocol
}

func NewIPProtoField(version openflow.Version, v layers.IPProtocol) (IPProtoField, error) {
	h, _, err := basicHeader(OFPXMT_OFB_IP_PROTO, false, ShapeIPProto)
	if err != nil {
		return IPProtoField{}, err
	}

	return IPProtoField{base: base{h, version}, Value: v}, nil
}

func (r IPProtoField) withHeader(h Header) Field {
	r.header = h
	return r
}

// ICMPTypeField carries ICMPV4_TYPE or ICMPV6_TYPE.
type ICMPTypeField struct {
	base
	Value uint8
}

func NewICMPTypeField(version openflow.Version, t FieldType, v uint8) (ICMPTypeField, error) {
	h, _, err := basicHeader(t, false, ShapeICMPType)
	if err != nil {
		return ICMPTypeField{}, err
	}

	return ICMPTypeField{base: base{h, version}, Value: v}, nil
}

func (r ICMPTypeField) withHeader(h Header) Field {
	r.header = h
	return r
}

// IPv6 extension header pseudo-field flags.
const (
	OFPIEH_NONEXT = 1 << iota
	OFPIEH_ESP
	OFPIEH_AUTH
	OFPIEH_DEST
	OFPIEH_FRAG
	OFPIEH_ROUTER
	OFPIEH_HOP
	OFPIEH_UNREP
	OFPIEH_UNSEQ

	ipv6ExtHdrAll = 0x1ff
)

// IPv6ExtHdrField carries IPV6_EXTHDR. A field without a mask bit in its
// header has Mask set to every flag.
type IPv6ExtHdrField struct {
	base
	Flags uint16
	Mask  uint16
}

// NewIPv6ExtHdrField omits the mask on the wire when it covers every flag.
func NewIPv6ExtHdrField(version openflow.Version, flags, mask uint16) (IPv6ExtHdrField, error) {
	if flags > ipv6ExtHdrAll {
		return IPv6ExtHdrField{}, newDecodeError(ErrOutOfRange, "ipv6_exthdr", flags)
	}
	if mask > ipv6ExtHdrAll {
		return IPv6ExtHdrField{}, newDecodeError(ErrOutOfRange, "ipv6_exthdr mask", mask)
	}
	h, _, err := basicHeader(OFPXMT_OFB_IPV6_EXTHDR, mask != ipv6ExtHdrAll, ShapeIPv6ExtHdr)
	if err != nil {
		return IPv6ExtHdrField{}, err
	}

	return IPv6ExtHdrField{base: base{h, version}, Flags: flags, Mask: mask}, nil
}

func (r IPv6ExtHdrField) withHeader(h Header) Field {
	r.header = h
	return r
}

// ExperimenterField is a field of the experimenter class. Its body after the
// experimenter id is kept as is.
type ExperimenterField struct {
	base
	Experimenter uint32
	Payload      []byte
}

func NewExperimenterField(version openflow.Version, field uint8, hasMask bool, experimenter uint32, payload []byte) (ExperimenterField, error) {
	if field > 0x7f {
		return ExperimenterField{}, newDecodeError(ErrOutOfRange, "oxm_field", field)
	}
	if len(payload)+4 > 0xff {
		return ExperimenterField{}, newDecodeError(ErrOutOfRange, "experimenter payload length", len(payload))
	}
	h := Header{
		RawClass: OFPXMC_EXPERIMENTER,
		Class:    ClassExperimenter,
		RawField: field,
		HasMask:  hasMask,
		Length:   uint8(len(payload) + 4),
	}

	return ExperimenterField{base: base{h, version}, Experimenter: experimenter, Payload: cloneBytes(payload)}, nil
}

func (r ExperimenterField) withHeader(h Header) Field {
	r.header = h
	return r
}

// OpaqueField is a field of a class other than basic or experimenter. Its
// payload is carried through unparsed.
type OpaqueField struct {
	base
	Payload []byte
}

func NewOpaqueField(version openflow.Version, class uint16, field uint8, hasMask bool, payload []byte) (OpaqueField, error) {
	c := DecodeClass(class)
	if c == ClassBasic || c == ClassExperimenter {
		return OpaqueField{}, newDecodeError(ErrWrongFieldShape, "oxm_class", class)
	}
	if field > 0x7f {
		return OpaqueField{}, newDecodeError(ErrOutOfRange, "oxm_field", field)
	}
	if len(payload) > 0xff {
		return OpaqueField{}, newDecodeError(ErrOutOfRange, "payload length", len(payload))
	}
	h := Header{
		RawClass: class,
		Class:    c,
		RawField: field,
		HasMask:  hasMask,
		Length:   uint8(len(payload)),
	}

	return OpaqueField{base: base{h, version}, Payload: cloneBytes(payload)}, nil
}

func (r OpaqueField) withHeader(h Header) Field {
	r.header = h
	return r
}

func cloneBytes(b []byte) []byte {
	result := make([]byte, len(b))
	copy(result, b)

	return result
}

// cloneField deep copies the byte slices of f so that a Match never shares
// memory with its callers. Nil slices stay nil.
func cloneField(f Field) Field {
	clone := func(b []byte) []byte {
		if b == nil {
			return nil
		}
		return cloneBytes(b)
	}

	switch v := f.(type) {
	case MACField:
		v.Value = clone(v.Value)
		v.Mask = clone(v.Mask)
		return v
	case IPField:
		v.Value = clone(v.Value)
		v.Mask = clone(v.Mask)
		return v
	case ExperimenterField:
		v.Payload = clone(v.Payload)
		return v
	case OpaqueField:
		v.Payload = clone(v.Payload)
		return v
	default:
		// The other variants hold values only.
		return f
	}
}

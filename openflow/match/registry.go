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
	"strings"

	"github.com/superkkt/oxm/openflow"

	"github.com/pkg/errors"
)

// FieldType is the 7-bit field code of the OpenFlow basic OXM class.
type FieldType uint8

const (
	OFPXMT_OFB_IN_PORT FieldType = iota
	OFPXMT_OFB_IN_PHY_PORT
	OFPXMT_OFB_METADATA
	OFPXMT_OFB_ETH_DST
	OFPXMT_OFB_ETH_SRC
	OFPXMT_OFB_ETH_TYPE
	OFPXMT_OFB_VLAN_VID
	OFPXMT_OFB_VLAN_PCP
	OFPXMT_OFB_IP_DSCP
	OFPXMT_OFB_IP_ECN
	OFPXMT_OFB_IP_PROTO
	OFPXMT_OFB_IPV4_SRC
	OFPXMT_OFB_IPV4_DST
	OFPXMT_OFB_TCP_SRC
	OFPXMT_OFB_TCP_DST
	OFPXMT_OFB_UDP_SRC
	OFPXMT_OFB_UDP_DST
	OFPXMT_OFB_SCTP_SRC
	OFPXMT_OFB_SCTP_DST
	OFPXMT_OFB_ICMPV4_TYPE
	OFPXMT_OFB_ICMPV4_CODE
	OFPXMT_OFB_ARP_OP
	OFPXMT_OFB_ARP_SPA
	OFPXMT_OFB_ARP_TPA
	OFPXMT_OFB_ARP_SHA
	OFPXMT_OFB_ARP_THA
	OFPXMT_OFB_IPV6_SRC
	OFPXMT_OFB_IPV6_DST
	OFPXMT_OFB_IPV6_FLABEL
	OFPXMT_OFB_ICMPV6_TYPE
	OFPXMT_OFB_ICMPV6_CODE
	OFPXMT_OFB_IPV6_ND_TARGET
	OFPXMT_OFB_IPV6_ND_SLL
	OFPXMT_OFB_IPV6_ND_TLL
	OFPXMT_OFB_MPLS_LABEL
	OFPXMT_OFB_MPLS_TC
	OFPXMT_OFB_MPLS_BOS
	OFPXMT_OFB_PBB_ISID
	OFPXMT_OFB_TUNNEL_ID
	OFPXMT_OFB_IPV6_EXTHDR
)

const (
	// OF12MaxFieldType is the highest basic field code defined by OpenFlow 1.2.
	OF12MaxFieldType = OFPXMT_OFB_MPLS_TC
	// MaxFieldType is the highest basic field code this package knows.
	MaxFieldType = OFPXMT_OFB_IPV6_EXTHDR
)

// Shape selects the payload codec and the Field variant of a basic field.
type Shape uint8

const (
	ShapePort Shape = iota
	ShapeUint64
	ShapeMAC
	ShapeIPv4
	ShapeIPv6
	ShapeInt
	ShapeEthType
	ShapeVLAN
	ShapeIPProto
	ShapeICMPType
	ShapeIPv6ExtHdr
)

var shapeNames = [...]string{
	ShapePort:       "port",
	ShapeUint64:     "uint64",
	ShapeMAC:        "mac",
	ShapeIPv4:       "ipv4",
	ShapeIPv6:       "ipv6",
	ShapeInt:        "int",
	ShapeEthType:    "eth_type",
	ShapeVLAN:       "vlan",
	ShapeIPProto:    "ip_proto",
	ShapeICMPType:   "icmp_type",
	ShapeIPv6ExtHdr: "ipv6_exthdr",
}

func (r Shape) String() string {
	if int(r) >= len(shapeNames) {
		return fmt.Sprintf("shape(%d)", uint8(r))
	}

	return shapeNames[r]
}

func (r Shape) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// Descriptor is the registry entry of a basic field.
type Descriptor struct {
	Type FieldType `json:"type" yaml:"type"`
	Name string    `json:"name" yaml:"name"`
	// Length is the payload length in bytes of the value alone.
	Length int `json:"length" yaml:"length"`
	// Bits is the number of significant bits of the value.
	Bits       int              `json:"bits" yaml:"bits"`
	Maskable   bool             `json:"maskable" yaml:"maskable"`
	MinVersion openflow.Version `json:"min_version" yaml:"min_version"`
	Shape      Shape            `json:"shape" yaml:"shape"`
}

// PayloadLength returns the payload length of the field with or without its mask.
func (r Descriptor) PayloadLength(hasMask bool) int {
	if hasMask {
		return r.Length * 2
	}

	return r.Length
}

// Config tunes the registry. The zero value is the default.
type Config struct {
	// WideMPLSLabel encodes MPLS_LABEL with 4 bytes instead of 3. Some switches
	// expect the wider form.
	WideMPLSLabel bool `mapstructure:"wide_mpls_label" json:"wide_mpls_label" yaml:"wide_mpls_label"`
}

// Registry is the read-only field table. It can be shared by any number of
// goroutines once it has been created.
type Registry struct {
	config Config
	types  [MaxFieldType + 1]Descriptor
	names  map[string]FieldType
}

// DefaultRegistry is used by the package level functions.
var DefaultRegistry = NewRegistry(Config{})

func d(t FieldType, name string, length, bits int, maskable bool, v openflow.Version, s Shape) Descriptor {
	return Descriptor{
		Type:       t,
		Name:       name,
		Length:     length,
		Bits:       bits,
		Maskable:   maskable,
		MinVersion: v,
		Shape:      s,
	}
}

func NewRegistry(conf Config) *Registry {
	const (
		v12 = openflow.OF12_VERSION
		v13 = openflow.OF13_VERSION
	)

	mplsLabelLength := 3
	if conf.WideMPLSLabel {
		mplsLabelLength = 4
	}

	r := &Registry{
		config: conf,
		types: [MaxFieldType + 1]Descriptor{
			d(OFPXMT_OFB_IN_PORT, "in_port", 4, 32, false, v12, ShapePort),
			d(OFPXMT_OFB_IN_PHY_PORT, "in_phy_port", 4, 32, false, v12, ShapePort),
			d(OFPXMT_OFB_METADATA, "metadata", 8, 64, true, v12, ShapeUint64),
			d(OFPXMT_OFB_ETH_DST, "eth_dst", 6, 48, true, v12, ShapeMAC),
			d(OFPXMT_OFB_ETH_SRC, "eth_src", 6, 48, true, v12, ShapeMAC),
			d(OFPXMT_OFB_ETH_TYPE, "eth_type", 2, 16, false, v12, ShapeEthType),
			d(OFPXMT_OFB_VLAN_VID, "vlan_vid", 2, 13, true, v12, ShapeVLAN),
			d(OFPXMT_OFB_VLAN_PCP, "vlan_pcp", 1, 3, false, v12, ShapeInt),
			d(OFPXMT_OFB_IP_DSCP, "ip_dscp", 1, 6, false, v12, ShapeInt),
			d(OFPXMT_OFB_IP_ECN, "ip_ecn", 1, 2, false, v12, ShapeInt),
			d(OFPXMT_OFB_IP_PROTO, "ip_proto", 1, 8, false, v12, ShapeIPProto),
			d(OFPXMT_OFB_IPV4_SRC, "ipv4_src", 4, 32, true, v12, ShapeIPv4),
			d(OFPXMT_OFB_IPV4_DST, "ipv4_dst", 4, 32, true, v12, ShapeIPv4),
			d(OFPXMT_OFB_TCP_SRC, "tcp_src", 2, 16, false, v12, ShapeInt),
			d(OFPXMT_OFB_TCP_DST, "tcp_dst", 2, 16, false, v12, ShapeInt),
			d(OFPXMT_OFB_UDP_SRC, "udp_src", 2, 16, false, v12, ShapeInt),
			d(OFPXMT_OFB_UDP_DST, "udp_dst", 2, 16, false, v12, ShapeInt),
			d(OFPXMT_OFB_SCTP_SRC, "sctp_src", 2, 16, false, v12, ShapeInt),
			d(OFPXMT_OFB_SCTP_DST, "sctp_dst", 2, 16, false, v12, ShapeInt),
			d(OFPXMT_OFB_ICMPV4_TYPE, "icmpv4_type", 1, 8, false, v12, ShapeICMPType),
			d(OFPXMT_OFB_ICMPV4_CODE, "icmpv4_code", 1, 8, false, v12, ShapeInt),
			d(OFPXMT_OFB_ARP_OP, "arp_op", 2, 16, false, v12, ShapeInt),
			d(OFPXMT_OFB_ARP_SPA, "arp_spa", 4, 32, true, v12, ShapeIPv4),
			d(OFPXMT_OFB_ARP_TPA, "arp_tpa", 4, 32, true, v12, ShapeIPv4),
			d(OFPXMT_OFB_ARP_SHA, "arp_sha", 6, 48, true, v12, ShapeMAC),
			d(OFPXMT_OFB_ARP_THA, "arp_tha", 6, 48, true, v12, ShapeMAC),
			d(OFPXMT_OFB_IPV6_SRC, "ipv6_src", 16, 128, true, v12, ShapeIPv6),
			d(OFPXMT_OFB_IPV6_DST, "ipv6_dst", 16, 128, true, v12, ShapeIPv6),
			d(OFPXMT_OFB_IPV6_FLABEL, "ipv6_flabel", 3, 20, true, v12, ShapeInt),
			d(OFPXMT_OFB_ICMPV6_TYPE, "icmpv6_type", 1, 8, false, v12, ShapeICMPType),
			d(OFPXMT_OFB_ICMPV6_CODE, "icmpv6_code", 1, 8, false, v12, ShapeInt),
			d(OFPXMT_OFB_IPV6_ND_TARGET, "ipv6_nd_target", 16, 128, false, v12, ShapeIPv6),
			d(OFPXMT_OFB_IPV6_ND_SLL, "ipv6_nd_sll", 6, 48, false, v12, ShapeMAC),
			d(OFPXMT_OFB_IPV6_ND_TLL, "ipv6_nd_tll", 6, 48, false, v12, ShapeMAC),
			d(OFPXMT_OFB_MPLS_LABEL, "mpls_label", mplsLabelLength, 20, false, v12, ShapeInt),
			d(OFPXMT_OFB_MPLS_TC, "mpls_tc", 1, 3, false, v12, ShapeInt),
			d(OFPXMT_OFB_MPLS_BOS, "mpls_bos", 1, 1, false, v13, ShapeInt),
			d(OFPXMT_OFB_PBB_ISID, "pbb_isid", 3, 24, true, v13, ShapeInt),
			d(OFPXMT_OFB_TUNNEL_ID, "tunnel_id", 8, 64, true, v13, ShapeUint64),
			d(OFPXMT_OFB_IPV6_EXTHDR, "ipv6_exthdr", 2, 9, true, v13, ShapeIPv6ExtHdr),
		},
		names: make(map[string]FieldType),
	}
	for _, v := range r.types {
		r.names[v.Name] = v.Type
	}

	return r
}

func (r *Registry) Config() Config {
	return r.config
}

// Describe returns the descriptor of t. ok is false for codes above MaxFieldType.
func (r *Registry) Describe(t FieldType) (desc Descriptor, ok bool) {
	if t > MaxFieldType {
		return Descriptor{}, false
	}

	return r.types[t], true
}

func (r *Registry) mustDescribe(t FieldType) Descriptor {
	desc, ok := r.Describe(t)
	if !ok {
		panic(fmt.Sprintf("unknown basic field type %v", uint8(t)))
	}

	return desc
}

// Lookup finds a basic field by its lower case name, e.g., "tcp_dst". The
// "oxm_of_" and "ofpxmt_ofb_" prefixes are accepted.
func (r *Registry) Lookup(name string) (desc Descriptor, ok bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	n = strings.TrimPrefix(n, "ofpxmt_ofb_")
	n = strings.TrimPrefix(n, "oxm_of_")
	t, ok := r.names[n]
	if !ok {
		return Descriptor{}, false
	}

	return r.types[t], true
}

// Descriptors returns every descriptor ordered by field code.
func (r *Registry) Descriptors() []Descriptor {
	result := make([]Descriptor, len(r.types))
	copy(result, r.types[:])

	return result
}

// ExpectedPayloadLength returns the payload length a header of t must carry.
func (r *Registry) ExpectedPayloadLength(t FieldType, hasMask bool) (int, error) {
	desc, ok := r.Describe(t)
	if !ok {
		return 0, errors.Wrapf(ErrUnknownFieldCode, "code=%v", uint8(t))
	}

	return desc.PayloadLength(hasMask), nil
}

// Decode maps a raw basic field code to its type and checks that version
// defines it.
func (r *Registry) Decode(code uint8, version openflow.Version) (FieldType, error) {
	desc, ok := r.Describe(FieldType(code))
	if !ok {
		return 0, newDecodeError(ErrUnknownFieldCode, "oxm_field", code)
	}
	if err := r.checkVersion(desc, version); err != nil {
		return 0, err
	}

	return desc.Type, nil
}

func (r *Registry) checkVersion(desc Descriptor, version openflow.Version) error {
	if version == openflow.OF12_VERSION && desc.Type > OF12MaxFieldType {
		return &VersionMismatchError{What: desc.Name, Required: openflow.OF13_VERSION, Actual: version}
	}
	if version < desc.MinVersion {
		return &VersionMismatchError{What: desc.Name, Required: desc.MinVersion, Actual: version}
	}

	return nil
}

func (r FieldType) String() string {
	desc, ok := DefaultRegistry.Describe(r)
	if !ok {
		return fmt.Sprintf("field(%d)", uint8(r))
	}

	return desc.Name
}

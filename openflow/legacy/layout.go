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

// Package legacy implements the fixed-layout ofp_match of OpenFlow 1.0 and 1.1.
package legacy

import (
	"net"

	"github.com/superkkt/oxm/openflow"
	"github.com/superkkt/oxm/openflow/buffer"

	"github.com/pkg/errors"
)

var (
	ErrUnsupportedMatchType = errors.New("unsupported legacy match type")
	ErrInvalidMatchLength   = errors.New("invalid legacy match length")
	ErrPortOutOfRange       = errors.New("port number does not fit the legacy match")
	ErrInvalidMACAddress    = errors.New("invalid MAC address")
	ErrInvalidIPAddress     = errors.New("invalid IPv4 address")
)

// Layout is the version independent view of a legacy ofp_match. Every mask
// uses the OXM polarity: a 1 bit must match, a 0 bit is ignored.
type Layout struct {
	Version   openflow.Version
	Wildcards Wildcards
	// InPort is always 32 bits wide. Reserved 1.0 ports are mapped to their
	// 32-bit counterparts (e.g., 0xfffd -> 0xfffffffd).
	InPort     uint32
	SrcMAC     net.HardwareAddr
	SrcMACMask net.HardwareAddr // 1.1 only. nil means exact match.
	DstMAC     net.HardwareAddr
	DstMACMask net.HardwareAddr // 1.1 only. nil means exact match.
	// VLANID is the raw dl_vlan value including the OFPVID_NONE and OFPVID_ANY sentinels.
	VLANID       uint16
	VLANPriority uint8
	EtherType    uint16
	// TOS carries the DSCP in its upper 6 bits.
	TOS uint8
	// Protocol is the IP protocol, or the lower 8 bits of the ARP opcode.
	Protocol  uint8
	SrcIP     net.IP
	SrcIPMask net.IPMask
	DstIP     net.IP
	DstIPMask net.IPMask
	// SrcPort and DstPort carry the ICMP type and code when Protocol is ICMP.
	SrcPort      uint16
	DstPort      uint16
	MPLSLabel    uint32 // 1.1 only.
	MPLSTC       uint8  // 1.1 only.
	Metadata     uint64 // 1.1 only.
	MetadataMask uint64 // 1.1 only.
}

// NewLayout returns a Layout whose attributes are all wildcarded.
func NewLayout(version openflow.Version) *Layout {
	return &Layout{
		Version:   version,
		Wildcards: WildcardAll,
		SrcMAC:    net.HardwareAddr([]byte{0, 0, 0, 0, 0, 0}),
		DstMAC:    net.HardwareAddr([]byte{0, 0, 0, 0, 0, 0}),
		SrcIP:     net.IPv4zero.To4(),
		SrcIPMask: net.CIDRMask(0, 32),
		DstIP:     net.IPv4zero.To4(),
		DstIPMask: net.CIDRMask(0, 32),
	}
}

// Size returns the wire length of the legacy match of version.
func Size(version openflow.Version) (int, error) {
	switch version {
	case openflow.OF10_VERSION:
		return OF10MatchSize, nil
	case openflow.OF11_VERSION:
		return OF11MatchSize, nil
	default:
		return 0, errors.Wrapf(openflow.ErrUnsupportedVersion, "legacy match of version %v", version)
	}
}

// Decode reads a legacy match of version from b.
func Decode(b buffer.Reader, version openflow.Version) (*Layout, error) {
	size, err := Size(version)
	if err != nil {
		return nil, err
	}
	data, err := b.Peek(size)
	if err != nil {
		return nil, errors.Wrap(err, "reading legacy match")
	}

	r := &Layout{Version: version}
	if err := r.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	if err := b.Skip(size); err != nil {
		return nil, err
	}

	return r, nil
}

// Encode appends the wire form of the layout to b.
func (r *Layout) Encode(b buffer.Writer) error {
	data, err := r.MarshalBinary()
	if err != nil {
		return err
	}
	b.WriteBytes(data)

	return nil
}

func (r *Layout) MarshalBinary() ([]byte, error) {
	if len(r.SrcMAC) != 6 || len(r.DstMAC) != 6 {
		return nil, ErrInvalidMACAddress
	}
	if r.SrcIP.To4() == nil || r.DstIP.To4() == nil {
		return nil, ErrInvalidIPAddress
	}

	switch r.Version {
	case openflow.OF10_VERSION:
		return r.marshalOF10()
	case openflow.OF11_VERSION:
		return r.marshalOF11()
	default:
		return nil, errors.Wrapf(openflow.ErrUnsupportedVersion, "legacy match of version %v", r.Version)
	}
}

// UnmarshalBinary decodes data according to r.Version, which must be set.
func (r *Layout) UnmarshalBinary(data []byte) error {
	switch r.Version {
	case openflow.OF10_VERSION:
		return r.unmarshalOF10(data)
	case openflow.OF11_VERSION:
		return r.unmarshalOF11(data)
	default:
		return errors.Wrapf(openflow.ErrUnsupportedVersion, "legacy match of version %v", r.Version)
	}
}

func cloneMAC(mac []byte) net.HardwareAddr {
	v := make(net.HardwareAddr, 6)
	copy(v, mac)
	return v
}

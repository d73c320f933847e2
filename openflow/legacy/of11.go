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

package legacy

import (
	"encoding/binary"
	"net"

	"github.com/pkg/errors"
)

// OpenFlow 1.1 masks are inverted on the wire: a 1 bit is "don't care".

func (r *Layout) marshalOF11() ([]byte, error) {
	data := make([]byte, OF11MatchSize)
	binary.BigEndian.PutUint16(data[0:2], OFPMT_STANDARD)
	binary.BigEndian.PutUint16(data[2:4], OF11MatchSize)
	binary.BigEndian.PutUint32(data[4:8], r.InPort)
	binary.BigEndian.PutUint32(data[8:12], of11Wildcards(r.Wildcards))
	copy(data[12:18], r.SrcMAC)
	copy(data[18:24], wireMACMask(r.Wildcards.Has(WildcardSrcMAC), r.SrcMACMask))
	copy(data[24:30], r.DstMAC)
	copy(data[30:36], wireMACMask(r.Wildcards.Has(WildcardDstMAC), r.DstMACMask))
	binary.BigEndian.PutUint16(data[36:38], r.VLANID)
	data[38] = r.VLANPriority
	// data[39] = padding
	binary.BigEndian.PutUint16(data[40:42], r.EtherType)
	data[42] = r.TOS
	data[43] = r.Protocol
	srcMask, err := wireIPMask(r.SrcIPMask)
	if err != nil {
		return nil, errors.Wrap(err, "nw_src_mask")
	}
	dstMask, err := wireIPMask(r.DstIPMask)
	if err != nil {
		return nil, errors.Wrap(err, "nw_dst_mask")
	}
	copy(data[44:48], r.SrcIP.To4())
	copy(data[48:52], srcMask)
	copy(data[52:56], r.DstIP.To4())
	copy(data[56:60], dstMask)
	binary.BigEndian.PutUint16(data[60:62], r.SrcPort)
	binary.BigEndian.PutUint16(data[62:64], r.DstPort)
	binary.BigEndian.PutUint32(data[64:68], r.MPLSLabel)
	data[68] = r.MPLSTC
	// data[69:72] = padding
	binary.BigEndian.PutUint64(data[72:80], r.Metadata)
	binary.BigEndian.PutUint64(data[80:88], ^r.MetadataMask)

	return data, nil
}

func wireMACMask(wildcard bool, mask net.HardwareAddr) []byte {
	if wildcard {
		return []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	}
	if mask == nil {
		return []byte{0, 0, 0, 0, 0, 0}
	}

	return invert(mask)
}

func wireIPMask(mask net.IPMask) ([]byte, error) {
	if len(mask) == 0 {
		return []byte{0xff, 0xff, 0xff, 0xff}, nil
	}
	if len(mask) == net.IPv6len {
		mask = mask[12:]
	}
	if len(mask) != net.IPv4len {
		return nil, errors.Wrapf(ErrInvalidNetmask, "mask=%v", mask.String())
	}

	return invert(mask), nil
}

func (r *Layout) unmarshalOF11(data []byte) error {
	if len(data) < OF11MatchSize {
		return errors.Wrapf(ErrInvalidMatchLength, "expected=%v, actual=%v", OF11MatchSize, len(data))
	}
	if t := binary.BigEndian.Uint16(data[0:2]); t != OFPMT_STANDARD {
		return errors.Wrapf(ErrUnsupportedMatchType, "type=%v", t)
	}
	if l := binary.BigEndian.Uint16(data[2:4]); l != OF11MatchSize {
		return errors.Wrapf(ErrInvalidMatchLength, "expected=%v, declared=%v", OF11MatchSize, l)
	}

	r.InPort = binary.BigEndian.Uint32(data[4:8])
	r.Wildcards = parseOF11Wildcards(binary.BigEndian.Uint32(data[8:12]))
	r.SrcMAC = cloneMAC(data[12:18])
	r.SrcMACMask = r.parseMACMask(data[18:24], WildcardSrcMAC)
	r.DstMAC = cloneMAC(data[24:30])
	r.DstMACMask = r.parseMACMask(data[30:36], WildcardDstMAC)
	r.VLANID = binary.BigEndian.Uint16(data[36:38])
	r.VLANPriority = data[38]
	// data[39] = padding
	r.EtherType = binary.BigEndian.Uint16(data[40:42])
	r.TOS = data[42]
	r.Protocol = data[43]
	r.SrcIP = net.IPv4(data[44], data[45], data[46], data[47]).To4()
	r.SrcIPMask = net.IPMask(invert(data[48:52]))
	r.DstIP = net.IPv4(data[52], data[53], data[54], data[55]).To4()
	r.DstIPMask = net.IPMask(invert(data[56:60]))
	r.SrcPort = binary.BigEndian.Uint16(data[60:62])
	r.DstPort = binary.BigEndian.Uint16(data[62:64])
	r.MPLSLabel = binary.BigEndian.Uint32(data[64:68])
	r.MPLSTC = data[68]
	// data[69:72] = padding
	r.Metadata = binary.BigEndian.Uint64(data[72:80])
	r.MetadataMask = ^binary.BigEndian.Uint64(data[80:88])

	return nil
}

// parseMACMask converts a wire mask and marks the address wildcarded if every
// bit is ignored.
func (r *Layout) parseMACMask(wire []byte, flag Wildcards) net.HardwareAddr {
	mask := invert(wire)
	if IsAllWild(mask) {
		r.Wildcards.Set(flag)
		return nil
	}
	r.Wildcards.Clear(flag)
	if IsExact(mask) {
		return nil
	}

	return net.HardwareAddr(mask)
}

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

var (
	ErrMaskNotSupported = errors.New("hardware address masks are not supported by OpenFlow 1.0")
)

// of10Port maps a 32-bit port number into the 16-bit port space of 1.0. It is
// the inverse of port10: numbers below OFPP_IN_PORT pass through and only the
// 32-bit reserved ports map onto 0xfff8-0xffff.
func of10Port(port uint32) (uint16, error) {
	if port >= OFPP11_IN_PORT {
		return uint16(port & 0xffff), nil
	}
	if port >= OFPP_IN_PORT {
		return 0, errors.Wrapf(ErrPortOutOfRange, "port=%v", port)
	}

	return uint16(port), nil
}

// port10 maps a 1.0 port number into the 32-bit port space.
func port10(port uint16) uint32 {
	if port >= OFPP_IN_PORT {
		return 0xffff0000 | uint32(port)
	}

	return uint32(port)
}

func (r *Layout) marshalOF10() ([]byte, error) {
	if r.SrcMACMask != nil && IsExact(r.SrcMACMask) == false {
		return nil, ErrMaskNotSupported
	}
	if r.DstMACMask != nil && IsExact(r.DstMACMask) == false {
		return nil, ErrMaskNotSupported
	}

	inPort, err := of10Port(r.InPort)
	if err != nil {
		return nil, err
	}
	srcBits, err := WildcardBits(r.SrcIPMask)
	if err != nil {
		return nil, errors.Wrap(err, "nw_src")
	}
	dstBits, err := WildcardBits(r.DstIPMask)
	if err != nil {
		return nil, errors.Wrap(err, "nw_dst")
	}
	// A fully wildcarded address sets every bit of its count like OFPFW_ALL does.
	if srcBits >= 32 {
		srcBits = (1 << OFPFW_NW_SRC_BITS) - 1
	}
	if dstBits >= 32 {
		dstBits = (1 << OFPFW_NW_DST_BITS) - 1
	}

	data := make([]byte, OF10MatchSize)
	binary.BigEndian.PutUint32(data[0:4], of10Wildcards(r.Wildcards, srcBits, dstBits))
	binary.BigEndian.PutUint16(data[4:6], inPort)
	copy(data[6:12], r.SrcMAC)
	copy(data[12:18], r.DstMAC)
	binary.BigEndian.PutUint16(data[18:20], r.VLANID)
	data[20] = r.VLANPriority
	// data[21] = padding
	binary.BigEndian.PutUint16(data[22:24], r.EtherType)
	data[24] = r.TOS
	data[25] = r.Protocol
	// data[26:28] = padding
	copy(data[28:32], r.SrcIP.To4())
	copy(data[32:36], r.DstIP.To4())
	binary.BigEndian.PutUint16(data[36:38], r.SrcPort)
	binary.BigEndian.PutUint16(data[38:40], r.DstPort)

	return data, nil
}

func (r *Layout) unmarshalOF10(data []byte) error {
	if len(data) < OF10MatchSize {
		return errors.Wrapf(ErrInvalidMatchLength, "expected=%v, actual=%v", OF10MatchSize, len(data))
	}

	w, srcBits, dstBits := parseOF10Wildcards(binary.BigEndian.Uint32(data[0:4]))
	r.Wildcards = w
	r.InPort = port10(binary.BigEndian.Uint16(data[4:6]))
	r.SrcMAC = cloneMAC(data[6:12])
	r.SrcMACMask = nil
	r.DstMAC = cloneMAC(data[12:18])
	r.DstMACMask = nil
	r.VLANID = binary.BigEndian.Uint16(data[18:20])
	r.VLANPriority = data[20]
	// data[21] = padding
	r.EtherType = binary.BigEndian.Uint16(data[22:24])
	r.TOS = data[24]
	r.Protocol = data[25]
	// data[26:28] = padding
	r.SrcIP = net.IPv4(data[28], data[29], data[30], data[31]).To4()
	r.SrcIPMask = NetmaskFromBits(srcBits)
	r.DstIP = net.IPv4(data[32], data[33], data[34], data[35]).To4()
	r.DstIPMask = NetmaskFromBits(dstBits)
	r.SrcPort = binary.BigEndian.Uint16(data[36:38])
	r.DstPort = binary.BigEndian.Uint16(data[38:40])
	r.MPLSLabel = 0
	r.MPLSTC = 0
	r.Metadata = 0
	r.MetadataMask = 0

	return nil
}

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
	"net"

	"github.com/pkg/errors"
)

var (
	ErrInvalidNetmask = errors.New("netmask is not a contiguous IPv4 prefix")
)

// WildcardBits converts an IPv4 netmask into the OpenFlow 1.0 "don't care" bit
// count. A nil or all-zero mask wildcards the entire field and yields 32.
func WildcardBits(mask net.IPMask) (uint8, error) {
	if len(mask) == 0 {
		return 32, nil
	}
	if len(mask) == net.IPv6len {
		// IPv4-in-IPv6 form produced by net.IPv4Mask users that go through To16.
		if isIPv4MappedMask(mask) == false {
			return 0, errors.Wrapf(ErrInvalidNetmask, "mask=%v", mask.String())
		}
		mask = mask[12:]
	}
	if len(mask) != net.IPv4len {
		return 0, errors.Wrapf(ErrInvalidNetmask, "mask=%v", mask.String())
	}

	ones, bits := mask.Size()
	// Size returns 0, 0 if the mask is not in the canonical form.
	if bits == 0 {
		return 0, errors.Wrapf(ErrInvalidNetmask, "mask=%v", mask.String())
	}

	return uint8(32 - ones), nil
}

func isIPv4MappedMask(mask net.IPMask) bool {
	for i := 0; i < 12; i++ {
		if mask[i] != 0xff {
			return false
		}
	}

	return true
}

// NetmaskFromBits converts an OpenFlow 1.0 wildcard bit count into an IPv4
// netmask. Counts of 32 and higher yield an all-zero mask.
func NetmaskFromBits(bits uint8) net.IPMask {
	if bits >= 32 {
		return net.CIDRMask(0, 32)
	}

	return net.CIDRMask(32-int(bits), 32)
}

// IsAllWild returns whether every bit of mask is "don't care".
func IsAllWild(mask []byte) bool {
	for _, v := range mask {
		if v != 0 {
			return false
		}
	}

	return true
}

// IsExact returns whether every bit of mask is significant.
func IsExact(mask []byte) bool {
	for _, v := range mask {
		if v != 0xff {
			return false
		}
	}

	return true
}

func invert(mask []byte) []byte {
	v := make([]byte, len(mask))
	for i := range mask {
		v[i] = ^mask[i]
	}

	return v
}

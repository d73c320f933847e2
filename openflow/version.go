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

package openflow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Version is the OpenFlow wire protocol version carried in the ofp_header.
type Version uint8

const (
	OF10_VERSION Version = 0x01
	OF11_VERSION Version = 0x02
	OF12_VERSION Version = 0x03
	OF13_VERSION Version = 0x04
)

var (
	ErrUnsupportedVersion = errors.New("unsupported OpenFlow version")
)

// Versions lists every protocol version this module understands, oldest first.
var Versions = []Version{OF10_VERSION, OF11_VERSION, OF12_VERSION, OF13_VERSION}

func (r Version) Valid() bool {
	return r >= OF10_VERSION && r <= OF13_VERSION
}

// IsOXM returns whether matches of this version are encoded as OXM TLVs.
// Versions before 1.2 use the fixed-layout ofp_match.
func (r Version) IsOXM() bool {
	return r >= OF12_VERSION
}

func (r Version) String() string {
	switch r {
	case OF10_VERSION:
		return "1.0"
	case OF11_VERSION:
		return "1.1"
	case OF12_VERSION:
		return "1.2"
	case OF13_VERSION:
		return "1.3"
	default:
		return fmt.Sprintf("unknown(0x%02x)", uint8(r))
	}
}

// ParseVersion accepts "1.3", "OF13", "of1.3" and the raw wire number "4".
func ParseVersion(s string) (Version, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "of")
	switch v {
	case "1.0", "10":
		return OF10_VERSION, nil
	case "1.1", "11":
		return OF11_VERSION, nil
	case "1.2", "12":
		return OF12_VERSION, nil
	case "1.3", "13":
		return OF13_VERSION, nil
	}

	n, err := strconv.ParseUint(v, 0, 8)
	if err != nil || Version(n).Valid() == false {
		return 0, errors.Wrapf(ErrUnsupportedVersion, "version %q", s)
	}

	return Version(n), nil
}

func (r Version) MarshalText() ([]byte, error) {
	if r.Valid() == false {
		return nil, errors.Wrapf(ErrUnsupportedVersion, "version 0x%02x", uint8(r))
	}

	return []byte(r.String()), nil
}

func (r *Version) UnmarshalText(text []byte) error {
	v, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*r = v

	return nil
}

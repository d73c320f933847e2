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

package buffer

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

var hexSeparators = strings.NewReplacer(" ", "", "\t", "", "\n", "", "\r", "", ":", "")

// ParseHex decodes a hex dump such as "0001 000c 8000 0004" or
// "00:01:00:0c". An optional 0x prefix is ignored.
func ParseHex(s string) ([]byte, error) {
	s = hexSeparators.Replace(strings.TrimSpace(s))
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(err, "invalid hex data")
	}

	return b, nil
}

// FormatHex is the inverse of ParseHex for a compact dump.
func FormatHex(b []byte) string {
	return hex.EncodeToString(b)
}

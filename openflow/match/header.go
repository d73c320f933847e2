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

	"github.com/superkkt/oxm/openflow"
	"github.com/superkkt/oxm/openflow/buffer"

	"github.com/pkg/errors"
)

const (
	OFPXMC_NXM_0          uint16 = 0x0000
	OFPXMC_NXM_1          uint16 = 0x0001
	OFPXMC_VENDOR         uint16 = 0x0002
	OFPXMC_HP             uint16 = 0x0003
	OFPXMC_OPENFLOW_BASIC uint16 = 0x8000
	OFPXMC_EXPERIMENTER   uint16 = 0xffff
)

// HeaderLength is the length of an OXM TLV header.
const HeaderLength = 4

// Class is the decoded form of an OXM class.
type Class uint8

const (
	ClassUnknown Class = iota
	ClassNXM0
	ClassNXM1
	ClassVendor
	ClassHP
	ClassBasic
	ClassExperimenter
)

type classInfo struct {
	class      Class
	name       string
	minVersion openflow.Version
}

var classes = map[uint16]classInfo{
	OFPXMC_NXM_0:          {ClassNXM0, "nxm_0", openflow.OF12_VERSION},
	OFPXMC_NXM_1:          {ClassNXM1, "nxm_1", openflow.OF12_VERSION},
	OFPXMC_VENDOR:         {ClassVendor, "vendor", openflow.OF12_VERSION},
	OFPXMC_HP:             {ClassHP, "hp", openflow.OF13_VERSION},
	OFPXMC_OPENFLOW_BASIC: {ClassBasic, "openflow_basic", openflow.OF12_VERSION},
	OFPXMC_EXPERIMENTER:   {ClassExperimenter, "experimenter", openflow.OF12_VERSION},
}

// DecodeClass maps a raw class to its decoded form. Unrecognized classes are
// ClassUnknown.
func DecodeClass(raw uint16) Class {
	info, ok := classes[raw]
	if !ok {
		return ClassUnknown
	}

	return info.class
}

func (r Class) String() string {
	for _, v := range classes {
		if v.class == r {
			return v.name
		}
	}

	return "unknown"
}

// OxmType combines a raw class and field code. It ignores the mask bit and
// the length, so a masked and an unmasked field of the same kind are equal.
type OxmType uint32

func NewOxmType(class uint16, field uint8) OxmType {
	return OxmType(uint32(class)<<16 | uint32(field&0x7f)<<9)
}

func (r OxmType) Class() uint16 {
	return uint16(r >> 16)
}

func (r OxmType) Field() uint8 {
	return uint8(r>>9) & 0x7f
}

func (r OxmType) String() string {
	return fmt.Sprintf("0x%04x:%d", r.Class(), r.Field())
}

// Header is an OXM TLV header.
type Header struct {
	RawClass uint16
	Class    Class
	RawField uint8
	// Type is meaningful only when Class is ClassBasic.
	Type    FieldType
	HasMask bool
	// Length is the payload length. It excludes the header itself.
	Length uint8
}

func newBasicHeader(reg *Registry, t FieldType, hasMask bool) Header {
	desc := reg.mustDescribe(t)

	return Header{
		RawClass: OFPXMC_OPENFLOW_BASIC,
		Class:    ClassBasic,
		RawField: uint8(t),
		Type:     t,
		HasMask:  hasMask,
		Length:   uint8(desc.PayloadLength(hasMask)),
	}
}

func (r Header) OxmType() OxmType {
	return NewOxmType(r.RawClass, r.RawField)
}

// Uint32 returns the header as it appears on the wire.
func (r Header) Uint32() uint32 {
	v := uint32(r.RawClass)<<16 | uint32(r.RawField&0x7f)<<9 | uint32(r.Length)
	if r.HasMask {
		v |= 1 << 8
	}

	return v
}

// Name returns a human readable field name, e.g., "tcp_dst" or "0x0001:3".
func (r Header) Name() string {
	if r.Class == ClassBasic {
		return r.Type.String()
	}

	return fmt.Sprintf("%v(%v)", r.Class, r.OxmType())
}

// EncodeHeader writes the 4-byte form of h.
func EncodeHeader(w buffer.Writer, h Header) {
	w.WriteUint16(h.RawClass)
	v := (h.RawField & 0x7f) << 1
	if h.HasMask {
		v |= 1
	}
	w.WriteUint8(v)
	w.WriteUint8(h.Length)
}

// DecodeHeader reads an OXM header. headerOnly skips the payload length check
// for header lists that carry no payload, e.g., table feature properties.
func (r *Registry) DecodeHeader(rd buffer.Reader, version openflow.Version, headerOnly bool) (Header, error) {
	if !version.IsOXM() {
		return Header{}, &VersionMismatchError{What: "OXM match", Required: openflow.OF12_VERSION, Actual: version}
	}

	class, err := rd.ReadUint16()
	if err != nil {
		return Header{}, errors.Wrap(err, "reading oxm_class")
	}
	v, err := rd.ReadUint8()
	if err != nil {
		return Header{}, errors.Wrap(err, "reading oxm_field")
	}
	length, err := rd.ReadUint8()
	if err != nil {
		return Header{}, errors.Wrap(err, "reading oxm_length")
	}

	h := Header{
		RawClass: class,
		Class:    DecodeClass(class),
		RawField: v >> 1,
		HasMask:  v&0x1 == 1,
		Length:   length,
	}
	if info, ok := classes[class]; ok && version < info.minVersion {
		return Header{}, &VersionMismatchError{What: fmt.Sprintf("OXM class %v", info.name), Required: info.minVersion, Actual: version}
	}

	switch h.Class {
	case ClassBasic:
		t, err := r.Decode(h.RawField, version)
		if err != nil {
			return Header{}, err
		}
		h.Type = t
		if headerOnly {
			break
		}
		expected, err := r.ExpectedPayloadLength(t, h.HasMask)
		if err != nil {
			return Header{}, err
		}
		if int(length) != expected {
			return Header{}, &HeaderParseError{Kind: ErrBadLength, Field: t.String(), Expected: expected, Actual: int(length)}
		}
	case ClassExperimenter:
		// The payload starts with the 4-byte experimenter id.
		if !headerOnly && length < 4 {
			return Header{}, &HeaderParseError{Kind: ErrBadLength, Field: h.Name(), Expected: 4, Actual: int(length)}
		}
	}

	return h, nil
}

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
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("match")
)

// DecodeField reads one OXM TLV, header and payload.
func (r *Registry) DecodeField(rd buffer.Reader, version openflow.Version) (Field, error) {
	h, err := r.DecodeHeader(rd, version, false)
	if err != nil {
		return nil, err
	}

	return r.decodePayload(rd, h, version)
}

func (r *Registry) decodePayload(rd buffer.Reader, h Header, version openflow.Version) (Field, error) {
	b := base{header: h, version: version}

	switch h.Class {
	case ClassBasic:
		return r.decodeBasic(rd, b)
	case ClassExperimenter:
		if h.Length < 4 {
			return nil, newDecodeError(ErrInvalidExperimenterBody, h.Name(), h.Length)
		}
		id, err := rd.ReadUint32()
		if err != nil {
			return nil, errors.Wrap(err, "reading experimenter id")
		}
		payload, err := rd.ReadBytes(int(h.Length) - 4)
		if err != nil {
			return nil, errors.Wrap(err, "reading experimenter payload")
		}
		return ExperimenterField{base: b, Experimenter: id, Payload: payload}, nil
	default:
		payload, err := rd.ReadBytes(int(h.Length))
		if err != nil {
			return nil, errors.Wrapf(err, "reading %v payload", h.Name())
		}
		logger.Debugf("keeping opaque OXM field: class=0x%04x, field=%v, length=%v", h.RawClass, h.RawField, h.Length)
		return OpaqueField{base: b, Payload: payload}, nil
	}
}

func rejectMask(desc Descriptor, h Header) error {
	if h.HasMask && !desc.Maskable {
		return newDecodeError(ErrUnexpectedMask, desc.Name, nil)
	}

	return nil
}

func (r *Registry) decodeBasic(rd buffer.Reader, b base) (Field, error) {
	h := b.header
	desc := r.mustDescribe(h.Type)
	// Sub-byte integers check their value and mask ranges before the mask bit.
	if desc.Shape != ShapeInt {
		if err := rejectMask(desc, h); err != nil {
			return nil, err
		}
	}

	switch desc.Shape {
	case ShapePort:
		v, err := rd.ReadUint32()
		if err != nil {
			return nil, errors.Wrapf(err, "reading %v", desc.Name)
		}
		return PortField{base: b, Port: v}, nil

	case ShapeUint64:
		f := Uint64Field{base: b}
		var err error
		if f.Value, err = rd.ReadUint64(); err != nil {
			return nil, errors.Wrapf(err, "reading %v", desc.Name)
		}
		if h.HasMask {
			if f.Mask, err = rd.ReadUint64(); err != nil {
				return nil, errors.Wrapf(err, "reading %v mask", desc.Name)
			}
		}
		return f, nil

	case ShapeMAC:
		f := MACField{base: b}
		v, err := rd.ReadBytes(desc.Length)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %v", desc.Name)
		}
		f.Value = net.HardwareAddr(v)
		if h.HasMask {
			m, err := rd.ReadBytes(desc.Length)
			if err != nil {
				return nil, errors.Wrapf(err, "reading %v mask", desc.Name)
			}
			f.Mask = net.HardwareAddr(m)
		}
		return f, nil

	case ShapeIPv4, ShapeIPv6:
		f := IPField{base: b}
		v, err := rd.ReadBytes(desc.Length)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %v", desc.Name)
		}
		f.Value = net.IP(v)
		if h.HasMask {
			m, err := rd.ReadBytes(desc.Length)
			if err != nil {
				return nil, errors.Wrapf(err, "reading %v mask", desc.Name)
			}
			f.Mask = net.IPMask(m)
		}
		return f, nil

	case ShapeInt:
		width := desc.Length
		v, err := rd.ReadUint(width)
		if err != nil {
			return nil, errors.Wrapf(err, "reading %v", desc.Name)
		}
		if err := checkBits(desc, "", v); err != nil {
			return nil, err
		}
		f := IntField{base: b, Value: uint32(v)}
		if h.HasMask {
			m, err := rd.ReadUint(width)
			if err != nil {
				return nil, errors.Wrapf(err, "reading %v mask", desc.Name)
			}
			if err := checkBits(desc, " mask", m); err != nil {
				return nil, err
			}
			if err := rejectMask(desc, h); err != nil {
				return nil, err
			}
			f.Mask = uint32(m)
		}
		return f, nil

	case ShapeEthType:
		v, err := rd.ReadUint16()
		if err != nil {
			return nil, errors.Wrapf(err, "reading %v", desc.Name)
		}
		return EthTypeField{base: b, Value: layers.EthernetType(v)}, nil

	case ShapeVLAN:
		return decodeVLAN(rd, b)

	case ShapeIPProto:
		v, err := rd.ReadUint8()
		if err != nil {
			return nil, errors.Wrapf(err, "reading %v", desc.Name)
		}
		return IPProtoField{base: b, Value: layers.IPProtocol(v)}, nil

	case ShapeICMPType:
		v, err := rd.ReadUint8()
		if err != nil {
			return nil, errors.Wrapf(err, "reading %v", desc.Name)
		}
		return ICMPTypeField{base: b, Value: v}, nil

	case ShapeIPv6ExtHdr:
		f := IPv6ExtHdrField{base: b, Mask: ipv6ExtHdrAll}
		var err error
		if f.Flags, err = rd.ReadUint16(); err != nil {
			return nil, errors.Wrapf(err, "reading %v", desc.Name)
		}
		if f.Flags > ipv6ExtHdrAll {
			return nil, newDecodeError(ErrOutOfRange, desc.Name, f.Flags)
		}
		if h.HasMask {
			if f.Mask, err = rd.ReadUint16(); err != nil {
				return nil, errors.Wrapf(err, "reading %v mask", desc.Name)
			}
			if f.Mask > ipv6ExtHdrAll {
				return nil, newDecodeError(ErrOutOfRange, desc.Name+" mask", f.Mask)
			}
		}
		return f, nil

	default:
		panic("unexpected field shape")
	}
}

// decodeVLAN maps the wire VLAN_VID onto its tri-state:
//
//	value 0x0000, no mask          -> VLANNone
//	value 0x1000, mask 0x1000      -> VLANAny
//	value 0x1000|id, no mask       -> VLANExact
func decodeVLAN(rd buffer.Reader, b base) (Field, error) {
	v, err := rd.ReadUint16()
	if err != nil {
		return nil, errors.Wrap(err, "reading vlan_vid")
	}
	if v > 0x1fff {
		return nil, newDecodeError(ErrOutOfRange, "vlan_vid", v)
	}

	if b.header.HasMask {
		m, err := rd.ReadUint16()
		if err != nil {
			return nil, errors.Wrap(err, "reading vlan_vid mask")
		}
		if v != OFPVID_PRESENT || m != OFPVID_PRESENT {
			return nil, newDecodeError(ErrVlanBadMaskCombination, "vlan_vid", [2]uint16{v, m})
		}
		return VLANField{base: b, State: VLANAny}, nil
	}

	if v == OFPVID_NONE {
		return VLANField{base: b, State: VLANNone}, nil
	}
	if v&OFPVID_PRESENT == 0 {
		return nil, newDecodeError(ErrVlanMissingPresentBit, "vlan_vid", v)
	}

	return VLANField{base: b, State: VLANExact, ID: v & 0x0fff}, nil
}

// payloadWidth returns the width of the value alone.
func payloadWidth(h Header) int {
	if h.HasMask {
		return int(h.Length) / 2
	}

	return int(h.Length)
}

func (r PortField) encodePayload(w buffer.Writer) error {
	w.WriteUint32(r.Port)
	return nil
}

func (r Uint64Field) encodePayload(w buffer.Writer) error {
	w.WriteUint64(r.Value)
	if r.header.HasMask {
		w.WriteUint64(r.Mask)
	}

	return nil
}

func (r MACField) encodePayload(w buffer.Writer) error {
	w.WriteBytes(r.Value)
	if r.header.HasMask {
		w.WriteBytes(r.Mask)
	}

	return nil
}

func (r IPField) encodePayload(w buffer.Writer) error {
	width := payloadWidth(r.header)
	ip := r.Value
	if width == net.IPv4len {
		ip = ip.To4()
	}
	if len(ip) != width {
		return newDecodeError(ErrFamilyNotAppropriate, r.header.Name(), r.Value)
	}
	w.WriteBytes(ip)
	if r.header.HasMask {
		if len(r.Mask) != width {
			return newDecodeError(ErrFamilyMismatch, r.header.Name(), r.Mask)
		}
		w.WriteBytes(r.Mask)
	}

	return nil
}

func (r IntField) encodePayload(w buffer.Writer) error {
	width := payloadWidth(r.header)
	if err := w.WriteUint(width, uint64(r.Value)); err != nil {
		return errors.Wrap(err, r.header.Name())
	}
	if r.header.HasMask {
		if err := w.WriteUint(width, uint64(r.Mask)); err != nil {
			return errors.Wrap(err, r.header.Name()+" mask")
		}
	}

	return nil
}

func (r EthTypeField) encodePayload(w buffer.Writer) error {
	w.WriteUint16(uint16(r.Value))
	return nil
}

func (r VLANField) encodePayload(w buffer.Writer) error {
	switch r.State {
	case VLANNone:
		w.WriteUint16(OFPVID_NONE)
	case VLANAny:
		w.WriteUint16(OFPVID_PRESENT)
		w.WriteUint16(OFPVID_PRESENT)
	case VLANExact:
		w.WriteUint16(OFPVID_PRESENT | (r.ID & 0x0fff))
	default:
		return newDecodeError(ErrVlanBadMaskCombination, "vlan_vid", r.State)
	}

	return nil
}

func (r IPProtoField) encodePayload(w buffer.Writer) error {
	w.WriteUint8(uint8(r.Value))
	return nil
}

func (r ICMPTypeField) encodePayload(w buffer.Writer) error {
	w.WriteUint8(r.Value)
	return nil
}

func (r IPv6ExtHdrField) encodePayload(w buffer.Writer) error {
	w.WriteUint16(r.Flags)
	if r.header.HasMask {
		w.WriteUint16(r.Mask)
	}

	return nil
}

func (r ExperimenterField) encodePayload(w buffer.Writer) error {
	w.WriteUint32(r.Experimenter)
	w.WriteBytes(r.Payload)

	return nil
}

func (r OpaqueField) encodePayload(w buffer.Writer) error {
	w.WriteBytes(r.Payload)
	return nil
}

// EncodeField writes the header and the payload of f.
func EncodeField(w buffer.Writer, f Field) error {
	EncodeHeader(w, f.Header())
	return f.encodePayload(w)
}

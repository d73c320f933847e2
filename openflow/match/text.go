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
	"net"
	"strconv"
	"strings"

	"github.com/superkkt/oxm/openflow"

	"github.com/google/gopacket/layers"
	"github.com/pkg/errors"
)

var ErrInvalidText = errors.New("invalid match field text")

// Reserved port numbers of the 32-bit port space.
const (
	OFPP_MAX        uint32 = 0xffffff00
	OFPP_IN_PORT    uint32 = 0xfffffff8
	OFPP_TABLE      uint32 = 0xfffffff9
	OFPP_NORMAL     uint32 = 0xfffffffa
	OFPP_FLOOD      uint32 = 0xfffffffb
	OFPP_ALL        uint32 = 0xfffffffc
	OFPP_CONTROLLER uint32 = 0xfffffffd
	OFPP_LOCAL      uint32 = 0xfffffffe
	OFPP_ANY        uint32 = 0xffffffff
)

var portNames = map[uint32]string{
	OFPP_IN_PORT:    "in_port",
	OFPP_TABLE:      "table",
	OFPP_NORMAL:     "normal",
	OFPP_FLOOD:      "flood",
	OFPP_ALL:        "all",
	OFPP_CONTROLLER: "controller",
	OFPP_LOCAL:      "local",
	OFPP_ANY:        "any",
}

func (r PortField) String() string {
	if name, ok := portNames[r.Port]; ok {
		return fmt.Sprintf("%v=%v", r.header.Name(), name)
	}

	return fmt.Sprintf("%v=%v", r.header.Name(), r.Port)
}

func (r Uint64Field) String() string {
	if r.header.HasMask {
		return fmt.Sprintf("%v=0x%x/0x%x", r.header.Name(), r.Value, r.Mask)
	}

	return fmt.Sprintf("%v=0x%x", r.header.Name(), r.Value)
}

func (r MACField) String() string {
	if r.header.HasMask {
		return fmt.Sprintf("%v=%v/%v", r.header.Name(), r.Value, r.Mask)
	}

	return fmt.Sprintf("%v=%v", r.header.Name(), r.Value)
}

func (r IPField) String() string {
	if r.header.HasMask {
		return fmt.Sprintf("%v=%v/%v", r.header.Name(), r.Value, net.IP(r.Mask))
	}

	return fmt.Sprintf("%v=%v", r.header.Name(), r.Value)
}

func (r IntField) String() string {
	if r.header.HasMask {
		return fmt.Sprintf("%v=%v/0x%x", r.header.Name(), r.Value, r.Mask)
	}

	return fmt.Sprintf("%v=%v", r.header.Name(), r.Value)
}

func (r EthTypeField) String() string {
	return fmt.Sprintf("%v=0x%04x", r.header.Name(), uint16(r.Value))
}

func (r VLANField) String() string {
	if r.State == VLANExact {
		return fmt.Sprintf("%v=%v", r.header.Name(), r.ID)
	}

	return fmt.Sprintf("%v=%v", r.header.Name(), r.State)
}

func (r IPProtoField) String() string {
	return fmt.Sprintf("%v=%v", r.header.Name(), uint8(r.Value))
}

func (r ICMPTypeField) String() string {
	return fmt.Sprintf("%v=%v", r.header.Name(), r.Value)
}

func (r IPv6ExtHdrField) String() string {
	if r.header.HasMask {
		return fmt.Sprintf("%v=0x%03x/0x%03x", r.header.Name(), r.Flags, r.Mask)
	}

	return fmt.Sprintf("%v=0x%03x", r.header.Name(), r.Flags)
}

func (r ExperimenterField) String() string {
	return fmt.Sprintf("%v=0x%08x:%x", r.header.Name(), r.Experimenter, r.Payload)
}

func (r OpaqueField) String() string {
	return fmt.Sprintf("%v=%x", r.header.Name(), r.Payload)
}

// ParseText parses the comma separated form produced by Match.String, e.g.,
// "in_port=3,eth_type=0x0800,ipv4_src=10.0.0.0/255.0.0.0". Only basic fields
// have a text form.
func (r *Registry) ParseText(version openflow.Version, text string) (*Match, error) {
	fields, err := r.ParseFields(version, text)
	if err != nil {
		return nil, err
	}
	b, err := r.NewBuilder(version)
	if err != nil {
		return nil, err
	}
	for _, f := range fields {
		if err := b.Append(f); err != nil {
			return nil, err
		}
	}

	return b.Freeze()
}

// ParseFields parses the comma separated name=value list without building a
// match, so that the fields can be validated as a whole.
func (r *Registry) ParseFields(version openflow.Version, text string) ([]Field, error) {
	fields := []Field{}
	for _, token := range strings.Split(text, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		kv := strings.SplitN(token, "=", 2)
		if len(kv) != 2 {
			return nil, errors.Wrapf(ErrInvalidText, "token=%q", token)
		}
		f, err := r.ParseField(version, kv[0], kv[1], "")
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	return fields, nil
}

// ParseFields parses a field list using DefaultRegistry.
func ParseFields(version openflow.Version, text string) ([]Field, error) {
	return DefaultRegistry.ParseFields(version, text)
}

// ParseText parses a match using DefaultRegistry.
func ParseText(version openflow.Version, text string) (*Match, error) {
	return DefaultRegistry.ParseText(version, text)
}

// ParseField builds a basic field from its name and text value. A mask may
// be given separately or appended to value after a slash. The header length
// follows the registry.
func (r *Registry) ParseField(version openflow.Version, name, value, mask string) (Field, error) {
	f, err := r.parseField(version, name, value, mask)
	if err != nil {
		return nil, err
	}

	return r.normalize(f)
}

// ParseField parses a field using DefaultRegistry.
func ParseField(version openflow.Version, name, value, mask string) (Field, error) {
	return DefaultRegistry.ParseField(version, name, value, mask)
}

func (r *Registry) parseField(version openflow.Version, name, value, mask string) (Field, error) {
	desc, ok := r.Lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidText, "unknown field name %q", name)
	}
	value = strings.TrimSpace(value)
	if mask == "" {
		if i := strings.LastIndex(value, "/"); i >= 0 {
			value, mask = value[:i], value[i+1:]
		}
	}
	mask = strings.TrimSpace(mask)
	hasMask := mask != ""
	t := desc.Type

	switch desc.Shape {
	case ShapePort:
		if hasMask {
			return nil, newDecodeError(ErrUnexpectedMask, desc.Name, mask)
		}
		port, err := parsePort(value)
		if err != nil {
			return nil, err
		}
		return NewPortField(version, t, port)

	case ShapeUint64:
		v, err := parseUint(desc, value, 64)
		if err != nil {
			return nil, err
		}
		if !hasMask {
			return NewUint64Field(version, t, v)
		}
		m, err := parseUint(desc, mask, 64)
		if err != nil {
			return nil, err
		}
		return NewMaskedUint64Field(version, t, v, m)

	case ShapeMAC:
		v, err := net.ParseMAC(value)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidText, "%v: %v", desc.Name, err)
		}
		if !hasMask {
			return NewMACField(version, t, v)
		}
		m, err := net.ParseMAC(mask)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidText, "%v mask: %v", desc.Name, err)
		}
		return NewMaskedMACField(version, t, v, m)

	case ShapeIPv4, ShapeIPv6:
		v := net.ParseIP(value)
		if v == nil {
			return nil, errors.Wrapf(ErrInvalidText, "%v: invalid IP address %q", desc.Name, value)
		}
		if !hasMask {
			return NewIPField(version, t, v)
		}
		m, err := parseIPMask(desc, mask)
		if err != nil {
			return nil, err
		}
		return NewMaskedIPField(version, t, v, m)

	case ShapeInt:
		v, err := parseUint(desc, value, 32)
		if err != nil {
			return nil, err
		}
		if !hasMask {
			return NewIntField(version, t, uint32(v))
		}
		m, err := parseUint(desc, mask, 32)
		if err != nil {
			return nil, err
		}
		return NewMaskedIntField(version, t, uint32(v), uint32(m))

	case ShapeEthType:
		v, err := parseEthType(value)
		if err != nil {
			return nil, err
		}
		return NewEthTypeField(version, v)

	case ShapeVLAN:
		if hasMask {
			v, err := parseUint(desc, value, 16)
			if err != nil {
				return nil, err
			}
			m, err := parseUint(desc, mask, 16)
			if err != nil {
				return nil, err
			}
			if v != OFPVID_PRESENT || m != OFPVID_PRESENT {
				return nil, newDecodeError(ErrVlanBadMaskCombination, desc.Name, [2]uint64{v, m})
			}
			return NewVLANField(version, VLANAny, 0)
		}
		switch strings.ToLower(value) {
		case "none":
			return NewVLANField(version, VLANNone, 0)
		case "any", "present":
			return NewVLANField(version, VLANAny, 0)
		}
		v, err := parseUint(desc, value, 16)
		if err != nil {
			return nil, err
		}
		return NewVLANField(version, VLANExact, uint16(v))

	case ShapeIPProto:
		v, err := parseIPProto(value)
		if err != nil {
			return nil, err
		}
		return NewIPProtoField(version, v)

	case ShapeICMPType:
		v, err := parseUint(desc, value, 8)
		if err != nil {
			return nil, err
		}
		return NewICMPTypeField(version, t, uint8(v))

	case ShapeIPv6ExtHdr:
		v, err := parseUint(desc, value, 16)
		if err != nil {
			return nil, err
		}
		m := uint64(ipv6ExtHdrAll)
		if hasMask {
			if m, err = parseUint(desc, mask, 16); err != nil {
				return nil, err
			}
		}
		return NewIPv6ExtHdrField(version, uint16(v), uint16(m))

	default:
		panic("unexpected field shape")
	}
}

func parseUint(desc Descriptor, s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidText, "%v: %v", desc.Name, err)
	}

	return v, nil
}

func parsePort(s string) (uint32, error) {
	for port, name := range portNames {
		if strings.EqualFold(name, s) {
			return port, nil
		}
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidText, "port %q", s)
	}

	return uint32(v), nil
}

// parseIPMask accepts a dotted (or colon separated) mask or a prefix length.
func parseIPMask(desc Descriptor, s string) (net.IPMask, error) {
	bits := desc.Length * 8
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > bits {
			return nil, newDecodeError(ErrOutOfRange, desc.Name+" prefix", n)
		}
		return net.CIDRMask(n, bits), nil
	}

	ip := net.ParseIP(s)
	if ip == nil {
		return nil, errors.Wrapf(ErrInvalidText, "%v: invalid mask %q", desc.Name, s)
	}
	if v4 := ip.To4(); v4 != nil && strings.Contains(s, ".") {
		return net.IPMask(v4), nil
	}

	return net.IPMask(ip.To16()), nil
}

// parseEthType accepts a number or a name known to gopacket, e.g., "IPv4".
func parseEthType(s string) (layers.EthernetType, error) {
	if v, err := strconv.ParseUint(s, 0, 16); err == nil {
		return layers.EthernetType(v), nil
	}
	for _, t := range []layers.EthernetType{
		layers.EthernetTypeIPv4, layers.EthernetTypeIPv6, layers.EthernetTypeARP,
		layers.EthernetTypeDot1Q, layers.EthernetTypeMPLSUnicast, layers.EthernetTypeMPLSMulticast,
		layers.EthernetTypeLinkLayerDiscovery, layers.EthernetTypeQinQ,
	} {
		if strings.EqualFold(t.String(), s) {
			return t, nil
		}
	}
	if strings.EqualFold(s, "pbb") {
		return EthernetTypePBB, nil
	}

	return 0, errors.Wrapf(ErrInvalidText, "eth_type %q", s)
}

// parseIPProto accepts a number or a name known to gopacket, e.g., "TCP".
func parseIPProto(s string) (layers.IPProtocol, error) {
	if v, err := strconv.ParseUint(s, 0, 8); err == nil {
		return layers.IPProtocol(v), nil
	}
	for _, p := range []layers.IPProtocol{
		layers.IPProtocolICMPv4, layers.IPProtocolTCP, layers.IPProtocolUDP,
		layers.IPProtocolSCTP, layers.IPProtocolICMPv6, layers.IPProtocolGRE,
	} {
		if strings.EqualFold(p.String(), s) {
			return p, nil
		}
	}

	return 0, errors.Wrapf(ErrInvalidText, "ip_proto %q", s)
}

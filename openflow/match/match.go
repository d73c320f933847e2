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
	"reflect"
	"strings"

	"github.com/superkkt/oxm/openflow"
	"github.com/superkkt/oxm/openflow/buffer"
	"github.com/superkkt/oxm/openflow/legacy"

	"github.com/pkg/errors"
)

const (
	OFPMT_STANDARD = 0
	OFPMT_OXM      = 1
)

// Kind is the match encoding.
type Kind uint16

const (
	KindStandard Kind = OFPMT_STANDARD
	KindOXM      Kind = OFPMT_OXM
)

func (r Kind) String() string {
	switch r {
	case KindStandard:
		return "standard"
	case KindOXM:
		return "oxm"
	default:
		return fmt.Sprintf("kind(%d)", uint16(r))
	}
}

// KindOf returns the match encoding used by version.
func KindOf(version openflow.Version) Kind {
	if version.IsOXM() {
		return KindOXM
	}

	return KindStandard
}

// Match is a frozen, validated list of match fields. It is safe to share
// between goroutines.
type Match struct {
	registry *Registry
	version  openflow.Version
	kind     Kind
	length   uint16
	fields   []Field
}

func (r *Match) Version() openflow.Version {
	return r.version
}

func (r *Match) Kind() Kind {
	return r.kind
}

// Length returns the ofp_match length field: the 4-byte match header plus
// every TLV, excluding the trailing padding. Legacy matches report their
// fixed size.
func (r *Match) Length() uint16 {
	return r.length
}

// EncodedLength returns the number of bytes Encode writes.
func (r *Match) EncodedLength() int {
	if r.kind == KindStandard {
		return int(r.length)
	}

	return paddedLength(int(r.length))
}

func (r *Match) Len() int {
	return len(r.fields)
}

// Fields returns copies of the fields in their insertion order.
func (r *Match) Fields() []Field {
	result := make([]Field, len(r.fields))
	for i, f := range r.fields {
		result[i] = cloneField(f)
	}

	return result
}

// Get returns the basic field of type t.
func (r *Match) Get(t FieldType) (Field, bool) {
	for _, f := range r.fields {
		h := f.Header()
		if h.Class == ClassBasic && h.Type == t {
			return cloneField(f), true
		}
	}

	return nil, false
}

func (r *Match) Equal(m *Match) bool {
	if r == nil || m == nil {
		return r == m
	}
	if r.version != m.version || r.kind != m.kind || r.length != m.length {
		return false
	}

	return reflect.DeepEqual(r.fields, m.fields)
}

func (r *Match) String() string {
	s := make([]string, len(r.fields))
	for i, f := range r.fields {
		s[i] = f.String()
	}

	return strings.Join(s, ",")
}

// Builder accumulates fields of one protocol version. Freeze validates them
// and hands them over to a Match, after which the builder cannot be used.
type Builder struct {
	registry *Registry
	version  openflow.Version
	kind     Kind
	length   uint16
	fields   []Field
}

// NewBuilder returns a builder using DefaultRegistry.
func NewBuilder(version openflow.Version) (*Builder, error) {
	return DefaultRegistry.NewBuilder(version)
}

func (r *Registry) NewBuilder(version openflow.Version) (*Builder, error) {
	if !version.Valid() {
		return nil, errors.Wrapf(openflow.ErrUnsupportedVersion, "version=%v", version)
	}

	b := &Builder{
		registry: r,
		version:  version,
		kind:     KindOf(version),
	}
	if b.kind == KindOXM {
		b.length = HeaderLength
	} else {
		size, err := legacy.Size(version)
		if err != nil {
			return nil, err
		}
		b.length = uint16(size)
	}

	return b, nil
}

func (r *Builder) Version() openflow.Version {
	return r.version
}

// Len returns the number of fields appended so far.
func (r *Builder) Len() int {
	return len(r.fields)
}

// Length returns the ofp_match length of the fields appended so far.
func (r *Builder) Length() uint16 {
	return r.length
}

// Append adds f after checking that the builder's version supports it and
// that no field of the same kind is already present. Prerequisites are
// checked by Freeze.
func (r *Builder) Append(f Field) error {
	if r.registry == nil {
		return ErrFrozen
	}
	if f == nil {
		panic("nil match field")
	}

	if f.Version() != r.version {
		return &VersionMismatchError{What: f.Header().Name() + " built for another version", Required: f.Version(), Actual: r.version}
	}
	f, err := r.normalize(f)
	if err != nil {
		return err
	}
	if err := r.checkVersion(f.Header()); err != nil {
		return err
	}

	h := f.Header()
	for _, v := range r.fields {
		if sameKind(v.Header(), h) {
			return &ValidationError{
				Kind:       ErrDuplicate,
				Field:      h.Name(),
				Violations: []Violation{{Kind: ErrDuplicate, Header: h}},
			}
		}
	}

	if r.kind == KindOXM {
		length := int(r.length) + HeaderLength + int(h.Length)
		if length > 0xffff {
			return &HeaderParseError{Kind: ErrLengthMismatch, Field: h.Name(), Expected: 0xffff, Actual: length}
		}
		r.length = uint16(length)
	}
	r.fields = append(r.fields, cloneField(f))

	return nil
}

func sameKind(a, b Header) bool {
	if a.Class == ClassBasic && b.Class == ClassBasic {
		return a.Type == b.Type
	}

	return a.OxmType() == b.OxmType()
}

// normalize sets the payload length of a basic field to what this builder's
// registry expects.
func (r *Builder) normalize(f Field) (Field, error) {
	return r.registry.normalize(f)
}

// normalize rewrites the header length of a basic field to the payload length
// of this registry.
func (r *Registry) normalize(f Field) (Field, error) {
	h := f.Header()
	if h.Class != ClassBasic {
		return f, nil
	}

	expected, err := r.ExpectedPayloadLength(h.Type, h.HasMask)
	if err != nil {
		return nil, err
	}
	if int(h.Length) == expected {
		return f, nil
	}
	h.Length = uint8(expected)

	return f.withHeader(h), nil
}

func (r *Builder) checkVersion(h Header) error {
	if r.kind == KindStandard {
		if h.Class != ClassBasic {
			return &VersionMismatchError{What: h.Name(), Required: openflow.OF12_VERSION, Actual: r.version}
		}
		if !legacyFields(r.version)[h.Type] {
			return &VersionMismatchError{What: h.Name(), Required: requiredVersion(h.Type), Actual: r.version}
		}
		return nil
	}

	if h.Class == ClassBasic {
		return r.registry.checkVersion(r.registry.mustDescribe(h.Type), r.version)
	}
	if info, ok := classes[h.RawClass]; ok && r.version < info.minVersion {
		return &VersionMismatchError{What: fmt.Sprintf("OXM class %v", info.name), Required: info.minVersion, Actual: r.version}
	}

	return nil
}

// Freeze validates the fields and returns them as a Match. On a validation
// failure the most recently appended field is discarded so the caller can
// append a replacement, and the builder stays usable.
func (r *Builder) Freeze() (*Match, error) {
	if r.registry == nil {
		return nil, ErrFrozen
	}

	if err := Validate(r.fields); err != nil {
		if n := len(r.fields); n > 0 {
			last := r.fields[n-1]
			r.fields = r.fields[:n-1]
			if r.kind == KindOXM {
				r.length -= uint16(HeaderLength + int(last.Header().Length))
			}
		}
		return nil, err
	}

	m := &Match{
		registry: r.registry,
		version:  r.version,
		kind:     r.kind,
		length:   r.length,
		fields:   r.fields,
	}
	*r = Builder{}

	return m, nil
}

func paddedLength(length int) int {
	return (length + 7) / 8 * 8
}

// ParseMatch reads a match of version using DefaultRegistry.
func ParseMatch(rd buffer.Reader, version openflow.Version) (*Match, error) {
	return DefaultRegistry.ParseMatch(rd, version)
}

// ParseMatch reads a match of version from rd. An OXM match consumes its
// trailing padding too.
func (r *Registry) ParseMatch(rd buffer.Reader, version openflow.Version) (*Match, error) {
	if !version.Valid() {
		return nil, errors.Wrapf(openflow.ErrUnsupportedVersion, "version=%v", version)
	}
	if !version.IsOXM() {
		layout, err := legacy.Decode(rd, version)
		if err != nil {
			return nil, err
		}
		return r.Fabricate(layout)
	}

	t, err := rd.ReadUint16()
	if err != nil {
		return nil, errors.Wrap(err, "reading match type")
	}
	if t != OFPMT_OXM {
		return nil, errors.Wrapf(ErrUnsupportedMatchType, "type=%v", t)
	}
	length, err := rd.ReadUint16()
	if err != nil {
		return nil, errors.Wrap(err, "reading match length")
	}
	if length < HeaderLength {
		return nil, &HeaderParseError{Kind: ErrLengthMismatch, Field: "match", Expected: HeaderLength, Actual: int(length)}
	}

	b, err := r.NewBuilder(version)
	if err != nil {
		return nil, err
	}
	remaining := int(length) - HeaderLength
	for remaining > 0 {
		if remaining < HeaderLength {
			return nil, &HeaderParseError{Kind: ErrLengthMismatch, Field: "match", Expected: HeaderLength, Actual: remaining}
		}
		start := rd.ReadPos()
		f, err := r.DecodeField(rd, version)
		if err != nil {
			return nil, err
		}
		consumed := rd.ReadPos() - start
		if consumed > remaining {
			return nil, &HeaderParseError{Kind: ErrLengthMismatch, Field: f.Header().Name(), Expected: remaining, Actual: consumed}
		}
		remaining -= consumed
		if err := b.Append(f); err != nil {
			return nil, err
		}
	}

	// ofp_match.length does not include padding.
	if err := rd.Skip(paddedLength(int(length)) - int(length)); err != nil {
		return nil, errors.Wrap(err, "skipping match padding")
	}

	return b.Freeze()
}

// Encode writes m using the encoding of its version.
func (r *Match) Encode(w buffer.Writer) error {
	if r.kind == KindStandard {
		layout, err := ConvertToLegacy(r)
		if err != nil {
			return err
		}
		return layout.Encode(w)
	}

	w.WriteUint16(OFPMT_OXM)
	w.WriteUint16(r.length)
	for _, f := range r.fields {
		if err := EncodeField(w, f); err != nil {
			return err
		}
	}
	w.WriteZero(paddedLength(int(r.length)) - int(r.length))

	return nil
}

func (r *Match) MarshalBinary() ([]byte, error) {
	b := buffer.New()
	if err := r.Encode(b); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// HeaderOnlyField is an OXM header without its payload, as found in table
// feature properties. Experimenter is set for experimenter class headers.
type HeaderOnlyField struct {
	Header       Header
	Experimenter uint32
}

// ParseFieldHeaders reads payload-less OXM headers until rd reaches the read
// position end, using DefaultRegistry.
func ParseFieldHeaders(rd buffer.Reader, end int, version openflow.Version) ([]HeaderOnlyField, error) {
	return DefaultRegistry.ParseFieldHeaders(rd, end, version)
}

func (r *Registry) ParseFieldHeaders(rd buffer.Reader, end int, version openflow.Version) ([]HeaderOnlyField, error) {
	var result []HeaderOnlyField

	for rd.ReadPos() < end {
		h, err := r.DecodeHeader(rd, version, true)
		if err != nil {
			return nil, err
		}
		f := HeaderOnlyField{Header: h}
		if h.Class == ClassExperimenter {
			if f.Experimenter, err = rd.ReadUint32(); err != nil {
				return nil, errors.Wrap(err, "reading experimenter id")
			}
		}
		result = append(result, f)
	}
	if rd.ReadPos() != end {
		return nil, &HeaderParseError{Kind: ErrLengthMismatch, Field: "oxm_ids", Expected: end, Actual: rd.ReadPos()}
	}

	return result, nil
}

// EncodeFieldHeaders writes the headers of fields without their payloads.
func EncodeFieldHeaders(w buffer.Writer, fields []HeaderOnlyField) {
	for _, f := range fields {
		EncodeHeader(w, f.Header)
		if f.Header.Class == ClassExperimenter {
			w.WriteUint32(f.Experimenter)
		}
	}
}

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
	"strings"

	"github.com/superkkt/oxm/openflow"

	"github.com/pkg/errors"
)

// Decode errors. They are also returned when a field is constructed with a
// value the wire format cannot carry.
var (
	ErrUnknownFieldCode        = errors.New("unknown OXM field code")
	ErrOutOfRange              = errors.New("value out of range")
	ErrUnexpectedMask          = errors.New("unexpected mask")
	ErrVlanMissingPresentBit   = errors.New("VLAN id without OFPVID_PRESENT bit")
	ErrVlanBadMaskCombination  = errors.New("unsupported VLAN value/mask combination")
	ErrFamilyMismatch          = errors.New("address and mask families differ")
	ErrFamilyNotAppropriate    = errors.New("address family does not fit the field")
	ErrUnsupportedMatchType    = errors.New("unsupported match type")
	ErrWrongFieldShape         = errors.New("field type does not accept this kind of value")
	ErrInvalidExperimenterBody = errors.New("experimenter field is shorter than its experimenter id")
)

// Header parse errors.
var (
	ErrBadLength      = errors.New("unexpected OXM payload length")
	ErrLengthMismatch = errors.New("match length does not agree with its fields")
)

// Validation errors.
var (
	ErrDuplicate           = errors.New("duplicate match field")
	ErrPrerequisitesNotMet = errors.New("match field prerequisites not met")
	ErrInvalidNetmask      = errors.New("netmask is not representable")
)

// ErrFrozen is returned by a Builder after Freeze has handed its fields over.
var ErrFrozen = errors.New("match builder already frozen")

// DecodeError reports a field whose payload cannot be decoded or constructed.
type DecodeError struct {
	// Kind is one of the decode sentinels (ErrOutOfRange, ErrUnexpectedMask, ...).
	Kind  error
	Field string
	Value interface{}
}

func (r *DecodeError) Error() string {
	if r.Value == nil {
		return fmt.Sprintf("%v: %v", r.Field, r.Kind)
	}

	return fmt.Sprintf("%v: %v (value=%v)", r.Field, r.Kind, r.Value)
}

func (r *DecodeError) Unwrap() error {
	return r.Kind
}

func (r *DecodeError) Cause() error {
	return r.Kind
}

func newDecodeError(kind error, field string, value interface{}) error {
	return &DecodeError{Kind: kind, Field: field, Value: value}
}

// VersionMismatchError reports something that needs a newer protocol version
// than the one in use.
type VersionMismatchError struct {
	What     string
	Required openflow.Version
	Actual   openflow.Version
}

func (r *VersionMismatchError) Error() string {
	return fmt.Sprintf("%v requires OpenFlow %v or later, but the match is OpenFlow %v", r.What, r.Required, r.Actual)
}

// HeaderParseError reports a malformed OXM header or match header.
type HeaderParseError struct {
	// Kind is either ErrBadLength or ErrLengthMismatch.
	Kind     error
	Field    string
	Expected int
	Actual   int
}

func (r *HeaderParseError) Error() string {
	return fmt.Sprintf("%v: %v (expected=%v, actual=%v)", r.Field, r.Kind, r.Expected, r.Actual)
}

func (r *HeaderParseError) Unwrap() error {
	return r.Kind
}

func (r *HeaderParseError) Cause() error {
	return r.Kind
}

// Violation is a single failed check of the match validator.
type Violation struct {
	// Kind is either ErrDuplicate or ErrPrerequisitesNotMet.
	Kind   error
	Header Header
	Reason string
}

func (r Violation) String() string {
	if r.Reason == "" {
		return fmt.Sprintf("%v: %v", r.Header.Name(), r.Kind)
	}

	return fmt.Sprintf("%v: %v (%v)", r.Header.Name(), r.Kind, r.Reason)
}

// ValidationError batches every violation found in a match.
type ValidationError struct {
	// Kind is ErrDuplicate for a rejected append, ErrPrerequisitesNotMet for a
	// batch of violations and ErrInvalidNetmask for a legacy conversion.
	Kind       error
	Field      string
	Violations []Violation
}

func (r *ValidationError) Error() string {
	if len(r.Violations) == 0 {
		return fmt.Sprintf("%v: %v", r.Field, r.Kind)
	}

	s := make([]string, len(r.Violations))
	for i, v := range r.Violations {
		s[i] = v.String()
	}

	return fmt.Sprintf("invalid match: %v", strings.Join(s, "; "))
}

func (r *ValidationError) Unwrap() error {
	return r.Kind
}

func (r *ValidationError) Cause() error {
	return r.Kind
}

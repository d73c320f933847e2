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

// Package codec serves the match codec over the REST API.
package codec

import (
	"encoding/json"

	"github.com/superkkt/oxm/api"
	"github.com/superkkt/oxm/openflow"
	"github.com/superkkt/oxm/openflow/buffer"
	"github.com/superkkt/oxm/openflow/legacy"
	"github.com/superkkt/oxm/openflow/match"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/davecgh/go-spew/spew"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

var (
	logger = logging.MustGetLogger("codec")
)

type API struct {
	api.Server
	Registry *match.Registry
}

func (r *API) Routes() []*rest.Route {
	return []*rest.Route{
		rest.Get("/api/v1/match/fields", r.fields),
		rest.Post("/api/v1/match/decode", r.decode),
		rest.Post("/api/v1/match/encode", r.encode),
		rest.Post("/api/v1/match/validate", r.validate),
	}
}

func (r *API) Serve() error {
	return r.Server.Serve(r.Routes()...)
}

func (r *API) registry() *match.Registry {
	if r.Registry == nil {
		return match.DefaultRegistry
	}

	return r.Registry
}

func (r *API) fields(w rest.ResponseWriter, req *rest.Request) {
	logger.Debugf("fields request from %v", req.RemoteAddr)

	w.WriteJson(&api.Response{
		Status: api.StatusOkay,
		Data:   r.registry().Descriptors(),
	})
}

func (r *API) decode(w rest.ResponseWriter, req *rest.Request) {
	p := new(decodeParam)
	if err := req.DecodeJsonPayload(p); err != nil {
		w.WriteJson(api.Response{Status: api.StatusInvalidParameter, Message: err.Error()})
		return
	}
	logger.Debugf("decode request from %v: %v", req.RemoteAddr, spew.Sdump(p))

	b := buffer.Wrap(p.Data)
	m, err := r.registry().ParseMatch(b, p.Version)
	if err != nil {
		logger.Infof("failed to decode a match from %v: %v", req.RemoteAddr, err)
		w.WriteJson(api.Response{Status: statusOf(err), Message: err.Error()})
		return
	}
	if b.Len() > 0 {
		logger.Debugf("ignoring %v trailing bytes after the match", b.Len())
	}

	w.WriteJson(api.Response{Status: api.StatusOkay, Data: newMatchResult(m)})
}

type decodeParam struct {
	Version openflow.Version
	Data    []byte
}

func (r *decodeParam) UnmarshalJSON(data []byte) error {
	v := struct {
		Version openflow.Version `json:"version"`
		Data    string           `json:"data"`
	}{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	b, err := buffer.ParseHex(v.Data)
	if err != nil {
		return err
	}
	if len(b) == 0 {
		return errors.New("empty match data")
	}
	r.Version = v.Version
	r.Data = b

	return nil
}

func (r *API) encode(w rest.ResponseWriter, req *rest.Request) {
	p := new(textParam)
	if err := req.DecodeJsonPayload(p); err != nil {
		w.WriteJson(api.Response{Status: api.StatusInvalidParameter, Message: err.Error()})
		return
	}
	logger.Debugf("encode request from %v: %v", req.RemoteAddr, spew.Sdump(p))

	m, err := r.registry().ParseText(p.Version, p.Text)
	if err != nil {
		w.WriteJson(api.Response{Status: statusOf(err), Message: err.Error()})
		return
	}
	data, err := m.MarshalBinary()
	if err != nil {
		w.WriteJson(api.Response{Status: statusOf(err), Message: err.Error()})
		return
	}

	result := newMatchResult(m)
	result.Data = buffer.FormatHex(data)
	w.WriteJson(api.Response{Status: api.StatusOkay, Data: result})
}

type textParam struct {
	Version openflow.Version `json:"version"`
	Text    string           `json:"text"`
}

func (r *API) validate(w rest.ResponseWriter, req *rest.Request) {
	p := new(textParam)
	if err := req.DecodeJsonPayload(p); err != nil {
		w.WriteJson(api.Response{Status: api.StatusInvalidParameter, Message: err.Error()})
		return
	}
	logger.Debugf("validate request from %v: %v", req.RemoteAddr, spew.Sdump(p))

	fields, err := r.registry().ParseFields(p.Version, p.Text)
	if err != nil {
		w.WriteJson(api.Response{Status: statusOf(err), Message: err.Error()})
		return
	}

	result := validateResult{Valid: true, Violations: []violation{}}
	if err := match.Validate(fields); err != nil {
		verr, ok := err.(*match.ValidationError)
		if !ok {
			w.WriteJson(api.Response{Status: api.StatusInternalServerError, Message: err.Error()})
			return
		}
		result.Valid = false
		for _, v := range verr.Violations {
			result.Violations = append(result.Violations, violation{
				Field:  v.Header.Name(),
				Kind:   v.Kind.Error(),
				Reason: v.Reason,
			})
		}
	}

	w.WriteJson(api.Response{Status: api.StatusOkay, Data: result})
}

type validateResult struct {
	Valid      bool        `json:"valid"`
	Violations []violation `json:"violations"`
}

type violation struct {
	Field  string `json:"field"`
	Kind   string `json:"kind"`
	Reason string `json:"reason,omitempty"`
}

type matchResult struct {
	Version openflow.Version `json:"version"`
	Kind    string           `json:"kind"`
	Length  uint16           `json:"length"`
	Fields  []fieldResult    `json:"fields"`
	Text    string           `json:"text"`
	Data    string           `json:"data,omitempty"`
}

type fieldResult struct {
	Name    string `json:"name"`
	Class   string `json:"class"`
	Field   uint8  `json:"field"`
	HasMask bool   `json:"has_mask"`
	Length  uint8  `json:"length"`
	Text    string `json:"text"`
}

func newMatchResult(m *match.Match) *matchResult {
	result := &matchResult{
		Version: m.Version(),
		Kind:    m.Kind().String(),
		Length:  m.Length(),
		Fields:  []fieldResult{},
		Text:    m.String(),
	}
	for _, f := range m.Fields() {
		h := f.Header()
		result.Fields = append(result.Fields, fieldResult{
			Name:    h.Name(),
			Class:   h.Class.String(),
			Field:   h.RawField,
			HasMask: h.HasMask,
			Length:  h.Length,
			Text:    f.String(),
		})
	}

	return result
}

// invalidMatchErrors are malformed or unencodable matches that carry no error
// type of their own.
var invalidMatchErrors = []error{
	match.ErrUnsupportedMatchType,
	match.ErrWrongFieldShape,
	legacy.ErrUnsupportedMatchType,
	legacy.ErrInvalidMatchLength,
	legacy.ErrPortOutOfRange,
	legacy.ErrInvalidMACAddress,
	legacy.ErrInvalidIPAddress,
	legacy.ErrInvalidNetmask,
	legacy.ErrMaskNotSupported,
}

func isOneOf(err error, targets ...error) bool {
	for _, v := range targets {
		if errors.Is(err, v) {
			return true
		}
	}

	return false
}

func statusOf(err error) api.Status {
	var version *match.VersionMismatchError
	if errors.As(err, &version) || errors.Cause(err) == openflow.ErrUnsupportedVersion {
		return api.StatusVersionMismatch
	}

	var (
		decode     *match.DecodeError
		header     *match.HeaderParseError
		validation *match.ValidationError
	)
	switch {
	case errors.As(err, &decode), errors.As(err, &header), errors.As(err, &validation):
		return api.StatusInvalidMatch
	// Truncated match.
	case errors.Is(err, buffer.ErrShortBuffer):
		return api.StatusInvalidMatch
	case isOneOf(err, invalidMatchErrors...):
		return api.StatusInvalidMatch
	case errors.Is(err, match.ErrInvalidText):
		return api.StatusInvalidParameter
	default:
		return api.StatusInternalServerError
	}
}

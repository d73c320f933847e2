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

// Package buffer implements a cursor-addressed byte buffer with big-endian
// fixed-width accessors. Reads advance a read cursor, writes append at a write
// cursor; the two are independent.
package buffer

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

var (
	ErrShortBuffer    = errors.New("insufficient bytes in the buffer")
	ErrInvalidSkip    = errors.New("invalid skip length")
	ErrInvalidWidth   = errors.New("invalid integer width")
	ErrValueTooBig    = errors.New("value exceeds the integer width")
	ErrNegativeLength = errors.New("negative length")
)

// Reader is the read half of Buffer. Codecs accept it so that any cursor
// addressed source can feed them.
type Reader interface {
	ReadUint8() (uint8, error)
	ReadUint16() (uint16, error)
	ReadUint24() (uint32, error)
	ReadUint32() (uint32, error)
	ReadUint64() (uint64, error)
	ReadUint(width int) (uint64, error)
	ReadBytes(n int) ([]byte, error)
	Peek(n int) ([]byte, error)
	Skip(n int) error
	ReadPos() int
	Len() int
}

// Writer is the write half of Buffer.
type Writer interface {
	WriteUint8(v uint8)
	WriteUint16(v uint16)
	WriteUint24(v uint32)
	WriteUint32(v uint32)
	WriteUint64(v uint64)
	WriteUint(width int, v uint64) error
	WriteBytes(p []byte)
	WriteZero(n int)
	WritePos() int
}

// Buffer is not safe for concurrent use. A single encode or decode call owns it.
type Buffer struct {
	data []byte
	rpos int
}

// New returns an empty buffer for writing.
func New() *Buffer {
	return &Buffer{data: make([]byte, 0, 64)}
}

// Wrap returns a buffer whose readable region is data. data is not copied.
func Wrap(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Bytes returns every byte written so far, including the ones already read.
func (r *Buffer) Bytes() []byte {
	return r.data
}

// Len returns the number of unread bytes.
func (r *Buffer) Len() int {
	return len(r.data) - r.rpos
}

func (r *Buffer) ReadPos() int {
	return r.rpos
}

func (r *Buffer) WritePos() int {
	return len(r.data)
}

func (r *Buffer) need(n int) error {
	if n < 0 {
		return ErrNegativeLength
	}
	if r.Len() < n {
		return errors.Wrapf(ErrShortBuffer, "need %v bytes at offset %v, %v remaining", n, r.rpos, r.Len())
	}

	return nil
}

// Peek returns the next n bytes without advancing the read cursor.
func (r *Buffer) Peek(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}

	return r.data[r.rpos : r.rpos+n], nil
}

// Skip advances the read cursor by n bytes.
func (r *Buffer) Skip(n int) error {
	if n < 0 {
		return ErrInvalidSkip
	}
	if err := r.need(n); err != nil {
		return err
	}
	r.rpos += n

	return nil
}

// ReadBytes reads exactly n bytes. The returned slice is a copy.
func (r *Buffer) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := make([]byte, n)
	copy(v, r.data[r.rpos:r.rpos+n])
	r.rpos += n

	return v, nil
}

func (r *Buffer) ReadUint8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.rpos]
	r.rpos++

	return v, nil
}

func (r *Buffer) ReadUint16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.data[r.rpos : r.rpos+2])
	r.rpos += 2

	return v, nil
}

// ReadUint24 reads a 3-byte big-endian unsigned integer.
func (r *Buffer) ReadUint24() (uint32, error) {
	if err := r.need(3); err != nil {
		return 0, err
	}
	p := r.data[r.rpos : r.rpos+3]
	v := uint32(p[0])<<16 | uint32(p[1])<<8 | uint32(p[2])
	r.rpos += 3

	return v, nil
}

func (r *Buffer) ReadUint32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.data[r.rpos : r.rpos+4])
	r.rpos += 4

	return v, nil
}

func (r *Buffer) ReadUint64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.data[r.rpos : r.rpos+8])
	r.rpos += 8

	return v, nil
}

// ReadUint reads an unsigned integer of width bytes (1, 2, 3, 4 or 8).
func (r *Buffer) ReadUint(width int) (uint64, error) {
	switch width {
	case 1:
		v, err := r.ReadUint8()
		return uint64(v), err
	case 2:
		v, err := r.ReadUint16()
		return uint64(v), err
	case 3:
		v, err := r.ReadUint24()
		return uint64(v), err
	case 4:
		v, err := r.ReadUint32()
		return uint64(v), err
	case 8:
		return r.ReadUint64()
	default:
		return 0, errors.Wrapf(ErrInvalidWidth, "width=%v", width)
	}
}

func (r *Buffer) WriteBytes(p []byte) {
	r.data = append(r.data, p...)
}

// WriteZero appends n zero bytes.
func (r *Buffer) WriteZero(n int) {
	for i := 0; i < n; i++ {
		r.data = append(r.data, 0)
	}
}

func (r *Buffer) WriteUint8(v uint8) {
	r.data = append(r.data, v)
}

func (r *Buffer) WriteUint16(v uint16) {
	var p [2]byte
	binary.BigEndian.PutUint16(p[:], v)
	r.data = append(r.data, p[:]...)
}

// WriteUint24 writes the low 24 bits of v.
func (r *Buffer) WriteUint24(v uint32) {
	v &= 0xFFFFFF
	r.data = append(r.data, byte(v>>16), byte(v>>8), byte(v))
}

func (r *Buffer) WriteUint32(v uint32) {
	var p [4]byte
	binary.BigEndian.PutUint32(p[:], v)
	r.data = append(r.data, p[:]...)
}

func (r *Buffer) WriteUint64(v uint64) {
	var p [8]byte
	binary.BigEndian.PutUint64(p[:], v)
	r.data = append(r.data, p[:]...)
}

// WriteUint writes v as an unsigned integer of width bytes (1, 2, 3, 4 or 8).
// It fails if v does not fit in width bytes.
func (r *Buffer) WriteUint(width int, v uint64) error {
	if width < 1 || width > 8 || (width > 4 && width < 8) {
		return errors.Wrapf(ErrInvalidWidth, "width=%v", width)
	}
	if width != 8 && v>>(uint(width)*8) != 0 {
		return errors.Wrapf(ErrValueTooBig, "value=%v, width=%v", v, width)
	}

	switch width {
	case 1:
		r.WriteUint8(uint8(v))
	case 2:
		r.WriteUint16(uint16(v))
	case 3:
		r.WriteUint24(uint32(v))
	case 4:
		r.WriteUint32(uint32(v))
	case 8:
		r.WriteUint64(v)
	default:
		return errors.Wrapf(ErrInvalidWidth, "width=%v", width)
	}

	return nil
}

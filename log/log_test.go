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

package log

import (
	"strings"
	"testing"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

func TestParseLevel(t *testing.T) {
	samples := []struct {
		Input    string
		Expected logging.Level
		Error    bool
	}{
		{"debug", logging.DEBUG, false},
		{" INFO ", logging.INFO, false},
		{"Warning", logging.WARNING, false},
		{"critical", logging.CRITICAL, false},
		{"verbose", 0, true},
		{"", 0, true},
	}

	for _, v := range samples {
		level, err := ParseLevel(v.Input)
		if v.Error {
			if err == nil {
				t.Fatalf("expected an error for %q", v.Input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", v.Input, err)
		}
		if level != v.Expected {
			t.Fatalf("unexpected level for %q: expected=%v, actual=%v", v.Input, v.Expected, level)
		}
	}
}

func TestNewBackend(t *testing.T) {
	if _, err := NewBackend("stderr", "test"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := NewBackend("kafka", "test"); errors.Cause(err) != ErrUnknownDriver {
		t.Fatalf("expected an unknown driver error, got %v", err)
	}
}

func TestSetup(t *testing.T) {
	mem := logging.NewMemoryBackend(8)
	leveled := Setup(mem, logging.INFO)
	logger := logging.MustGetLogger("test")

	logger.Debugf("hidden")
	logger.Infof("hello %v", 7)
	head := mem.Head()
	if head == nil || head.Next() != nil {
		t.Fatalf("expected exactly one record")
	}
	if line := head.Record.Formatted(0); strings.Contains(line, "INFO") == false || strings.Contains(line, "hello 7") == false {
		t.Fatalf("unexpected log line: %v", line)
	}

	leveled.SetLevel(logging.DEBUG, "")
	logger.Debugf("visible")
	if head.Next() == nil {
		t.Fatalf("debug record is not logged after raising the level")
	}
}

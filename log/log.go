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

// Package log sets up the go-logging backends shared by the binaries.
package log

import (
	"fmt"
	slog "log/syslog"
	"os"
	"runtime"
	"strings"

	"github.com/op/go-logging"
	"github.com/pkg/errors"
)

const (
	DefaultFormat = `%{level}: %{shortpkg}.%{shortfunc}: %{message}`

	DriverSyslog = "syslog"
	DriverStderr = "stderr"
)

var ErrUnknownDriver = errors.New("unknown log driver")

type syslog struct {
	writer *slog.Writer
}

// NewSyslog returns a backend writing to the local syslog daemon. Every line is
// tagged with the id of the goroutine that logged it.
func NewSyslog(prefix string) (logging.Backend, error) {
	w, err := slog.New(slog.LOG_CRIT|slog.LOG_DAEMON, prefix)
	if err != nil {
		return nil, err
	}

	return &syslog{writer: w}, nil
}

func (r *syslog) Log(level logging.Level, calldepth int, record *logging.Record) error {
	line := fmt.Sprintf("%v (TID=%v)", record.Formatted(calldepth+1), getGoRoutineID())
	switch level {
	case logging.CRITICAL:
		return r.writer.Crit(line)
	case logging.ERROR:
		return r.writer.Err(line)
	case logging.WARNING:
		return r.writer.Warning(line)
	case logging.NOTICE:
		return r.writer.Notice(line)
	case logging.INFO:
		return r.writer.Info(line)
	case logging.DEBUG:
		return r.writer.Debug(line)
	default:
		panic("unexpected log level")
	}
}

func getGoRoutineID() string {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	return strings.Fields(strings.TrimPrefix(string(buf[:n]), "goroutine "))[0]
}

// NewStderr returns a backend writing to the standard error.
func NewStderr() logging.Backend {
	return logging.NewLogBackend(os.Stderr, "", 0)
}

// NewBackend creates the backend named by driver.
func NewBackend(driver, prefix string) (logging.Backend, error) {
	switch strings.ToLower(driver) {
	case DriverSyslog:
		return NewSyslog(prefix)
	case DriverStderr, "":
		return NewStderr(), nil
	default:
		return nil, errors.Wrapf(ErrUnknownDriver, "driver=%v", driver)
	}
}

// Setup formats backend with DefaultFormat, installs it for every module and
// returns the leveled backend so that the caller can change the level later.
func Setup(backend logging.Backend, level logging.Level) logging.LeveledBackend {
	backend = logging.NewBackendFormatter(backend, logging.MustStringFormatter(DefaultFormat))
	leveled := logging.AddModuleLevel(backend)
	// Set log level for all modules
	leveled.SetLevel(level, "")
	logging.SetBackend(leveled)

	return leveled
}

// ParseLevel parses a level name such as "debug" or "INFO".
func ParseLevel(level string) (logging.Level, error) {
	v, err := logging.LogLevel(strings.ToUpper(strings.TrimSpace(level)))
	if err != nil {
		return 0, errors.Wrapf(err, "level=%v", level)
	}

	return v, nil
}

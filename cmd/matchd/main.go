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

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/superkkt/oxm"
	"github.com/superkkt/oxm/api/codec"
	"github.com/superkkt/oxm/log"
	"github.com/superkkt/oxm/openflow/match"

	"github.com/fsnotify/fsnotify"
	"github.com/op/go-logging"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	programName     = "matchd"
	programVersion  = oxm.Version
	defaultLogLevel = logging.INFO
)

var (
	logger            = logging.MustGetLogger("main")
	loggerLeveled     logging.LeveledBackend
	showVersion       = flag.Bool("version", false, "Show program version and exit")
	defaultConfigFile = flag.String("config", fmt.Sprintf("/usr/local/etc/%v.yaml", programName), "absolute path of the configuration file")
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	flag.Parse()
	if *showVersion {
		fmt.Printf("Version: %v\n", programVersion)
		os.Exit(0)
	}

	initConfig()
	if err := initLog(getLogLevel(viper.GetString("default.log_level"))); err != nil {
		logger.Fatalf("failed to init log: %v", err)
	}

	registry, err := newRegistry()
	if err != nil {
		logger.Fatalf("failed to create the match field registry: %v", err)
	}
	logger.Infof("match field registry: %+v", registry.Config())

	initSignalHandler()

	srv := &codec.API{Registry: registry}
	srv.Port = uint16(viper.GetInt("rest.port"))
	if viper.GetBool("rest.tls") == true {
		srv.TLS.Cert = viper.GetString("rest.cert_file")
		srv.TLS.Key = viper.GetString("rest.key_file")
	}
	if err := srv.Serve(); err != nil {
		logger.Fatalf("failed to run the API server: %v", err)
	}
}

func initConfig() {
	viper.SetConfigFile(*defaultConfigFile)
	setDefaults()
	// Read the config file.
	if err := viper.ReadInConfig(); err != nil {
		logger.Fatalf("failed to read the config file: %v", err)
	}
	// Watching and re-reading config file whenever it changes.
	viper.OnConfigChange(func(e fsnotify.Event) {
		// Ignore the WRITE operation to avoid reading empty config.
		if e.Op != fsnotify.Write {
			return
		}

		if loggerLeveled != nil {
			// Set log level for all modules
			loggerLeveled.SetLevel(getLogLevel(viper.GetString("default.log_level")), "")
		}
		logger.Infof("config file %v is reloaded; changes of the match section take effect after restart", e.Name)
	})
	viper.WatchConfig()
	if err := validateConfig(); err != nil {
		logger.Fatalf("failed to validate the configuration: %v", err)
	}
}

func setDefaults() {
	viper.SetDefault("default.log_level", "info")
	viper.SetDefault("default.log_driver", log.DriverSyslog)
	viper.SetDefault("rest.port", 7070)
	viper.SetDefault("rest.tls", false)
	viper.SetDefault("match.wide_mpls_label", false)
}

func validateConfig() error {
	if len(viper.GetString("default.log_level")) == 0 {
		return errors.New("invalid default.log_level")
	}
	if _, err := log.ParseLevel(viper.GetString("default.log_level")); err != nil {
		return errors.Wrap(err, "invalid default.log_level")
	}
	switch viper.GetString("default.log_driver") {
	case log.DriverSyslog, log.DriverStderr:
	default:
		return errors.New("invalid default.log_driver")
	}
	if port := viper.GetInt("rest.port"); port <= 0 || port > 0xFFFF {
		return errors.New("invalid rest.port")
	}
	if viper.GetBool("rest.tls") == true {
		if len(viper.GetString("rest.cert_file")) == 0 {
			return errors.New("invalid rest.cert_file")
		}
		if len(viper.GetString("rest.key_file")) == 0 {
			return errors.New("invalid rest.key_file")
		}
	}

	return nil
}

func newRegistry() (*match.Registry, error) {
	conf := match.Config{}
	if err := viper.UnmarshalKey("match", &conf); err != nil {
		return nil, errors.Wrap(err, "decoding the match section")
	}

	return match.NewRegistry(conf), nil
}

func initSignalHandler() {
	go func() {
		c := make(chan os.Signal, 5)
		signal.Notify(c, syscall.SIGTERM, syscall.SIGINT)

		s := <-c
		logger.Warningf("Shutting down by %v...", s)
		os.Exit(0)
	}()
}

func initLog(level logging.Level) error {
	backend, err := log.NewBackend(viper.GetString("default.log_driver"), programName)
	if err != nil {
		return err
	}
	loggerLeveled = log.Setup(backend, level)

	return nil
}

func getLogLevel(level string) logging.Level {
	ret, err := log.ParseLevel(level)
	if err != nil {
		logger.Infof("invalid log level=%v, defaulting to %v..", level, defaultLogLevel)
		return defaultLogLevel
	}

	return ret
}

// go-tr3
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-tr3.
//
// go-tr3 is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-tr3 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-tr3; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// tr3scan connects to a TR3 reader, runs the initialization sequence and
// sweeps all antennas for tags, printing every UID found.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	tr3 "github.com/ZaparooProject/go-tr3"
	"github.com/ZaparooProject/go-tr3/polling"
	"github.com/ZaparooProject/go-tr3/transport/serialport"
	"github.com/ZaparooProject/go-tr3/transport/tcp"
)

type config struct {
	Host     string
	Serial   string
	Port     int
	Baud     int
	Antennas int
	Reads    int
	Timeout  time.Duration
	Interval time.Duration
	Debug    bool
}

func loadConfig() (*config, error) {
	pflag.String("host", "", "reader IP address or hostname (LAN models)")
	pflag.Int("port", 9004, "reader TCP port")
	pflag.String("serial", "", "serial device path for RS-232C models (overrides --host)")
	pflag.Int("baud", serialport.DefaultBaudRate, "serial baud rate")
	pflag.Int("antennas", 1, "number of antennas fitted to the reader")
	pflag.Int("reads", 1, "inventory passes to run over all antennas")
	pflag.Duration("timeout", 2*time.Second, "per-exchange response timeout")
	pflag.Duration("interval", 100*time.Millisecond, "pause between inventory cycles")
	pflag.Bool("debug", false, "log every frame sent and received")
	pflag.String("config", "", "optional config file (yaml)")
	pflag.Parse()

	v := viper.New()
	if err := v.BindPFlags(pflag.CommandLine); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}
	v.SetEnvPrefix("TR3")
	v.AutomaticEnv()
	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &config{
		Host:     v.GetString("host"),
		Port:     v.GetInt("port"),
		Serial:   v.GetString("serial"),
		Baud:     v.GetInt("baud"),
		Antennas: v.GetInt("antennas"),
		Reads:    v.GetInt("reads"),
		Timeout:  v.GetDuration("timeout"),
		Interval: v.GetDuration("interval"),
		Debug:    v.GetBool("debug"),
	}
	if cfg.Host == "" && cfg.Serial == "" {
		return nil, fmt.Errorf("either --host or --serial is required")
	}
	return cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	if !debug {
		zc.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func newTransport(cfg *config) (tr3.Transport, string, error) {
	if cfg.Serial != "" {
		t, err := serialport.New(cfg.Serial, serialport.WithBaudRate(cfg.Baud))
		if err != nil {
			return nil, "", err
		}
		return t, cfg.Serial, nil
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	t, err := tcp.New(addr, 5*time.Second)
	if err != nil {
		return nil, "", err
	}
	return t, addr, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "tr3scan:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transport, target, err := newTransport(cfg)
	if err != nil {
		return err
	}
	logger.Info("connected", zap.String("target", target), zap.String("transport", string(transport.Type())))

	device, err := tr3.New(transport,
		tr3.WithTimeout(cfg.Timeout),
		tr3.WithAntennaCount(cfg.Antennas),
		tr3.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer func() { _ = device.Close() }()

	if err := device.Connect(); err != nil {
		return err
	}
	if err := device.Initialize(); err != nil {
		return err
	}
	logger.Info("reader initialized", zap.String("rom", device.ROMVersion().String()))

	runner, err := polling.NewRunner(device, &polling.Config{
		Reads:    cfg.Reads,
		Interval: cfg.Interval,
	})
	if err != nil {
		return err
	}
	total := 0
	runner.OnTags = func(read, antenna int, tags []tr3.Tag) {
		for _, tag := range tags {
			total++
			fmt.Printf("read %d antenna %d: UID %s (DSFID %02X)\n",
				read+1, antenna, tag.UIDString(), tag.DSFID)
		}
	}

	if err := runner.Run(ctx); err != nil {
		return err
	}
	logger.Info("sweep finished", zap.Int("tags", total))
	return nil
}

// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"fmt"
	"os"

	"github.com/gogpu/interop"
	"gopkg.in/yaml.v3"
)

// Config is the run configuration. Command-line flags override values
// loaded from a file.
type Config struct {
	Graphics string `yaml:"graphics"`
	Device   struct {
		PCIBusID string `yaml:"pciBusID"`
	} `yaml:"device"`
	Grid struct {
		Size  uint32  `yaml:"size"`
		Group uint32  `yaml:"group"`
		Scale float32 `yaml:"scale"`
	} `yaml:"grid"`
	Frames uint64 `yaml:"frames"`
	Kernel struct {
		Path  string `yaml:"path"`
		Entry string `yaml:"entry"`
	} `yaml:"kernel"`
	Surface struct {
		Width  uint32 `yaml:"width"`
		Height uint32 `yaml:"height"`
	} `yaml:"surface"`
	Snapshot    string `yaml:"snapshot"`
	MetricsAddr string `yaml:"metricsAddr"`
}

// Graphics backends of the run command.
const (
	graphicsVulkan  = "vulkan"
	graphicsHAL     = "hal"
	graphicsHALNoop = "hal-noop"
)

// DefaultConfig returns the configuration used when neither a file nor a
// flag sets a value.
func DefaultConfig() Config {
	var c Config
	c.Graphics = graphicsVulkan
	c.Grid.Size = 1024
	c.Grid.Group = 8
	c.Grid.Scale = 16
	c.Frames = 600
	c.Kernel.Entry = "points"
	c.Surface.Width = 1280
	c.Surface.Height = 720
	return c
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// Validate checks the configuration before any driver is loaded.
func (c Config) Validate() error {
	switch c.Graphics {
	case graphicsVulkan, graphicsHAL, graphicsHALNoop:
	default:
		return fmt.Errorf("unknown graphics backend %q (want %s, %s or %s)",
			c.Graphics, graphicsVulkan, graphicsHAL, graphicsHALNoop)
	}
	switch {
	case c.Grid.Size == 0 || c.Grid.Size > interop.MaxGridSize:
		return fmt.Errorf("grid size %d out of range 1..%d", c.Grid.Size, interop.MaxGridSize)
	case c.Grid.Group == 0 || c.Grid.Group > 32:
		return fmt.Errorf("group size %d out of range 1..32", c.Grid.Group)
	case c.Grid.Scale <= 0:
		return fmt.Errorf("scale %v must be positive", c.Grid.Scale)
	case c.Surface.Width == 0 || c.Surface.Height == 0:
		return fmt.Errorf("surface size %dx%d must be positive", c.Surface.Width, c.Surface.Height)
	case c.Kernel.Entry == "":
		return fmt.Errorf("kernel entry must be set")
	case c.Snapshot != "" && c.Graphics == graphicsVulkan:
		return fmt.Errorf("snapshot needs a hal graphics backend")
	}
	return nil
}

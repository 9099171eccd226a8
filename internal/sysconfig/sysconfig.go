// Package sysconfig loads /etc/system.conf, the TOML file narrowing
// the fixed defaults the rest of the core already assumes (history
// capacity, terminal count, ...). A missing file or missing keys are
// not errors: the defaults stand unchanged.
package sysconfig

import (
	"bytes"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/tilixi/tilixi/internal/vfsfs"
)

const (
	DefaultHostname        = "tilixi"
	DefaultPrompt          = "$ "
	DefaultHistoryCapacity = 16
	DefaultMaxTerminals    = 8

	configPath = "/etc/system.conf"
)

// Config is the decoded contents of /etc/system.conf. Fields left at
// their zero value after decoding are filled from the package defaults
// by Reload, so system.conf only ever narrows behavior, never violates
// the fixed bounds the rest of the core already enforces.
type Config struct {
	Hostname        string `toml:"hostname"`
	Prompt          string `toml:"prompt"`
	HistoryCapacity int    `toml:"history_capacity"`
	MaxTerminals    int    `toml:"max_terminals"`
}

func defaults() Config {
	return Config{
		Hostname:        DefaultHostname,
		Prompt:          DefaultPrompt,
		HistoryCapacity: DefaultHistoryCapacity,
		MaxTerminals:    DefaultMaxTerminals,
	}
}

func (c *Config) applyDefaults() {
	if c.Hostname == "" {
		c.Hostname = DefaultHostname
	}
	if c.Prompt == "" {
		c.Prompt = DefaultPrompt
	}
	if c.HistoryCapacity <= 0 {
		c.HistoryCapacity = DefaultHistoryCapacity
	}
	if c.HistoryCapacity > DefaultHistoryCapacity {
		c.HistoryCapacity = DefaultHistoryCapacity
	}
	if c.MaxTerminals <= 0 {
		c.MaxTerminals = DefaultMaxTerminals
	}
	if c.MaxTerminals > DefaultMaxTerminals {
		c.MaxTerminals = DefaultMaxTerminals
	}
}

// Loader reads /etc/system.conf through a Vfs and exposes the most
// recently loaded Config, satisfying builtins.Reloader for the
// `reload` command.
type Loader struct {
	vfs     *vfsfs.Vfs
	current Config
}

// NewLoader constructs a Loader with the package defaults in effect
// until the first Reload.
func NewLoader(v *vfsfs.Vfs) *Loader {
	return &Loader{vfs: v, current: defaults()}
}

// Current returns the most recently loaded Config.
func (l *Loader) Current() Config { return l.current }

// Reload re-reads /etc/system.conf and replaces Current(). A missing
// file is not an error: Current() resets to the package defaults.
func (l *Loader) Reload() error {
	cfg, err := readConfig(l.vfs)
	if err != nil {
		return err
	}
	l.current = cfg
	return nil
}

func readConfig(v *vfsfs.Vfs) (Config, error) {
	cfg := defaults()

	f, err := v.Open(configPath, vfsfs.ORead)
	if err != nil {
		return cfg, nil
	}
	defer v.Close(f)

	var buf bytes.Buffer
	chunk := make([]byte, 128)
	for {
		n, rerr := v.Read(f, chunk)
		if n > 0 {
			buf.Write(chunk[:n])
		}
		if rerr != nil || n == 0 {
			break
		}
	}

	if strings.TrimSpace(buf.String()) == "" {
		return cfg, nil
	}

	if _, err := toml.Decode(buf.String(), &cfg); err != nil {
		return defaults(), err
	}
	cfg.applyDefaults()
	return cfg, nil
}

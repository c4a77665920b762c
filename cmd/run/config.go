package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/wippyai/hostbridge/wasmhost"
)

// fileConfig is the optional TOML file given with -config.
//
//	module = "bridge"
//	alloc = "bridge_alloc"
//	memory-limit-pages = 256
//
//	[globals]
//	greeting = "hi"
//	answer = 42
type fileConfig struct {
	Module           string         `toml:"module"`
	Alloc            string         `toml:"alloc"`
	MemoryLimitPages uint32         `toml:"memory-limit-pages"`
	Globals          map[string]any `toml:"globals"`
}

func loadConfig(path string) (*fileConfig, error) {
	cfg := &fileConfig{}
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	for name, v := range cfg.Globals {
		switch v.(type) {
		case string, int64, float64, bool:
		default:
			return nil, fmt.Errorf("%s: global %q has unsupported type %T", path, name, v)
		}
	}
	return cfg, nil
}

// hostConfig merges the file settings over the wasmhost defaults.
func (c *fileConfig) hostConfig() wasmhost.Config {
	hc := wasmhost.DefaultConfig()
	if c.Module != "" {
		hc.ModuleName = c.Module
	}
	if c.Alloc != "" {
		hc.AllocExport = c.Alloc
	}
	hc.MemoryLimitPages = c.MemoryLimitPages
	return hc
}

package wasmhost

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/tetratelabs/wazero"
)

const (
	// DefaultModuleName is the import module guests link against.
	DefaultModuleName = "bridge"
	// DefaultAllocExport is the guest export used to place strings in guest memory.
	DefaultAllocExport = "bridge_alloc"
)

var validate = validator.New()

// Config holds configuration for the host module
type Config struct {
	// ModuleName is the import module name seen by the guest.
	ModuleName string `validate:"required,printascii"`

	// AllocExport names the guest function (size i32) -> ptr i32 used to
	// copy string results into guest memory.
	AllocExport string `validate:"required,printascii"`

	// MemoryLimitPages caps guest memory in 64KB pages for runtimes created
	// by NewRuntime. 0 means the wazero default.
	MemoryLimitPages uint32 `validate:"max=65536"`
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		ModuleName:  DefaultModuleName,
		AllocExport: DefaultAllocExport,
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("wasmhost config validation failed: %w", err)
	}
	return nil
}

// NewRuntime creates a wazero runtime honouring cfg.MemoryLimitPages.
func NewRuntime(ctx context.Context, cfg Config) (wazero.Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	return wazero.NewRuntimeWithConfig(ctx, runtimeCfg), nil
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/hostbridge/bridge"
	"github.com/wippyai/hostbridge/objhost"
	"github.com/wippyai/hostbridge/wasmhost"
)

func main() {
	var (
		wasmFile    = flag.String("wasm", "", "Path to a core wasm guest importing the bridge module")
		funcName    = flag.String("func", "", "Guest export to call (default: _start, run or main)")
		callName    = flag.String("call", "", "Call a root function from Go")
		callArgs    = flag.String("args", "", "Arguments for -call (comma-separated)")
		configFile  = flag.String("config", "", "TOML file with host settings and globals")
		list        = flag.Bool("list", false, "List root members and exit")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Log bridge traffic to stderr")
	)
	flag.Parse()

	if *wasmFile == "" && *callName == "" && !*list && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: run -wasm <guest.wasm> [-func name] [-config globals.toml]")
		fmt.Fprintln(os.Stderr, "       run -call <name> [-args a,b,c]")
		fmt.Fprintln(os.Stderr, "       run -list")
		fmt.Fprintln(os.Stderr, "       run -i  (interactive mode)")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	log := zap.NewNop()
	if *verbose {
		if log, err = zap.NewDevelopment(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer log.Sync()
	}
	bridge.SetLogger(log.Named("bridge"))
	objhost.SetLogger(log.Named("objhost"))
	wasmhost.SetLogger(log.Named("wasmhost"))

	host := newDemoHost(os.Stdout, cfg.Globals)
	defer host.Close()

	switch {
	case *interactive:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: -i requires a terminal")
			os.Exit(1)
		}
		err = runInteractive(host)
	case *list:
		listMembers(os.Stdout, host)
	case *callName != "":
		err = runCall(os.Stdout, host, *callName, parseArgs(*callArgs))
	default:
		err = runWasm(os.Stdout, host, cfg.hostConfig(), *wasmFile, *funcName)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func listMembers(w io.Writer, host *objhost.Host) {
	fmt.Fprintf(w, "Root members:\n")
	for _, name := range host.Global().Names() {
		v, _ := host.Global().Lookup(name)
		fmt.Fprintf(w, "  %s: %s\n", name, memberKind(v))
	}
}

func runCall(w io.Writer, host *objhost.Host, name string, args []any) error {
	ctx := context.Background()
	b := bridge.New(host)
	defer b.Close(ctx)

	result, err := b.Funcall(ctx, name, args...)
	if err != nil {
		return fmt.Errorf("call %s: %w", name, err)
	}
	fmt.Fprintf(w, "Result: %s\n", formatValue(result))
	return nil
}

func runWasm(w io.Writer, host *objhost.Host, cfg wasmhost.Config, wasmFile, funcName string) error {
	ctx := context.Background()

	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	rt, err := wasmhost.NewRuntime(ctx, cfg)
	if err != nil {
		return fmt.Errorf("create runtime: %w", err)
	}
	defer rt.Close(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return fmt.Errorf("register WASI: %w", err)
	}

	exports, _, err := wasmhost.Instantiate(ctx, rt, host, cfg)
	if err != nil {
		return fmt.Errorf("register %s: %w", cfg.ModuleName, err)
	}

	compiled, err := rt.CompileModule(ctx, data)
	if err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	fmt.Fprintf(w, "Module: %s\n", wasmFile)
	fmt.Fprintf(w, "Imports: %d\n", len(compiled.ImportedFunctions()))
	fmt.Fprintf(w, "Exports: %d\n", len(compiled.ExportedFunctions()))

	fmt.Fprintf(w, "\nInstantiating module...\n")
	modCfg := wazero.NewModuleConfig().
		WithStdout(w).
		WithStderr(os.Stderr).
		WithStartFunctions()
	mod, err := rt.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		return fmt.Errorf("instantiate: %w", err)
	}
	defer mod.Close(ctx)

	if funcName == "" {
		for _, name := range []string{"_start", "run", "main"} {
			if _, ok := compiled.ExportedFunctions()[name]; ok {
				funcName = name
				break
			}
		}
		if funcName == "" {
			fmt.Fprintf(w, "\nNo function specified and no common entry point found.\n")
			fmt.Fprintf(w, "Use -func to specify a function to call.\n")
			return nil
		}
	}

	fn := mod.ExportedFunction(funcName)
	if fn == nil {
		return fmt.Errorf("export %q not found", funcName)
	}
	if n := len(fn.Definition().ParamTypes()); n > 0 {
		return fmt.Errorf("export %q takes %d parameters; only nullary entry points can be run", funcName, n)
	}

	fmt.Fprintf(w, "\nCalling %s()...\n", funcName)
	results, err := fn.Call(ctx)
	if err != nil {
		if last := exports.LastError(); last != nil {
			return fmt.Errorf("call %s: %w (last bridge error: %v)", funcName, err, last)
		}
		return fmt.Errorf("call %s: %w", funcName, err)
	}
	fmt.Fprintf(w, "Result: %v\n", results)
	return nil
}

package workload

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// wasmPageSize is the WebAssembly linear memory page size.
const wasmPageSize = 64 * 1024

// WasmConfig bounds a single workload execution. Zero values mean
// unbounded, the faithful single-shot default: the process exits right
// after the run either way.
type WasmConfig struct {
	// MemoryLimitBytes caps the module's linear memory, rounded down to
	// whole 64KiB pages (minimum one page).
	MemoryLimitBytes int64

	// RunTimeout aborts the execution after the given duration.
	RunTimeout time.Duration
}

// WasmRunner executes wasm workloads in an in-process WASI sandbox.
// Deny-by-default: no filesystem mounts and no network; only stdio,
// arguments, and environment variables are wired through.
type WasmRunner struct {
	cfg WasmConfig
}

// NewWasmRunner creates a runner with the given execution bounds.
func NewWasmRunner(cfg WasmConfig) *WasmRunner {
	return &WasmRunner{cfg: cfg}
}

// Run compiles and executes the payload as a wasm module. The module's
// entry function is `_start` (the WASI command convention) or `main`;
// its return values and captured stdout form the Result. Each run uses
// a fresh runtime which is torn down before returning.
func (r *WasmRunner) Run(ctx context.Context, payload []byte, args []string, env map[string]string) (*Result, error) {
	runtimeCfg := wazero.NewRuntimeConfig()
	if r.cfg.MemoryLimitBytes > 0 {
		pages := uint32(r.cfg.MemoryLimitBytes / wasmPageSize)
		if pages == 0 {
			pages = 1
		}
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(pages)
	}
	if r.cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.RunTimeout)
		defer cancel()
		runtimeCfg = runtimeCfg.WithCloseOnContextDone(true)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, runtimeCfg)
	defer rt.Close(context.Background())

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		return nil, fmt.Errorf("instantiating WASI: %w", err)
	}

	var stdout, stderr bytes.Buffer
	modCfg := wazero.NewModuleConfig().
		WithName("workload").
		WithStdout(&stdout).
		WithStderr(&stderr).
		WithStartFunctions() // entry invocation is explicit below
	if len(args) > 0 {
		modCfg = modCfg.WithArgs(args...)
	}
	for k, v := range env {
		modCfg = modCfg.WithEnv(k, v)
	}

	compiled, err := rt.CompileModule(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("compiling workload module: %w", err)
	}
	defer compiled.Close(context.Background())

	mod, err := rt.InstantiateModule(ctx, compiled, modCfg)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("workload execution exceeded %s: %w", r.cfg.RunTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("instantiating workload module: %w", err)
	}
	defer mod.Close(context.Background())

	entry := mod.ExportedFunction("_start")
	if entry == nil {
		entry = mod.ExportedFunction("main")
	}
	if entry == nil {
		return nil, fmt.Errorf("workload module exports no _start or main function")
	}

	values, err := entry.Call(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("workload execution exceeded %s: %w", r.cfg.RunTimeout, ctx.Err())
		}
		return nil, fmt.Errorf("running workload: %w", err)
	}

	return &Result{Values: values, Output: stdout.Bytes()}, nil
}

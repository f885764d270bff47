// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about generation runs and the external tools they call.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetPipelineHooks(&myPipelineHooks{})
//	    observability.SetToolHooks(&myToolHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnResolveStart(ctx, dir)
//	// ... run cargo metadata ...
//	observability.Pipeline().OnResolveComplete(ctx, dir, packages, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from a generation run.
type PipelineHooks interface {
	// Resolve events
	OnResolveStart(ctx context.Context, dir string)
	OnResolveComplete(ctx context.Context, dir string, packages int, duration time.Duration, err error)

	// OnReconcileComplete reports the number of reconciliation findings.
	OnReconcileComplete(ctx context.Context, crates, findings int, duration time.Duration)

	// OnSynthesizeComplete reports how many build files were produced.
	OnSynthesizeComplete(ctx context.Context, files int, duration time.Duration, err error)

	// OnCommitFile is called once per written build file.
	OnCommitFile(ctx context.Context, path string, err error)
}

// =============================================================================
// Tool Hooks
// =============================================================================

// ToolHooks receives events from external process invocations (cargo, gn).
type ToolHooks interface {
	// OnExec records a process start.
	OnExec(ctx context.Context, tool string, args []string)

	// OnExit records a process exit.
	OnExit(ctx context.Context, tool string, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnResolveStart(context.Context, string) {}
func (NoopPipelineHooks) OnResolveComplete(context.Context, string, int, time.Duration, error) {
}
func (NoopPipelineHooks) OnReconcileComplete(context.Context, int, int, time.Duration)    {}
func (NoopPipelineHooks) OnSynthesizeComplete(context.Context, int, time.Duration, error) {}
func (NoopPipelineHooks) OnCommitFile(context.Context, string, error)                     {}

// NoopToolHooks is a no-op implementation of ToolHooks.
type NoopToolHooks struct{}

func (NoopToolHooks) OnExec(context.Context, string, []string)             {}
func (NoopToolHooks) OnExit(context.Context, string, time.Duration, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	toolHooks     ToolHooks     = NoopToolHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any run.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetToolHooks registers custom external tool hooks.
func SetToolHooks(h ToolHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		toolHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Tool returns the registered tool hooks.
func Tool() ToolHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return toolHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	toolHooks = NoopToolHooks{}
}

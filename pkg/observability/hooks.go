// Package observability provides hooks for metrics and tracing.
//
// Core packages stay free of metrics backends. The CLI and the HTTP service
// call the registered hooks around document loads, saves and exports, and
// around export cache lookups; main registers an implementation at startup.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Hook interfaces per event category
//   - No-op defaults, so unconfigured binaries pay nothing
//   - A [Metrics] implementation backed by Prometheus
//
// # Usage
//
//	m := observability.NewMetrics("conceptmap")
//	observability.SetDocumentHooks(m)
//	observability.SetCacheHooks(m)
//
//	start := time.Now()
//	doc, err := io.ImportJSON(path, face)
//	observability.Document().OnLoad(ctx, "file", doc.NodeCount(), time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Document Hooks
// =============================================================================

// DocumentHooks receives document lifecycle events.
type DocumentHooks interface {
	// OnLoad records a document load from source ("file", "library", "http").
	OnLoad(ctx context.Context, source string, nodes int, duration time.Duration, err error)
	// OnSave records a document save to target.
	OnSave(ctx context.Context, target string, size int, duration time.Duration, err error)
	// OnExport records an export in format ("svg", "png", "triples", ...).
	OnExport(ctx context.Context, format string, size int, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from the export cache.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, format string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, format string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDocumentHooks is a no-op implementation of DocumentHooks.
type NoopDocumentHooks struct{}

func (NoopDocumentHooks) OnLoad(context.Context, string, int, time.Duration, error)   {}
func (NoopDocumentHooks) OnSave(context.Context, string, int, time.Duration, error)   {}
func (NoopDocumentHooks) OnExport(context.Context, string, int, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	documentHooks DocumentHooks = NoopDocumentHooks{}
	cacheHooks    CacheHooks    = NoopCacheHooks{}
	hooksMu       sync.RWMutex
)

// SetDocumentHooks registers document hooks. Call it once at startup.
func SetDocumentHooks(h DocumentHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		documentHooks = h
	}
}

// SetCacheHooks registers cache hooks. Call it once at startup.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Document returns the registered document hooks.
func Document() DocumentHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return documentHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	documentHooks = NoopDocumentHooks{}
	cacheHooks = NoopCacheHooks{}
}

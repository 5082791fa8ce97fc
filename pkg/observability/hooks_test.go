package observability

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	d := NoopDocumentHooks{}
	d.OnLoad(ctx, "file", 3, time.Millisecond, nil)
	d.OnSave(ctx, "file", 120, time.Millisecond, errors.New("disk full"))
	d.OnExport(ctx, "svg", 2048, time.Millisecond, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "svg")
	c.OnCacheMiss(ctx, "png")
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Document().(NoopDocumentHooks); !ok {
		t.Error("Document() should return NoopDocumentHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}

	m := NewMetrics("test")
	SetDocumentHooks(m)
	SetCacheHooks(m)
	if Document() != DocumentHooks(m) || Cache() != CacheHooks(m) {
		t.Error("registered hooks not returned")
	}

	SetDocumentHooks(nil)
	if Document() != DocumentHooks(m) {
		t.Error("SetDocumentHooks(nil) should keep the current hooks")
	}
}

func TestMetricsCount(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics("test")

	m.OnLoad(ctx, "file", 4, time.Millisecond, nil)
	m.OnLoad(ctx, "file", 0, time.Millisecond, errors.New("bad"))
	m.OnExport(ctx, "svg", 1000, time.Millisecond, nil)
	m.OnCacheHit(ctx, "svg")
	m.OnCacheMiss(ctx, "svg")
	m.OnCacheMiss(ctx, "svg")
	m.ObserveHTTP("GET", "/maps", 200, time.Millisecond)

	if got := testutil.ToFloat64(m.Loads.WithLabelValues("file", "ok")); got != 1 {
		t.Errorf("ok loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.Loads.WithLabelValues("file", "error")); got != 1 {
		t.Errorf("failed loads = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.CacheMisses.WithLabelValues("svg")); got != 2 {
		t.Errorf("cache misses = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/maps", "200")); got != 1 {
		t.Errorf("http requests = %v, want 1", got)
	}
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics("conceptmap")
	m.OnExport(context.Background(), "png", 10, time.Millisecond, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)

	if !strings.Contains(string(body), `conceptmap_exports_total{format="png",status="ok"} 1`) {
		t.Errorf("metrics output missing export counter:\n%s", body)
	}
}

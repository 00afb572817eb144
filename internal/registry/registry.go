// Package registry maintains the periodically-refreshed pNode snapshot.
package registry

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xandalyze/xandalyze/internal/metrics"
	"github.com/xandalyze/xandalyze/internal/pnode"
)

// Fetcher produces a fresh node list from the cluster RPC.
type Fetcher interface {
	FetchNodes(ctx context.Context) ([]pnode.Node, error)
}

// UpdateHook observes each completed refresh (websocket fanout, event
// publishing). Hooks run on the poller goroutine; keep them quick.
type UpdateHook func(snap pnode.Snapshot)

const (
	SourceRPC  = "rpc"
	SourceMock = "mock"
)

// Registry holds the current snapshot behind an RWMutex. The poller is
// the only writer; each refresh replaces the node list wholesale.
type Registry struct {
	mu   sync.RWMutex
	snap pnode.Snapshot

	fetcher  Fetcher
	mockSeed int64
	log      *zap.Logger

	hooksMu sync.Mutex
	hooks   []UpdateHook
}

// New creates an empty registry. mockSeed feeds the fallback dataset so
// the mock cluster stays stable across refreshes within one process.
func New(fetcher Fetcher, mockSeed int64, log *zap.Logger) *Registry {
	return &Registry{fetcher: fetcher, mockSeed: mockSeed, log: log}
}

// Snapshot returns the current snapshot (copied node slice).
func (r *Registry) Snapshot() pnode.Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := r.snap
	out.Nodes = make([]pnode.Node, len(r.snap.Nodes))
	copy(out.Nodes, r.snap.Nodes)
	return out
}

// Nodes returns just the current node list.
func (r *Registry) Nodes() []pnode.Node {
	return r.Snapshot().Nodes
}

// OnUpdate registers a refresh observer.
func (r *Registry) OnUpdate(hook UpdateHook) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	r.hooks = append(r.hooks, hook)
}

// Refresh fetches a fresh node list, substituting the mock dataset on
// any failure. Node-source errors are absorbed here and never surfaced:
// the dashboard must always show something.
func (r *Registry) Refresh(ctx context.Context) pnode.Snapshot {
	nodes, err := r.fetcher.FetchNodes(ctx)
	source := SourceRPC
	if err != nil {
		r.log.Warn("cluster rpc unreachable, using mock data", zap.Error(err))
		nodes = pnode.MockNodes(r.mockSeed)
		source = SourceMock
	}

	snap := pnode.Snapshot{
		Nodes:       nodes,
		RefreshedAt: time.Now().UTC(),
		Source:      source,
	}

	r.mu.Lock()
	r.snap = snap
	r.mu.Unlock()

	stats := pnode.ComputeStats(nodes)
	metrics.Poll(source)
	metrics.SetSnapshot(stats.TotalNodes, stats.ActiveNodes, stats.OfflineNodes, stats.AvgLatencyMs)

	r.hooksMu.Lock()
	hooks := append([]UpdateHook(nil), r.hooks...)
	r.hooksMu.Unlock()
	for _, hook := range hooks {
		hook(snap)
	}

	r.log.Info("node snapshot refreshed",
		zap.String("source", source),
		zap.Int("nodes", stats.TotalNodes),
		zap.Int("active", stats.ActiveNodes))
	return snap
}

// Run refreshes immediately, then on every tick until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	r.Refresh(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Refresh(ctx)
		}
	}
}

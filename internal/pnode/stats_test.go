package pnode

import (
	"testing"
)

func strptr(s string) *string { return &s }

func f64ptr(f float64) *float64 { return &f }

func TestComputeStats_EmptyList(t *testing.T) {
	t.Parallel()
	s := ComputeStats(nil)
	if s.TotalNodes != 0 || s.ActiveNodes != 0 || s.OfflineNodes != 0 {
		t.Fatalf("counts = %+v", s)
	}
	if s.AvgLatencyMs != 0 {
		t.Fatalf("avg latency on empty list = %v", s.AvgLatencyMs)
	}
}

func TestComputeStats_CoalescesMissingFields(t *testing.T) {
	t.Parallel()
	nodes := []Node{
		{IdentityPubkey: "pk1", Status: StatusActive, LatencyMs: 40, DiskSpaceTB: f64ptr(50)},
		{IdentityPubkey: "pk2", Status: StatusActive, LatencyMs: 80}, // no disk reported
		{IdentityPubkey: "pk3", Status: StatusOffline, LatencyMs: 0, DiskSpaceTB: f64ptr(30)},
		{IdentityPubkey: "pk4", Status: StatusDelinquent, LatencyMs: 120},
	}
	s := ComputeStats(nodes)
	if s.TotalNodes != 4 || s.ActiveNodes != 2 || s.OfflineNodes != 1 {
		t.Fatalf("counts = %+v", s)
	}
	if s.TotalStorageTB != 80 {
		t.Fatalf("storage = %v, want 80", s.TotalStorageTB)
	}
	// Offline zero-latency entries stay in the divisor.
	if s.AvgLatencyMs != 60 {
		t.Fatalf("avg latency = %v, want 60", s.AvgLatencyMs)
	}
}

func TestBuildDigest_TopLatencyOrder(t *testing.T) {
	t.Parallel()
	nodes := []Node{
		{IdentityPubkey: "a", LatencyMs: 30},
		{IdentityPubkey: "b", LatencyMs: 170},
		{IdentityPubkey: "c", LatencyMs: 90},
		{IdentityPubkey: "d", LatencyMs: 170},
		{IdentityPubkey: "e", LatencyMs: 10},
		{IdentityPubkey: "f", LatencyMs: 60},
		{IdentityPubkey: "g", LatencyMs: 120},
	}
	d := BuildDigest(nodes)
	if len(d.TopLatency) != 5 {
		t.Fatalf("top latency len = %d, want 5", len(d.TopLatency))
	}
	wantOrder := []string{"b", "d", "g", "c", "f"}
	for i, want := range wantOrder {
		if d.TopLatency[i].IdentityPubkey != want {
			t.Fatalf("top[%d] = %s, want %s (full: %+v)", i, d.TopLatency[i].IdentityPubkey, want, d.TopLatency)
		}
	}
}

func TestBuildDigest_VersionsDedupedAndBounded(t *testing.T) {
	t.Parallel()
	var nodes []Node
	for i := 0; i < 12; i++ {
		v := "1.18." + string(rune('0'+i%10))
		nodes = append(nodes, Node{IdentityPubkey: "pk", Version: strptr(v)})
	}
	nodes = append(nodes, Node{IdentityPubkey: "pk-no-version"})
	nodes = append(nodes, Node{IdentityPubkey: "pk-empty", Version: strptr("")})

	d := BuildDigest(nodes)
	if len(d.Versions) != 8 {
		t.Fatalf("versions len = %d, want 8", len(d.Versions))
	}
	seen := make(map[string]bool)
	for _, v := range d.Versions {
		if seen[v] {
			t.Fatalf("duplicate version %q", v)
		}
		seen[v] = true
	}
}

func TestMockNodes_StableAndShaped(t *testing.T) {
	t.Parallel()
	a := MockNodes(42)
	b := MockNodes(42)
	if len(a) != 45 || len(b) != 45 {
		t.Fatalf("lens = %d, %d", len(a), len(b))
	}
	for i := range a {
		if a[i].IdentityPubkey != b[i].IdentityPubkey || a[i].Status != b[i].Status {
			t.Fatalf("node %d differs across same-seed generations", i)
		}
	}
	for i, n := range a {
		if n.IdentityPubkey == "" || n.GossipAddr == "" {
			t.Fatalf("node %d missing identity or gossip addr: %+v", i, n)
		}
		if n.Status == StatusActive && n.LatencyMs == 0 {
			t.Fatalf("active node %d has zero latency", i)
		}
		if n.Status != StatusActive && n.LatencyMs != 0 {
			t.Fatalf("down node %d has latency %d", i, n.LatencyMs)
		}
		if n.DiskSpaceTB == nil || *n.DiskSpaceTB < 10 || *n.DiskSpaceTB > 110 {
			t.Fatalf("node %d disk out of range: %v", i, n.DiskSpaceTB)
		}
	}
}

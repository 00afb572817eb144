package pnode

import "sort"

// Stats are the headline aggregates shown on the dashboard.
type Stats struct {
	TotalNodes     int     `json:"total_nodes"`
	ActiveNodes    int     `json:"active_nodes"`
	OfflineNodes   int     `json:"offline_nodes"`
	TotalStorageTB float64 `json:"total_storage_tb"`
	AvgLatencyMs   float64 `json:"avg_latency_ms"`
}

// NodeLatency pairs an identity with its latency, for top-N views.
type NodeLatency struct {
	IdentityPubkey string `json:"identityPubkey"`
	LatencyMs      int    `json:"latency"`
}

// Digest is the compact, ephemeral summary embedded into assistant
// prompts. Recomputed from the node list on every composition; never
// persisted.
type Digest struct {
	TotalNodes     int           `json:"totalNodes"`
	ActiveNodes    int           `json:"activeNodes"`
	OfflineNodes   int           `json:"offlineNodes"`
	AvgLatencyMs   float64       `json:"averageLatency"`
	TotalStorageTB float64       `json:"totalStorage"`
	TopLatency     []NodeLatency `json:"topLatency"`
	Versions       []string      `json:"versionsInUse"`
}

const (
	digestTopN        = 5
	digestMaxVersions = 8
)

// ComputeStats aggregates the current node list. Missing diskSpace
// counts as zero and the latency divisor is max(len, 1), matching the
// upstream dashboard arithmetic.
func ComputeStats(nodes []Node) Stats {
	s := Stats{TotalNodes: len(nodes)}
	var latSum int
	for _, n := range nodes {
		switch n.Status {
		case StatusActive:
			s.ActiveNodes++
		case StatusOffline:
			s.OfflineNodes++
		}
		latSum += n.LatencyMs
		if n.DiskSpaceTB != nil {
			s.TotalStorageTB += *n.DiskSpaceTB
		}
	}
	div := len(nodes)
	if div == 0 {
		div = 1
	}
	s.AvgLatencyMs = float64(latSum) / float64(div)
	return s
}

// BuildDigest derives the prompt digest from the current node list.
func BuildDigest(nodes []Node) Digest {
	s := ComputeStats(nodes)
	d := Digest{
		TotalNodes:     s.TotalNodes,
		ActiveNodes:    s.ActiveNodes,
		OfflineNodes:   s.OfflineNodes,
		AvgLatencyMs:   s.AvgLatencyMs,
		TotalStorageTB: s.TotalStorageTB,
	}

	byLatency := make([]Node, len(nodes))
	copy(byLatency, nodes)
	sort.SliceStable(byLatency, func(i, j int) bool {
		return byLatency[i].LatencyMs > byLatency[j].LatencyMs
	})
	for i := 0; i < len(byLatency) && i < digestTopN; i++ {
		d.TopLatency = append(d.TopLatency, NodeLatency{
			IdentityPubkey: byLatency[i].IdentityPubkey,
			LatencyMs:      byLatency[i].LatencyMs,
		})
	}

	seen := make(map[string]bool)
	for _, n := range nodes {
		if n.Version == nil || *n.Version == "" {
			continue
		}
		if seen[*n.Version] {
			continue
		}
		seen[*n.Version] = true
		d.Versions = append(d.Versions, *n.Version)
		if len(d.Versions) >= digestMaxVersions {
			break
		}
	}
	return d
}

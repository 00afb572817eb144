package pnode

import "time"

// Status is the gossip-reported health state of a pNode.
type Status string

const (
	StatusActive     Status = "Active"
	StatusDelinquent Status = "Delinquent"
	StatusOffline    Status = "Offline"
	StatusBootstrap  Status = "Bootstrap"
)

// Node is one monitored pNode as reported by getClusterNodes.
// IdentityPubkey is the stable join key for every derived view. Latency
// and Status are always present; pointer fields may be absent and render
// as "unknown" (aggregates coalesce them to zero, matching upstream).
type Node struct {
	IdentityPubkey string   `json:"identityPubkey" yaml:"identity_pubkey"`
	GossipAddr     string   `json:"gossipAddr" yaml:"gossip_addr"`
	RPCAddr        *string  `json:"rpcAddr,omitempty" yaml:"rpc_addr,omitempty"`
	Version        *string  `json:"version,omitempty" yaml:"version,omitempty"`
	ShredVersion   *int     `json:"shredVersion,omitempty" yaml:"shred_version,omitempty"`
	Status         Status   `json:"status" yaml:"status"`
	LatencyMs      int      `json:"latency" yaml:"latency_ms"`
	Location       *string  `json:"location,omitempty" yaml:"location,omitempty"`
	DiskSpaceTB    *float64 `json:"diskSpace,omitempty" yaml:"disk_space_tb,omitempty"`
	UptimePct      *float64 `json:"uptime,omitempty" yaml:"uptime_pct,omitempty"`
}

// Snapshot is one full poll result. The node list replaces the previous
// one wholesale; there is no per-node identity tracking across polls.
type Snapshot struct {
	Nodes       []Node    `json:"nodes"`
	RefreshedAt time.Time `json:"refreshedAt"`
	Source      string    `json:"source"` // "rpc" or "mock"
}

package pnode

import (
	"fmt"
	"math/rand"
	"strings"
)

// Mock dataset substituted when the cluster RPC is unreachable. The
// dashboard must always show something, so RPC failures are absorbed
// here rather than surfaced.

const mockNodeCount = 45

var mockRegions = []string{"US-East", "EU-Central", "Asia-SE", "US-West"}

const pubkeyAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ123456789"

func randToken(r *rand.Rand, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(pubkeyAlphabet[r.Intn(len(pubkeyAlphabet))])
	}
	return b.String()
}

// MockNodes generates the synthetic fallback cluster: roughly 90% of
// nodes up, latency 20-170ms when up and 0 when down, 10-110 TB disk,
// four regions. Seeded so tests see a stable cluster.
func MockNodes(seed int64) []Node {
	r := rand.New(rand.NewSource(seed))
	nodes := make([]Node, 0, mockNodeCount)
	for i := 0; i < mockNodeCount; i++ {
		isUp := r.Float64() > 0.1
		status := StatusActive
		if !isUp {
			if r.Float64() > 0.5 {
				status = StatusDelinquent
			} else {
				status = StatusOffline
			}
		}

		n := Node{
			IdentityPubkey: fmt.Sprintf("Xan%s...%s", randToken(r, 8), randToken(r, 4)),
			GossipAddr:     fmt.Sprintf("192.168.%d.%d:8001", r.Intn(255), r.Intn(255)),
			Status:         status,
		}

		version := fmt.Sprintf("1.14.%d", r.Intn(20)+10)
		n.Version = &version
		shred := 54321
		n.ShredVersion = &shred
		region := mockRegions[r.Intn(len(mockRegions))]
		n.Location = &region
		disk := float64(r.Intn(100) + 10)
		n.DiskSpaceTB = &disk

		if isUp {
			rpcAddr := fmt.Sprintf("192.168.%d.%d:8899", r.Intn(255), r.Intn(255))
			n.RPCAddr = &rpcAddr
			n.LatencyMs = r.Intn(150) + 20
			uptime := 98 + r.Float64()*2
			n.UptimePct = &uptime
		} else {
			n.LatencyMs = 0
			uptime := r.Float64() * 50
			n.UptimePct = &uptime
		}

		nodes = append(nodes, n)
	}
	return nodes
}

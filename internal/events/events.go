// Package events publishes dashboard events to NATS for external
// consumers (alerting, archival). The broker is optional; a nil Broker
// is a safe no-op.
package events

import (
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/xandalyze/xandalyze/internal/insight"
	"github.com/xandalyze/xandalyze/internal/pnode"
)

const (
	SubjectRefresh = "xandalyze.nodes.refresh"
	SubjectAlert   = "xandalyze.alerts"
)

// RefreshEvent announces a completed snapshot refresh.
type RefreshEvent struct {
	Source       string    `json:"source"`
	TotalNodes   int       `json:"total_nodes"`
	ActiveNodes  int       `json:"active_nodes"`
	OfflineNodes int       `json:"offline_nodes"`
	RefreshedAt  time.Time `json:"refreshed_at"`
}

// AlertEvent carries one critical insight card.
type AlertEvent struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	At          time.Time `json:"at"`
}

type Broker struct {
	conn *nats.Conn
}

// New connects to the NATS server at url.
func New(url string) (*Broker, error) {
	nc, err := nats.Connect(url)
	if err != nil {
		return nil, err
	}
	return &Broker{conn: nc}, nil
}

func (b *Broker) publish(subject string, msg any) error {
	if b == nil || b.conn == nil {
		return nil
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.conn.Publish(subject, data)
}

// PublishSnapshot emits a refresh event plus an alert for every
// critical insight in the new snapshot.
func (b *Broker) PublishSnapshot(snap pnode.Snapshot) error {
	if b == nil {
		return nil
	}
	stats := pnode.ComputeStats(snap.Nodes)
	err := b.publish(SubjectRefresh, RefreshEvent{
		Source:       snap.Source,
		TotalNodes:   stats.TotalNodes,
		ActiveNodes:  stats.ActiveNodes,
		OfflineNodes: stats.OfflineNodes,
		RefreshedAt:  snap.RefreshedAt,
	})
	if err != nil {
		return err
	}

	for _, card := range insight.Summarize(snap.Nodes) {
		if card.Severity != insight.SeverityCritical {
			continue
		}
		if err := b.publish(SubjectAlert, AlertEvent{
			Title:       card.Title,
			Description: card.Description,
			At:          snap.RefreshedAt,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (b *Broker) Close() {
	if b != nil && b.conn != nil {
		b.conn.Close()
	}
}

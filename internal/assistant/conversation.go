package assistant

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xandalyze/xandalyze/internal/store"
)

// TurnRole labels one side of the dialog.
type TurnRole string

const (
	RoleUser      TurnRole = "user"
	RoleAssistant TurnRole = "assistant"
)

// Turn is one message in the assistant dialog. Reply is set only on
// assistant turns and is always derived from Content by the
// interpreter.
type Turn struct {
	ID        string    `json:"id"`
	Role      TurnRole  `json:"role"`
	Content   string    `json:"content"`
	Reply     *Reply    `json:"reply,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// conversationKey is the KV slot holding the full serialized turn list.
const conversationKey = "conversation"

// Conversation is the ordered, persisted turn sequence. The full list
// is re-persisted after every mutation and restored verbatim at start;
// a corrupt persisted blob is treated as an empty history.
type Conversation struct {
	mu    sync.RWMutex
	turns []Turn
	kv    store.KV
}

// NewConversation restores any persisted history from kv.
func NewConversation(ctx context.Context, kv store.KV) *Conversation {
	c := &Conversation{kv: kv}
	data, ok, err := kv.Get(ctx, conversationKey)
	if err != nil || !ok {
		return c
	}
	var turns []Turn
	if err := json.Unmarshal(data, &turns); err != nil {
		// Corrupt blob: same as no history.
		return c
	}
	c.turns = turns
	return c
}

// NewTurn stamps a new turn with an ID and creation time.
func NewTurn(role TurnRole, content string, reply *Reply) Turn {
	return Turn{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Reply:     reply,
		CreatedAt: time.Now().UTC(),
	}
}

// Append adds the turn and persists the whole sequence. Persistence is
// best-effort; a write failure never loses the in-memory turn.
func (c *Conversation) Append(ctx context.Context, turn Turn) error {
	c.mu.Lock()
	c.turns = append(c.turns, turn)
	data, err := json.Marshal(c.turns)
	c.mu.Unlock()
	if err != nil {
		return err
	}
	return c.kv.Put(ctx, conversationKey, data)
}

// Turns returns a copy of the ordered sequence.
func (c *Conversation) Turns() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Len reports the current number of turns.
func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.turns)
}

// Clear empties the sequence and removes the persisted copy.
func (c *Conversation) Clear(ctx context.Context) error {
	c.mu.Lock()
	c.turns = nil
	c.mu.Unlock()
	return c.kv.Delete(ctx, conversationKey)
}

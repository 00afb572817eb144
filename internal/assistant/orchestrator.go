package assistant

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xandalyze/xandalyze/internal/completion"
	"github.com/xandalyze/xandalyze/internal/metrics"
	"github.com/xandalyze/xandalyze/internal/pnode"
)

// ErrBusy is returned when a completion round trip is already in
// flight. The second submission is a no-op: nothing is dispatched and
// the conversation is untouched.
var ErrBusy = errors.New("assistant: a request is already pending")

// SnapshotFunc supplies the current node list for prompt grounding.
type SnapshotFunc func() []pnode.Node

// Orchestrator owns the assistant loop: it is the only writer of the
// conversation. All transitions are triggered by explicit caller
// actions; there is no background activity here.
type Orchestrator struct {
	conv     *Conversation
	gateway  completion.Completer
	snapshot SnapshotFunc
	log      *zap.Logger

	// pending guards admission: one in-flight round trip at a time.
	pendingCh chan struct{}
}

// NewOrchestrator wires the assistant pipeline together.
func NewOrchestrator(conv *Conversation, gateway completion.Completer, snapshot SnapshotFunc, log *zap.Logger) *Orchestrator {
	o := &Orchestrator{
		conv:      conv,
		gateway:   gateway,
		snapshot:  snapshot,
		log:       log,
		pendingCh: make(chan struct{}, 1),
	}
	o.pendingCh <- struct{}{}
	return o
}

// Pending reports whether a round trip is in flight.
func (o *Orchestrator) Pending() bool {
	return len(o.pendingCh) == 0
}

// acquire claims the single in-flight slot without blocking.
func (o *Orchestrator) acquire() bool {
	select {
	case <-o.pendingCh:
		return true
	default:
		return false
	}
}

func (o *Orchestrator) release() {
	o.pendingCh <- struct{}{}
}

// Ask runs one full round trip for a user utterance: append the user
// turn, compose, complete, interpret, append the assistant turn. On any
// completion failure the error is surfaced and the user's turn remains
// the last entry; no retry is attempted. A parse failure on an
// otherwise successful completion degrades to a raw-text assistant
// message so the chat still advances.
func (o *Orchestrator) Ask(ctx context.Context, utterance, keyOverride string) (Turn, error) {
	if !o.acquire() {
		return Turn{}, ErrBusy
	}
	defer o.release()

	prior := o.conv.Turns()

	userTurn := NewTurn(RoleUser, utterance, nil)
	if err := o.conv.Append(ctx, userTurn); err != nil {
		o.log.Warn("persist user turn failed", zap.Error(err))
	}

	digest := pnode.BuildDigest(o.snapshot())
	req := completion.Request{
		Instruction: ComposePrompt(digest, utterance, time.Now()),
		History:     HistoryFromTurns(prior),
		KeyOverride: keyOverride,
	}

	raw, err := o.complete(ctx, req)
	if err != nil {
		metrics.AssistantRequest("error")
		o.log.Warn("completion failed",
			zap.String("kind", completion.KindOf(err).String()),
			zap.Error(err))
		return Turn{}, err
	}

	reply, err := Interpret(raw)
	if err != nil {
		// Backend answered but not in the advised shape: record the raw
		// text as the assistant message instead of dropping the turn.
		o.log.Warn("uninterpretable backend reply, using raw text", zap.Error(err))
		reply = Reply{
			Message:     raw,
			Intent:      IntentGeneralChat,
			Suggestions: []string{},
			DataPoints:  map[string]string{},
		}
	}

	assistantTurn := NewTurn(RoleAssistant, reply.Message, &reply)
	if err := o.conv.Append(ctx, assistantTurn); err != nil {
		o.log.Warn("persist assistant turn failed", zap.Error(err))
	}

	metrics.AssistantRequest("ok")
	return assistantTurn, nil
}

func (o *Orchestrator) complete(ctx context.Context, req completion.Request) (string, error) {
	tracer := otel.Tracer("assistant")
	ctx, span := tracer.Start(ctx, "completion")
	span.SetAttributes(attribute.String("provider", o.gateway.Name()))
	defer span.End()

	start := time.Now()
	raw, err := o.gateway.Complete(ctx, req)
	metrics.CompletionDuration(o.gateway.Name(), time.Since(start))
	return raw, err
}

// History returns the ordered conversation.
func (o *Orchestrator) History() []Turn {
	return o.conv.Turns()
}

// Clear starts a new conversation and purges the persisted copy. It
// shares the admission guard with Ask: clearing under a pending round
// trip would let the in-flight assistant turn re-persist on top of the
// emptied history, so it is rejected with ErrBusy instead.
func (o *Orchestrator) Clear(ctx context.Context) error {
	if !o.acquire() {
		return ErrBusy
	}
	defer o.release()
	return o.conv.Clear(ctx)
}

// Suggestions returns the canned follow-up prompts.
func (o *Orchestrator) Suggestions() []string {
	out := make([]string, len(DefaultSuggestions))
	copy(out, DefaultSuggestions)
	return out
}

package stream

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"dexterwatch/internal/event"
)

// LostConnectionMessage is the error surfaced when the feed drops before a
// terminal event arrives.
const LostConnectionMessage = "Lost connection to Dexter."

// MessageKind identifies a run update.
type MessageKind int

const (
	// MessageStarted reports the backend-assigned run id.
	MessageStarted MessageKind = iota
	// MessageEvent delivers one coerced run event.
	MessageEvent
	// MessageClosed reports a deliberate close after the terminal event.
	MessageClosed
	// MessageFailed reports a run-creation failure or an unexpected
	// disconnection; Reason carries the user-facing message.
	MessageFailed
)

// Message is one update from a live run, delivered in arrival order.
type Message struct {
	Kind   MessageKind
	RunID  string
	Event  event.Event
	Reason string
}

// Run owns the single live connection for one run. Updates arrive on
// Messages until the run finishes or fails, then the channel closes.
// Closing the handle stops delivery on every exit path.
type Run struct {
	messages  chan Message
	cancel    context.CancelFunc
	closeOnce sync.Once
	dropped   atomic.Int64
}

// Start creates a run for the query and subscribes to its event feed. The
// caller must Close the returned handle when done with it; starting a
// replacement run requires closing the previous handle first.
func (c *Client) Start(ctx context.Context, req StartRequest) *Run {
	ctx, cancel := context.WithCancel(ctx)
	run := &Run{
		messages: make(chan Message, 64),
		cancel:   cancel,
	}
	go run.loop(ctx, c, req)
	return run
}

// Messages returns the update feed. It is closed once the run reaches a
// terminal outcome or the handle is closed.
func (r *Run) Messages() <-chan Message {
	return r.messages
}

// Close tears down the connection. No messages are delivered after the
// feed channel closes.
func (r *Run) Close() {
	r.closeOnce.Do(r.cancel)
}

// Dropped reports how many undecodable or unrecognized frames were
// discarded. Diagnostic only; dropped frames never abort the run.
func (r *Run) Dropped() int64 {
	return r.dropped.Load()
}

// loop drives one run: create, subscribe, decode, and close deliberately
// on the first terminal event.
func (r *Run) loop(ctx context.Context, c *Client, req StartRequest) {
	defer close(r.messages)
	defer r.cancel()

	runID, err := c.StartRun(ctx, req)
	if err != nil {
		r.emit(ctx, Message{Kind: MessageFailed, Reason: err.Error()})
		return
	}
	r.emit(ctx, Message{Kind: MessageStarted, RunID: runID})

	sub, err := c.Subscribe(ctx, runID)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		r.emit(ctx, Message{Kind: MessageFailed, Reason: LostConnectionMessage})
		return
	}
	defer sub.Close()

	for {
		payload, err := sub.Next()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// The feed ended before a terminal event: every clean
			// ending goes through the terminal branch below.
			r.emit(ctx, Message{Kind: MessageFailed, Reason: LostConnectionMessage})
			return
		}
		var raw any
		if err := json.Unmarshal(payload, &raw); err != nil {
			r.dropped.Add(1)
			continue
		}
		ev, ok := event.Coerce(raw)
		if !ok {
			r.dropped.Add(1)
			continue
		}
		r.emit(ctx, Message{Kind: MessageEvent, Event: ev})
		if ev.Terminal() {
			// Close deliberately instead of waiting for the server
			// to end the feed.
			_ = sub.Close()
			r.emit(ctx, Message{Kind: MessageClosed})
			return
		}
	}
}

// emit delivers a message unless the handle was closed.
func (r *Run) emit(ctx context.Context, msg Message) {
	select {
	case r.messages <- msg:
	case <-ctx.Done():
	}
}

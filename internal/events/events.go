// Package events defines the closed set of forum events pushed to
// connected clients, and their JSON wire envelope. The wire names match
// the legacy socket protocol so existing frontends keep working.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/ridglejessica55-prog/seren/internal/models"
)

// Wire names for the event envelope.
const (
	NamePostCreated    = "post:created"
	NamePostUpdated    = "post:updated"
	NameCommentCreated = "comment:created"
)

// Event is one of PostCreated, PostUpdated, or CommentCreated.
type Event interface {
	Name() string
}

// PostCreated is emitted after a post insert commits. Payload is the
// full canonical row.
type PostCreated struct {
	Post models.Post
}

func (PostCreated) Name() string { return NamePostCreated }

// PostUpdated is emitted after a like increment commits. Payload is the
// full updated row.
type PostUpdated struct {
	Post models.Post
}

func (PostUpdated) Name() string { return NamePostUpdated }

// CommentCreated is emitted after a comment insert commits.
type CommentCreated struct {
	PostID  string         `json:"postId"`
	Comment models.Comment `json:"comment"`
}

func (CommentCreated) Name() string { return NameCommentCreated }

// Envelope is the wire shape: {"event": name, "data": payload}.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Encode marshals an event into its wire envelope.
func Encode(e Event) ([]byte, error) {
	var payload any
	switch ev := e.(type) {
	case PostCreated:
		payload = ev.Post
	case PostUpdated:
		payload = ev.Post
	case CommentCreated:
		payload = ev
	default:
		return nil, fmt.Errorf("unknown event type %T", e)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", e.Name(), err)
	}
	return json.Marshal(Envelope{Event: e.Name(), Data: data})
}

// Decode parses a wire envelope back into a typed event.
func Decode(raw []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}

	switch env.Event {
	case NamePostCreated:
		var p models.Post
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", env.Event, err)
		}
		return PostCreated{Post: p}, nil
	case NamePostUpdated:
		var p models.Post
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", env.Event, err)
		}
		return PostUpdated{Post: p}, nil
	case NameCommentCreated:
		var c CommentCreated
		if err := json.Unmarshal(env.Data, &c); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", env.Event, err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown event %q", env.Event)
	}
}

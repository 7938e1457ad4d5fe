// Package events consumes the backend's server-sent event stream and
// decides which notifications invalidate what the user is looking at.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/marcin-skalski/patchwatch/internal/selection"
)

// TypeNewPatch is the only event type the client acts on.
const TypeNewPatch = "new_patch"

type Event struct {
	Type string `json:"type"`
	Game string `json:"game"`

	Raw json.RawMessage `json:"-"`
}

// ParseError is a stream message that was not a JSON event. It is logged
// and dropped, never surfaced to the view.
type ParseError struct {
	Data string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse event %q: %v", e.Data, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func Parse(data []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return Event{}, &ParseError{Data: string(data), Err: err}
	}
	ev.Raw = append(json.RawMessage(nil), data...)
	return ev, nil
}

// Relevant reports whether ev should refresh the view for sel: a new patch
// for the selected game while the latest snapshot is on screen.
func Relevant(ev Event, sel selection.Selection) bool {
	return ev.Type == TypeNewPatch &&
		sel.Mode == selection.Latest &&
		sel.Game.Matches(ev.Game)
}

// Package workflow owns the request controllers. Each controller drives one
// submission at a time through the agent transport, the validation boundary,
// and a lifecycle tracker that the UI layers render from.
package workflow

import (
	"context"
	"encoding/json"
	"errors"
)

// Sentinel errors shared by the controllers.
var (
	// ErrEmptyInput rejects blank submissions before any agent call.
	ErrEmptyInput = errors.New("input is empty")
	// ErrBusy rejects a submission while another is in flight.
	ErrBusy = errors.New("a request is already in flight")
)

// Invoker is the slice of the agent client the controllers depend on.
type Invoker interface {
	Invoke(ctx context.Context, agentID, input string) (json.RawMessage, error)
}

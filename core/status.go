package core

import (
	"encoding/json"
	"fmt"
)

// State is the variant tag of a document Status.
type State int

const (
	// StateProcessing is the initial state, set when a document is created.
	StateProcessing State = iota + 1
	// StateReady is terminal success.
	StateReady
	// StateFailed is terminal failure. It always carries a message.
	StateFailed
)

var stateNames = map[State]string{
	StateProcessing: "processing",
	StateReady:      "ready",
	StateFailed:     "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// ParseState converts a state name back into a State.
func ParseState(name string) (State, error) {
	for state, n := range stateNames {
		if n == name {
			return state, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidState, name)
}

// Status is the lifecycle status of a document. Construct it with
// Processing, Ready or Failed; the zero value is not a valid status.
type Status struct {
	state   State
	message string
}

// Processing returns the initial status.
func Processing() Status {
	return Status{state: StateProcessing}
}

// Ready returns a success status. note is informational and may be empty.
func Ready(note string) Status {
	return Status{state: StateReady, message: note}
}

// Failed returns a failure status carrying msg.
func Failed(msg string) Status {
	if msg == "" {
		msg = "unknown error"
	}
	return Status{state: StateFailed, message: msg}
}

// State returns the variant tag.
func (s Status) State() State { return s.state }

// Message returns the failure message for failed documents, or the
// informational note for ready ones.
func (s Status) Message() string { return s.message }

// FailureMessage returns the failure message, or "" if the status is not
// failed. Status deliberately does not implement error.
func (s Status) FailureMessage() string {
	if s.state != StateFailed {
		return ""
	}
	return s.message
}

func (s Status) IsProcessing() bool { return s.state == StateProcessing }
func (s Status) IsReady() bool      { return s.state == StateReady }
func (s Status) IsFailed() bool     { return s.state == StateFailed }

func (s Status) String() string {
	if s.message == "" {
		return s.state.String()
	}
	return s.state.String() + ": " + s.message
}

type statusJSON struct {
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(statusJSON{State: s.state.String(), Message: s.message})
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw statusJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	state, err := ParseState(raw.State)
	if err != nil {
		return err
	}
	if state == StateFailed {
		*s = Failed(raw.Message)
		return nil
	}
	*s = Status{state: state, message: raw.Message}
	return nil
}

// ValidateTransition checks a status change made by an ingestion run.
// Runs may only move a document out of processing; failed documents re-enter
// processing through an explicit retry, never through a run.
func ValidateTransition(from, to State) error {
	switch {
	case from == StateProcessing && (to == StateReady || to == StateFailed):
		return nil
	case from == StateFailed && to == StateProcessing:
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

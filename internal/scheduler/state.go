package scheduler

import "fmt"

// State is the lifecycle position of a submitted job.
type State uint8

const (
	// Created is the state of a ticket before it enters the queue.
	Created State = iota
	// Queued means the job waits for a free slot.
	Queued
	// Admitted means the job holds a slot and is executing.
	Admitted
	// Completed means the job finished executing, successfully or not.
	Completed
	// Cancelled means the job was removed from the queue before admission.
	Cancelled
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Queued:
		return "queued"
	case Admitted:
		return "admitted"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// IsTerminal reports whether no further transition is possible from s.
func IsTerminal(s State) bool {
	return s == Completed || s == Cancelled
}

// Transition validates a lifecycle move. It returns an error describing the
// rejected edge when the move is not allowed.
func Transition(from, to State) error {
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("scheduler: disallowed transition %s -> %s", from, to)
	}
	return nil
}

func isAllowedTransition(from, to State) bool {
	switch from {
	case Created:
		return to == Queued
	case Queued:
		return to == Admitted || to == Cancelled
	case Admitted:
		return to == Completed
	default:
		return false
	}
}

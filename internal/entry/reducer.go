// Package entry models the expense entry form as a strict state
// machine: an immutable state value, a tagged union of actions, and a
// pure transition function emitting one-shot outbound events. Effects
// (persistence, duplicate watching) live in Form, never in Reduce.
package entry

import (
	"strings"

	"expensetracker/internal/core"
)

// State is the immutable form state. Transitions produce a new value.
type State struct {
	Title       string
	Amount      string // raw input text, parsed on submit
	Category    string
	Notes       string
	ReceiptURI  string
	IsDuplicate bool
}

// InitialState returns the form's starting state.
func InitialState() State {
	return State{Category: core.DefaultCategory}
}

// Action is the tagged union of everything the form reacts to.
type Action interface{ isAction() }

type (
	TitleChanged     struct{ Value string }
	AmountChanged    struct{ Value string }
	CategoryChanged  struct{ Value string }
	NotesChanged     struct{ Value string }
	ReceiptPicked    struct{ URI string }
	DuplicateChanged struct{ Duplicate bool }
	Submit           struct{}
)

func (TitleChanged) isAction()     {}
func (AmountChanged) isAction()    {}
func (CategoryChanged) isAction()  {}
func (NotesChanged) isAction()     {}
func (ReceiptPicked) isAction()    {}
func (DuplicateChanged) isAction() {}
func (Submit) isAction()           {}

// Event is a one-shot outbound signal produced by a transition.
type Event interface{ isEvent() }

type (
	// Toast carries a user-visible message.
	Toast struct{ Message string }
	// SaveRequested asks the effect layer to persist the current state.
	SaveRequested struct{}
	// Saved reports a successful insert.
	Saved struct{ ID string }
)

func (Toast) isEvent()         {}
func (SaveRequested) isEvent() {}
func (Saved) isEvent()         {}

// Reduce applies an action to a state. It is pure: same inputs, same
// outputs, no I/O.
//
// Amount input is filtered to digits and a single dot; notes are capped
// at entry time. Rejected input leaves the state unchanged.
func Reduce(s State, a Action) (State, []Event) {
	switch a := a.(type) {
	case TitleChanged:
		s.Title = a.Value
	case AmountChanged:
		if core.AmountInputOK(a.Value) {
			s.Amount = a.Value
		}
	case CategoryChanged:
		s.Category = a.Value
	case NotesChanged:
		if len(a.Value) <= core.MaxNotesLen {
			s.Notes = a.Value
		}
	case ReceiptPicked:
		s.ReceiptURI = a.URI
	case DuplicateChanged:
		s.IsDuplicate = a.Duplicate
	case Submit:
		if msg := validate(s); msg != "" {
			return s, []Event{Toast{Message: msg}}
		}
		return s, []Event{SaveRequested{}}
	}
	return s, nil
}

func validate(s State) string {
	if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.Amount) == "" {
		return "Title and Amount are required"
	}
	if s.IsDuplicate {
		return "Duplicate entry found"
	}
	if _, err := core.ParseAmount(s.Amount); err != nil {
		return "Invalid amount"
	}
	return ""
}

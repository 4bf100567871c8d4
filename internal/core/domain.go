package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Suggested categories for the entry flow. Storage does not enforce
// them; reports bucket whatever label a record carries.
var Categories = []string{"Staff", "Food", "Travel", "Utilities", "Supplies", "Other"}

// DefaultCategory is preselected in the entry flow.
const DefaultCategory = "Staff"

// MaxNotesLen caps notes at entry time only.
const MaxNotesLen = 100

// MaxTitleLen caps titles at entry time only.
const MaxTitleLen = 200

// Expense is an immutable expense record. Records are created once and
// persisted; the only lifecycle operation after that is deletion.
type Expense struct {
	ID         string
	Title      string
	Amount     float64
	Category   string
	Notes      string // optional
	ReceiptURI string // optional, opaque
	Date       time.Time
}

var (
	ErrEmptyTitle    = errors.New("empty title")
	ErrTitleTooLong  = errors.New("title too long")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNotesTooLong  = errors.New("notes too long")
	ErrZeroDate      = errors.New("date cannot be zero")
)

// NewExpense builds a record with a fresh identity. Validation is the
// caller's concern; entry flows call Validate before inserting.
func NewExpense(title string, amount float64, category, notes, receiptURI string, date time.Time) Expense {
	return Expense{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(title),
		Amount:     amount,
		Category:   category,
		Notes:      notes,
		ReceiptURI: receiptURI,
		Date:       date,
	}
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if len(e.Title) > MaxTitleLen {
		return ErrTitleTooLong
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if len(e.Notes) > MaxNotesLen {
		return ErrNotesTooLong
	}
	if e.Date.IsZero() {
		return ErrZeroDate
	}
	return nil
}

// LocalDate returns the calendar day the record falls on in loc.
// Day bucketing is timezone-sensitive: the same timestamp can land on
// different days in different zones.
func (e Expense) LocalDate(loc *time.Location) time.Time {
	return DayOf(e.Date.In(loc))
}

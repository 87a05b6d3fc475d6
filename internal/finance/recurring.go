package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/govalues/money"
)

// Frequency is the unit by which a recurring rule's cursor advances.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
	FrequencyYearly  Frequency = "yearly"
)

// ValidFrequency reports whether f is one of the supported frequencies.
func ValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringRule is a template for periodic transaction generation.
// NextOccurrence is the sole scheduling cursor; only the processor advances
// it, strictly by one frequency unit per firing.
type RecurringRule struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	AccountID uuid.UUID
	Amount    money.Amount
	Type      TxType
	Category  string
	Note      string
	Frequency Frequency
	// StartDate anchors the schedule; its day-of-month is preserved across
	// shorter months (Jan 31 -> Feb 29 -> Mar 31).
	StartDate      time.Time
	NextOccurrence time.Time
	Active         bool
	CreatedAt      time.Time
}

// AmountMinor returns the rule's amount in minor units.
func (r RecurringRule) AmountMinor() int64 {
	units, _ := r.Amount.MinorUnits()
	return units
}

// Advance returns the occurrence that follows occ by exactly one frequency
// unit. Month and year steps are calendar-aware: the day-of-month anchors on
// StartDate and clamps to the target month's length, so a rule started on the
// 31st lands on Feb 29 in a leap year and returns to the 31st in March.
func (r RecurringRule) Advance(occ time.Time) time.Time {
	switch r.Frequency {
	case FrequencyWeekly:
		return occ.AddDate(0, 0, 7)
	case FrequencyMonthly:
		return addMonthsAnchored(occ, 1, r.StartDate.Day())
	case FrequencyYearly:
		return addMonthsAnchored(occ, 12, r.StartDate.Day())
	default: // daily
		return occ.AddDate(0, 0, 1)
	}
}

// FirstOnOrAfter returns the first scheduled occurrence at or after t.
// Used to (re)initialize the cursor when a rule is created or its
// frequency/start date are edited.
func (r RecurringRule) FirstOnOrAfter(t time.Time) time.Time {
	occ := r.StartDate
	for occ.Before(t) {
		occ = r.Advance(occ)
	}
	return occ
}

// addMonthsAnchored advances t by months whole months, landing on anchorDay
// clamped to the target month's length. time.Time.AddDate is unsuitable here:
// it normalizes Jan 31 + 1 month to Mar 2/3.
func addMonthsAnchored(t time.Time, months int, anchorDay int) time.Time {
	year, month, _ := t.Date()
	m := int(month) + months
	year += (m - 1) / 12
	month = time.Month((m-1)%12 + 1)
	day := anchorDay
	if last := daysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// daysIn returns the number of days in the given month.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Materialize builds the concrete transaction for one occurrence of the rule.
// The note is suffixed so system-generated postings stay identifiable.
func (r RecurringRule) Materialize(occ time.Time) Transaction {
	note := r.Note
	if note == "" {
		note = r.Category
	}
	ruleID := r.ID
	return Transaction{
		ID:        uuid.New(),
		UserID:    r.UserID,
		AccountID: r.AccountID,
		Type:      r.Type,
		Category:  r.Category,
		Note:      note + " [recurring]",
		Date:      occ,
		Amount:    r.Amount,
		RuleID:    &ruleID,
	}
}

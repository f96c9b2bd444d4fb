package types

import "time"

// JobOutcome is the per-user result of one scheduled job run.
type JobOutcome string

const (
	OutcomeSent             JobOutcome = "sent"
	OutcomeSkippedNoTasks   JobOutcome = "skipped_no_tasks"
	OutcomeSkippedDuplicate JobOutcome = "skipped_duplicate"
	OutcomeSkippedEmpty     JobOutcome = "skipped_empty"
)

// DigestBatchSummary aggregates per-user outcomes of one daily digest batch.
type DigestBatchSummary struct {
	Attempted        int `json:"attempted"`
	Sent             int `json:"sent"`
	SkippedNoTasks   int `json:"skippedNoTasks"`
	SkippedDuplicate int `json:"skippedDuplicate"`
	Errors           int `json:"errors"`
}

// Record tallies a single per-user outcome into the summary.
func (s *DigestBatchSummary) Record(outcome JobOutcome) {
	s.Attempted++
	switch outcome {
	case OutcomeSent:
		s.Sent++
	case OutcomeSkippedNoTasks:
		s.SkippedNoTasks++
	case OutcomeSkippedDuplicate:
		s.SkippedDuplicate++
	}
}

// RecordError tallies a failed per-user run.
func (s *DigestBatchSummary) RecordError() {
	s.Attempted++
	s.Errors++
}

// ReportBatchSummary aggregates per-user outcomes of one weekly or monthly
// report batch.
type ReportBatchSummary struct {
	Attempted        int `json:"attempted"`
	Sent             int `json:"sent"`
	SkippedDuplicate int `json:"skippedDuplicate"`
	SkippedEmpty     int `json:"skippedEmpty"`
	Errors           int `json:"errors"`
}

// Record tallies a single per-user outcome into the summary.
func (s *ReportBatchSummary) Record(outcome JobOutcome) {
	s.Attempted++
	switch outcome {
	case OutcomeSent:
		s.Sent++
	case OutcomeSkippedDuplicate:
		s.SkippedDuplicate++
	case OutcomeSkippedEmpty:
		s.SkippedEmpty++
	}
}

// RecordError tallies a failed per-user run.
func (s *ReportBatchSummary) RecordError() {
	s.Attempted++
	s.Errors++
}

// RunOptions controls a single orchestrator invocation. The zero value is
// what the hourly timer uses: natural calendar gating, no overrides.
type RunOptions struct {
	// SkipDaily suppresses the daily digest batch entirely.
	SkipDaily bool

	// ForceDaily bypasses the daily dedup check for every user.
	ForceDaily bool

	// ForceWeekly / ForceMonthly override calendar gating tri-state:
	// nil means "follow the calendar", true forces the batch, false
	// suppresses it even on its natural day.
	ForceWeekly  *bool
	ForceMonthly *bool

	// RecipientOverride redirects the daily digest to a single address for
	// operational testing. Only the matching user (by account or
	// notification email, case-insensitive) is processed, and non-email
	// channels are not attempted.
	RecipientOverride string
}

// RunSummary is the contract returned by every orchestrator invocation.
// Weekly and Monthly stay nil when calendar gating skipped them.
type RunSummary struct {
	ExecutedAt time.Time           `json:"executedAt"`
	Daily      *DigestBatchSummary `json:"daily,omitempty"`
	Weekly     *ReportBatchSummary `json:"weekly"`
	Monthly    *ReportBatchSummary `json:"monthly"`
}

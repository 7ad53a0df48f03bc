package domain

import "time"

// Record is a stored form submission as returned by the backend.
type Record struct {
	// ID is the backend identifier.
	ID string `json:"_id"`

	// Form is the schema name the record belongs to.
	Form string `json:"-"`

	// Data holds every field of the record as returned.
	Data map[string]any `json:"-"`

	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// ListOptions configures a record listing.
type ListOptions struct {
	// Limit is the maximum number of records.
	Limit int

	// Page is the 1-based page number.
	Page int

	// Search filters records by free text.
	Search string
}

// SubmissionStatus is the state of the single in-flight submission guard.
type SubmissionStatus string

// Submission states.
const (
	SubmissionIdle       SubmissionStatus = "idle"
	SubmissionSubmitting SubmissionStatus = "submitting"
	SubmissionSuccess    SubmissionStatus = "success"
	SubmissionFailure    SubmissionStatus = "failure"
)

// SubmissionResult describes a finished submission.
type SubmissionResult struct {
	// Record is the stored record on success.
	Record *Record

	// Created is true for a create, false for an update.
	Created bool

	// Notices are side effects worth surfacing (patient sync, etc.).
	Notices []Notice
}

// NoticeLevel grades a user-visible notice.
type NoticeLevel string

// Notice levels.
const (
	NoticeInfo  NoticeLevel = "info"
	NoticeWarn  NoticeLevel = "warn"
	NoticeError NoticeLevel = "error"
)

// Notice is a dismissible message surfaced to the user.
type Notice struct {
	Level   NoticeLevel
	Message string
}

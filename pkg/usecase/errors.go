package usecase

import "errors"

// Sentinel errors for use case layer
var (
	// Navigation errors
	ErrUnknownView = errors.New("unknown view")

	// Not found errors
	ErrUnknownDomain      = errors.New("unknown assessment domain")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrEvidenceNotFound   = errors.New("evidence file not found")

	// Input errors
	ErrUnknownField = errors.New("unknown section field")

	// Persistence errors
	ErrPersistenceRead  = errors.New("failed to read submission history")
	ErrPersistenceWrite = errors.New("failed to write submission history")
)

// Context keys for error values
const (
	SubmissionIDKey = "submission_id"
	FileIDKey       = "file_id"
	FieldKey        = "field"
)

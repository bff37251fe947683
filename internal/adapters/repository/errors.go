package repository

import "errors"

// Sentinel kinds for store errors. Callers match with errors.Is.
var (
	// ErrNotFound indicates the addressed record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicatePrediction indicates a prediction already exists for the
	// (user, challenge) pair. Policy is reject, not supersede.
	ErrDuplicatePrediction = errors.New("duplicate prediction")

	// ErrAlreadyResolved indicates a second attempt to write a prediction's
	// write-once settlement fields.
	ErrAlreadyResolved = errors.New("prediction already resolved")

	// ErrAlreadySettled indicates an attempt to move a bet out of a
	// terminal state.
	ErrAlreadySettled = errors.New("bet already settled")

	// ErrInvalidTransition indicates a lifecycle transition that does not
	// move forward.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrTestCasesSet indicates generated test cases were already cached
	// on the challenge.
	ErrTestCasesSet = errors.New("test cases already set")

	// ErrDuplicateID indicates an append reusing an existing record id.
	ErrDuplicateID = errors.New("duplicate record id")
)

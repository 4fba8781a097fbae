package store

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("already exists")

	// ErrStageConflict is returned by the compare-and-swap stage update when
	// the job is no longer in the expected stage. Callers must re-read the
	// job; the job itself is untouched.
	ErrStageConflict = errors.New("job stage conflict")
)

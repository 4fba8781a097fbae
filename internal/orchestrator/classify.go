package orchestrator

import (
	"context"
	"errors"
	"net"

	"github.com/reelforge/reelforge/internal/providers"
)

const (
	ClassTransient = "transient"
	ClassPermanent = "permanent"
)

// Classify maps a stage error to its retry class. Explicit wrappers from the
// providers package win. Timeouts count as transient. Anything unclassified
// defaults to transient so a flaky collaborator does not kill the job, with
// the lifetime retry budget as backstop; known reports whether the class came
// from an explicit signal rather than the default.
func Classify(err error) (class string, known bool) {
	switch {
	case providers.IsPermanent(err):
		return ClassPermanent, true
	case providers.IsTransient(err):
		return ClassTransient, true
	case errors.Is(err, context.DeadlineExceeded):
		return ClassTransient, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTransient, true
	}

	return ClassTransient, false
}

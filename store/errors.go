package store

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

// Kind is the error classification decided once at the storage boundary.
// Callers branch on kinds, never on driver error strings.
type Kind int

const (
	KindOther Kind = iota
	KindTransient
	KindExhausted // quota / rate limiting, always worth retrying
	KindConfig    // missing index or similar deployment problem, never retried
	KindNotFound
	KindConflict
)

// Server error codes worth distinguishing. Quota throttling shows up as
// 16500 on hosted deployments that meter request units.
const (
	codeIndexNotFound      = 27
	codeIndexSpecsConflict = 86
	codeQuotaExceeded      = 16500
)

var configPatterns = []string{
	"index not found",
	"no such index",
	"add an index",
	"hint provided does not correspond",
}

var exhaustedPatterns = []string{
	"quota",
	"rate limit",
	"too many requests",
	"request rate is large",
}

// Classify maps a driver error onto a Kind.
func Classify(err error) Kind {
	if err == nil {
		return KindOther
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return KindNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return KindConflict
	}

	var srvErr mongo.ServerError
	if errors.As(err, &srvErr) {
		switch {
		case srvErr.HasErrorCode(codeIndexNotFound), srvErr.HasErrorCode(codeIndexSpecsConflict):
			return KindConfig
		case srvErr.HasErrorCode(codeQuotaExceeded):
			return KindExhausted
		case srvErr.HasErrorLabel("TransientTransactionError"),
			srvErr.HasErrorLabel("UnknownTransactionCommitResult"):
			return KindTransient
		}
	}

	msg := strings.ToLower(err.Error())
	for _, p := range configPatterns {
		if strings.Contains(msg, p) {
			return KindConfig
		}
	}
	for _, p := range exhaustedPatterns {
		if strings.Contains(msg, p) {
			return KindExhausted
		}
	}

	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) ||
		errors.Is(err, context.DeadlineExceeded) {
		return KindTransient
	}

	return KindOther
}

// Retryable reports whether another attempt can plausibly succeed.
func Retryable(k Kind) bool {
	switch k {
	case KindTransient, KindExhausted, KindOther:
		return true
	default:
		return false
	}
}

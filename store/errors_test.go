package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindOther},
		{"no documents", mongo.ErrNoDocuments, KindNotFound},
		{"wrapped no documents", fmt.Errorf("load settings: %w", mongo.ErrNoDocuments), KindNotFound},
		{"deadline", context.DeadlineExceeded, KindTransient},
		{"index not found code", mongo.CommandError{Code: codeIndexNotFound}, KindConfig},
		{"index specs conflict code", mongo.CommandError{Code: codeIndexSpecsConflict}, KindConfig},
		{"quota code", mongo.CommandError{Code: codeQuotaExceeded}, KindExhausted},
		{"transient txn label", mongo.CommandError{Code: 112, Labels: []string{"TransientTransactionError"}}, KindTransient},
		{"unknown commit label", mongo.CommandError{Code: 0, Labels: []string{"UnknownTransactionCommitResult"}}, KindTransient},
		{"index message", errors.New("planner returned error: add an index for this query"), KindConfig},
		{"rate limit message", errors.New("429 Too Many Requests"), KindExhausted},
		{"cosmos throttle message", errors.New("Request rate is large"), KindExhausted},
		{"plain", errors.New("boom"), KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestRetryable(t *testing.T) {
	assert.True(t, Retryable(KindTransient))
	assert.True(t, Retryable(KindExhausted))
	assert.True(t, Retryable(KindOther))
	assert.False(t, Retryable(KindConfig))
	assert.False(t, Retryable(KindNotFound))
	assert.False(t, Retryable(KindConflict))
}

package billing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestClassifyStorageError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"plain error is permanent", errors.New("boom"), KindPermanentStorage},
		{"deadline is transient", context.DeadlineExceeded, KindTransientStorage},
		{"deadline text alone is not transient", errors.New("op: " + context.DeadlineExceeded.Error()), KindPermanentStorage},
		{
			"duplicate key is permanent",
			mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}},
			KindPermanentStorage,
		},
		{
			"transient transaction label is transient",
			mongo.CommandError{Code: 112, Labels: []string{"TransientTransactionError"}},
			KindTransientStorage,
		},
		{
			"unknown commit result is transient",
			mongo.CommandError{Code: 50, Labels: []string{"UnknownTransactionCommitResult"}},
			KindTransientStorage,
		},
		{
			"unlabeled command error is permanent",
			mongo.CommandError{Code: 121, Message: "document failed validation"},
			KindPermanentStorage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := classifyStorageError(tt.err)
			assert.Equal(t, tt.want, classified.Kind)
		})
	}
}

func TestClassifyStorageErrorPassesThroughClassified(t *testing.T) {
	original := validationError("bad input")
	classified := classifyStorageError(original)
	assert.Same(t, original, classified)
}

func TestClassifiedErrorMessageIsFixed(t *testing.T) {
	for _, kind := range []ErrorKind{KindValidation, KindTransientStorage, KindPermanentStorage} {
		err := &ClassifiedError{Kind: kind, cause: errors.New("internal detail")}
		assert.Equal(t, PublicMessage, err.Error())
		// The cause never leaks into the public message but stays reachable.
		assert.NotContains(t, err.Error(), "internal detail")
		assert.EqualError(t, errors.Unwrap(err), "internal detail")
	}
}

func TestCompensationFailureNamesTheOrphan(t *testing.T) {
	orphanID := primitive.NewObjectID()
	err := compensationFailure(orphanID, errors.New("payment down"), errors.New("delete down"))

	require.Equal(t, KindCompensationFailure, err.Kind)
	assert.Equal(t, orphanID, err.OrphanOrderID)
	assert.Contains(t, err.Error(), orphanID.Hex())
	assert.Contains(t, err.Unwrap().Error(), "payment down")
	assert.Contains(t, err.Unwrap().Error(), "delete down")
}

func TestRetryable(t *testing.T) {
	assert.True(t, (&ClassifiedError{Kind: KindTransientStorage}).Retryable())
	assert.False(t, (&ClassifiedError{Kind: KindPermanentStorage}).Retryable())
	assert.False(t, (&ClassifiedError{Kind: KindValidation}).Retryable())
	assert.False(t, (&ClassifiedError{Kind: KindCompensationFailure}).Retryable())
}

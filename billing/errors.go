package billing

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Server error labels marking a transaction as safe to retry.
const (
	labelTransientTransaction     = "TransientTransactionError"
	labelUnknownTransactionCommit = "UnknownTransactionCommitResult"
)

// ErrorKind classifies a coordinator failure.
type ErrorKind int

const (
	// KindValidation means the caller-supplied data was structurally
	// invalid. Never retried; no write was attempted.
	KindValidation ErrorKind = iota

	// KindTransientStorage means connectivity or contention. The whole
	// coordinator call is safe to retry with fresh identifiers.
	KindTransientStorage

	// KindPermanentStorage means a schema or constraint violation. Not
	// retried.
	KindPermanentStorage

	// KindCompensationFailure means the payment write failed and the
	// compensating order delete also failed: an orphaned order now exists
	// in storage and needs out-of-band remediation.
	KindCompensationFailure
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindTransientStorage:
		return "transient_storage"
	case KindPermanentStorage:
		return "permanent_storage"
	case KindCompensationFailure:
		return "compensation_failure"
	default:
		return "unknown"
	}
}

// PublicMessage is the fixed user-facing message for every failure except a
// compensation failure. Callers pattern-match on it.
const PublicMessage = "Failed to create order and payment"

// ClassifiedError is the only error type the coordinator returns. The
// original cause stays internal, reachable through Unwrap for logging.
type ClassifiedError struct {
	Kind ErrorKind

	// OrphanOrderID is set only for KindCompensationFailure: the order
	// left behind in storage.
	OrphanOrderID primitive.ObjectID

	cause error
}

func (e *ClassifiedError) Error() string {
	if e.Kind == KindCompensationFailure {
		return fmt.Sprintf("%s: compensation failed, orphaned order %s requires manual cleanup",
			PublicMessage, e.OrphanOrderID.Hex())
	}
	return PublicMessage
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

// Retryable reports whether the whole coordinator call may be retried.
func (e *ClassifiedError) Retryable() bool { return e.Kind == KindTransientStorage }

// IsKind reports whether err is a ClassifiedError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var classified *ClassifiedError
	return errors.As(err, &classified) && classified.Kind == kind
}

func validationError(format string, args ...interface{}) *ClassifiedError {
	return &ClassifiedError{Kind: KindValidation, cause: fmt.Errorf(format, args...)}
}

func compensationFailure(orphanOrderID primitive.ObjectID, paymentErr, deleteErr error) *ClassifiedError {
	return &ClassifiedError{
		Kind:          KindCompensationFailure,
		OrphanOrderID: orphanOrderID,
		cause:         fmt.Errorf("payment write failed (%v); order delete failed: %w", paymentErr, deleteErr),
	}
}

// classifyStorageError maps a raw storage error onto the taxonomy. Already
// classified errors pass through unchanged so inner writers can pre-classify.
func classifyStorageError(err error) *ClassifiedError {
	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}
	if isTransient(err) {
		return &ClassifiedError{Kind: KindTransientStorage, cause: err}
	}
	return &ClassifiedError{Kind: KindPermanentStorage, cause: err}
}

// isTransient recognizes the retryable driver errors: timeouts, network
// failures, and transaction aborts the server labels as safe to retry.
// Duplicate keys and other constraint violations are permanent.
func isTransient(err error) bool {
	if mongo.IsDuplicateKeyError(err) {
		return false
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.HasErrorLabel(labelTransientTransaction) ||
			cmdErr.HasErrorLabel(labelUnknownTransactionCommit)
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		return writeErr.HasErrorLabel(labelTransientTransaction) ||
			writeErr.HasErrorLabel(labelUnknownTransactionCommit)
	}
	return false
}

// Package errors provides structured error handling for the datastore.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Construction errors
	CodeInvalidCapacity Code = "INVALID_CAPACITY"

	// Lifecycle errors
	CodeCacheClosed Code = "CACHE_CLOSED"

	// Input errors
	CodeKeyTooLarge Code = "KEY_TOO_LARGE"

	// Storage errors
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	CodeLoadFailure      Code = "LOAD_FAILURE"
	CodeSaveFailure      Code = "SAVE_FAILURE"
	CodeFlushFailure     Code = "FLUSH_FAILURE"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - bad construction input
	case CodeInvalidCapacity, CodeKeyTooLarge:
		return codes.InvalidArgument

	// FailedPrecondition - state doesn't allow operation
	case CodeCacheClosed:
		return codes.FailedPrecondition

	// Unavailable - the durable store cannot serve requests
	case CodeStoreUnavailable:
		return codes.Unavailable

	// DataLoss - a write-back did not reach durable storage
	case CodeSaveFailure, CodeFlushFailure:
		return codes.DataLoss

	default:
		return codes.Internal
	}
}

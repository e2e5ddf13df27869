package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Wrap(CodeSaveFailure, "write back key", stderrors.New("disk full"))
	if got := err.Error(); got != "write back key: disk full" {
		t.Fatalf("Error() = %q", got)
	}
	if got := New(CodeCacheClosed, "cache is closed").Error(); got != "cache is closed" {
		t.Fatalf("Error() = %q", got)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("put: %w", Wrap(CodeSaveFailure, "write back", stderrors.New("boom")))
	if !stderrors.Is(err, New(CodeSaveFailure, "")) {
		t.Fatal("expected code match through wrapping")
	}
	if stderrors.Is(err, New(CodeLoadFailure, "")) {
		t.Fatal("expected different code not to match")
	}
}

func TestUnwrapReachesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeFlushFailure, "flush", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected cause in chain")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(fmt.Errorf("x: %w", New(CodeCacheClosed, "closed"))); got != CodeCacheClosed {
		t.Fatalf("GetCode = %q, want %q", got, CodeCacheClosed)
	}
	if got := GetCode(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("GetCode = %q, want %q", got, CodeUnknown)
	}
}

func TestGRPCCode(t *testing.T) {
	tests := []struct {
		code Code
		want codes.Code
	}{
		{CodeInvalidCapacity, codes.InvalidArgument},
		{CodeKeyTooLarge, codes.InvalidArgument},
		{CodeCacheClosed, codes.FailedPrecondition},
		{CodeStoreUnavailable, codes.Unavailable},
		{CodeSaveFailure, codes.DataLoss},
		{CodeFlushFailure, codes.DataLoss},
		{CodeLoadFailure, codes.Internal},
		{CodeUnknown, codes.Internal},
	}
	for _, tt := range tests {
		if got := tt.code.GRPCCode(); got != tt.want {
			t.Fatalf("%s.GRPCCode() = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestToGRPCStatusAttachesErrorInfo(t *testing.T) {
	err := WrapWithMetadata(CodeSaveFailure, "write back", map[string]string{"key": "k1"}, stderrors.New("boom"))

	st, ok := status.FromError(err.ToGRPCStatus())
	if !ok {
		t.Fatal("expected grpc status")
	}
	if st.Code() != codes.DataLoss {
		t.Fatalf("code = %v, want %v", st.Code(), codes.DataLoss)
	}
	var info *errdetails.ErrorInfo
	for _, detail := range st.Details() {
		if d, ok := detail.(*errdetails.ErrorInfo); ok {
			info = d
		}
	}
	if info == nil {
		t.Fatal("expected ErrorInfo detail")
	}
	if info.Reason != string(CodeSaveFailure) || info.Domain != Domain {
		t.Fatalf("unexpected info %+v", info)
	}
	if info.Metadata["key"] != "k1" {
		t.Fatalf("metadata = %v", info.Metadata)
	}
}

func TestHandleError(t *testing.T) {
	if HandleError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}

	wrapped := fmt.Errorf("put: %w", Wrap(CodeStoreUnavailable, "open store", stderrors.New("locked")))
	if got := status.Code(HandleError(wrapped)); got != codes.Unavailable {
		t.Fatalf("domain error code = %v, want %v", got, codes.Unavailable)
	}

	st := status.Convert(HandleError(stderrors.New("plain")))
	if st.Code() != codes.Internal {
		t.Fatalf("plain error code = %v, want %v", st.Code(), codes.Internal)
	}
	if st.Message() != "plain" {
		t.Fatalf("plain error message = %q", st.Message())
	}
}

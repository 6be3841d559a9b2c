package upstream

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryWithBackoff_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), "content", func() (ErrorClass, error) {
		calls++
		return "", nil
	})
	if err != nil {
		t.Fatalf("retryWithBackoff() failed: %v", err)
	}
	if calls != 1 {
		t.Errorf("Calls = %d, want 1", calls)
	}
}

func TestRetryWithBackoff_ClientErrorNotRetried(t *testing.T) {
	calls := 0
	boom := errors.New("bad request")
	err := retryWithBackoff(context.Background(), "content", func() (ErrorClass, error) {
		calls++
		return ErrorClassClient, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Error = %v, want the original error", err)
	}
	if calls != 1 {
		t.Errorf("Calls = %d, want 1 (client errors are not retried)", calls)
	}
}

func TestRetryWithBackoff_ExhaustsServerErrors(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), "content", func() (ErrorClass, error) {
		calls++
		return ErrorClassServer, errors.New("upstream down")
	})
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("Error = %v, want ErrRetryExhausted", err)
	}
	if calls != 3 {
		t.Errorf("Calls = %d, want 3 (MaxAttempts for server errors)", calls)
	}
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	calls := 0
	err := retryWithBackoff(context.Background(), "content", func() (ErrorClass, error) {
		calls++
		if calls < 3 {
			return ErrorClassServer, errors.New("upstream down")
		}
		return "", nil
	})
	if err != nil {
		t.Fatalf("retryWithBackoff() failed: %v", err)
	}
	if calls != 3 {
		t.Errorf("Calls = %d, want 3", calls)
	}
}

func TestRetryWithBackoff_ContextCancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := retryWithBackoff(ctx, "content", func() (ErrorClass, error) {
		return ErrorClassServer, errors.New("upstream down")
	})
	if !errors.Is(err, ErrContextCancelled) {
		t.Fatalf("Error = %v, want ErrContextCancelled", err)
	}
}

package library

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetry(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name      string
		failures  int
		transient bool
		wantCalls int
		wantErr   bool
	}{
		{"success", 0, true, 1, false},
		{"recovers", 2, true, 3, false},
		{"exhausted", 5, true, 3, true},
		{"permanent", 5, false, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retry(context.Background(), 3, time.Millisecond, func() error {
				calls++
				if calls > tt.failures {
					return nil
				}
				if tt.transient {
					return &transientError{boom}
				}
				return boom
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && err != boom {
				t.Errorf("err = %#v, want the unwrapped cause", err)
			}
		})
	}
}

func TestRetryCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := retry(ctx, 3, time.Hour, func() error { return &transientError{errors.New("down")} })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestPing(t *testing.T) {
	defer func(d time.Duration) { connectDelay = d }(connectDelay)
	connectDelay = time.Millisecond

	calls := 0
	err := ping(context.Background(), func(context.Context) error {
		calls++
		return errors.New("connection refused")
	})
	if err == nil || calls != connectAttempts {
		t.Errorf("ping() = %v after %d calls, want error after %d", err, calls, connectAttempts)
	}
}

package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func fastConfig(attempts int) *ReconnectConfig {
	return &ReconnectConfig{
		MaxAttempts: attempts,
		Backoff:     time.Millisecond,
		Multiplier:  2.0,
		MaxBackoff:  5 * time.Millisecond,
	}
}

func TestReconnect_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Reconnect(context.Background(), zerolog.Nop(), func(ctx context.Context) error {
		calls++
		return nil
	}, fastConfig(3))

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestReconnect_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Reconnect(context.Background(), zerolog.Nop(), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("dial tcp: connection refused")
		}
		return nil
	}, fastConfig(5))

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestReconnect_GivesUp(t *testing.T) {
	dialErr := errors.New("dial tcp: connection refused")
	calls := 0
	err := Reconnect(context.Background(), zerolog.Nop(), func(ctx context.Context) error {
		calls++
		return dialErr
	}, fastConfig(3))

	if !errors.Is(err, dialErr) {
		t.Errorf("Expected last error to be wrapped, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected 3 calls, got %d", calls)
	}
}

func TestReconnect_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Reconnect(ctx, zerolog.Nop(), func(ctx context.Context) error {
		calls++
		return nil
	}, fastConfig(3))

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Errorf("Expected no calls, got %d", calls)
	}
}

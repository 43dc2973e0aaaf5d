package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetry(t *testing.T) {
	errTemp := errors.New("temporary")
	errFatal := errors.New("fatal")

	testCases := []struct {
		name      string
		failures  []error
		stopOn    []error
		wantCalls int
		wantErr   error
	}{
		{name: "first attempt succeeds", wantCalls: 1},
		{name: "succeeds after retries", failures: []error{errTemp, errTemp}, wantCalls: 3},
		{name: "gives up", failures: []error{errTemp, errTemp, errTemp, errTemp}, wantCalls: 3, wantErr: errTemp},
		{name: "stops on listed error", failures: []error{errFatal}, stopOn: []error{errFatal}, wantCalls: 1, wantErr: errFatal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0
			fn := func() error {
				calls++
				if calls <= len(tc.failures) {
					return tc.failures[calls-1]
				}
				return nil
			}

			cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond}
			err := Retry(context.Background(), cfg, fn, tc.stopOn...)

			assert.Equal(t, tc.wantCalls, calls)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := Retry(ctx, RetryConfig{MaxAttempts: 5, InitialDelay: time.Second}, func() error {
		calls++
		return errors.New("boom")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

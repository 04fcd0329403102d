package contract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetrySucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), 3, func() error {
		attempts++
		if attempts < 2 {
			return errors.New("transient")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetryStopsOnPermanent(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), 5, func() error {
		attempts++
		return Permanent(errors.New("not found"))
	})
	assert.EqualError(t, err, "not found")
	assert.Equal(t, 1, attempts)
}

func TestRetryZeroRetries(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), 0, func() error {
		attempts++
		return errors.New("down")
	})
	assert.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	attempts := 0
	err := Retry(ctx, 5, func() error {
		attempts++
		return errors.New("down")
	})
	assert.Error(t, err)
	assert.LessOrEqual(t, attempts, 1)
}

package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_TripsAfterConsecutiveFailures(t *testing.T) {
	cfg := DefaultConfig("test")
	cfg.ConsecutiveFailures = 2
	cfg.Timeout = time.Hour
	cb := New[struct{}](cfg, zap.NewNop())

	boom := errors.New("boom")
	fail := func() (struct{}, error) { return struct{}{}, boom }

	_, err := cb.Execute(fail)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, gobreaker.StateClosed, cb.State())

	_, err = cb.Execute(fail)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, gobreaker.StateOpen, cb.State())

	called := false
	_, err = cb.Execute(func() (struct{}, error) {
		called = true
		return struct{}{}, nil
	})
	assert.ErrorIs(t, err, ErrOpenState)
	assert.False(t, called)
}

func TestNew_SuccessResetsFailures(t *testing.T) {
	cfg := DefaultConfig("test")
	cfg.ConsecutiveFailures = 2
	cb := New[int](cfg, zap.NewNop())

	_, _ = cb.Execute(func() (int, error) { return 0, errors.New("x") })
	v, err := cb.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)

	_, _ = cb.Execute(func() (int, error) { return 0, errors.New("x") })
	assert.Equal(t, gobreaker.StateClosed, cb.State())
}

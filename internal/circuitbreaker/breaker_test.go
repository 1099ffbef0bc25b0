package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errTransport = errors.New("connection refused")
var errRejected = errors.New("400 bad request")

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := New[int](Settings{Name: "test", ConsecutiveFailures: 2, OpenTimeout: time.Minute}, nil)

	for i := 0; i < 2; i++ {
		_, err := b.Execute(func() (int, error) { return 0, errTransport })
		require.ErrorIs(t, err, errTransport)
	}

	calls := 0
	_, err := b.Execute(func() (int, error) { calls++; return 1, nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.Zero(t, calls)
	assert.Equal(t, "open", b.State())
}

func TestBreaker_IgnoresNonFailures(t *testing.T) {
	b := New[int](Settings{
		Name:                "test",
		ConsecutiveFailures: 1,
		IsFailure:           func(err error) bool { return errors.Is(err, errTransport) },
	}, nil)

	for i := 0; i < 3; i++ {
		_, err := b.Execute(func() (int, error) { return 0, errRejected })
		require.ErrorIs(t, err, errRejected)
	}
	assert.Equal(t, "closed", b.State())

	v, err := b.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}

func TestBreaker_HalfOpenAfterTimeout(t *testing.T) {
	b := New[int](Settings{Name: "test", ConsecutiveFailures: 1, OpenTimeout: 20 * time.Millisecond}, nil)

	_, _ = b.Execute(func() (int, error) { return 0, errTransport })
	require.Equal(t, "open", b.State())

	time.Sleep(40 * time.Millisecond)
	v, err := b.Execute(func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 3, v)
	assert.Equal(t, "closed", b.State())
}

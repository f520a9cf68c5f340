package view

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestAwaitDeliversWhileAlive(t *testing.T) {
	scope := NewScope(context.Background())
	defer scope.Close()

	got, err := Await(scope, func(context.Context) (int, error) { return 42, nil })
	require.NoError(t, err)
	assert.Equal(t, 42, got)
}

func TestAwaitPassesFetchError(t *testing.T) {
	scope := NewScope(context.Background())
	defer scope.Close()

	cause := errors.New("boom")
	_, err := Await(scope, func(context.Context) (string, error) { return "", cause })
	assert.ErrorIs(t, err, cause)
}

func TestAwaitDiscardsAfterParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	scope := NewScope(parent)
	defer scope.Close()

	release := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()

	got, err := Await(scope, func(context.Context) ([]string, error) {
		<-release
		return []string{"late"}, nil
	})

	assert.ErrorIs(t, err, ErrDiscarded)
	assert.Nil(t, got)
	assert.False(t, scope.Alive())
}

func TestAwaitOnClosedScope(t *testing.T) {
	scope := NewScope(context.Background())
	scope.Close()
	scope.Close()

	called := false
	_, err := Await(scope, func(context.Context) (int, error) {
		called = true
		return 1, nil
	})
	assert.ErrorIs(t, err, ErrDiscarded)
	assert.False(t, called)
}

func TestCloseWaitsForFetch(t *testing.T) {
	scope := NewScope(context.Background())

	started := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		_, _ = Await(scope, func(ctx context.Context) (int, error) {
			close(started)
			<-ctx.Done()
			close(finished)
			return 0, ctx.Err()
		})
	}()

	<-started
	scope.Close()
	select {
	case <-finished:
	default:
		t.Fatal("Close returned before the fetch goroutine finished")
	}
}

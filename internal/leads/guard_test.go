package leads

import (
	"bytes"
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onetriage/leadintake/pkg/logging"
)

func TestMemoryGuard_SingleFlight(t *testing.T) {
	g := NewMemoryGuard()
	ctx := context.Background()

	release, err := g.Acquire(ctx, "Contact:session-1")
	require.NoError(t, err)

	_, err = g.Acquire(ctx, "Contact:session-1")
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	other, err := g.Acquire(ctx, "Partner:session-1")
	require.NoError(t, err)
	other()

	release()
	release()
	again, err := g.Acquire(ctx, "Contact:session-1")
	require.NoError(t, err)
	again()
}

func TestRedisGuard_SingleFlightAcrossClients(t *testing.T) {
	mr := miniredis.RunT(t)
	a := NewRedisGuard(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute, logging.Discard())
	b := NewRedisGuard(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute, logging.Discard())
	ctx := context.Background()

	release, err := a.Acquire(ctx, "Contact:jane@x.com")
	require.NoError(t, err)
	assert.True(t, mr.Exists("leads:inflight:Contact:jane@x.com"))

	_, err = b.Acquire(ctx, "Contact:jane@x.com")
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	release()
	assert.False(t, mr.Exists("leads:inflight:Contact:jane@x.com"))

	releaseB, err := b.Acquire(ctx, "Contact:jane@x.com")
	require.NoError(t, err)
	releaseB()
}

func TestRedisGuard_ExpiredLockIsNotStolenOnRelease(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	g := NewRedisGuard(client, time.Second, logging.Discard())
	ctx := context.Background()

	staleRelease, err := g.Acquire(ctx, "k")
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)

	freshRelease, err := g.Acquire(ctx, "k")
	require.NoError(t, err)

	staleRelease()
	assert.True(t, mr.Exists("leads:inflight:k"), "stale holder must not delete the new lock")
	freshRelease()
	assert.False(t, mr.Exists("leads:inflight:k"))
}

func TestRedisGuard_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	g := NewRedisGuard(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0, logging.Discard())
	mr.Close()

	_, err := g.Acquire(context.Background(), "k")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSubmissionInFlight)
}

func TestRedisGuard_ReleaseFailureIsLogged(t *testing.T) {
	mr := miniredis.RunT(t)
	var buf bytes.Buffer
	g := NewRedisGuard(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute, logging.NewWithWriter(&buf, "debug"))

	release, err := g.Acquire(context.Background(), "Contact:tab-1")
	require.NoError(t, err)
	mr.Close()

	release()

	assert.Contains(t, buf.String(), `"msg":"failed to release submission lock"`)
	assert.Contains(t, buf.String(), `"key":"Contact:tab-1"`)
	assert.Contains(t, buf.String(), `"level":"WARN"`)
}

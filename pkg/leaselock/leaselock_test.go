package leaselock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagexplorer/backend/internal/db/dbtest"
)

func TestOptionsWithDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, 5*time.Minute, o.TTL)
	assert.Equal(t, 150*time.Second, o.RenewEvery)
	assert.Equal(t, 250*time.Millisecond, o.WaitInterval)

	o = Options{TTL: 10 * time.Second, RenewEvery: time.Minute, WaitJitter: -1}.withDefaults()
	assert.Equal(t, 5*time.Second, o.RenewEvery)
	assert.Zero(t, o.WaitJitter)
}

func TestAcquireRejectsEmptyKey(t *testing.T) {
	_, err := New(nil).Acquire(context.Background(), "", Options{})
	assert.Error(t, err)
}

func TestSleepWithJitterHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepWithJitter(ctx, time.Hour, 0), context.Canceled)
	assert.NoError(t, sleepWithJitter(context.Background(), 0, 0))
}

func TestLeaseLifecycle(t *testing.T) {
	pool := dbtest.Pool(t)
	c := New(pool)
	ctx := context.Background()

	first, err := c.Acquire(ctx, KeyEmptyTrash, Options{TTL: time.Minute, Owner: "worker-a"})
	require.NoError(t, err)
	assert.NoError(t, first.Err())

	_, err = c.Acquire(ctx, KeyEmptyTrash, Options{TTL: time.Minute})
	assert.ErrorIs(t, err, ErrBusy)

	require.NoError(t, first.Release(ctx))
	assert.ErrorIs(t, first.Err(), context.Canceled)

	second, err := c.Acquire(ctx, KeyEmptyTrash, Options{TTL: time.Minute})
	require.NoError(t, err)
	require.NoError(t, second.Release(ctx))
}

func TestWithLeaseWaitsForHolder(t *testing.T) {
	pool := dbtest.Pool(t)
	c := New(pool)
	ctx := context.Background()

	holder, err := c.Acquire(ctx, KeyTagEmbeddings, Options{TTL: time.Minute})
	require.NoError(t, err)
	go func() {
		time.Sleep(300 * time.Millisecond)
		_ = holder.Release(context.Background())
	}()

	ran := false
	err = c.WithLease(ctx, KeyTagEmbeddings, Options{TTL: time.Minute, Wait: true, WaitInterval: 50 * time.Millisecond}, func(ctx context.Context) error {
		ran = true
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	boom := errors.New("boom")
	err = c.WithLease(ctx, KeyTagEmbeddings, Options{}, func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

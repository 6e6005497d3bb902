package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_DistributedLockAndIndex(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	index := redis.NewIndex(client)
	m, _ := newManager(t,
		session.WithLocker(redis.NewLocker(client, "", redis.WithRetryInterval(5*time.Millisecond))),
		session.WithIndex(index),
		session.WithSessionTTL(time.Minute),
	)

	sid := start(t, m)
	renderPage(t, m, sid, "0")
	assert.False(t, mr.Exists(redis.DefaultPrefix+"lock:"+sid), "lock is released after the request")

	list, err := index.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, sid, list[0].ID)

	// Another replica holds the session.
	require.NoError(t, mr.Set(redis.DefaultPrefix+"lock:"+sid, "elsewhere"))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	resp := m.Handle(ctx, domain.Request{SessionID: sid, PageID: "1"})
	require.True(t, resp.IsError())
	assert.Equal(t, domain.CodeUnavailable, resp.Error.Code)

	m.End(sid)
	assert.Eventually(t, func() bool {
		list, err := index.List(context.Background())
		return err == nil && len(list) == 0
	}, time.Second, 10*time.Millisecond)
}

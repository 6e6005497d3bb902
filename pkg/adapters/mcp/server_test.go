package mcp_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/demo"
	"github.com/aretw0/arbor/pkg/adapters/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_PageTools(t *testing.T) {
	app, err := arbor.New(demo.Root)
	require.NoError(t, err)
	defer app.Close()

	s := mcp.NewServer(app, mcp.WithSessions(app.Manager().List))
	require.NotNil(t, s.MCPServer())
	ctx := context.Background()

	first, err := s.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1", first.PageID)
	assert.Contains(t, first.Body, `action token="a2" label="++"`)
	assert.Equal(t, "text/plain; charset=utf-8", first.ContentType)

	next, err := s.Submit(ctx, first.SessionID, first.PageID, map[string]string{"v1": "Ada", "a2": ""})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, next.SessionID)
	assert.Equal(t, "3", next.PageID, "callback page 2 redirects to rendered page 3")
	assert.Contains(t, next.Body, "Hello, Ada")
	assert.Contains(t, next.Body, "    1\n")

	back, err := s.Render(ctx, first.SessionID, first.PageID)
	require.NoError(t, err)
	assert.Contains(t, back.Body, "    0\n")
	assert.NotContains(t, back.Body, "Ada")

	require.Len(t, app.Manager().List(), 1)
}

func TestServer_Errors(t *testing.T) {
	app, err := arbor.New(demo.Root)
	require.NoError(t, err)
	defer app.Close()
	s := mcp.NewServer(app)
	ctx := context.Background()

	_, err = s.Render(ctx, "nope", "1")
	assert.ErrorContains(t, err, "expired")

	first, err := s.Start(ctx)
	require.NoError(t, err)
	_, err = s.Submit(ctx, first.SessionID, first.PageID, nil)
	assert.ErrorContains(t, err, "no tokens")

	_, err = s.Submit(ctx, first.SessionID, first.PageID, map[string]string{"a2": "", "a3": ""})
	assert.ErrorContains(t, err, "protocol")
}

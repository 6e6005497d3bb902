package demo

import (
	"regexp"
	"testing"

	"github.com/aretw0/arbor/pkg/callback"
	"github.com/aretw0/arbor/pkg/component"
	"github.com/aretw0/arbor/pkg/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderApp(a *App) (string, *callback.Registry) {
	out := render.NewOutline()
	reg := callback.NewRegistry()
	component.RenderChain(component.NewRenderer(out, reg), a)
	return out.String(), reg
}

func press(t *testing.T, a *App, label string) {
	t.Helper()
	body, reg := renderApp(a)
	m := regexp.MustCompile(`token="(a\d+)" label="` + regexp.QuoteMeta(label) + `"`).FindStringSubmatch(body)
	require.NotNil(t, m, body)

	matched, err := reg.Match(map[string]string{m[1]: ""})
	require.NoError(t, err)
	pass := callback.NewPass(matched)
	component.ProcessChain(pass, a)
	require.NoError(t, pass.Run())
}

func TestApp_ResetNeedsConfirmation(t *testing.T) {
	a := NewApp()
	press(t, a, "++")
	press(t, a, "++")
	assert.Equal(t, 2, a.Counter().Value())

	press(t, a, "reset")
	body, _ := renderApp(a)
	assert.Contains(t, body, "confirm\n    Reset the counter?")
	assert.Equal(t, a.confirm, a.Delegating())

	press(t, a, "no")
	assert.Equal(t, 2, a.Counter().Value())
	assert.Nil(t, a.Delegating())

	press(t, a, "reset")
	press(t, a, "yes")
	assert.Equal(t, 0, a.Counter().Value())
	assert.Equal(t, 1, a.Resets())
	assert.Len(t, a.Decorations(), 1, "only the frame remains")
}

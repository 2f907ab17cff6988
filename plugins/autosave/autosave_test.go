package autosave

import (
	"testing"
	"time"

	"github.com/bethropolis/tidemark/internal/persist"
	"github.com/bethropolis/tidemark/internal/plugin/plugintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavesModifiedSession(t *testing.T) {
	api := plugintest.New()
	api.Config["autosave"] = map[string]interface{}{"enabled": true, "interval": "10ms"}

	p := New()
	require.NoError(t, p.Initialize(api))
	defer p.Shutdown()

	require.NoError(t, api.Session.TypeChar('x'))
	require.Eventually(t, func() bool { return !api.IsModified() }, time.Second, 5*time.Millisecond)

	content, err := api.Store.Get(t.Context(), persist.DefaultSlot)
	require.NoError(t, err)
	assert.Contains(t, content, "x")
}

func TestSkipsUnmodifiedSession(t *testing.T) {
	api := plugintest.New()
	api.Config["autosave"] = map[string]interface{}{"enabled": true, "interval": "5ms"}

	p := New()
	require.NoError(t, p.Initialize(api))
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, p.Shutdown())

	assert.Equal(t, 0, api.Saves())
}

func TestDisabledByDefault(t *testing.T) {
	api := plugintest.New()
	api.Config["autosave"] = map[string]interface{}{"interval": "not a duration"}

	p := New().(*AutoSave)
	require.NoError(t, p.Initialize(api))
	assert.False(t, p.enabled)
	assert.Equal(t, defaultInterval, p.interval)
	assert.Nil(t, p.stopChan)
	assert.NoError(t, p.Shutdown())
}

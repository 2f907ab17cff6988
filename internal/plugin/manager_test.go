package plugin_test

import (
	"errors"
	"testing"

	"github.com/bethropolis/tidemark/internal/plugin"
	"github.com/bethropolis/tidemark/internal/plugin/plugintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	name    string
	initErr error
	log     *[]string
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Initialize(plugin.EditorAPI) error {
	*r.log = append(*r.log, "init "+r.name)
	return r.initErr
}

func (r *recorder) Shutdown() error {
	*r.log = append(*r.log, "stop "+r.name)
	return nil
}

func TestManagerLifecycle(t *testing.T) {
	var log []string
	m := plugin.NewManager()
	require.NoError(t, m.Register(&recorder{name: "b", log: &log}))
	require.NoError(t, m.Register(&recorder{name: "a", initErr: errors.New("broken"), log: &log}))
	require.NoError(t, m.Register(&recorder{name: "c", log: &log}))

	m.InitializePlugins(plugintest.New())
	m.ShutdownPlugins()

	assert.Equal(t, []string{"init b", "init a", "init c", "stop c", "stop a", "stop b"}, log)
	assert.Equal(t, []string{"a", "b", "c"}, m.Names())
}

func TestManagerRejectsBadNames(t *testing.T) {
	var log []string
	m := plugin.NewManager()
	assert.Error(t, m.Register(&recorder{name: "", log: &log}))
	require.NoError(t, m.Register(&recorder{name: "x", log: &log}))
	assert.Error(t, m.Register(&recorder{name: "x", log: &log}))

	p, ok := m.GetPlugin("x")
	require.True(t, ok)
	assert.Equal(t, "x", p.Name())
}

package wordcount

import (
	"testing"

	"github.com/bethropolis/tidemark/internal/document"
	"github.com/bethropolis/tidemark/internal/plugin/plugintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCount(t *testing.T) {
	assert.Equal(t, Stats{Blocks: 1}, Count(document.Empty()))
	assert.Equal(t, Stats{Blocks: 2, Words: 4, Chars: 15}, Count(document.FromText("h\u00e9llo world\na  b")))
}

func TestWcCommand(t *testing.T) {
	api := plugintest.New()
	require.NoError(t, New().Initialize(api))
	for _, c := range "# Title" {
		require.NoError(t, api.Session.TypeChar(c))
	}

	require.NoError(t, api.Run("wc"))
	assert.Equal(t, []string{"Blocks: 1, Headings: 1, Words: 1, Chars: 5"}, api.Messages())
}

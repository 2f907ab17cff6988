package clipboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalRegister(t *testing.T) {
	c := New(false)
	assert.False(t, c.System())
	assert.Equal(t, "", c.Paste())

	c.Copy("first")
	c.Copy("second line")
	assert.Equal(t, "second line", c.Paste())
}

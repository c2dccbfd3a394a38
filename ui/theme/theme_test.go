package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrentPalette_FollowsVariant(t *testing.T) {
	defer func(prev bool) { darkMode = prev }(darkMode)

	darkMode = false
	p := CurrentPalette()
	assert.Equal(t, light, p)

	darkMode = true
	p = CurrentPalette()
	assert.Equal(t, dark, p)
	assert.NotEqual(t, light.AppBg, p.AppBg)
	assert.Equal(t, light.Accent, p.Accent)
}

//go:build linux

package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stigoleg/mouse-jiggler/internal/platform/linux"
)

func TestFullscreenOnAny(t *testing.T) {
	screens := []linux.Geometry{
		{X: 0, Y: 0, Width: 2560, Height: 1440},
		{X: 2560, Y: 0, Width: 1920, Height: 1080},
	}

	assert.True(t, fullscreenOnAny(Rect{Left: 2560, Top: 0, Right: 4480, Bottom: 1080}, screens),
		"fullscreen video on the second monitor")
	assert.True(t, fullscreenOnAny(Rect{Left: 0, Top: 0, Right: 2560, Bottom: 1440}, screens))
	assert.False(t, fullscreenOnAny(Rect{Left: 0, Top: 0, Right: 4480, Bottom: 1440}, screens),
		"spanning both monitors is not fullscreen on either")
	assert.False(t, fullscreenOnAny(Rect{Left: 2600, Top: 40, Right: 3400, Bottom: 640}, screens))
	assert.False(t, fullscreenOnAny(Rect{Right: 100, Bottom: 100}, nil))
}

package wrap

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailableWidth(t *testing.T) {
	w := DefaultWindow()
	assert.Equal(t, 741.0, AvailableWidth(Policy{}, w))

	w.Face = true
	assert.Equal(t, 585.0, AvailableWidth(Policy{}, w))

	w = DefaultWindow()
	w.ContainerWidth = 300
	assert.Equal(t, 250.0, AvailableWidth(Policy{}, w))

	w.ContainerWidth = 100
	assert.Equal(t, DefaultMinWidth, AvailableWidth(Policy{}, w))
}

func TestAvailableWidthOverride(t *testing.T) {
	w := DefaultWindow()
	assert.Equal(t, 500.0, AvailableWidth(Policy{OverrideWidth: 500}, w))
	assert.Equal(t, DefaultMinWidth, AvailableWidth(Policy{OverrideWidth: 50}, w))

	w.MinWidth = 40
	assert.Equal(t, 50.0, AvailableWidth(Policy{OverrideWidth: 50}, w))
}

func TestAvailableWidthInvalidRatio(t *testing.T) {
	w := DefaultWindow()
	w.SafetyRatio = 3
	assert.Equal(t, 741.0, AvailableWidth(Policy{}, w))
}

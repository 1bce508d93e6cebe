package vulkan

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameSkipClassification(t *testing.T) {
	// The boot-out paths of BeginFrame wrap the sentinel; frame loops rely
	// on errors.Is to distinguish "drop this frame" from real failures.
	recreating := fmt.Errorf("swapchain recreation in progress: %w", ErrFrameSkipped)
	resized := fmt.Errorf("swapchain recreated after resize: %w", ErrFrameSkipped)
	assert.True(t, errors.Is(recreating, ErrFrameSkipped))
	assert.True(t, errors.Is(resized, ErrFrameSkipped))

	failure := fmt.Errorf("in-flight fence wait failure")
	assert.False(t, errors.Is(failure, ErrFrameSkipped))
}

package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgressDisabledIsNoOp(t *testing.T) {
	t.Parallel()

	// A disabled bar must absorb the full call sequence without drawing
	// anything or panicking.
	p := NewProgress(10, false)
	p.Update(1, "textures/wall.dds")
	p.AddBytes(4096)
	p.Finish()
}

func TestTailLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short.txt", tailLabel("short.txt", 24))
	assert.Equal(t, "..res/tatooine/cantina.msh",
		tailLabel("appearance/mesh/structures/tatooine/cantina.msh", 26))
	assert.Len(t, tailLabel("appearance/mesh/structures/tatooine/cantina.msh", 24), 24)
}
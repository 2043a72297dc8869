package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCellLifecycle(t *testing.T) {
	c := NewCell(Position{1, 2, 3}, 1.0, mgl32.Vec3{0.1, 0.2, 0.3}, false)
	assert.False(t, c.IsAlive())
	assert.False(t, c.IsAlive(), "querying has no side effect")

	c.Revive()
	assert.True(t, c.IsAlive())
	c.Revive()
	assert.True(t, c.IsAlive())

	c.Kill()
	assert.False(t, c.IsAlive())
	c.Kill()
	assert.False(t, c.IsAlive())

	assert.Equal(t, Position{1, 2, 3}, c.Position)
}

func TestCellState(t *testing.T) {
	c := NewCell(Position{4, 5, 6}, 0.5, mgl32.Vec3{1, 0, 0}, true)
	s := c.State()

	c.Kill()

	assert.Equal(t, CellState{
		Position: Position{4, 5, 6},
		Alive:    true,
		Color:    mgl32.Vec3{1, 0, 0},
		Size:     0.5,
	}, s)
}

func TestPositionAdd(t *testing.T) {
	p := Position{0, 3, 1}
	assert.Equal(t, Position{-1, 3, 1}, p.Add([3]int{-1, 0, 0}))
	assert.Equal(t, 0, p.X())
	assert.Equal(t, 3, p.Y())
	assert.Equal(t, 1, p.Z())
}

package model

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/sheikhrachel/go-gol3d/rules"
)

// Position is a lattice coordinate (x, y, z) and a cell's permanent identity
type Position [3]int

func (p Position) X() int { return p[0] }
func (p Position) Y() int { return p[1] }
func (p Position) Z() int { return p[2] }

// Add returns the position shifted by a neighborhood offset. The result may lie
// outside the lattice, callers check bounds.
func (p Position) Add(o rules.Offset) Position {
	return Position{p[0] + o[0], p[1] + o[1], p[2] + o[2]}
}

// Cell is one grid point. Position, Size and Color never change after creation;
// only liveness is mutable.
type Cell struct {
	Position Position
	Size     float32
	Color    mgl32.Vec3
	alive    bool
}

// CellState is a value copy of a cell handed to drivers and renderers
type CellState struct {
	Position Position   `json:"position"`
	Alive    bool       `json:"alive"`
	Color    mgl32.Vec3 `json:"color"`
	Size     float32    `json:"size"`
}

// NewCell creates a cell with the given attributes
func NewCell(position Position, size float32, color mgl32.Vec3, alive bool) *Cell {
	return &Cell{
		Position: position,
		Size:     size,
		Color:    color,
		alive:    alive,
	}
}

// Kill marks the cell dead
func (c *Cell) Kill() { c.alive = false }

// Revive marks the cell alive
func (c *Cell) Revive() { c.alive = true }

// IsAlive returns the current liveness
func (c *Cell) IsAlive() bool { return c.alive }

// State returns a copy of the cell for read-only consumers
func (c *Cell) State() CellState {
	return CellState{
		Position: c.Position,
		Alive:    c.alive,
		Color:    c.Color,
		Size:     c.Size,
	}
}

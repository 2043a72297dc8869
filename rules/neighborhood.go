package rules

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	// VonNeumann is the 6 face-adjacent cells
	VonNeumann = "von-neumann"
	// Moore is the 26 cells of the surrounding 3x3x3 cube
	Moore = "moore"
)

// Offset is a relative (dx, dy, dz) step from a cell to one of its neighbors
type Offset [3]int

// Neighborhood is the set of offsets counted as neighbors
type Neighborhood struct {
	Name    string
	Offsets []Offset
}

// Size returns the largest neighbor count the neighborhood can produce
func (n Neighborhood) Size() int {
	return len(n.Offsets)
}

// VonNeumannNeighborhood returns the ±1 steps along each axis
func VonNeumannNeighborhood() Neighborhood {
	return Neighborhood{
		Name: VonNeumann,
		Offsets: []Offset{
			{-1, 0, 0}, {1, 0, 0},
			{0, -1, 0}, {0, 1, 0},
			{0, 0, -1}, {0, 0, 1},
		},
	}
}

// MooreNeighborhood returns every offset in the 3x3x3 cube except the center
func MooreNeighborhood() Neighborhood {
	offsets := make([]Offset, 0, 26)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				offsets = append(offsets, Offset{dx, dy, dz})
			}
		}
	}
	return Neighborhood{Name: Moore, Offsets: offsets}
}

// LookupNeighborhood resolves a neighborhood by name, defaulting to von Neumann
func LookupNeighborhood(name string) (Neighborhood, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", VonNeumann, "6":
		return VonNeumannNeighborhood(), nil
	case Moore, "26":
		return MooreNeighborhood(), nil
	}
	return Neighborhood{}, errors.Errorf("[LookupNeighborhood] unknown neighborhood %q", name)
}

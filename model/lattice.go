package model

import (
	"crypto/md5"
	"fmt"
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/sheikhrachel/go-gol3d/rules"
	"github.com/sheikhrachel/go-gol3d/utils"
)

// Lattice is the dense 3D grid of cells plus the rolling fingerprint history
// used to detect stagnation.
type Lattice struct {
	width    int
	height   int
	depth    int
	cellSize float32
	cells    map[Position]*Cell
	history  []string // Recent liveness fingerprints, oldest first

	window      int
	cyclePeriod int

	seedPolicy string
	density    float64
	seed       uint64
	rng        *rand.Rand

	rules        rules.RuleSet
	neighborhood rules.Neighborhood

	parallel bool
	bounded  bool
	pool     *LivenessPool

	generation    int
	regenerations int

	// Bounding box of live cells, refreshed lazily
	activeBounds struct {
		min, max Position
		valid    bool
		computed bool
	}
}

// NewLattice creates an empty lattice from the configuration. Call Populate
// before the first Step.
func NewLattice(config utils.Config) (*Lattice, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "[NewLattice]")
	}

	rs, err := rules.Lookup(config.RuleSet)
	if err != nil {
		return nil, errors.Wrapf(utils.ErrInvalidConfig, "[NewLattice] rule_set: %v", err)
	}
	hood, err := rules.LookupNeighborhood(config.Neighborhood)
	if err != nil {
		return nil, errors.Wrapf(utils.ErrInvalidConfig, "[NewLattice] neighborhood: %v", err)
	}
	if unreachable := rs.Unreachable(hood.Size()); len(unreachable) > 0 {
		utils.Logf("rule set %s has counts %v that a %s neighborhood (%d cells) never reaches",
			rs, unreachable, hood.Name, hood.Size())
	}

	seed := config.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	var pool *LivenessPool
	if config.UseMemoryPool {
		pool = NewLivenessPool()
	}

	return &Lattice{
		width:        config.Width,
		height:       config.Height,
		depth:        config.Depth,
		cellSize:     config.CellSize,
		cells:        make(map[Position]*Cell, config.Width*config.Height*config.Depth),
		window:       config.HistoryWindow,
		cyclePeriod:  config.CyclePeriod,
		seedPolicy:   config.SeedPolicy,
		density:      config.RandomDensity,
		seed:         seed,
		rng:          rand.New(rand.NewPCG(seed, 0)),
		rules:        rs,
		neighborhood: hood,
		parallel:     config.UseParallel,
		bounded:      config.UseBoundedLattice,
		pool:         pool,
	}, nil
}

// GetWidth returns the width of the lattice
func (l *Lattice) GetWidth() int { return l.width }

// GetHeight returns the height of the lattice
func (l *Lattice) GetHeight() int { return l.height }

// GetDepth returns the depth of the lattice
func (l *Lattice) GetDepth() int { return l.depth }

// GetCellSize returns the rendering size of every cell
func (l *Lattice) GetCellSize() float32 { return l.cellSize }

// Seed returns the RNG seed in use, useful to replay a run
func (l *Lattice) Seed() uint64 { return l.seed }

// Rules returns the active rule set
func (l *Lattice) Rules() rules.RuleSet { return l.rules }

// Neighborhood returns the active neighborhood
func (l *Lattice) Neighborhood() rules.Neighborhood { return l.neighborhood }

// SeedPolicy returns the policy Populate seeds with
func (l *Lattice) SeedPolicy() string { return l.seedPolicy }

// Generation returns the number of completed steps
func (l *Lattice) Generation() int { return l.generation }

// Regenerations returns how many times stagnation forced a re-seed
func (l *Lattice) Regenerations() int { return l.regenerations }

// Len returns the number of cells, always width*height*depth once populated
func (l *Lattice) Len() int { return len(l.cells) }

// InBounds reports whether a position lies inside the lattice box
func (l *Lattice) InBounds(p Position) bool {
	return p[0] >= 0 && p[0] < l.width &&
		p[1] >= 0 && p[1] < l.height &&
		p[2] >= 0 && p[2] < l.depth
}

func (l *Lattice) index(x, y, z int) int {
	return x + y*l.width + z*l.width*l.height
}

func (l *Lattice) volume() int {
	return l.width * l.height * l.depth
}

// Cell returns the cell at a position, or false when absent
func (l *Lattice) Cell(p Position) (*Cell, bool) {
	c, ok := l.cells[p]
	return c, ok
}

// Set changes the liveness of one cell. It returns false when the position
// is not part of the lattice.
func (l *Lattice) Set(p Position, alive bool) bool {
	c, ok := l.cells[p]
	if !ok {
		return false
	}
	if alive {
		c.Revive()
	} else {
		c.Kill()
	}
	l.activeBounds.computed = false
	return true
}

// Clear kills every cell and forgets the history
func (l *Lattice) Clear() {
	for _, c := range l.cells {
		c.Kill()
	}
	l.history = nil
	l.activeBounds.computed = false
}

// colorAt maps a position onto a dim RGB gradient across the lattice
func (l *Lattice) colorAt(x, y, z int) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(x) / float32(l.width),
		float32(y) / float32(l.height),
		float32(z) / float32(l.depth),
	}.Mul(0.5)
}

// seedAlive decides the initial liveness of a coordinate for the seed policy
func (l *Lattice) seedAlive(x, y, z int) bool {
	switch l.seedPolicy {
	case utils.SeedParity:
		return (x+y+z)%2 != 0
	case utils.SeedParityLegacy:
		// Only z takes part in the modulo here
		return x+y+z%2 != 0
	default:
		return l.rng.Float64() < l.density
	}
}

// Populate fills every coordinate with a freshly seeded cell, replacing any
// existing cells. Dimensions never change.
func (l *Lattice) Populate() {
	cells := make(map[Position]*Cell, l.volume())
	for x := range l.width {
		for y := range l.height {
			for z := range l.depth {
				p := Position{x, y, z}
				cells[p] = NewCell(p, l.cellSize, l.colorAt(x, y, z), l.seedAlive(x, y, z))
			}
		}
	}
	l.cells = cells
	l.activeBounds.computed = false

	if l.seedPolicy == utils.SeedBlinkers {
		l.addBlinkers()
	}
}

// AddBlinker sets a three cell line along y starting at (x, y, z). Parts
// falling outside the lattice are skipped.
func (l *Lattice) AddBlinker(x, y, z int) {
	for dy := range 3 {
		l.Set(Position{x, y + dy, z}, true)
	}
}

// addBlinkers lays blinkers on a regular stride through the lattice
func (l *Lattice) addBlinkers() {
	const stride = 6
	if l.height < 3 {
		return
	}
	y := l.height/2 - 1
	for x := 1; x < l.width; x += stride {
		for z := 1; z < l.depth; z += stride {
			l.AddBlinker(x, y, z)
		}
	}
}

// Regenerate re-seeds the lattice with the configured policy and clears the
// history
func (l *Lattice) Regenerate() {
	l.Populate()
	l.history = nil
	l.regenerations++
}

// GetNeighbors returns the cells around a position that exist in the lattice.
// Offsets leaving the box are skipped, there is no wraparound.
func (l *Lattice) GetNeighbors(p Position) []*Cell {
	neighbors := make([]*Cell, 0, l.neighborhood.Size())
	for _, o := range l.neighborhood.Offsets {
		n := p.Add(o)
		if !l.InBounds(n) {
			continue
		}
		if c, ok := l.cells[n]; ok {
			neighbors = append(neighbors, c)
		}
	}
	return neighbors
}

// CountAliveNeighbors counts live cells returned by GetNeighbors
func (l *Lattice) CountAliveNeighbors(p Position) int {
	count := 0
	for _, c := range l.GetNeighbors(p) {
		if c.IsAlive() {
			count++
		}
	}
	return count
}

// Each calls fn for every cell in x, y, z order. fn must not keep the
// pointer past the next Step.
func (l *Lattice) Each(fn func(*Cell)) {
	for x := range l.width {
		for y := range l.height {
			for z := range l.depth {
				if c, ok := l.cells[Position{x, y, z}]; ok {
					fn(c)
				}
			}
		}
	}
}

// Snapshot returns value copies of every cell in x, y, z order
func (l *Lattice) Snapshot() []CellState {
	out := make([]CellState, 0, len(l.cells))
	l.Each(func(c *Cell) {
		out = append(out, c.State())
	})
	return out
}

// AlivePositions returns the positions of live cells in x, y, z order
func (l *Lattice) AlivePositions() []Position {
	var out []Position
	l.Each(func(c *Cell) {
		if c.IsAlive() {
			out = append(out, c.Position)
		}
	})
	return out
}

// CountLivingCells returns the total number of living cells
func (l *Lattice) CountLivingCells() (count int) {
	for _, c := range l.cells {
		if c.IsAlive() {
			count++
		}
	}
	return
}

// liveness copies the current state into a dense buffer
func (l *Lattice) liveness() []bool {
	buf := getBuffer(l.pool, l.volume())
	for p, c := range l.cells {
		if c.IsAlive() {
			buf[l.index(p[0], p[1], p[2])] = true
		}
	}
	return buf
}

// hashLiveness returns an MD5 hash over a dense buffer. The buffer order is
// fixed, so equal hashes mean the same set of live coordinates.
func hashLiveness(buf []bool) string {
	h := md5.New()
	b := make([]byte, len(buf))
	for i, alive := range buf {
		if alive {
			b[i] = 1
		}
	}
	h.Write(b)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Fingerprint returns the hash of which coordinates are currently alive
func (l *Lattice) Fingerprint() string {
	buf := l.liveness()
	defer bufferToPool(buf, l.pool)
	return hashLiveness(buf)
}

// History returns a copy of the fingerprint history, oldest first
func (l *Lattice) History() []string {
	out := make([]string, len(l.history))
	copy(out, l.history)
	return out
}

// updateHistory adds a fingerprint and keeps only the last window entries
func (l *Lattice) updateHistory(fingerprint string) {
	l.history = append(l.history, fingerprint)
	if len(l.history) > l.window {
		l.history = l.history[len(l.history)-l.window:]
	}
}

// IsStagnant reports whether a full history window repeats with a period no
// longer than the configured cycle period. With period 1 that means every
// entry equals the newest one. A period only counts when the window holds at
// least two full cycles of it.
func (l *Lattice) IsStagnant() bool {
	if len(l.history) < l.window {
		return false
	}
	for period := 1; period <= l.cyclePeriod; period++ {
		if l.repeatsWithPeriod(period) {
			return true
		}
	}
	return false
}

func (l *Lattice) repeatsWithPeriod(period int) bool {
	if period*2 > len(l.history) {
		return false
	}
	for i := period; i < len(l.history); i++ {
		if l.history[i] != l.history[i-period] {
			return false
		}
	}
	return true
}

// Step advances the lattice by one generation. The current state is
// fingerprinted first; a stagnant lattice is re-seeded before the rule is
// applied. The next generation is computed from a frozen copy of the current
// state and swapped in as a new cell map.
func (l *Lattice) Step() {
	cur := l.liveness()
	l.updateHistory(hashLiveness(cur))

	if l.IsStagnant() {
		utils.Logf("lattice stagnant at generation %d, regenerating (%s seed)", l.generation, l.seedPolicy)
		l.Regenerate()
		bufferToPool(cur, l.pool)
		cur = l.liveness()
	}

	next := l.nextGeneration(cur)
	l.cells = l.buildCells(next)
	l.activeBounds.computed = false
	l.generation++

	bufferToPool(cur, l.pool)
	bufferToPool(next, l.pool)
}

// buildCells creates the cell map for a dense liveness buffer. Position, size
// and color carry over from the current cells.
func (l *Lattice) buildCells(buf []bool) map[Position]*Cell {
	cells := make(map[Position]*Cell, len(l.cells))
	for p, c := range l.cells {
		cells[p] = NewCell(p, c.Size, c.Color, buf[l.index(p[0], p[1], p[2])])
	}
	return cells
}

// nextGeneration evaluates the rule over the region that can change
func (l *Lattice) nextGeneration(cur []bool) []bool {
	next := getBuffer(l.pool, l.volume())

	lo := Position{0, 0, 0}
	hi := Position{l.width - 1, l.height - 1, l.depth - 1}
	if l.bounded && !l.rules.BirthOnEmpty() {
		bmin, bmax, ok := l.boundsOf(cur)
		if !ok {
			// Nothing alive and nothing can be born
			return next
		}
		// Active region plus a one cell margin
		lo = Position{max(0, bmin[0]-1), max(0, bmin[1]-1), max(0, bmin[2]-1)}
		hi = Position{min(l.width-1, bmax[0]+1), min(l.height-1, bmax[1]+1), min(l.depth-1, bmax[2]+1)}
	}

	if l.parallel {
		l.evaluateParallel(cur, next, lo, hi)
	} else {
		l.evaluate(cur, next, lo, hi, lo[2], hi[2]+1)
	}
	return next
}

// evaluateParallel splits the z range of the region across workers
func (l *Lattice) evaluateParallel(cur, next []bool, lo, hi Position) {
	var (
		eg              errgroup.Group
		layers          = hi[2] - lo[2] + 1
		numWorkers      = min(runtime.NumCPU(), layers)
		layersPerWorker = (layers + numWorkers - 1) / numWorkers // Ceiling division
	)

	for i := range numWorkers {
		var (
			startZ = lo[2] + i*layersPerWorker
			endZ   = min(startZ+layersPerWorker, hi[2]+1)
		)
		if startZ > hi[2] {
			break
		}

		// Workers write disjoint z layers of next
		eg.Go(func() error {
			l.evaluate(cur, next, lo, hi, startZ, endZ)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		utils.Logf("error in parallel evaluation: %v", err)
	}
}

// evaluate applies the rule to every cell of the region with z in [startZ, endZ)
func (l *Lattice) evaluate(cur, next []bool, lo, hi Position, startZ, endZ int) {
	for z := startZ; z < endZ; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				i := l.index(x, y, z)
				next[i] = l.rules.Apply(l.countNeighbors(cur, x, y, z), cur[i])
			}
		}
	}
}

// countNeighbors counts live neighbors in a dense buffer. Coordinates below
// zero or past the far edge contribute nothing.
func (l *Lattice) countNeighbors(buf []bool, x, y, z int) int {
	count := 0
	for _, o := range l.neighborhood.Offsets {
		nx, ny, nz := x+o[0], y+o[1], z+o[2]
		if nx < 0 || nx >= l.width || ny < 0 || ny >= l.height || nz < 0 || nz >= l.depth {
			continue
		}
		if buf[l.index(nx, ny, nz)] {
			count++
		}
	}
	return count
}

// boundsOf returns the bounding box of live cells in a dense buffer
func (l *Lattice) boundsOf(buf []bool) (lo, hi Position, ok bool) {
	for z := range l.depth {
		for y := range l.height {
			for x := range l.width {
				if !buf[l.index(x, y, z)] {
					continue
				}
				if !ok {
					lo, hi, ok = Position{x, y, z}, Position{x, y, z}, true
					continue
				}
				lo = Position{min(lo[0], x), min(lo[1], y), min(lo[2], z)}
				hi = Position{max(hi[0], x), max(hi[1], y), max(hi[2], z)}
			}
		}
	}
	return lo, hi, ok
}

// GetBoundingBoxSize returns the volume of the box enclosing all live cells
func (l *Lattice) GetBoundingBoxSize() int {
	if !l.activeBounds.computed {
		buf := l.liveness()
		l.activeBounds.min, l.activeBounds.max, l.activeBounds.valid = l.boundsOf(buf)
		l.activeBounds.computed = true
		bufferToPool(buf, l.pool)
	}
	if !l.activeBounds.valid {
		return 0
	}
	lo, hi := l.activeBounds.min, l.activeBounds.max
	return (hi[0] - lo[0] + 1) * (hi[1] - lo[1] + 1) * (hi[2] - lo[2] + 1)
}

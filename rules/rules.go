package rules

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// Life is the 3D port of Conway's rule: survive on 2 or 3, birth on exactly 3
	Life = "life"
	// Parity keeps cells alive on odd counts and births them on small even counts
	Parity = "parity"
)

// ErrInvalidRule is returned when a rule string can't be parsed
var ErrInvalidRule = errors.New("invalid rule set")

// RuleSet holds the neighbor counts that keep a live cell alive (Survive)
// or bring a dead cell to life (Birth).
type RuleSet struct {
	Name    string
	Survive map[int]bool
	Birth   map[int]bool
}

// NewRuleSet builds a rule set from explicit survival and birth counts
func NewRuleSet(name string, survive, birth []int) RuleSet {
	rs := RuleSet{
		Name:    name,
		Survive: make(map[int]bool, len(survive)),
		Birth:   make(map[int]bool, len(birth)),
	}
	for _, n := range survive {
		rs.Survive[n] = true
	}
	for _, n := range birth {
		rs.Birth[n] = true
	}
	return rs
}

// LifeRules returns the survive {2,3} / birth {3} rule set
func LifeRules() RuleSet {
	return NewRuleSet(Life, []int{2, 3}, []int{3})
}

// ParityRules returns the survive on odd {1..23} / birth on {2,4,6,8} rule set
func ParityRules() RuleSet {
	survive := make([]int, 0, 12)
	for n := 1; n <= 23; n += 2 {
		survive = append(survive, n)
	}
	return NewRuleSet(Parity, survive, []int{2, 4, 6, 8})
}

/*
Apply determines the next state of a cell.

A live cell dies when its neighbor count is not in the survival set, a dead
cell is born when the count is in the birth set, otherwise the state holds.
*/
func (rs RuleSet) Apply(neighbors int, alive bool) bool {
	if alive {
		return rs.Survive[neighbors]
	}
	return rs.Birth[neighbors]
}

// BirthOnEmpty reports whether dead cells with no live neighbors are born.
// When it's false, cells far from any live cell can't change.
func (rs RuleSet) BirthOnEmpty() bool {
	return rs.Birth[0]
}

// Unreachable lists the counts in either set that a neighborhood of the
// given size can never produce.
func (rs RuleSet) Unreachable(size int) []int {
	seen := map[int]bool{}
	for n := range rs.Survive {
		if n < 0 || n > size {
			seen[n] = true
		}
	}
	for n := range rs.Birth {
		if n < 0 || n > size {
			seen[n] = true
		}
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// String renders the rule set in "S/B" notation, e.g. "2,3/3"
func (rs RuleSet) String() string {
	return formatCounts(rs.Survive) + "/" + formatCounts(rs.Birth)
}

// Lookup resolves a named rule set or parses an "S/B" string
func Lookup(name string) (RuleSet, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Life:
		return LifeRules(), nil
	case Parity:
		return ParityRules(), nil
	}
	return Parse(name)
}

// Parse reads "S/B" notation. Each side is a comma separated list of counts
// or inclusive ranges: "2,3/3", "4-5/5", "/1" (nothing survives).
func Parse(s string) (RuleSet, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return RuleSet{}, errors.Wrapf(ErrInvalidRule, "[Parse] expected S/B notation, got %q", s)
	}
	survive, err := parseCounts(parts[0])
	if err != nil {
		return RuleSet{}, errors.Wrapf(err, "[Parse] survival side of %q", s)
	}
	birth, err := parseCounts(parts[1])
	if err != nil {
		return RuleSet{}, errors.Wrapf(err, "[Parse] birth side of %q", s)
	}
	return NewRuleSet(s, survive, birth), nil
}

func parseCounts(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var counts []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		lo, hi, isRange := strings.Cut(field, "-")
		from, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil || from < 0 {
			return nil, errors.Wrapf(ErrInvalidRule, "bad count %q", field)
		}
		to := from
		if isRange {
			to, err = strconv.Atoi(strings.TrimSpace(hi))
			if err != nil || to < from {
				return nil, errors.Wrapf(ErrInvalidRule, "bad range %q", field)
			}
		}
		for n := from; n <= to; n++ {
			counts = append(counts, n)
		}
	}
	return counts, nil
}

func formatCounts(set map[int]bool) string {
	counts := make([]int, 0, len(set))
	for n := range set {
		counts = append(counts, n)
	}
	sort.Ints(counts)
	parts := make([]string, len(counts))
	for i, n := range counts {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

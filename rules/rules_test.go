package rules

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLifeRulesApply(t *testing.T) {
	rs := LifeRules()

	tests := []struct {
		neighbors int
		alive     bool
		want      bool
	}{
		{0, true, false},
		{1, true, false},
		{2, true, true},
		{3, true, true},
		{4, true, false},
		{2, false, false},
		{3, false, true},
		{6, false, false},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, rs.Apply(tt.neighbors, tt.alive),
			"neighbors=%d alive=%v", tt.neighbors, tt.alive)
	}
}

func TestParityRules(t *testing.T) {
	rs := ParityRules()

	for n := 0; n <= 24; n++ {
		assert.Equalf(t, n%2 == 1 && n <= 23, rs.Apply(n, true), "survive %d", n)
	}
	for _, n := range []int{2, 4, 6, 8} {
		assert.True(t, rs.Apply(n, false), "birth %d", n)
	}
	assert.False(t, rs.Apply(0, false))
	assert.False(t, rs.Apply(10, false))
	assert.False(t, rs.BirthOnEmpty())
}

func TestUnreachable(t *testing.T) {
	assert.Empty(t, LifeRules().Unreachable(6))
	assert.Equal(t, []int{7, 8, 9, 11, 13, 15, 17, 19, 21, 23}, ParityRules().Unreachable(6))
	assert.Empty(t, ParityRules().Unreachable(26))
}

func TestParse(t *testing.T) {
	rs, err := Parse("2,3/3")
	require.NoError(t, err)
	assert.Equal(t, "2,3/3", rs.String())

	rs, err = Parse("4-6/5")
	require.NoError(t, err)
	assert.Equal(t, "4,5,6/5", rs.String())

	rs, err = Parse("/0")
	require.NoError(t, err)
	assert.Empty(t, rs.Survive)
	assert.True(t, rs.BirthOnEmpty())

	for _, bad := range []string{"", "23", "a/3", "3-1/2", "-1/2", "1/2/3"} {
		_, err := Parse(bad)
		assert.Truef(t, errors.Is(err, ErrInvalidRule), "expected ErrInvalidRule for %q, got %v", bad, err)
	}
}

func TestLookup(t *testing.T) {
	rs, err := Lookup("")
	require.NoError(t, err)
	assert.Equal(t, Life, rs.Name)

	rs, err = Lookup("PARITY")
	require.NoError(t, err)
	assert.Equal(t, Parity, rs.Name)

	rs, err = Lookup("5-7/6")
	require.NoError(t, err)
	assert.True(t, rs.Apply(6, false))

	_, err = Lookup("nonsense")
	assert.Error(t, err)
}

func TestNeighborhoods(t *testing.T) {
	vn, err := LookupNeighborhood("")
	require.NoError(t, err)
	assert.Equal(t, 6, vn.Size())

	moore, err := LookupNeighborhood("moore")
	require.NoError(t, err)
	assert.Equal(t, 26, moore.Size())

	seen := map[Offset]bool{}
	for _, o := range moore.Offsets {
		assert.NotEqual(t, Offset{}, o)
		assert.False(t, seen[o], "duplicate offset %v", o)
		seen[o] = true
	}

	_, err = LookupNeighborhood("hex")
	assert.Error(t, err)
}

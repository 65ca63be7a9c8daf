package card

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIsBijection(t *testing.T) {
	seen := make(map[Card]bool)
	for id := 0; id < DeckSize; id++ {
		c := Decode(id)
		require.Equal(t, id, c.ID)
		for _, v := range []int{c.Color, c.Count, c.Shape, c.Fill} {
			require.GreaterOrEqual(t, v, 0)
			require.LessOrEqual(t, v, 2)
		}
		require.Equal(t, id, encode(c.Color, c.Count, c.Shape, c.Fill),
			"re-encoding card %d should round-trip", id)
		require.False(t, seen[c], "card %d decoded to a duplicate", id)
		seen[c] = true
	}
}

func TestThirdCardSymmetricAndDistinct(t *testing.T) {
	for a := 0; a < DeckSize; a++ {
		for b := a + 1; b < DeckSize; b++ {
			ca, cb := Decode(a), Decode(b)
			third := ThirdCard(ca, cb)
			require.Equal(t, third, ThirdCard(cb, ca))
			require.NotEqual(t, a, third)
			require.NotEqual(t, b, third)
			require.GreaterOrEqual(t, third, 0)
			require.Less(t, third, DeckSize)
		}
	}
}

func TestIsMatchPermutationInvariant(t *testing.T) {
	for a := 0; a < DeckSize; a++ {
		for b := a + 1; b < DeckSize; b++ {
			ca, cb := Decode(a), Decode(b)
			cc := Decode(ThirdCard(ca, cb))
			assert.True(t, IsMatch(ca, cb, cc))
			assert.True(t, IsMatch(cb, cc, ca))
			assert.True(t, IsMatch(cc, ca, cb))
		}
	}
}

func TestIsMatchKnownTriples(t *testing.T) {
	// Cards 0, 1, 2 differ only in color, pairwise distinct: a valid triple.
	assert.True(t, IsMatch(Decode(0), Decode(1), Decode(2)))
	// Card 3 shares the color of card 0 but not of card 1.
	assert.False(t, IsMatch(Decode(0), Decode(1), Decode(3)))
	// 0, 13, 26: all four attributes pairwise distinct.
	assert.True(t, IsMatch(Decode(0), Decode(13), Decode(26)))
}

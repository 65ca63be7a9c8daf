package card

// DeckSize is the number of distinct cards: four attributes, three values
// each.
const DeckSize = 81

// Card is one of the 81 cards, identified by an integer in [0, DeckSize).
// The attributes are the base-3 digits of the id, low to high: color,
// count, shape, fill.
type Card struct {
	ID    int
	Color int
	Count int
	Shape int
	Fill  int
}

// Decode expands an id into its four attributes.
func Decode(id int) Card {
	color := id % 3
	rest := id / 3
	count := rest % 3
	rest /= 3
	shape := rest % 3
	fill := rest / 3

	return Card{
		ID:    id,
		Color: color,
		Count: count,
		Shape: shape,
		Fill:  fill,
	}
}

func encode(color, count, shape, fill int) int {
	id := fill
	id = 3*id + shape
	id = 3*id + count
	id = 3*id + color
	return id
}

// thirdValue returns the attribute value that completes a valid triple with
// the two given values: the same value if they agree, the remaining one
// otherwise.
func thirdValue(a, b int) int {
	if a == b {
		return a
	}
	return 3 - a - b
}

// ThirdCard returns the id of the unique card that forms a valid triple
// with the two given cards.
func ThirdCard(c1, c2 Card) int {
	color := thirdValue(c1.Color, c2.Color)
	count := thirdValue(c1.Count, c2.Count)
	shape := thirdValue(c1.Shape, c2.Shape)
	fill := thirdValue(c1.Fill, c2.Fill)
	return encode(color, count, shape, fill)
}

// IsMatch reports whether the three cards form a valid triple. The relation
// is symmetric, so argument order does not matter.
func IsMatch(c1, c2, c3 Card) bool {
	return ThirdCard(c1, c2) == c3.ID
}

package board

import (
	"fmt"
	"math/rand"
)

// Generate builds a random board of the given size plus a spare tile. Every
// tile carries a gem pair no other tile (spare included) shares.
func Generate(columns, rows int, rng *rand.Rand) (*Board, Tile, error) {
	needed := columns*rows + 1
	pairs := AllGemPairs()
	if needed > len(pairs) {
		return nil, Tile{}, fmt.Errorf("a %dx%d board needs %d gem pairs, only %d exist",
			columns, rows, needed, len(pairs))
	}
	rng.Shuffle(len(pairs), func(i, j int) { pairs[i], pairs[j] = pairs[j], pairs[i] })

	shapes := AllShapes()
	next := 0
	randomTile := func() Tile {
		pair := pairs[next]
		next++
		shape := shapes[rng.Intn(len(shapes))]
		return NewTile(shape, rng.Intn(4), pair)
	}

	tiles := make([][]Tile, rows)
	for r := range tiles {
		tiles[r] = make([]Tile, columns)
		for c := range tiles[r] {
			tiles[r][c] = randomTile()
		}
	}
	spare := randomTile()
	b, err := New(tiles)
	if err != nil {
		return nil, Tile{}, err
	}
	return b, spare, nil
}

package board

import "fmt"

// Gem identifies one of the treasure gems that appear on Labyrinth tiles.
type Gem string

// allGems is the canonical gem catalogue.
var allGems = []Gem{
	"alexandrite-pear-shape",
	"alexandrite",
	"almandine-garnet",
	"amethyst",
	"ametrine",
	"ammolite",
	"apatite",
	"aplite",
	"apricot-square-radiant",
	"aquamarine",
	"australian-marquise",
	"aventurine",
	"azurite",
	"beryl",
	"black-obsidian",
	"black-onyx",
	"black-spinel-cushion",
	"blue-ceylon-sapphire",
	"blue-cushion",
	"blue-pear-shape",
	"blue-spinel-heart",
	"bulls-eye",
	"carnelian",
	"chrome-diopside",
	"chrysoberyl-cushion",
	"chrysolite",
	"citrine-checkerboard",
	"citrine",
	"clinohumite",
	"color-change-oval",
	"cordierite",
	"diamond",
	"dumortierite",
	"emerald",
	"fancy-spinel-marquise",
	"garnet",
	"golden-diamond-cut",
	"goldstone",
	"grandidierite",
	"gray-agate",
	"green-aventurine",
	"green-beryl-antique",
	"green-beryl",
	"green-princess-cut",
	"grossular-garnet",
	"hackmanite",
	"heliotrope",
	"hematite",
	"iolite-emerald-cut",
	"jasper",
	"jaspilite",
	"kunzite-oval",
	"kunzite",
	"labradorite",
	"lapis-lazuli",
	"lemon-quartz-briolette",
	"magnesite",
	"mexican-opal",
	"moonstone",
	"morganite-oval",
	"moss-agate",
	"orange-radiant",
	"padparadscha-oval",
	"padparadscha-sapphire",
	"peridot",
	"pink-emerald-cut",
	"pink-opal",
	"pink-round",
	"pink-spinel-cushion",
	"prasiolite",
	"prehnite",
	"purple-cabochon",
	"purple-oval",
	"purple-spinel-trillion",
	"purple-square-cushion",
	"raw-beryl",
	"raw-citrine",
	"red-diamond",
	"red-spinel-square-emerald-cut",
	"rhodonite",
	"rock-quartz",
	"rose-quartz",
	"ruby-diamond-profile",
	"ruby",
	"sphalerite",
	"spinel",
	"star-cabochon",
	"stilbite",
	"sunstone",
	"super-seven",
	"tanzanite-trillion",
	"tigers-eye",
	"tourmaline-laser-cut",
	"tourmaline",
	"unakite",
	"white-square",
	"yellow-baguette",
	"yellow-beryl-oval",
	"yellow-heart",
	"yellow-jasper",
	"zircon",
	"zoisite",
}

var gemSet = func() map[Gem]struct{} {
	set := make(map[Gem]struct{}, len(allGems))
	for _, g := range allGems {
		set[g] = struct{}{}
	}
	return set
}()

// AllGems returns the full gem catalogue.
func AllGems() []Gem {
	out := make([]Gem, len(allGems))
	copy(out, allGems)
	return out
}

// ParseGem returns the gem with the given name.
func ParseGem(name string) (Gem, error) {
	g := Gem(name)
	if _, ok := gemSet[g]; !ok {
		return "", fmt.Errorf("unknown gem %q", name)
	}
	return g, nil
}

// GemPair is an unordered pair of distinct gems. The lexicographically
// smaller gem is always stored first so pairs compare as unordered values.
type GemPair struct {
	A Gem
	B Gem
}

// NewGemPair normalizes a pair of gems into canonical order.
func NewGemPair(a, b Gem) GemPair {
	if b < a {
		a, b = b, a
	}
	return GemPair{A: a, B: b}
}

// AllGemPairs lists every unordered pair of distinct gems.
func AllGemPairs() []GemPair {
	pairs := make([]GemPair, 0, len(allGems)*(len(allGems)-1)/2)
	for i, a := range allGems {
		for _, b := range allGems[i+1:] {
			pairs = append(pairs, NewGemPair(a, b))
		}
	}
	return pairs
}

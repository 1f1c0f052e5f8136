package garage

import (
	"math/rand"
	"strings"
)

var (
	adjectives = []string{
		"angry", "brave", "chunky", "clever", "dizzy", "eager", "fierce", "grumpy",
		"heavy", "jolly", "lucky", "mighty", "nimble", "rusty", "shiny", "sneaky",
		"spiky", "swift", "wobbly", "zesty",
	}
	nouns = []string{
		"anvil", "badger", "beetle", "blender", "brick", "hammer", "hornet", "lobster",
		"mantis", "otter", "pancake", "raptor", "saw", "spinner", "toaster", "turtle",
		"walrus", "wedge", "whisk", "wombat",
	}
)

// RandomName returns a name like "Rusty Spiky Badger" for a new bot.
func RandomName() string {
	a := adjectives[rand.Intn(len(adjectives))]
	b := adjectives[rand.Intn(len(adjectives))]
	for b == a {
		b = adjectives[rand.Intn(len(adjectives))]
	}
	n := nouns[rand.Intn(len(nouns))]
	words := []string{a, b, n}
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

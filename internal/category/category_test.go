package category

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		title    string
		expected string
	}{
		{"FS: E92 M3 exhaust $800 shipped", "Engine"},
		{"Carbon Fiber Spoiler E92", "Exterior"},
		{"OEM 19\" 220M wheels with tires", "Wheels"},
		{"KW V3 coilovers", "Suspension"},
		{"Brake pads and rotors", "Suspension"},
		{"Recaro seats pair", "Interior"},
		{"Cobb downpipe", "Engine"},
		{"Escort radar detector", "Electronics"},
		{"Random garage sale", Default},
		{"", Default},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Classify(tc.title), tc.title)
	}
}

func TestClassifyFirstRuleWins(t *testing.T) {
	// "exterior" is declared before "interior"
	assert.Equal(t, "Exterior", Classify("interior and exterior trim lot"))
	// "wheel" is declared before "spoiler"
	assert.Equal(t, "Wheels", Classify("spoiler + wheel package"))
}

func TestCategories(t *testing.T) {
	cats := Categories()
	assert.Equal(t, Default, cats[len(cats)-1])
	assert.Contains(t, cats, "Engine")

	cats[0] = "mutated"
	assert.Equal(t, "Exterior", Categories()[0])
}

// Package category assigns a part category to a listing title.
package category

import "strings"

// Default is returned when no rule matches
const Default = "Other"

// Rule maps a lowercase keyword to a category
type Rule struct {
	Keyword  string
	Category string
}

// Rules is evaluated in order and the first keyword found in the text wins.
// Forum-structure keywords come first; the finer part names follow.
var Rules = []Rule{
	{"exterior", "Exterior"},
	{"cosmetic", "Exterior"},
	{"wheel", "Wheels"},
	{"tire", "Wheels"},
	{"suspension", "Suspension"},
	{"brake", "Suspension"},
	{"chassis", "Suspension"},
	{"spacer", "Suspension"},
	{"interior", "Interior"},
	{"engine", "Engine"},
	{"drivetrain", "Engine"},
	{"exhaust", "Engine"},
	{"electronic", "Electronics"},
	{"audio", "Electronics"},
	{"video", "Electronics"},
	{"phone", "Electronics"},
	{"navigation", "Electronics"},
	{"detailing", "Detailing"},
	{"wash", "Detailing"},
	{"wax", "Detailing"},

	{"bumper", "Exterior"},
	{"fender", "Exterior"},
	{"hood", "Exterior"},
	{"spoiler", "Exterior"},
	{"diffuser", "Exterior"},
	{"carbon fiber", "Exterior"},
	{"splitter", "Exterior"},
	{"grille", "Exterior"},
	{"lip", "Exterior"},
	{"rim", "Wheels"},
	{"tyre", "Wheels"},
	{"coilover", "Suspension"},
	{"lowering", "Suspension"},
	{"spring", "Suspension"},
	{"damper", "Suspension"},
	{"shock", "Suspension"},
	{"control arm", "Suspension"},
	{"strut", "Suspension"},
	{"seat", "Interior"},
	{"dashboard", "Interior"},
	{"shifter", "Interior"},
	{"pedal", "Interior"},
	{"carpet", "Interior"},
	{"motor", "Engine"},
	{"cylinder head", "Engine"},
	{"valve", "Engine"},
	{"piston", "Engine"},
	{"clutch", "Engine"},
	{"flywheel", "Engine"},
	{"header", "Engine"},
	{"manifold", "Engine"},
	{"muffler", "Engine"},
	{"catback", "Engine"},
	{"downpipe", "Engine"},
	{"intake", "Engine"},
	{"supercharger", "Engine"},
	{"turbo", "Engine"},
	{"transmission", "Engine"},
	{"differential", "Engine"},
	{"driveshaft", "Engine"},
	{"alarm", "Electronics"},
	{"radar", "Electronics"},
	{"touchup", "Detailing"},
	{"trim", "Exterior"},
	{"mat", "Interior"},
}

var names = []string{"Exterior", "Wheels", "Suspension", "Interior", "Engine", "Electronics", "Detailing", Default}

// Classify returns the category of the first rule whose keyword occurs in text
func Classify(text string) string {
	lower := strings.ToLower(text)
	for _, r := range Rules {
		if strings.Contains(lower, r.Keyword) {
			return r.Category
		}
	}
	return Default
}

// Categories returns every category name in display order
func Categories() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

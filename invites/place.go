package invites

import (
	"fmt"
	"strings"
)

// placeRule maps keywords found in a free-form place string to an image
// category and an event title template. Rules are checked in order and the
// first match wins, so "Park Cafe" classifies as coffee, not park.
type placeRule struct {
	category string
	title    string
	keywords []string
}

var placeRules = []placeRule{
	{"coffee", "Coffee with %s", []string{"coffee", "cafe"}},
	{"bakery", "Pastries with %s", []string{"bakery", "pastry"}},
	{"park", "Park day with %s", []string{"park"}},
	{"restaurant", "Dinner with %s", []string{"restaurant", "dinner", "brunch", "lunch"}},
}

const (
	defaultCategory = "hangout"
	defaultTitle    = "Hangout with %s"
)

// ClassifyPlace returns the image category for a place string.
func ClassifyPlace(place string) string {
	category, _ := matchPlace(place)
	return category
}

// EventTitle builds the upcoming-event title for a place and the primary
// participant's name.
func EventTitle(place, name string) string {
	_, title := matchPlace(place)
	return fmt.Sprintf(title, name)
}

func matchPlace(place string) (category, title string) {
	lower := strings.ToLower(place)
	for _, rule := range placeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.category, rule.title
			}
		}
	}
	return defaultCategory, defaultTitle
}

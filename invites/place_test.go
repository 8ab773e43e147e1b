package invites

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPlace(t *testing.T) {
	cases := []struct {
		place string
		want  string
	}{
		{"Tartine Bakery", "bakery"},
		{"Blue Bottle Coffee", "coffee"},
		{"CAFE du Monde", "coffee"},
		{"Dolores Park", "park"},
		{"brunch at Zazie", "restaurant"},
		{"dinner downtown", "restaurant"},
		{"the pier", "hangout"},
		// First rule wins when several keywords appear.
		{"Park Cafe", "coffee"},
		{"bakery near the park", "bakery"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyPlace(tc.place), "place %q", tc.place)
	}
}

func TestEventTitle(t *testing.T) {
	assert.Equal(t, "Pastries with Marcus", EventTitle("Tartine Bakery", "Marcus"))
	assert.Equal(t, "Coffee with Ana", EventTitle("some cafe", "Ana"))
	assert.Equal(t, "Park day with Sam", EventTitle("Golden Gate Park", "Sam"))
	assert.Equal(t, "Dinner with Jo", EventTitle("lunch spot", "Jo"))
	assert.Equal(t, "Hangout with Lee", EventTitle("the beach", "Lee"))
}

package recommend

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/spotnest/matchd/internal/domain/model"
)

// MessageTemplates is the fixed set of personalized message templates.
// Each takes the listing title as its single argument. Template choice
// is cosmetic and never influences scores or ordering.
var MessageTemplates = []string{
	"Based on your booking history, %s looks like a great fit for you.",
	"%s matches the kind of spaces you usually book.",
	"Renters with a similar history loved %s.",
	"We think you'll like %s. Take a look before it books out.",
}

// RenderMessage fills a template with the listing's display name,
// falling back to the listing ID when the title is empty.
func RenderMessage(template string, listing model.Listing) string {
	name := strings.TrimSpace(listing.Title)
	if name == "" {
		name = listing.ID
	}
	return fmt.Sprintf(template, name)
}

// seededPicker returns a deterministic template picker for the given
// seed.
func seededPicker(seed int64) func(n int) int {
	rnd := rand.New(rand.NewSource(seed))
	return func(n int) int {
		if n <= 0 {
			return 0
		}
		return rnd.Intn(n)
	}
}

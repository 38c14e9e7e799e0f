package search

import (
	"fmt"
	"strings"
)

const maxRenderedFeatures = 3

// RenderResults formats ranked results as the text payload returned on
// the search chat topic.
func RenderResults(query string, results []Result) string {
	if len(results) == 0 {
		return "No properties found matching your search criteria."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d properties matching: '%s'\n", len(results), query)

	for i, r := range results {
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   Price: %s %.0f\n", r.Currency, r.Price)
		fmt.Fprintf(&b, "   Location: %s, %s\n", r.Location, r.City)
		fmt.Fprintf(&b, "   Type: %s | %d bed | %d bath", r.PropertyType, r.Bedrooms, r.Bathrooms)
		if r.SizeSqft > 0 {
			fmt.Fprintf(&b, " | %d sqft", r.SizeSqft)
		}
		b.WriteString("\n")
		if len(r.Features) > 0 {
			features := r.Features
			if len(features) > maxRenderedFeatures {
				features = features[:maxRenderedFeatures]
			}
			fmt.Fprintf(&b, "   Features: %s\n", strings.Join(features, ", "))
		}
		fmt.Fprintf(&b, "   Agent: %s", r.AgentName)
		if r.AgentPhone != "" {
			fmt.Fprintf(&b, " (%s)", r.AgentPhone)
		}
		b.WriteString("\n")
		if r.ListingURL != "" {
			fmt.Fprintf(&b, "   Listing: %s\n", r.ListingURL)
		}
	}

	return b.String()
}

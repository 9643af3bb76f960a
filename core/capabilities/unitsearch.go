package capabilities

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"

	"github.com/koscakluka/leasing-agent/core/llms"
)

// listingCount is the fixed number of listings every search returns.
const listingCount = 3

// UnitSearchFilters narrows the inventory a search draws from. All filters
// are optional.
type UnitSearchFilters struct {
	Location    string   `json:"location,omitempty" jsonschema:"description=Neighborhood or city the caller wants to live in"`
	MaxBudget   float64  `json:"max_budget,omitempty" jsonschema:"description=Monthly rent ceiling in dollars"`
	MinBedrooms int      `json:"min_bedrooms,omitempty" jsonschema:"description=Minimum number of bedrooms"`
	MaxBedrooms int      `json:"max_bedrooms,omitempty" jsonschema:"description=Maximum number of bedrooms"`
	Amenities   []string `json:"amenities,omitempty" jsonschema:"description=Amenities the caller asked for"`
}

// Listing is one available unit.
type Listing struct {
	UnitID    string   `json:"unit_id"`
	Location  string   `json:"location"`
	Bedrooms  int      `json:"bedrooms"`
	Rent      float64  `json:"rent"`
	Amenities []string `json:"amenities,omitempty"`
}

// ListingBackend produces listings matching the filters as closely as it can.
// The default implementation fabricates plausible inventory; a real inventory
// lookup satisfies the same contract.
type ListingBackend interface {
	Listings(ctx context.Context, filters UnitSearchFilters, count int) ([]Listing, error)
}

// NewUnitSearch returns the unit search capability backed by the passed
// listing backend.
func NewUnitSearch(backend ListingBackend) llms.Tool {
	return llms.NewTool("search_units",
		"Search available apartment units matching the caller's location, budget, bedroom and amenity preferences",
		func(ctx context.Context, filters UnitSearchFilters) (string, error) {
			listings, err := backend.Listings(ctx, filters, listingCount)
			if err != nil {
				return "", fmt.Errorf("failed to look up listings: %w", err)
			}

			response, err := json.Marshal(listings)
			if err != nil {
				return "", fmt.Errorf("failed to marshal listings: %w", err)
			}
			return string(response), nil
		})
}

// SynthBackend deterministically fabricates listings from the filters. It
// stands in for a generative inventory backend during development and tests.
type SynthBackend struct{}

var baseRents = []float64{1450, 1725, 1950, 2200, 2475}

func (SynthBackend) Listings(_ context.Context, filters UnitSearchFilters, count int) ([]Listing, error) {
	location := filters.Location
	if location == "" {
		location = "Downtown"
	}

	bedrooms := filters.MinBedrooms
	if bedrooms == 0 {
		bedrooms = 1
	}
	if filters.MaxBedrooms != 0 && bedrooms > filters.MaxBedrooms {
		bedrooms = filters.MaxBedrooms
	}

	seed := fnv.New32a()
	seed.Write([]byte(location))
	base := int(seed.Sum32())

	listings := make([]Listing, 0, count)
	for i := range count {
		rent := baseRents[(base+i)%len(baseRents)]
		if filters.MaxBudget > 0 {
			for rent > filters.MaxBudget && rent > baseRents[0] {
				rent -= 275
			}
		}

		listings = append(listings, Listing{
			UnitID:    fmt.Sprintf("%c-%03d", 'A'+(base+i)%4, 100+(base+i*7)%800),
			Location:  location,
			Bedrooms:  bedrooms,
			Rent:      rent,
			Amenities: filters.Amenities,
		})
	}

	return listings, nil
}

package filters

import (
	"bytes"
	"strings"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
)

// Matches evaluates the same predicate as Filter against an in-memory
// property. Missing numeric fields never satisfy a bound, as in Mongo.
func (q PropertyQuery) Matches(p *models.Property) bool {
	if p.Status != models.StatusActive {
		return false
	}
	if q.Search != "" {
		if !containsFold(p.Title, q.Search) && !containsFold(p.Description, q.Search) && !containsFold(p.Location, q.Search) {
			return false
		}
	}
	if q.Location != "" && !containsFold(p.City, q.Location) {
		return false
	}
	if q.PropertyType != "" && p.PropertyType != q.PropertyType {
		return false
	}
	if q.MinPrice != nil && p.Price < *q.MinPrice {
		return false
	}
	if q.MaxPrice != nil && p.Price > *q.MaxPrice {
		return false
	}
	if q.MinBedrooms != nil && (p.Bedrooms == nil || *p.Bedrooms < *q.MinBedrooms) {
		return false
	}
	if q.Furnishing != "" && p.Furnishing != q.Furnishing {
		return false
	}
	if q.Possession != "" && p.Possession != q.Possession {
		return false
	}
	if q.MinArea != nil && (p.Area == nil || *p.Area < *q.MinArea) {
		return false
	}
	if q.MaxArea != nil && (p.Area == nil || *p.Area > *q.MaxArea) {
		return false
	}
	if len(q.Amenities) > 0 && !anyOf(p.Amenities, q.Amenities) {
		return false
	}
	return true
}

// Less reports whether a sorts before b under the query's ordering.
func (q PropertyQuery) Less(a, b *models.Property) bool {
	c := compareField(q.SortField, a, b)
	if c == 0 {
		c = bytes.Compare(a.ID[:], b.ID[:])
	}
	if q.SortDesc {
		return c > 0
	}
	return c < 0
}

func compareField(field string, a, b *models.Property) int {
	switch field {
	case "price":
		return compareInt64(a.Price, b.Price)
	case "area":
		return compareOptional(a.Area, b.Area)
	case "bedrooms":
		return compareOptional(a.Bedrooms, b.Bedrooms)
	case "views":
		return compareInt64(a.Views, b.Views)
	case "title":
		return strings.Compare(a.Title, b.Title)
	default:
		return a.CreatedAt.Compare(b.CreatedAt)
	}
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Missing values sort first.
func compareOptional(a, b *int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return compareInt64(int64(*a), int64(*b))
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func anyOf(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

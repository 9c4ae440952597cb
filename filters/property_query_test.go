package filters

import (
	"math"
	"net/url"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intPtr(n int) *int { return &n }

func TestParseDefaults(t *testing.T) {
	q := ParsePropertyQuery(url.Values{})

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 12, q.Limit)
	assert.Equal(t, "createdAt", q.SortField)
	assert.True(t, q.SortDesc)
	assert.Equal(t, bson.M{"status": models.StatusActive}, q.Filter())
	assert.Equal(t, bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}, q.Sort())
	assert.Equal(t, int64(0), q.Skip())
}

func TestParsePriceInCrore(t *testing.T) {
	q := ParsePropertyQuery(url.Values{"minPrice": {"1"}, "maxPrice": {"2"}})

	assert.Equal(t, bson.M{"$gte": int64(10_000_000), "$lte": int64(20_000_000)}, q.Filter()["price"])

	q = ParsePropertyQuery(url.Values{"minPrice": {"0.5"}})
	assert.Equal(t, bson.M{"$gte": int64(5_000_000)}, q.Filter()["price"])
}

func TestParseIgnoresGarbage(t *testing.T) {
	q := ParsePropertyQuery(url.Values{
		"minPrice": {"cheap"},
		"bedrooms": {"many"},
		"minArea":  {""},
		"page":     {"-4"},
		"limit":    {"9999"},
		"sort":     {"password"},
		"order":    {"sideways"},
	})

	assert.Equal(t, bson.M{"status": models.StatusActive}, q.Filter())
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 100, q.Limit)
	assert.Equal(t, "createdAt", q.SortField)
	assert.True(t, q.SortDesc)

	for _, raw := range []string{"NaN", "Inf", "-Inf", "0x10", "1e400"} {
		q = ParsePropertyQuery(url.Values{"minPrice": {raw}, "maxPrice": {raw}, "bedrooms": {raw}})
		assert.Equal(t, bson.M{"status": models.StatusActive}, q.Filter(), raw)
	}
	q = ParsePropertyQuery(url.Values{"page": {"99999999999999999999"}, "limit": {"0x10"}})
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 12, q.Limit)
}

func TestParseHugeAndLeadingZeroBounds(t *testing.T) {
	q := ParsePropertyQuery(url.Values{"minPrice": {"1e12"}, "bedrooms": {"010"}})
	require.NotNil(t, q.MinPrice)
	assert.Equal(t, int64(math.MaxInt64), *q.MinPrice)
	require.NotNil(t, q.MinBedrooms)
	assert.Equal(t, 10, *q.MinBedrooms)

	three := 3
	p := &models.Property{Status: models.StatusActive, Price: 15_000_000, Bedrooms: &three}
	assert.False(t, q.Matches(p))

	q = ParsePropertyQuery(url.Values{"page": {"007"}, "limit": {"08"}})
	assert.Equal(t, 7, q.Page)
	assert.Equal(t, 8, q.Limit)
}

func TestParseFullFilter(t *testing.T) {
	q := ParsePropertyQuery(url.Values{
		"search":       {"sea (view)"},
		"location":     {"Mumbai"},
		"propertyType": {"apartment"},
		"bedrooms":     {"2"},
		"furnishing":   {"furnished"},
		"possession":   {"ready"},
		"minArea":      {"500"},
		"maxArea":      {"1500"},
		"amenities":    {"gym,pool", "parking", "gym"},
		"sort":         {"price"},
		"order":        {"asc"},
		"page":         {"3"},
		"limit":        {"5"},
	})

	pattern := primitive.Regex{Pattern: `sea \(view\)`, Options: "i"}
	assert.Equal(t, bson.M{
		"status": models.StatusActive,
		"$or": bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"location": pattern},
		},
		"city":         primitive.Regex{Pattern: "Mumbai", Options: "i"},
		"propertyType": "apartment",
		"bedrooms":     bson.M{"$gte": 2},
		"furnishing":   "furnished",
		"possession":   "ready",
		"area":         bson.M{"$gte": int64(500), "$lte": int64(1500)},
		"amenities":    bson.M{"$in": []string{"gym", "pool", "parking"}},
	}, q.Filter())
	assert.Equal(t, bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}}, q.Sort())
	assert.Equal(t, int64(10), q.Skip())
}

func TestSingleAmenity(t *testing.T) {
	q := ParsePropertyQuery(url.Values{"amenities": {"lift"}})
	assert.Equal(t, []string{"lift"}, q.Amenities)
}

func sampleProperties() []*models.Property {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(i int, title, city string, price int64, beds, area int, amenities ...string) *models.Property {
		return &models.Property{
			ID:        primitive.NewObjectIDFromTimestamp(base.Add(time.Duration(i) * time.Second)),
			Title:     title,
			City:      city,
			Price:     price,
			Bedrooms:  intPtr(beds),
			Area:      intPtr(area),
			Amenities: amenities,
			Status:    models.StatusActive,
			CreatedAt: base.Add(time.Duration(i%3) * time.Hour),
		}
	}
	props := []*models.Property{
		mk(0, "Sea facing flat", "Mumbai", 25_000_000, 3, 1200, "gym", "pool"),
		mk(1, "Cosy studio", "Pune", 4_500_000, 1, 400),
		mk(2, "Garden villa", "Bengaluru", 15_000_000, 4, 2400, "garden"),
		mk(3, "City apartment", "Mumbai", 12_000_000, 2, 900, "gym"),
		mk(4, "Penthouse", "Mumbai", 90_000_000, 5, 4000, "pool"),
		mk(5, "Budget flat", "navi mumbai", 10_000_000, 2, 700),
		mk(6, "Old house", "Pune", 20_000_000, 3, 1500),
	}
	sold := mk(7, "Sold flat", "Mumbai", 15_000_000, 2, 800)
	sold.Status = models.StatusSold
	return append(props, sold)
}

func TestMatchesPriceBounds(t *testing.T) {
	q := ParsePropertyQuery(url.Values{"minPrice": {"1"}, "maxPrice": {"2"}})

	var got []string
	for _, p := range sampleProperties() {
		if q.Matches(p) {
			assert.GreaterOrEqual(t, p.Price, int64(10_000_000))
			assert.LessOrEqual(t, p.Price, int64(20_000_000))
			got = append(got, p.Title)
		}
	}
	assert.ElementsMatch(t, []string{"Garden villa", "City apartment", "Budget flat", "Old house"}, got)
}

func TestMatchesLocationAndAmenities(t *testing.T) {
	q := ParsePropertyQuery(url.Values{"location": {"mumbai"}, "amenities": {"gym,pool"}})

	var got []string
	for _, p := range sampleProperties() {
		if q.Matches(p) {
			got = append(got, p.Title)
		}
	}
	assert.ElementsMatch(t, []string{"Sea facing flat", "City apartment", "Penthouse"}, got)
}

func TestMatchesMissingBedrooms(t *testing.T) {
	q := ParsePropertyQuery(url.Values{"bedrooms": {"1"}})
	assert.False(t, q.Matches(&models.Property{Status: models.StatusActive}))
}

func TestPagesPartitionSortedSet(t *testing.T) {
	props := sampleProperties()
	for _, order := range []string{"asc", "desc"} {
		for _, field := range []string{"createdAt", "price", "title", "views"} {
			seen := map[primitive.ObjectID]int{}
			var all []*models.Property
			for page := 1; page <= 4; page++ {
				q := ParsePropertyQuery(url.Values{
					"sort": {field}, "order": {order},
					"page": {strconv.Itoa(page)}, "limit": {"2"},
				})
				matched := make([]*models.Property, 0)
				for _, p := range props {
					if q.Matches(p) {
						matched = append(matched, p)
					}
				}
				sort.SliceStable(matched, func(i, j int) bool { return q.Less(matched[i], matched[j]) })

				start := int(q.Skip())
				end := start + q.Limit
				if start > len(matched) {
					start = len(matched)
				}
				if end > len(matched) {
					end = len(matched)
				}
				for _, p := range matched[start:end] {
					seen[p.ID]++
					all = append(all, p)
				}
			}
			require.Len(t, all, 7, "%s %s", field, order)
			for id, n := range seen {
				assert.Equal(t, 1, n, "%s appears %d times", id.Hex(), n)
			}
		}
	}
}

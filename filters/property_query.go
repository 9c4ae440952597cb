package filters

import (
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/Madhav-Gupta-28/estatehub-backend-go/models"
	"github.com/Madhav-Gupta-28/estatehub-backend-go/utils"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PriceUnit converts the crore figures clients send as minPrice/maxPrice into
// rupees.
const PriceUnit = 10_000_000

const DefaultSort = "createdAt"

var sortableFields = map[string]bool{
	"createdAt": true,
	"price":     true,
	"area":      true,
	"bedrooms":  true,
	"views":     true,
	"title":     true,
}

// PropertyQuery is the typed form of a listing search.
type PropertyQuery struct {
	Search       string
	Location     string
	PropertyType string
	MinPrice     *int64
	MaxPrice     *int64
	MinBedrooms  *int
	Furnishing   string
	Possession   string
	MinArea      *int
	MaxArea      *int
	Amenities    []string

	SortField string
	SortDesc  bool

	Page  int
	Limit int
}

// ParsePropertyQuery never fails: values that do not parse are dropped.
func ParsePropertyQuery(values url.Values) PropertyQuery {
	q := PropertyQuery{
		Search:       strings.TrimSpace(values.Get("search")),
		Location:     strings.TrimSpace(values.Get("location")),
		PropertyType: strings.TrimSpace(values.Get("propertyType")),
		Furnishing:   strings.TrimSpace(values.Get("furnishing")),
		Possession:   strings.TrimSpace(values.Get("possession")),
		SortField:    DefaultSort,
		SortDesc:     true,
	}

	q.MinPrice = parseCrore(values.Get("minPrice"))
	q.MaxPrice = parseCrore(values.Get("maxPrice"))
	q.MinBedrooms = parseInt(values.Get("bedrooms"))
	q.MinArea = parseInt(values.Get("minArea"))
	q.MaxArea = parseInt(values.Get("maxArea"))

	var amenities []string
	for _, raw := range values["amenities"] {
		amenities = append(amenities, strings.Split(raw, ",")...)
	}
	q.Amenities = models.NormalizeTags(amenities)
	if len(q.Amenities) == 0 {
		q.Amenities = nil
	}

	if field := strings.TrimSpace(values.Get("sort")); sortableFields[field] {
		q.SortField = field
	}
	switch strings.ToLower(strings.TrimSpace(values.Get("order"))) {
	case "asc", "1", "ascending":
		q.SortDesc = false
	case "desc", "-1", "descending":
		q.SortDesc = true
	}

	page := utils.QueryInt(values.Get("page"))
	limit := utils.QueryInt(values.Get("limit"))
	q.Page, q.Limit = utils.NormalizePage(page, limit, utils.DefaultPageLimit, utils.MaxPageLimit)
	return q
}

func parseInt(raw string) *int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	n, ok := utils.ParseInt(raw)
	if !ok {
		return nil
	}
	return &n
}

func parseCrore(raw string) *int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, ok := utils.ParseDecimal(raw)
	if !ok || f < 0 {
		return nil
	}
	// Bounds past the int64 range saturate.
	rupees := int64(math.MaxInt64)
	if v := f*PriceUnit + 0.5; v < math.MaxInt64 {
		rupees = int64(v)
	}
	return &rupees
}

func containsPattern(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

// Filter renders the listing predicate. Only active listings are searchable.
func (q PropertyQuery) Filter() bson.M {
	filter := bson.M{"status": models.StatusActive}

	if q.Search != "" {
		pattern := containsPattern(q.Search)
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"location": pattern},
		}
	}
	if q.Location != "" {
		filter["city"] = containsPattern(q.Location)
	}
	if q.PropertyType != "" {
		filter["propertyType"] = q.PropertyType
	}
	if price := rangeOf(q.MinPrice, q.MaxPrice); price != nil {
		filter["price"] = price
	}
	if q.MinBedrooms != nil {
		filter["bedrooms"] = bson.M{"$gte": *q.MinBedrooms}
	}
	if q.Furnishing != "" {
		filter["furnishing"] = q.Furnishing
	}
	if q.Possession != "" {
		filter["possession"] = q.Possession
	}
	if area := rangeOf(toInt64(q.MinArea), toInt64(q.MaxArea)); area != nil {
		filter["area"] = area
	}
	if len(q.Amenities) > 0 {
		filter["amenities"] = bson.M{"$in": q.Amenities}
	}
	return filter
}

func rangeOf(min, max *int64) bson.M {
	if min == nil && max == nil {
		return nil
	}
	r := bson.M{}
	if min != nil {
		r["$gte"] = *min
	}
	if max != nil {
		r["$lte"] = *max
	}
	return r
}

func toInt64(v *int) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

// Sort orders by the requested field with _id as tie-breaker so that pages
// never overlap.
func (q PropertyQuery) Sort() bson.D {
	dir := 1
	if q.SortDesc {
		dir = -1
	}
	return bson.D{{Key: q.SortField, Value: dir}, {Key: "_id", Value: dir}}
}

func (q PropertyQuery) Skip() int64 {
	return int64(utils.Offset(q.Page, q.Limit))
}

// FindOptions carries the sort and the page window.
func (q PropertyQuery) FindOptions() *options.FindOptions {
	return options.Find().
		SetSort(q.Sort()).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))
}

package models

import (
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PropertyStatus string

const (
	StatusActive   PropertyStatus = "active"
	StatusInactive PropertyStatus = "inactive"
	StatusSold     PropertyStatus = "sold"
	StatusRented   PropertyStatus = "rented"
)

type Address struct {
	Line1     string   `bson:"line1,omitempty" json:"line1,omitempty" mapstructure:"line1"`
	Line2     string   `bson:"line2,omitempty" json:"line2,omitempty" mapstructure:"line2"`
	Landmark  string   `bson:"landmark,omitempty" json:"landmark,omitempty" mapstructure:"landmark"`
	Latitude  *float64 `bson:"latitude,omitempty" json:"latitude,omitempty" mapstructure:"latitude"`
	Longitude *float64 `bson:"longitude,omitempty" json:"longitude,omitempty" mapstructure:"longitude"`
	// Keys the client sent that have no typed home.
	Extras map[string]interface{} `bson:"extras,omitempty" json:"extras,omitempty" mapstructure:",remain"`
}

type Property struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ListingID    string             `bson:"listingId" json:"listingId"`
	Slug         string             `bson:"slug" json:"slug"`
	Title        string             `bson:"title" json:"title"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	PropertyType string             `bson:"propertyType,omitempty" json:"propertyType,omitempty"`
	ListingType  string             `bson:"listingType,omitempty" json:"listingType,omitempty"`

	Location string   `bson:"location,omitempty" json:"location,omitempty"`
	City     string   `bson:"city,omitempty" json:"city,omitempty"`
	State    string   `bson:"state,omitempty" json:"state,omitempty"`
	Pincode  string   `bson:"pincode,omitempty" json:"pincode,omitempty"`
	Address  *Address `bson:"address,omitempty" json:"address,omitempty"`

	Bedrooms    *int `bson:"bedrooms,omitempty" json:"bedrooms,omitempty"`
	Bathrooms   *int `bson:"bathrooms,omitempty" json:"bathrooms,omitempty"`
	Balconies   *int `bson:"balconies,omitempty" json:"balconies,omitempty"`
	Area        *int `bson:"area,omitempty" json:"area,omitempty"` // sq ft
	Floor       *int `bson:"floor,omitempty" json:"floor,omitempty"`
	TotalFloors *int `bson:"totalFloors,omitempty" json:"totalFloors,omitempty"`

	Price        int64  `bson:"price" json:"price"` // rupees
	PricePerSqft *int64 `bson:"pricePerSqft,omitempty" json:"pricePerSqft,omitempty"`
	Maintenance  *int64 `bson:"maintenance,omitempty" json:"maintenance,omitempty"`

	Furnishing string `bson:"furnishing,omitempty" json:"furnishing,omitempty"`
	Possession string `bson:"possession,omitempty" json:"possession,omitempty"`
	Facing     string `bson:"facing,omitempty" json:"facing,omitempty"`

	Amenities []string `bson:"amenities" json:"amenities"`
	Images    []string `bson:"images" json:"images"`

	Owner        primitive.ObjectID `bson:"owner,omitempty" json:"owner,omitempty"`
	OwnerDetails *OwnerSummary      `bson:"-" json:"ownerDetails,omitempty"`

	Status   PropertyStatus `bson:"status" json:"status"`
	Featured bool           `bson:"featured" json:"featured"`
	Views    int64          `bson:"views" json:"views"`

	Extras map[string]interface{} `bson:"extras,omitempty" json:"extras,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OwnedBy reports whether userID created the listing.
func (p *Property) OwnedBy(userID primitive.ObjectID) bool {
	return !p.Owner.IsZero() && p.Owner == userID
}

// PropertyInput is the boundary form of a create/update body. Every field is
// optional so the same type serves partial updates; numeric fields accept
// JSON numbers or numeric strings.
type PropertyInput struct {
	Title        *string `mapstructure:"title" validate:"omitempty,min=1,max=200"`
	Description  *string `mapstructure:"description" validate:"omitempty,max=5000"`
	PropertyType *string `mapstructure:"propertyType" validate:"omitempty,max=50"`
	ListingType  *string `mapstructure:"listingType" validate:"omitempty,max=50"`

	Location *string  `mapstructure:"location" validate:"omitempty,max=200"`
	City     *string  `mapstructure:"city" validate:"omitempty,max=100"`
	State    *string  `mapstructure:"state" validate:"omitempty,max=100"`
	Pincode  *string  `mapstructure:"pincode" validate:"omitempty,pincode"`
	Address  *Address `mapstructure:"address"`

	Bedrooms    *int `mapstructure:"bedrooms" validate:"omitempty,min=0,max=100"`
	Bathrooms   *int `mapstructure:"bathrooms" validate:"omitempty,min=0,max=100"`
	Balconies   *int `mapstructure:"balconies" validate:"omitempty,min=0,max=100"`
	Area        *int `mapstructure:"area" validate:"omitempty,min=0"`
	Floor       *int `mapstructure:"floor" validate:"omitempty,min=-5"`
	TotalFloors *int `mapstructure:"totalFloors" validate:"omitempty,min=0"`

	Price        *int64 `mapstructure:"price" validate:"omitempty,gt=0"`
	PricePerSqft *int64 `mapstructure:"pricePerSqft" validate:"omitempty,gte=0"`
	Maintenance  *int64 `mapstructure:"maintenance" validate:"omitempty,gte=0"`

	Furnishing *string `mapstructure:"furnishing" validate:"omitempty,max=50"`
	Possession *string `mapstructure:"possession" validate:"omitempty,max=50"`
	Facing     *string `mapstructure:"facing" validate:"omitempty,max=50"`

	Amenities []string `mapstructure:"amenities" validate:"omitempty,max=100,dive,max=100"`
	Images    []string `mapstructure:"images" validate:"omitempty,max=50,dive,max=2048"`

	Status   *PropertyStatus `mapstructure:"status" validate:"omitempty,oneof=active inactive sold rented"`
	Featured *bool           `mapstructure:"featured"`

	Extras map[string]interface{} `mapstructure:",remain"`
}

// Keys clients may send but never control.
var protectedPropertyKeys = []string{
	"_id", "id", "owner", "ownerDetails", "views", "slug", "listingId", "createdAt", "updatedAt", "extras",
}

// DecodePropertyInput converts a raw JSON body into a PropertyInput.
func DecodePropertyInput(raw map[string]interface{}) (*PropertyInput, error) {
	input := &PropertyInput{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           input,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}
	for _, key := range protectedPropertyKeys {
		delete(input.Extras, key)
	}
	for key := range input.Extras {
		// mongo field paths
		if key == "" || strings.HasPrefix(key, "$") || strings.Contains(key, ".") {
			delete(input.Extras, key)
		}
	}
	if len(input.Extras) == 0 {
		input.Extras = nil
	}
	return input, nil
}

// MissingForCreate lists the fields a new listing cannot do without.
func (in *PropertyInput) MissingForCreate() []string {
	var missing []string
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		missing = append(missing, "title is required")
	}
	if in.Price == nil {
		missing = append(missing, "price is required")
	}
	return missing
}

// Apply copies every supplied field onto p.
func (in *PropertyInput) Apply(p *Property) {
	setString(&p.Title, in.Title)
	setString(&p.Description, in.Description)
	setString(&p.PropertyType, in.PropertyType)
	setString(&p.ListingType, in.ListingType)
	setString(&p.Location, in.Location)
	setString(&p.City, in.City)
	setString(&p.State, in.State)
	setString(&p.Pincode, in.Pincode)
	setString(&p.Furnishing, in.Furnishing)
	setString(&p.Possession, in.Possession)
	setString(&p.Facing, in.Facing)

	if in.Address != nil {
		p.Address = in.Address
	}
	if in.Bedrooms != nil {
		p.Bedrooms = in.Bedrooms
	}
	if in.Bathrooms != nil {
		p.Bathrooms = in.Bathrooms
	}
	if in.Balconies != nil {
		p.Balconies = in.Balconies
	}
	if in.Area != nil {
		p.Area = in.Area
	}
	if in.Floor != nil {
		p.Floor = in.Floor
	}
	if in.TotalFloors != nil {
		p.TotalFloors = in.TotalFloors
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.PricePerSqft != nil {
		p.PricePerSqft = in.PricePerSqft
	}
	if in.Maintenance != nil {
		p.Maintenance = in.Maintenance
	}
	if in.Amenities != nil {
		p.Amenities = NormalizeTags(in.Amenities)
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Extras != nil {
		if p.Extras == nil {
			p.Extras = map[string]interface{}{}
		}
		for k, v := range in.Extras {
			p.Extras[k] = v
		}
	}
}

// UpdateDocument renders the supplied fields as a $set document. Extension
// keys are merged one by one so earlier extras survive.
func (in *PropertyInput) UpdateDocument() bson.M {
	set := bson.M{}
	putString(set, "title", in.Title)
	putString(set, "description", in.Description)
	putString(set, "propertyType", in.PropertyType)
	putString(set, "listingType", in.ListingType)
	putString(set, "location", in.Location)
	putString(set, "city", in.City)
	putString(set, "state", in.State)
	putString(set, "pincode", in.Pincode)
	putString(set, "furnishing", in.Furnishing)
	putString(set, "possession", in.Possession)
	putString(set, "facing", in.Facing)

	if in.Address != nil {
		set["address"] = in.Address
	}
	putInt(set, "bedrooms", in.Bedrooms)
	putInt(set, "bathrooms", in.Bathrooms)
	putInt(set, "balconies", in.Balconies)
	putInt(set, "area", in.Area)
	putInt(set, "floor", in.Floor)
	putInt(set, "totalFloors", in.TotalFloors)
	if in.Price != nil {
		set["price"] = *in.Price
	}
	if in.PricePerSqft != nil {
		set["pricePerSqft"] = *in.PricePerSqft
	}
	if in.Maintenance != nil {
		set["maintenance"] = *in.Maintenance
	}
	if in.Amenities != nil {
		set["amenities"] = NormalizeTags(in.Amenities)
	}
	if in.Images != nil {
		set["images"] = in.Images
	}
	if in.Status != nil {
		set["status"] = *in.Status
	}
	if in.Featured != nil {
		set["featured"] = *in.Featured
	}
	for k, v := range in.Extras {
		set["extras."+k] = v
	}
	return set
}

// NormalizeTags trims, drops empties and de-duplicates while keeping order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func putString(set bson.M, key string, v *string) {
	if v != nil {
		set[key] = strings.TrimSpace(*v)
	}
}

func putInt(set bson.M, key string, v *int) {
	if v != nil {
		set[key] = *v
	}
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestDecodePropertyInputCoercesNumbers(t *testing.T) {
	raw := map[string]interface{}{
		"title":     "2BHK in Andheri",
		"price":     float64(12500000),
		"bedrooms":  "2",
		"bathrooms": float64(2),
		"area":      "950",
		"floor":     "3",
		"amenities": "parking",
	}

	in, err := DecodePropertyInput(raw)
	require.NoError(t, err)

	require.NotNil(t, in.Price)
	assert.Equal(t, int64(12500000), *in.Price)
	require.NotNil(t, in.Bedrooms)
	assert.Equal(t, 2, *in.Bedrooms)
	assert.Equal(t, 2, *in.Bathrooms)
	assert.Equal(t, 950, *in.Area)
	assert.Equal(t, 3, *in.Floor)
	assert.Equal(t, []string{"parking"}, in.Amenities)
	assert.Nil(t, in.Extras)
	assert.Empty(t, in.MissingForCreate())
}

func TestDecodePropertyInputRejectsBadNumber(t *testing.T) {
	_, err := DecodePropertyInput(map[string]interface{}{"bedrooms": "three"})
	assert.Error(t, err)
}

func TestDecodePropertyInputKeepsExtras(t *testing.T) {
	raw := map[string]interface{}{
		"title":       "Villa",
		"price":       "45000000",
		"reraNumber":  "P51800012345",
		"owner":       "attacker",
		"views":       float64(9999),
		"$where":      "1",
		"nested.path": true,
		"address": map[string]interface{}{
			"line1":    "12 Palm Road",
			"latitude": "19.07",
			"gateCode": "A7",
		},
	}

	in, err := DecodePropertyInput(raw)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{"reraNumber": "P51800012345"}, in.Extras)
	require.NotNil(t, in.Address)
	assert.Equal(t, "12 Palm Road", in.Address.Line1)
	require.NotNil(t, in.Address.Latitude)
	assert.InDelta(t, 19.07, *in.Address.Latitude, 0.0001)
	assert.Equal(t, "A7", in.Address.Extras["gateCode"])
}

func TestMissingForCreate(t *testing.T) {
	blank := "  "
	in := &PropertyInput{Title: &blank}
	assert.Equal(t, []string{"title is required", "price is required"}, in.MissingForCreate())
}

func TestUpdateDocumentOnlySuppliedFields(t *testing.T) {
	title := " New title "
	beds := 3
	in := &PropertyInput{
		Title:     &title,
		Bedrooms:  &beds,
		Amenities: []string{"gym", " gym", "", "pool"},
		Extras:    map[string]interface{}{"reraNumber": "X1"},
	}

	doc := in.UpdateDocument()

	assert.Equal(t, bson.M{
		"title":             "New title",
		"bedrooms":          3,
		"amenities":         []string{"gym", "pool"},
		"extras.reraNumber": "X1",
	}, doc)
}

func TestApplyAndOwnership(t *testing.T) {
	owner := primitive.NewObjectID()
	price := int64(9000000)
	status := StatusSold
	p := &Property{Owner: owner, Status: StatusActive}

	(&PropertyInput{Price: &price, Status: &status, Extras: map[string]interface{}{"k": "v"}}).Apply(p)

	assert.Equal(t, price, p.Price)
	assert.Equal(t, StatusSold, p.Status)
	assert.Equal(t, "v", p.Extras["k"])
	assert.True(t, p.OwnedBy(owner))
	assert.False(t, p.OwnedBy(primitive.NewObjectID()))
	assert.False(t, (&Property{}).OwnedBy(primitive.NilObjectID))
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleAgent.Valid())
	assert.False(t, Role("superuser").Valid())
}

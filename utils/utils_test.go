package utils

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatPrice(t *testing.T) {
	cases := map[int64]string{
		0:         "₹0",
		950:       "₹950",
		75000:     "₹75,000",
		99999:     "₹99,999",
		100000:    "₹1.00 L",
		4550000:   "₹45.50 L",
		10000000:  "₹1.00 Cr",
		125000000: "₹12.50 Cr",
		-250000:   "-₹2.50 L",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatPrice(in), "price %d", in)
	}
}

func TestGroupIndian(t *testing.T) {
	assert.Equal(t, "1,234", groupIndian(1234))
	assert.Equal(t, "12,34,567", groupIndian(1234567))
	assert.Equal(t, "1,23,45,678", groupIndian(12345678))
}

func TestCalculateEMI(t *testing.T) {
	// 10 lakh at 10% for 1 year
	assert.Equal(t, int64(87916), CalculateEMI(1_000_000, 10, 1))
	assert.Equal(t, int64(10000), CalculateEMI(120_000, 0, 1))
	assert.Zero(t, CalculateEMI(0, 8.5, 20))
	assert.Zero(t, CalculateEMI(100000, 8.5, 0))
	assert.Equal(t, CalculateEMI(8_000_000, 8.5, 20), EstimateEMI(10_000_000))
}

func TestGenerateSlug(t *testing.T) {
	assert.Equal(t, "3-bhk-flat-in-bandra-west-ab12", GenerateSlug("  3 BHK Flat in Bandra (West)! ", "AB12"))
	assert.Equal(t, "ab12", GenerateSlug("!!!", "ab12"))
	assert.Equal(t, "villa", GenerateSlug("Villa", ""))

	long := GenerateSlug(strings.Repeat("word ", 30), "x")
	assert.LessOrEqual(t, len(long), maxSlugBase+2)
	assert.False(t, strings.Contains(long, "--"))
}

func TestGenerateListingID(t *testing.T) {
	a, b := GenerateListingID(), GenerateListingID()
	assert.True(t, strings.HasPrefix(a, "PROP-"))
	assert.NotEqual(t, a, b)
	assert.Len(t, RandomHex(4), 8)
}

func TestPhoneAndPincode(t *testing.T) {
	for _, ok := range []string{"9876543210", "+91 98765 43210", "09876543210", "91-9876543210"} {
		assert.True(t, IsValidPhone(ok), ok)
	}
	for _, bad := range []string{"", "12345", "5876543210", "98765432100", "abcdefghij"} {
		assert.False(t, IsValidPhone(bad), bad)
	}
	assert.True(t, IsValidPincode("400050"))
	assert.False(t, IsValidPincode("040005"))
	assert.False(t, IsValidPincode("40005"))
}

func TestPagination(t *testing.T) {
	page, limit := NormalizePage(0, 0, 12, 100)
	assert.Equal(t, 1, page)
	assert.Equal(t, 12, limit)

	page, limit = NormalizePage(3, 500, 12, 100)
	assert.Equal(t, 3, page)
	assert.Equal(t, 100, limit)

	assert.Equal(t, 20, Offset(3, 10))
	assert.Equal(t, 0, Offset(0, 10))
	assert.Equal(t, 3, TotalPages(21, 10))
	assert.Equal(t, 2, TotalPages(20, 10))
	assert.Equal(t, 0, TotalPages(0, 10))

	page, _ = NormalizePage(1<<40, 10, 12, 100)
	assert.Equal(t, MaxPage, page)

	p := NewPagination(2, 10, 21)
	assert.Equal(t, Pagination{Page: 2, Limit: 10, Total: 21, Pages: 3, HasNext: true, HasPrev: true}, p)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.NoError(t, CheckPassword(hash, "s3cret-pass"))
	assert.Error(t, CheckPassword(hash, "wrong"))
}

type sample struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,phone"`
	Pincode string `json:"pincode" validate:"omitempty,pincode"`
	Role    string `json:"role" validate:"omitempty,oneof=user admin"`
}

func TestValidatorMessages(t *testing.T) {
	v := NewValidator()

	require.NoError(t, v.Validate(&sample{Name: "A", Email: "a@x.com", Phone: "9876543210", Pincode: "560001"}))

	err := v.Validate(&sample{Email: "nope", Phone: "123", Pincode: "1", Role: "root"})
	require.Error(t, err)
	assert.Equal(t, []string{
		"name is required",
		"email must be a valid email address",
		"phone must be a valid phone number",
		"pincode must be a valid 6-digit pincode",
		"role must be one of: user, admin",
	}, ValidationMessages(err))
}

func TestRespondEnvelope(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, OK(c, []int{1}, echo.Map{"pagination": NewPagination(1, 10, 1), "success": false}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"data":[1],"pagination":{"page":1,"limit":10,"total":1,"pages":1,"hasNext":false,"hasPrev":false}}`, rec.Body.String())

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, BadRequest(c, "Validation failed", "name is required"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Validation failed","errors":["name is required"]}`, rec.Body.String())
}

func TestParseNumbers(t *testing.T) {
	ints := map[string]int{"010": 10, " 7 ": 7, "-2": -2, "2.9": 2, "1e3": 1000}
	for raw, want := range ints {
		n, ok := ParseInt(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, n, raw)
	}
	for _, raw := range []string{"", "abc", "0x1f", "NaN", "Inf", "1e30", "99999999999999999999"} {
		_, ok := ParseInt(raw)
		assert.False(t, ok, raw)
	}

	f, ok := ParseDecimal("1.5")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)
	for _, raw := range []string{"nan", "+Inf", "infinity", "0x1p3", "1e400", "1,5"} {
		_, ok := ParseDecimal(raw)
		assert.False(t, ok, raw)
	}
	assert.Equal(t, 0, QueryInt("lots"))
}

package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	Crore = 10_000_000
	Lakh  = 100_000
)

// FormatPrice renders rupees the way Indian listings do: crores and lakhs with
// two decimals, smaller amounts with Indian digit grouping.
func FormatPrice(price int64) string {
	sign := ""
	if price < 0 {
		sign = "-"
		price = -price
	}
	switch {
	case price >= Crore:
		return fmt.Sprintf("%s₹%.2f Cr", sign, float64(price)/Crore)
	case price >= Lakh:
		return fmt.Sprintf("%s₹%.2f L", sign, float64(price)/Lakh)
	default:
		return sign + "₹" + groupIndian(price)
	}
}

// groupIndian formats n as 12,34,567.
func groupIndian(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

// CalculateEMI returns the monthly instalment for principal at annualRate
// percent over years, rounded to the rupee.
func CalculateEMI(principal float64, annualRate float64, years int) int64 {
	months := years * 12
	if principal <= 0 || months <= 0 {
		return 0
	}
	r := annualRate / 12 / 100
	if r == 0 {
		return int64(math.Round(principal / float64(months)))
	}
	factor := math.Pow(1+r, float64(months))
	return int64(math.Round(principal * r * factor / (factor - 1)))
}

// EstimateEMI is the listing-page estimate: 80% loan, 20 years, 8.5% p.a.
func EstimateEMI(price int64) int64 {
	return CalculateEMI(float64(price)*0.8, 8.5, 20)
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

const maxSlugBase = 60

// GenerateSlug builds a URL slug from title, suffixed to keep it unique.
func GenerateSlug(title, suffix string) string {
	base := slugInvalid.ReplaceAllString(strings.ToLower(title), "-")
	base = strings.Trim(base, "-")
	if len(base) > maxSlugBase {
		base = strings.TrimRight(base[:maxSlugBase], "-")
	}
	suffix = strings.ToLower(strings.TrimSpace(suffix))
	switch {
	case base == "":
		return suffix
	case suffix == "":
		return base
	}
	return base + "-" + suffix
}

// GenerateListingID returns a human-facing listing code such as
// PROP-LX3K9Q2A-7F3C.
func GenerateListingID() string {
	ts := strings.ToUpper(strconv.FormatInt(time.Now().UnixMilli(), 36))
	return "PROP-" + ts + "-" + strings.ToUpper(RandomHex(2))
}

// RandomHex returns 2n hex characters from crypto/rand.
func RandomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}

var (
	phonePattern   = regexp.MustCompile(`^(?:\+?91|0)?[6-9]\d{9}$`)
	phoneStrip     = regexp.MustCompile(`[\s\-()]`)
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
)

// IsValidPhone accepts Indian mobile numbers with an optional +91/91/0
// prefix; spaces, dashes and parentheses are ignored.
func IsValidPhone(phone string) bool {
	return phonePattern.MatchString(phoneStrip.ReplaceAllString(phone, ""))
}

// IsValidPincode accepts six-digit Indian postal codes.
func IsValidPincode(pincode string) bool {
	return pincodePattern.MatchString(strings.TrimSpace(pincode))
}

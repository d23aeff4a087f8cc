package types

import (
	"fmt"
	"strings"
)

type Category string

const (
	Food    Category = "Food"
	Product Category = "Product"
	Place   Category = "Place"
	Other   Category = "Other"
)

// Categories is the selector order shown on the review form.
var Categories = []Category{Food, Product, Place, Other}

// ParseCategory maps a form or JSON value to a Category.
// An empty value selects the first option, like an untouched dropdown.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Food, nil
	}
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown review category %q", s)
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// IsBlankReview reports whether the text holds nothing worth analyzing.
func IsBlankReview(review string) bool {
	return strings.TrimSpace(review) == ""
}

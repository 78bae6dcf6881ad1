package domain

import (
	"fmt"
	"strings"
)

// UserClaim is the identity the caller asserts for the document holder.
type UserClaim struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	StreetName   string `json:"street_name"`
	StreetNumber string `json:"street_number"`
	PostalCode   string `json:"postal_code"`
	City         string `json:"city"`
}

// Validate reports every blank field as ErrComparison.
func (c UserClaim) Validate() error {
	fields := []struct{ name, value string }{
		{"first_name", c.FirstName},
		{"last_name", c.LastName},
		{"street_name", c.StreetName},
		{"street_number", c.StreetNumber},
		{"postal_code", c.PostalCode},
		{"city", c.City},
	}
	var blank []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			blank = append(blank, f.name)
		}
	}
	if len(blank) > 0 {
		return fmt.Errorf("%w: claim fields required: %s", ErrComparison, strings.Join(blank, ", "))
	}
	return nil
}

// ComparisonResult is produced fresh for every comparison.
type ComparisonResult struct {
	IsVerified bool `json:"is_verified"`
}

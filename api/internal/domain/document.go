package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DocumentFields is the canonical record extracted from a scanned document.
// Every field is always present; an empty string means "not found".
type DocumentFields struct {
	FirstName          string `json:"first_name"`
	LastName           string `json:"last_name"`
	ClientStreetName   string `json:"client_street_name"`
	ClientStreetNumber string `json:"client_street_number"`
	ClientPostalCode   string `json:"client_postal_code"`
	ClientCity         string `json:"client_city"`
	BankStreetName     string `json:"bank_street_name"`
	BankStreetNumber   string `json:"bank_street_number"`
	BankPostalCode     string `json:"bank_postal_code"`
	BankCity           string `json:"bank_city"`
	DocumentDate       string `json:"document_date"`
}

// FieldSpec describes one key of DocumentFields for the extraction schema.
type FieldSpec struct {
	Key         string
	Description string
}

// FieldSpecs lists the DocumentFields keys in declaration order.
var FieldSpecs = []FieldSpec{
	{Key: "first_name", Description: "The first name of the document holder"},
	{Key: "last_name", Description: "The last name of the document holder"},
	{Key: "client_street_name", Description: "The street name of the document holder's address"},
	{Key: "client_street_number", Description: "The street number of the document holder's address"},
	{Key: "client_postal_code", Description: "The postal code of the document holder's address"},
	{Key: "client_city", Description: "The city of the document holder's address"},
	{Key: "bank_street_name", Description: "The street name of the issuing institution's address"},
	{Key: "bank_street_number", Description: "The street number of the issuing institution's address"},
	{Key: "bank_postal_code", Description: "The postal code of the issuing institution's address"},
	{Key: "bank_city", Description: "The city of the issuing institution's address"},
	{Key: "document_date", Description: "The date the document was issued"},
}

// FieldKeys returns the schema keys in declaration order.
func FieldKeys() []string {
	keys := make([]string, len(FieldSpecs))
	for i, f := range FieldSpecs {
		keys[i] = f.Key
	}
	return keys
}

// DocumentFieldsFromMap builds a record from an exact key set.
// Missing and unknown keys are both rejected with ErrExtraction.
func DocumentFieldsFromMap(m map[string]string) (DocumentFields, error) {
	var missing []string
	for _, f := range FieldSpecs {
		if _, ok := m[f.Key]; !ok {
			missing = append(missing, f.Key)
		}
	}
	if len(missing) > 0 {
		return DocumentFields{}, fmt.Errorf("%w: missing keys %s", ErrExtraction, strings.Join(missing, ", "))
	}
	if len(m) != len(FieldSpecs) {
		known := make(map[string]struct{}, len(FieldSpecs))
		for _, f := range FieldSpecs {
			known[f.Key] = struct{}{}
		}
		var extra []string
		for k := range m {
			if _, ok := known[k]; !ok {
				extra = append(extra, k)
			}
		}
		sort.Strings(extra)
		return DocumentFields{}, fmt.Errorf("%w: unexpected keys %s", ErrExtraction, strings.Join(extra, ", "))
	}

	return DocumentFields{
		FirstName:          m["first_name"],
		LastName:           m["last_name"],
		ClientStreetName:   m["client_street_name"],
		ClientStreetNumber: m["client_street_number"],
		ClientPostalCode:   m["client_postal_code"],
		ClientCity:         m["client_city"],
		BankStreetName:     m["bank_street_name"],
		BankStreetNumber:   m["bank_street_number"],
		BankPostalCode:     m["bank_postal_code"],
		BankCity:           m["bank_city"],
		DocumentDate:       m["document_date"],
	}, nil
}

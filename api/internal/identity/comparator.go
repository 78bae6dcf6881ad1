package identity

import (
	"fmt"
	"strings"

	"kyc-verifier/api/internal/domain"
)

const (
	RuleName     = "name"
	RuleStreet   = "street"
	RuleLocality = "locality"
)

// Rule is a named, pure equivalence check between a claim and an extracted record.
type Rule struct {
	Name  string
	Match func(claim domain.UserClaim, doc domain.DocumentFields) bool
}

type Outcome struct {
	Rule    string `json:"rule"`
	Matched bool   `json:"matched"`
}

type Evaluation struct {
	Outcomes []Outcome `json:"outcomes"`
}

// Verified is the logical AND of every rule outcome.
func (e Evaluation) Verified() bool {
	if len(e.Outcomes) == 0 {
		return false
	}
	for _, o := range e.Outcomes {
		if !o.Matched {
			return false
		}
	}
	return true
}

// Failed lists the rules that did not match.
func (e Evaluation) Failed() []string {
	var out []string
	for _, o := range e.Outcomes {
		if !o.Matched {
			out = append(out, o.Rule)
		}
	}
	return out
}

// Comparator decides whether a claim and an extracted record describe the same
// person and address. It is immutable and safe for concurrent use.
type Comparator struct {
	abbreviations map[string]string
	rules         []Rule
}

// New builds a comparator from DefaultAbbreviations extended (or overridden) by extra.
func New(extra map[string]string) *Comparator {
	abbr := make(map[string]string, len(DefaultAbbreviations)+len(extra))
	for k, v := range DefaultAbbreviations {
		abbr[k] = v
	}
	for k, v := range extra {
		k, v = normalizeText(k), normalizeText(v)
		if k != "" && v != "" {
			abbr[k] = v
		}
	}

	c := &Comparator{abbreviations: abbr}
	c.rules = []Rule{
		{Name: RuleName, Match: matchName},
		{Name: RuleStreet, Match: c.matchStreet},
		{Name: RuleLocality, Match: matchLocality},
	}
	return c
}

func (c *Comparator) Evaluate(claim domain.UserClaim, doc *domain.DocumentFields) (Evaluation, error) {
	if err := claim.Validate(); err != nil {
		return Evaluation{}, err
	}
	if doc == nil {
		return Evaluation{}, fmt.Errorf("%w: no extracted record", domain.ErrComparison)
	}
	ev := Evaluation{Outcomes: make([]Outcome, 0, len(c.rules))}
	for _, r := range c.rules {
		ev.Outcomes = append(ev.Outcomes, Outcome{Rule: r.Name, Matched: r.Match(claim, *doc)})
	}
	return ev, nil
}

func (c *Comparator) Compare(claim domain.UserClaim, doc *domain.DocumentFields) (domain.ComparisonResult, error) {
	ev, err := c.Evaluate(claim, doc)
	if err != nil {
		return domain.ComparisonResult{}, err
	}
	return domain.ComparisonResult{IsVerified: ev.Verified()}, nil
}

func matchName(claim domain.UserClaim, doc domain.DocumentFields) bool {
	return equalNonEmpty(normalizeText(claim.FirstName), normalizeText(doc.FirstName)) &&
		equalNonEmpty(normalizeText(claim.LastName), normalizeText(doc.LastName))
}

func (c *Comparator) matchStreet(claim domain.UserClaim, doc domain.DocumentFields) bool {
	return equalNonEmpty(canonicalStreet(claim.StreetName, c.abbreviations), canonicalStreet(doc.ClientStreetName, c.abbreviations)) &&
		equalNonEmpty(normalizeNumber(claim.StreetNumber), normalizeNumber(doc.ClientStreetNumber))
}

// matchLocality accepts the address when either the postal code or the city agrees.
func matchLocality(claim domain.UserClaim, doc domain.DocumentFields) bool {
	return equalNonEmpty(normalizeText(claim.PostalCode), normalizeText(doc.ClientPostalCode)) ||
		equalNonEmpty(normalizeText(claim.City), normalizeText(doc.ClientCity))
}

func (e Evaluation) String() string {
	parts := make([]string, 0, len(e.Outcomes))
	for _, o := range e.Outcomes {
		parts = append(parts, fmt.Sprintf("%s=%t", o.Rule, o.Matched))
	}
	return strings.Join(parts, " ")
}

// Package expand derives alternate query phrasings from a romanized query.
package expand

import (
	"fmt"
	"sort"
	"strings"
)

// Expander expands a query over a local-term synonym table. Terms map local
// crop names (e.g. "seb") to canonical English terms (e.g. "apple"); each
// template contains one %s substituted with the canonical term. Both tables
// are read-only after construction.
type Expander struct {
	terms     map[string]string
	templates []string
}

// NewExpander creates an expander with the given term table and templates.
func NewExpander(terms map[string]string, templates []string) *Expander {
	if terms == nil {
		terms = map[string]string{}
	}
	return &Expander{terms: terms, templates: templates}
}

// Expand returns the deduplicated query set for query. Expansion is purely
// additive: the canonical query is always first, and templated phrasings are
// appended for every mapped term the query contains.
func (e *Expander) Expand(query string) []string {
	queries := []string{query}
	seen := map[string]bool{query: true}

	lower := strings.ToLower(query)
	matched := make([]string, 0, len(e.terms))
	for local := range e.terms {
		if strings.Contains(lower, local) {
			matched = append(matched, local)
		}
	}
	sort.Strings(matched) // deterministic expansion order

	for _, local := range matched {
		canonical := e.terms[local]
		for _, tmpl := range e.templates {
			q := fmt.Sprintf(tmpl, canonical)
			if !seen[q] {
				seen[q] = true
				queries = append(queries, q)
			}
		}
	}
	return queries
}

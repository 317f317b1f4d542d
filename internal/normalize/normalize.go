// Package normalize maps inconsistently named submission keys onto the
// canonical metadata schema.
package normalize

import (
	"strings"

	"metadata-repository/internal/record"
	"metadata-repository/internal/rules"
)

// Result is the outcome of normalizing one submission.
type Result struct {
	// Canonical holds recognized fields under their canonical names, in the
	// order each canonical name was first written.
	Canonical *record.Record `json:"canonical"`
	// Unknown lists unrecognized keys verbatim, in submission order.
	Unknown []string `json:"unknownFields"`
}

// Normalizer applies an alias table. It is safe for concurrent use.
type Normalizer struct {
	aliases    map[string]string
	fields     []string
	structural []string
}

// New returns a Normalizer backed by the given rule set.
func New(set *rules.Set) *Normalizer {
	return &Normalizer{aliases: set.Aliases, fields: set.Canonical, structural: set.StructuralKeys}
}

// Normalize walks raw in insertion order. When several keys map to the same
// canonical field the last one wins. Values are never coerced.
func (n *Normalizer) Normalize(raw *record.Record) Result {
	res := Result{Canonical: record.New(), Unknown: []string{}}
	for _, key := range raw.Keys() {
		if key == "" {
			continue
		}
		value, _ := raw.Get(key)
		lower := strings.ToLower(strings.TrimSpace(key))

		if canonical, ok := n.aliases[lower]; ok {
			res.Canonical.Set(canonical, value)
			continue
		}
		if n.isStructural(lower) {
			continue
		}
		res.Unknown = append(res.Unknown, key)
	}

	return res
}

// Fields returns the canonical field names in schema order.
func (n *Normalizer) Fields() []string {
	out := make([]string, len(n.fields))
	copy(out, n.fields)
	return out
}

func (n *Normalizer) isStructural(lower string) bool {
	for _, s := range n.structural {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}

// Package classify assigns dataset records to business domains by keyword
// matching over Latin and Thai text.
package classify

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"metadata-repository/internal/record"
	"metadata-repository/internal/rules"
)

// All is the filter value that matches every record.
const All = "all"

// Other is the domain returned by Classify when nothing else matches.
const Other = "Other"

// domainFields are consulted in order for an explicit domain value.
var domainFields = []string{"domain", "businessDomain", "businessdomain", "Business Domain"}

// Classifier matches records against the domain alias table.
type Classifier struct {
	domains  []rules.Domain
	keywords map[string][]string
}

// New returns a Classifier backed by the given rule set.
func New(set *rules.Set) *Classifier {
	return &Classifier{domains: set.Domains, keywords: set.DomainKeywords}
}

// EffectiveDomain returns the lowercased text used for domain matching: the
// first non-blank domain-like field, or the full text of the record.
func (c *Classifier) EffectiveDomain(rec *record.Record) string {
	for _, f := range domainFields {
		v, ok := rec.Get(f)
		if !ok {
			continue
		}
		if s := record.Text(v); strings.TrimSpace(s) != "" {
			return fold(s)
		}
	}
	return FullText(rec)
}

// FullText joins every value of rec with single spaces and lowercases the result.
func FullText(rec *record.Record) string {
	values := rec.Values()
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = record.Text(v)
	}
	return fold(strings.Join(parts, " "))
}

// Matches reports whether rec belongs to the domain named by filter. Unknown
// filter names are used as their own keyword.
func (c *Classifier) Matches(rec *record.Record, filter string) bool {
	if filter == All {
		return true
	}
	return containsAny(c.EffectiveDomain(rec), c.keywordsFor(filter))
}

// Filter combines the domain predicate with a free-text query. An empty query
// always matches.
func (c *Classifier) Filter(rec *record.Record, domain, query string) bool {
	if domain != "" && !c.Matches(rec, domain) {
		return false
	}
	if query == "" {
		return true
	}
	return strings.Contains(FullText(rec), fold(query))
}

// Classify returns the first domain in table order whose keywords occur in the
// effective domain text of rec.
func (c *Classifier) Classify(rec *record.Record) string {
	text := c.EffectiveDomain(rec)
	for _, d := range c.domains {
		if containsAny(text, d.Keywords) {
			return d.Name
		}
	}
	return Other
}

// Domains returns the configured domain names in classification order.
func (c *Classifier) Domains() []string {
	names := make([]string, len(c.domains))
	for i, d := range c.domains {
		names[i] = d.Name
	}
	return names
}

func (c *Classifier) keywordsFor(filter string) []string {
	if kws, ok := c.keywords[filter]; ok {
		return kws
	}
	return []string{fold(filter)}
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// fold lowercases s after composing it so decomposed Thai input still matches.
func fold(s string) string {
	return strings.ToLower(norm.NFC.String(s))
}

// Package privacy classifies data dictionary entries as personal (PII) or
// sensitive personal (SPII) data.
package privacy

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"metadata-repository/internal/record"
	"metadata-repository/internal/rules"
)

// Level is the privacy classification of one dictionary entry.
type Level string

const (
	LevelNone Level = "none"
	LevelPII  Level = "PII"
	LevelSPII Level = "SPII"
)

// Finding is the classification of a single entry. Rule is empty when Level
// is LevelNone.
type Finding struct {
	Field   string `json:"field"`
	Level   Level  `json:"level"`
	Rule    string `json:"rule,omitempty"`
	Trigger string `json:"trigger,omitempty"`
}

// ComplianceRule is an annotation attached to a flagged variable.
type ComplianceRule struct {
	Field string `json:"field"`
	Level Level  `json:"level"`
	Rule  string `json:"rule"`
}

// Report is the outcome of scanning a whole dictionary.
type Report struct {
	Findings []Finding        `json:"findings"`
	Rules    []ComplianceRule `json:"complianceRules"`
	PII      int              `json:"piiCount"`
	SPII     int              `json:"spiiCount"`
}

// Scanner applies the privacy heuristics of a rule set. It holds no mutable
// state and is safe for concurrent use.
type Scanner struct {
	spii         rules.Level
	pii          rules.Level
	unknownField string
	spiiNames    map[string]bool
	piiNames     map[string]bool
}

// NewScanner returns a Scanner backed by the given rule set.
func NewScanner(set *rules.Set) *Scanner {
	p := set.Privacy
	return &Scanner{
		spii:         p.SPII,
		pii:          p.PII,
		unknownField: p.UnknownField,
		spiiNames:    toSet(p.SPII.Variables),
		piiNames:     toSet(p.PII.Variables),
	}
}

// Scan classifies one dictionary entry. SPII is evaluated first and, when it
// fires, PII signals are not consulted.
func (s *Scanner) Scan(entry *record.Record) Finding {
	buffer := scanBuffer(entry)
	variable := strings.ToLower(strings.TrimSpace(lookupText(entry, "variable")))

	f := Finding{Field: s.fieldName(entry), Level: LevelNone}

	if trigger, ok := s.matchSPII(variable, buffer); ok {
		f.Level, f.Rule, f.Trigger = LevelSPII, s.spii.Rule, trigger
		return f
	}
	if trigger, ok := s.matchPII(entry, variable, buffer); ok {
		f.Level, f.Rule, f.Trigger = LevelPII, s.pii.Rule, trigger
	}
	return f
}

// ScanDictionary scans every entry in order. Compliance rules follow
// dictionary order.
func (s *Scanner) ScanDictionary(entries []*record.Record) Report {
	rep := Report{Findings: make([]Finding, 0, len(entries)), Rules: []ComplianceRule{}}
	for _, e := range entries {
		f := s.Scan(e)
		rep.Findings = append(rep.Findings, f)
		switch f.Level {
		case LevelSPII:
			rep.SPII++
		case LevelPII:
			rep.PII++
		default:
			continue
		}
		rep.Rules = append(rep.Rules, ComplianceRule{Field: f.Field, Level: f.Level, Rule: f.Rule})
	}
	return rep
}

func (s *Scanner) matchSPII(variable, buffer string) (string, bool) {
	if s.spiiNames[variable] {
		return "variable:" + variable, true
	}
	return matchText(s.spii, buffer)
}

func (s *Scanner) matchPII(entry *record.Record, variable, buffer string) (string, bool) {
	// The first populated flag key decides.
	for _, key := range s.pii.FlagKeys {
		v := strings.ToLower(strings.TrimSpace(lookupText(entry, key)))
		if v == "" {
			continue
		}
		for _, yes := range s.pii.FlagValues {
			if v == yes {
				return "flag:" + key, true
			}
		}
		break
	}
	if s.piiNames[variable] {
		return "variable:" + variable, true
	}
	return matchText(s.pii, buffer)
}

func matchText(lvl rules.Level, buffer string) (string, bool) {
	for _, phrase := range lvl.Phrases {
		if strings.Contains(buffer, phrase) {
			return "phrase:" + phrase, true
		}
	}
	for _, p := range lvl.Patterns {
		if p.Compiled != nil && p.Compiled.MatchString(buffer) {
			return "pattern:" + p.ID, true
		}
	}
	return "", false
}

func (s *Scanner) fieldName(entry *record.Record) string {
	if v := lookupText(entry, "variable"); strings.TrimSpace(v) != "" {
		return v
	}
	return s.unknownField
}

// scanBuffer concatenates the string values of entry, each followed by a
// space, and lowercases the result.
func scanBuffer(entry *record.Record) string {
	var b strings.Builder
	for _, v := range entry.Values() {
		if s, ok := v.(string); ok {
			b.WriteString(s)
			b.WriteByte(' ')
		}
	}
	return strings.ToLower(norm.NFC.String(b.String()))
}

func lookupText(entry *record.Record, key string) string {
	v, ok := entry.GetFold(key)
	if !ok {
		return ""
	}
	return record.Text(v)
}

func toSet(list []string) map[string]bool {
	m := make(map[string]bool, len(list))
	for _, v := range list {
		m[v] = true
	}
	return m
}

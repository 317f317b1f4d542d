// Package rules loads the alias tables, domain keywords and privacy heuristics
// used by the normalization and classification engine.
//
// The default tables are embedded in the binary. A deployment can replace them
// with its own YAML file; the file is read once at start-up and the resulting
// Set is never mutated afterwards, so it can be shared freely between goroutines.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/zeebo/errs"
	"gopkg.in/yaml.v3"
)

// Error is the error class for rule loading failures.
var Error = errs.Class("rules")

//go:embed default_rules.yaml
var defaultRules []byte

// File mirrors the YAML layout.
type File struct {
	Fields         []Field  `yaml:"fields"`
	StructuralKeys []string `yaml:"structural_keys"`
	Domains        []Domain `yaml:"domains"`
	Privacy        Privacy  `yaml:"privacy"`
}

// Field is a canonical metadata field and the key spellings that map onto it.
type Field struct {
	Name    string   `yaml:"name"`
	Aliases []string `yaml:"aliases"`
}

// Domain is a business domain and its lowercase keyword variants.
type Domain struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Privacy holds the data dictionary heuristics.
type Privacy struct {
	SPII         Level  `yaml:"spii"`
	PII          Level  `yaml:"pii"`
	UnknownField string `yaml:"unknown_field"`
}

// Level is one privacy tier. FlagKeys and FlagValues are only meaningful for PII.
type Level struct {
	Variables  []string  `yaml:"variables"`
	Phrases    []string  `yaml:"phrases"`
	Patterns   []Pattern `yaml:"patterns"`
	FlagKeys   []string  `yaml:"flag_keys"`
	FlagValues []string  `yaml:"flag_values"`
	Rule       string    `yaml:"rule"`
}

// Pattern is a named regular expression.
type Pattern struct {
	ID       string         `yaml:"id"`
	Regex    string         `yaml:"regex"`
	Compiled *regexp.Regexp `yaml:"-"`
}

// Set is a validated, compiled rule file.
type Set struct {
	// Aliases maps a lowercase key spelling to its canonical field name.
	Aliases map[string]string
	// Canonical lists canonical field names in declaration order.
	Canonical []string
	// StructuralKeys are lowercase substrings that mark non-custom keys.
	StructuralKeys []string
	// Domains in classification order.
	Domains []Domain
	// DomainKeywords maps a domain name to its keywords.
	DomainKeywords map[string][]string
	// Privacy heuristics with compiled patterns.
	Privacy Privacy
}

// Default returns the embedded rule set.
func Default() (*Set, error) {
	return Parse(defaultRules)
}

// MustDefault is Default for package initialisation and tests; the embedded
// file is validated by the package tests so a failure here is a build defect.
func MustDefault() *Set {
	s, err := Default()
	if err != nil {
		panic(err)
	}
	return s
}

// Load reads a rule file from disk. An empty path returns the embedded defaults.
func Load(path string) (*Set, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, Error.New("read %s: %v", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates YAML rule data.
func Parse(data []byte) (*Set, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, Error.Wrap(fmt.Errorf("unmarshal rule file: %w", err))
	}
	return compile(f)
}

func compile(f File) (*Set, error) {
	s := &Set{
		Aliases:        make(map[string]string),
		DomainKeywords: make(map[string][]string),
	}

	seen := make(map[string]bool)
	for _, field := range f.Fields {
		if field.Name == "" {
			return nil, Error.New("field with empty name")
		}
		if seen[field.Name] {
			return nil, Error.New("duplicate canonical field %q", field.Name)
		}
		seen[field.Name] = true
		s.Canonical = append(s.Canonical, field.Name)

		for _, alias := range field.Aliases {
			key := strings.ToLower(strings.TrimSpace(alias))
			if prev, ok := s.Aliases[key]; ok && prev != field.Name {
				return nil, Error.New("alias %q maps to both %q and %q", key, prev, field.Name)
			}
			s.Aliases[key] = field.Name
		}
	}

	for _, k := range f.StructuralKeys {
		s.StructuralKeys = append(s.StructuralKeys, strings.ToLower(k))
	}

	for _, d := range f.Domains {
		if d.Name == "" {
			return nil, Error.New("domain with empty name")
		}
		if _, dup := s.DomainKeywords[d.Name]; dup {
			return nil, Error.New("duplicate domain %q", d.Name)
		}
		kws := make([]string, 0, len(d.Keywords))
		for _, kw := range d.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				kws = append(kws, kw)
			}
		}
		s.Domains = append(s.Domains, Domain{Name: d.Name, Keywords: kws})
		s.DomainKeywords[d.Name] = kws
	}

	p := f.Privacy
	if p.UnknownField == "" {
		p.UnknownField = "Unknown Field"
	}
	for _, lvl := range []*Level{&p.SPII, &p.PII} {
		lvl.Variables = lowerAll(lvl.Variables)
		lvl.Phrases = lowerAll(lvl.Phrases)
		lvl.FlagValues = lowerAll(lvl.FlagValues)
		for i := range lvl.Patterns {
			re, err := regexp.Compile(lvl.Patterns[i].Regex)
			if err != nil {
				return nil, Error.New("compile pattern %s: %v", lvl.Patterns[i].ID, err)
			}
			lvl.Patterns[i].Compiled = re
		}
	}
	s.Privacy = p

	return s, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

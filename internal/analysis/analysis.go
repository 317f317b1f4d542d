// Package analysis runs the normalization and classification engine over a
// whole dataset submission.
package analysis

import (
	"metadata-repository/internal/classify"
	"metadata-repository/internal/lineage"
	"metadata-repository/internal/metrics"
	"metadata-repository/internal/normalize"
	"metadata-repository/internal/privacy"
	"metadata-repository/internal/record"
	"metadata-repository/internal/rules"
)

// Report is the combined output for one dataset.
type Report struct {
	Canonical *record.Record `json:"canonical"`
	Unknown   []string       `json:"unknownFields"`
	Domain    string         `json:"domain"`
	Privacy   privacy.Report `json:"privacy"`
	Lineage   []lineage.Node `json:"lineage"`
}

// Engine bundles the four engine components built from one rule set.
type Engine struct {
	Normalizer *normalize.Normalizer
	Classifier *classify.Classifier
	Scanner    *privacy.Scanner
}

// New builds an Engine from set.
func New(set *rules.Set) *Engine {
	return &Engine{
		Normalizer: normalize.New(set),
		Classifier: classify.New(set),
		Scanner:    privacy.NewScanner(set),
	}
}

// Unwrap returns the dataset inside a {"result": ..., "data": {...}}
// envelope, or rec itself when it is not wrapped.
func Unwrap(rec *record.Record) *record.Record {
	if _, ok := rec.Get("result"); !ok {
		return rec
	}
	if data, ok := rec.Get("data"); ok {
		if inner, ok := data.(*record.Record); ok {
			return inner
		}
	}
	return rec
}

// Analyze normalizes rec, classifies the canonical record, scans its data
// dictionary and parses its lineage. rec is never modified.
func (e *Engine) Analyze(rec *record.Record) Report {
	rec = Unwrap(rec)
	norm := e.Normalizer.Normalize(rec)

	dictionary, _ := rec.GetFold("dictionary")
	scan := e.Scanner.ScanDictionary(record.Records(dictionary))
	metrics.PrivacyFindings.WithLabelValues(string(privacy.LevelPII)).Add(float64(scan.PII))
	metrics.PrivacyFindings.WithLabelValues(string(privacy.LevelSPII)).Add(float64(scan.SPII))

	nodes := lineage.Parse(norm.Canonical.String("source"), norm.Canonical.String("title"))
	if nodes == nil {
		nodes = []lineage.Node{}
	}

	return Report{
		Canonical: norm.Canonical,
		Unknown:   norm.Unknown,
		Domain:    e.Classifier.Classify(norm.Canonical),
		Privacy:   scan,
		Lineage:   nodes,
	}
}

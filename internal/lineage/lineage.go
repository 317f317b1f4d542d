// Package lineage turns free-text provenance strings such as
// "agency DB -> registry -> Excel export" into an ordered node list.
package lineage

import "strings"

// Delimiter separates provenance stages.
const Delimiter = "->"

// DefaultTitle names the terminal node when the dataset has no title.
const DefaultTitle = "Current Dataset"

// Node is one stage of a lineage chain. Target marks the current dataset.
type Node struct {
	Label  string `json:"label"`
	Target bool   `json:"target"`
}

var labelReplacer = strings.NewReplacer("[", "", "]", "", `"`, "", "'", "")

// Parse splits source on "->" and appends title as the final node unless the
// last stage already mentions it. Input without the delimiter yields nil.
func Parse(source, title string) []Node {
	if !strings.Contains(source, Delimiter) {
		return nil
	}

	var stages []string
	for _, seg := range strings.Split(source, Delimiter) {
		if seg = strings.TrimSpace(seg); seg != "" {
			stages = append(stages, seg)
		}
	}
	if len(stages) == 0 {
		return nil
	}

	if title == "" {
		title = DefaultTitle
	}
	if !strings.Contains(strings.ToLower(stages[len(stages)-1]), strings.ToLower(title)) {
		stages = append(stages, title)
	}

	nodes := make([]Node, len(stages))
	for i, s := range stages {
		nodes[i] = Node{Label: labelReplacer.Replace(s)}
	}
	nodes[len(nodes)-1].Target = true
	return nodes
}

// Labels returns the node labels in order.
func Labels(nodes []Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Label
	}
	return out
}

package quiz

import (
	"fmt"
	"strings"
)

// Format renders a question in the same line format the model is asked
// to produce. Parsing the output yields an equivalent question.
func Format(q Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Q: %s\n", q.Text)
	for _, k := range q.Keys() {
		fmt.Fprintf(&b, "%s) %s\n", k, q.Options[k])
	}
	fmt.Fprintf(&b, "ANSWER: %s\n", q.Answer)
	if q.Explanation != "" {
		fmt.Fprintf(&b, "EXPLANATION: %s\n", q.Explanation)
	}
	return b.String()
}

// FormatAll renders several questions separated by "---" lines.
func FormatAll(qs []Question) string {
	parts := make([]string, len(qs))
	for i, q := range qs {
		parts[i] = strings.TrimRight(Format(q), "\n")
	}
	return strings.Join(parts, "\n---\n")
}

// Package features records which optional capabilities are usable in this
// process and why.
package features

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"text/tabwriter"
)

// Capability names.
const (
	LLM      = "llm"
	Quiz     = "quiz"
	Demo     = "demo"
	Chat     = "chat"
	Progress = "progress"
	Store    = "store"
	Cooldown = "cooldown"
	Metrics  = "metrics"
	Telegram = "telegram"
)

// Capability is one entry in the registry.
type Capability struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Registry is filled once at startup and read afterwards. It is safe for
// concurrent use.
type Registry struct {
	mu    sync.RWMutex
	caps  map[string]Capability
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{caps: make(map[string]Capability)}
}

// Register records a capability, replacing an earlier entry with the same
// name.
func (r *Registry) Register(name string, available bool, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.caps[name]; !ok {
		r.order = append(r.order, name)
	}
	r.caps[name] = Capability{Name: name, Available: available, Reason: reason}
}

// Disable marks a registered capability unavailable. Unknown names are
// registered as unavailable.
func (r *Registry) Disable(name, reason string) {
	r.Register(name, false, reason)
}

// Available reports whether name was registered as usable.
func (r *Registry) Available(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.caps[name].Available
}

// Get returns the entry for name.
func (r *Registry) Get(name string) (Capability, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caps[name]
	return c, ok
}

// Report lists every capability in registration order.
func (r *Registry) Report() []Capability {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Capability, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.caps[name])
	}
	return out
}

// Missing returns the names of unavailable capabilities, sorted.
func (r *Registry) Missing() []string {
	var out []string
	for _, c := range r.Report() {
		if !c.Available {
			out = append(out, c.Name)
		}
	}
	sort.Strings(out)
	return out
}

// Print writes the report as an aligned table.
func (r *Registry) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CAPABILITY\tSTATUS\tDETAIL")
	for _, c := range r.Report() {
		status := "available"
		if !c.Available {
			status = "unavailable"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, status, c.Reason)
	}
	return tw.Flush()
}

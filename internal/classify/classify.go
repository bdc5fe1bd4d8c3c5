// Package classify maps severe weather alert event text to the set of
// insurance policy categories the alert is relevant to. Classification is a
// pure function of the event text: the same text (modulo case) always yields
// the same category set.
package classify

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Category is an insurance policy category label. The "auto insurance" label
// deliberately keeps its embedded space: matching against a customer's policy
// type is literal string equality on the lowercased label, never fuzzy.
type Category string

const (
	CategoryHome     Category = "home"
	CategoryProperty Category = "property"
	CategoryAuto     Category = "auto insurance"
)

// Set is a set of policy categories.
type Set map[Category]struct{}

// Has reports whether c is a member of the set.
func (s Set) Has(c Category) bool {
	_, ok := s[c]
	return ok
}

// Add inserts c into the set.
func (s Set) Add(c Category) {
	s[c] = struct{}{}
}

// List returns the categories sorted lexically, for deterministic output.
func (s Set) List() []Category {
	out := make([]Category, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Rule pairs trigger keywords with the categories they contribute. A rule
// fires when any keyword is a substring of the lowered event text.
type Rule struct {
	Keywords   []string   `yaml:"keywords"`
	Categories []Category `yaml:"categories"`
}

// Table is an ordered list of classification rules.
type Table struct {
	rules []Rule
}

// NewTable validates the rules and returns a Table.
func NewTable(rules []Rule) (*Table, error) {
	if len(rules) == 0 {
		return nil, fmt.Errorf("rule table is empty")
	}
	for i, r := range rules {
		if len(r.Keywords) == 0 {
			return nil, fmt.Errorf("rule %d has no keywords", i)
		}
		if len(r.Categories) == 0 {
			return nil, fmt.Errorf("rule %d has no categories", i)
		}
		for _, kw := range r.Keywords {
			if strings.TrimSpace(kw) == "" {
				return nil, fmt.Errorf("rule %d has a blank keyword", i)
			}
			if kw != strings.ToLower(kw) {
				return nil, fmt.Errorf("rule %d keyword %q must be lowercase", i, kw)
			}
		}
	}
	return &Table{rules: rules}, nil
}

// Classify returns the set of policy categories relevant to the given alert
// event text. Empty or whitespace-only input yields the empty set. Multiple
// rules may fire; their categories are unioned.
func (t *Table) Classify(event string) Set {
	out := make(Set)
	ev := strings.ToLower(strings.TrimSpace(event))
	if ev == "" {
		return out
	}
	for _, r := range t.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(ev, kw) {
				for _, c := range r.Categories {
					out.Add(c)
				}
				break
			}
		}
	}
	return out
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	return len(t.rules)
}

//go:embed rules.yaml
var defaultRules []byte

// Default returns the built-in rule table. It panics only if the embedded
// rules file is malformed, which is caught by tests at build time.
func Default() *Table {
	t, err := Load(strings.NewReader(string(defaultRules)))
	if err != nil {
		panic(fmt.Sprintf("classify: embedded rules invalid: %v", err))
	}
	return t
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Load parses a YAML rule table from r.
func Load(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	return NewTable(f.Rules)
}

// LoadFile parses a YAML rule table from the file at path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path) //nolint:gosec // path is from trusted config, not user input
	if err != nil {
		return nil, fmt.Errorf("open rules file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Load(f)
}

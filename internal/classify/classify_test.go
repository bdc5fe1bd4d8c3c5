package classify

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setOf(cs ...Category) Set {
	s := make(Set)
	for _, c := range cs {
		s.Add(c)
	}
	return s
}

func TestClassify_Table(t *testing.T) {
	t.Parallel()

	table := Default()

	tests := []struct {
		name  string
		event string
		want  Set
	}{
		{"tornado warning", "Tornado Warning", setOf(CategoryHome, CategoryProperty, CategoryAuto)},
		{"flash flood watch", "Flash Flood Watch", setOf(CategoryHome, CategoryProperty)},
		{"hurricane", "Hurricane Warning", setOf(CategoryHome, CategoryProperty)},
		{"winter storm", "Winter Storm Advisory", setOf(CategoryHome, CategoryAuto)},
		{"wildfire", "Wildfire Evacuation Order", setOf(CategoryProperty)},
		{"heat advisory", "Excessive Heat Advisory", setOf(CategoryHome)},
		{"tsunami", "Tsunami Warning", setOf(CategoryHome, CategoryProperty)},
		{"no keyword", "Unusual Sunny Day", setOf()},
		{"empty", "", setOf()},
		{"whitespace", "   ", setOf()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := table.Classify(tt.event)
			if len(got) != len(tt.want) {
				t.Fatalf("Classify(%q) = %v, want %v", tt.event, got.List(), tt.want.List())
			}
			for c := range tt.want {
				if !got.Has(c) {
					t.Errorf("Classify(%q) missing %q", tt.event, c)
				}
			}
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	t.Parallel()

	table := Default()

	events := []string{
		"Tornado Warning",
		"FLASH FLOOD WATCH",
		"hurricane warning",
		"Severe Thunderstorm Watch",
		"Freezing Rain Advisory",
	}
	for _, ev := range events {
		lower := table.Classify(strings.ToLower(ev))
		upper := table.Classify(strings.ToUpper(ev))
		if len(lower) != len(upper) {
			t.Errorf("classification of %q differs by case: %v vs %v", ev, lower.List(), upper.List())
		}
		for c := range lower {
			if !upper.Has(c) {
				t.Errorf("upper-case classification of %q missing %q", ev, c)
			}
		}
	}
}

// Multiple rules can fire on the same event; their categories union.
func TestClassify_UnionAcrossRules(t *testing.T) {
	t.Parallel()

	table := Default()

	got := table.Classify("Winter Storm with Flooding")
	want := setOf(CategoryHome, CategoryProperty, CategoryAuto)
	if len(got) != len(want) {
		t.Fatalf("Classify = %v, want %v", got.List(), want.List())
	}
}

// Every keyword in the table must classify to the categories of its own rule.
func TestClassify_KeywordMembership(t *testing.T) {
	t.Parallel()

	table := Default()
	for i, r := range table.rules {
		for _, kw := range r.Keywords {
			got := table.Classify(kw)
			for _, c := range r.Categories {
				if !got.Has(c) {
					t.Errorf("rule %d: Classify(%q) missing %q", i, kw, c)
				}
			}
		}
	}
}

func TestSet_List_Sorted(t *testing.T) {
	t.Parallel()

	s := setOf(CategoryProperty, CategoryHome, CategoryAuto)
	got := s.List()
	want := []Category{CategoryAuto, CategoryHome, CategoryProperty}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("List() = %v, want %v", got, want)
		}
	}
}

func TestLoad_Valid(t *testing.T) {
	t.Parallel()

	table, err := Load(strings.NewReader(`
rules:
  - keywords: [landslide]
    categories: [home, property]
`))
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
	assert.True(t, table.Classify("Landslide Warning").Has(CategoryHome))
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{"empty", `rules: []`},
		{"no keywords", "rules:\n  - keywords: []\n    categories: [home]"},
		{"no categories", "rules:\n  - keywords: [flood]\n    categories: []"},
		{"blank keyword", "rules:\n  - keywords: [\"  \"]\n    categories: [home]"},
		{"uppercase keyword", "rules:\n  - keywords: [Flood]\n    categories: [home]"},
		{"malformed yaml", `rules: [`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(strings.NewReader(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestDefault_MatchesCanonicalTable(t *testing.T) {
	t.Parallel()

	table := Default()
	require.Equal(t, 6, table.Len())

	// spot-check the first and last canonical rules
	assert.Equal(t, []string{"hurricane", "typhoon", "tropical storm", "flood", "flash flood", "storm surge"}, table.rules[0].Keywords)
	assert.Equal(t, []Category{CategoryHome, CategoryProperty}, table.rules[5].Categories)
}

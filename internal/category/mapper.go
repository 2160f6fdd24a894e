package category

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
)

// Mapper resolves raw ledger labels against per-business-type dictionaries.
// It is immutable after construction and safe for concurrent use.
type Mapper struct {
	dicts map[string]Dictionary
}

// NewMapper copies dicts so later mutation by the caller has no effect.
func NewMapper(dicts map[string]Dictionary) *Mapper {
	owned := make(map[string]Dictionary, len(dicts))
	for bt, d := range dicts {
		cp := make(Dictionary, len(d))
		copy(cp, d)
		owned[bt] = cp
	}
	return &Mapper{dicts: owned}
}

// NewDefaultMapper uses the built-in dictionaries.
func NewDefaultMapper() *Mapper {
	return NewMapper(DefaultDictionaries())
}

// fold is Unicode case folding. A Caser holds state, so one is built per call.
func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// MapCategory resolves raw in three tiers: exact, case-insensitive, then substring in either
// direction. In the substring tier the longest matching label wins, ties by dictionary order.
func (m *Mapper) MapCategory(raw, businessType string) (Code, bool) {
	dict, ok := m.dicts[businessType]
	if !ok || strings.TrimSpace(raw) == "" {
		return "", false
	}

	for _, e := range dict {
		if e.Label == raw {
			return e.Code, true
		}
	}

	folded := fold(raw)
	for _, e := range dict {
		if fold(e.Label) == folded {
			return e.Code, true
		}
	}

	var best Entry
	bestLen := 0
	for _, e := range dict {
		label := fold(e.Label)
		if label == "" {
			continue
		}
		if strings.Contains(folded, label) || strings.Contains(label, folded) {
			if len(label) > bestLen {
				best, bestLen = e, len(label)
			}
		}
	}
	if bestLen > 0 {
		return best.Code, true
	}
	return "", false
}

// Suggestion is the nearest dictionary label for an unresolved category.
type Suggestion struct {
	Label    string `json:"label"`
	Code     Code   `json:"code"`
	Distance int    `json:"distance"`
}

// Suggest returns the dictionary label closest to raw by edit distance.
// It is advisory only and never feeds aggregation.
func (m *Mapper) Suggest(raw, businessType string) (Suggestion, bool) {
	dict := m.dicts[businessType]
	folded := fold(raw)
	if folded == "" || len(dict) == 0 {
		return Suggestion{}, false
	}
	best := Suggestion{Distance: -1}
	for _, e := range dict {
		d := levenshtein.ComputeDistance(folded, fold(e.Label))
		if best.Distance < 0 || d < best.Distance {
			best = Suggestion{Label: e.Label, Code: e.Code, Distance: d}
		}
	}
	return best, true
}

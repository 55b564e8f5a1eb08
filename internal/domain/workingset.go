package domain

import "strings"

// DefaultMaxKeywords caps the editable keyword list. IPTC keyword fields are
// written as individual entries, so the cap also bounds the write size.
const DefaultMaxKeywords = 20

// WorkingSet is the user-editable caption and keyword state for a session.
// Keywords never contain duplicates (case-sensitive exact match) and never
// exceed the configured cap.
type WorkingSet struct {
	Caption     string   `json:"caption"`
	Keywords    []string `json:"keywords"`
	MaxKeywords int      `json:"-"`
}

// NewWorkingSet merges existing and generated metadata into an editable set.
// The caption defaults to the generated value, falling back to the existing
// one when generation produced nothing. Keywords are the order-preserving
// union of both lists, truncated to maxKeywords.
func NewWorkingSet(existing, generated Metadata, maxKeywords int) *WorkingSet {
	if maxKeywords <= 0 {
		maxKeywords = DefaultMaxKeywords
	}

	caption := generated.Caption
	if caption == "" {
		caption = existing.Caption
	}

	return &WorkingSet{
		Caption:     caption,
		Keywords:    MergeKeywords(existing.Keywords, generated.Keywords, maxKeywords),
		MaxKeywords: maxKeywords,
	}
}

// MergeKeywords unions two keyword lists preserving first-seen order, drops
// duplicates and blank entries, and truncates the result to max elements.
func MergeKeywords(a, b []string, max int) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	merged := make([]string, 0, len(a)+len(b))

	for _, kw := range append(append([]string{}, a...), b...) {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		merged = append(merged, kw)
	}

	if max > 0 && len(merged) > max {
		merged = merged[:max]
	}
	return merged
}

// Merge folds additional keywords into the set, keeping existing entries
// first and re-applying the cap.
func (w *WorkingSet) Merge(keywords []string) {
	w.Keywords = MergeKeywords(w.Keywords, keywords, w.MaxKeywords)
}

// AddKeyword appends a keyword to the set. Blank or whitespace-only entries,
// duplicates, and additions beyond the cap are silent no-ops. It reports
// whether the set changed.
func (w *WorkingSet) AddKeyword(keyword string) bool {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return false
	}
	for _, existing := range w.Keywords {
		if existing == keyword {
			return false
		}
	}
	if w.MaxKeywords > 0 && len(w.Keywords) >= w.MaxKeywords {
		return false
	}
	w.Keywords = append(w.Keywords, keyword)
	return true
}

// RemoveKeyword deletes the keyword at the given position; later entries
// shift down. It reports whether the index was in range.
func (w *WorkingSet) RemoveKeyword(index int) bool {
	if index < 0 || index >= len(w.Keywords) {
		return false
	}
	w.Keywords = append(w.Keywords[:index], w.Keywords[index+1:]...)
	return true
}

// Snapshot returns the working set as plain metadata for the writer.
func (w *WorkingSet) Snapshot() Metadata {
	keywords := make([]string, len(w.Keywords))
	copy(keywords, w.Keywords)
	return Metadata{Caption: w.Caption, Keywords: keywords}
}

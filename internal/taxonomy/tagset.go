package taxonomy

import "slices"

// TagSet is an ordered set of label names. Insertion order is preserved and
// duplicates are ignored.
type TagSet []string

// NewTagSet builds a set from labels, dropping repeats.
func NewTagSet(labels ...string) TagSet {
	var set TagSet
	for _, label := range labels {
		set = set.With(label)
	}
	return set
}

// Has reports whether label is present.
func (s TagSet) Has(label string) bool {
	return slices.Contains(s, label)
}

// With returns a set that includes label.
func (s TagSet) With(label string) TagSet {
	if label == "" || s.Has(label) {
		return s
	}
	return append(slices.Clone(s), label)
}

// Without returns a set with every listed label removed.
func (s TagSet) Without(labels ...string) TagSet {
	out := make(TagSet, 0, len(s))
	for _, label := range s {
		if !slices.Contains(labels, label) {
			out = append(out, label)
		}
	}
	return out
}

// Empty reports whether the set holds no labels.
func (s TagSet) Empty() bool { return len(s) == 0 }

// ByDimension splits the set into its dimensions using tax. Labels the
// taxonomy does not know are returned separately.
func (s TagSet) ByDimension(tax *Taxonomy) (map[Dimension][]string, []string) {
	grouped := make(map[Dimension][]string, len(Dimensions))
	var unknown []string
	for _, label := range s {
		dim, ok := tax.DimensionOf(label)
		if !ok {
			unknown = append(unknown, label)
			continue
		}
		grouped[dim] = append(grouped[dim], label)
	}
	return grouped, unknown
}

// Canonical orders labels Format, Theme, Track, keeping the original order
// inside each dimension. Unknown labels sort last.
func (s TagSet) Canonical(tax *Taxonomy) TagSet {
	grouped, unknown := s.ByDimension(tax)
	out := make(TagSet, 0, len(s))
	for _, dim := range Dimensions {
		out = append(out, grouped[dim]...)
	}
	return append(out, unknown...)
}

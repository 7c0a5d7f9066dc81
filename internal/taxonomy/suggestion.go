package taxonomy

// Suggestion is the raw, untrusted output of a tagging collaborator. Values
// may be label names, label codes, or near-miss spellings, and may sit under
// the wrong dimension.
type Suggestion struct {
	Format []string
	Theme  []string
	Track  []string
}

// Coerce converts a suggestion into a TagSet of known labels. Each value is
// resolved against the whole taxonomy and placed in the dimension that owns
// it, so a theme suggested under "track" still lands as a theme. Values that
// do not resolve are returned as dropped.
func (t *Taxonomy) Coerce(s Suggestion) (TagSet, []string) {
	var (
		set     TagSet
		dropped []string
	)
	for _, values := range [][]string{s.Format, s.Theme, s.Track} {
		for _, value := range values {
			label, ok := t.Resolve(value)
			if !ok {
				dropped = append(dropped, value)
				continue
			}
			set = set.With(label.Name)
		}
	}
	return set.Canonical(t), dropped
}

package taxonomy

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

//go:embed taxonomy.toml
var embeddedTaxonomy []byte

// Dimension is one of the three disjoint label sets.
type Dimension string

const (
	DimensionFormat Dimension = "format"
	DimensionTheme  Dimension = "theme"
	DimensionTrack  Dimension = "track"
)

// Dimensions lists every dimension in persistence order.
var Dimensions = []Dimension{DimensionFormat, DimensionTheme, DimensionTrack}

// Format labels referenced by the title rules.
const (
	SeriesEpisodes     = "Series Episodes"
	StandaloneEpisodes = "Standalone Episodes"
	RIHCSeries         = "RIHC Series"
)

// Label is one taxonomy entry. Name is the persisted identity.
type Label struct {
	Code        string    `toml:"code"`
	Name        string    `toml:"label"`
	Description string    `toml:"description"`
	Dimension   Dimension `toml:"-"`
}

// Taxonomy is an immutable, versioned set of labels.
type Taxonomy struct {
	version string
	ordered map[Dimension][]Label
	byName  map[string]Label
	byCode  map[string]Label
	byFold  map[string]Label
}

type taxonomyFile struct {
	Version string  `toml:"version"`
	Format  []Label `toml:"format"`
	Theme   []Label `toml:"theme"`
	Track   []Label `toml:"track"`
}

var loadDefault = sync.OnceValues(func() (*Taxonomy, error) {
	return Parse(embeddedTaxonomy)
})

// Default returns the embedded taxonomy.
func Default() *Taxonomy {
	tax, err := loadDefault()
	if err != nil {
		panic(fmt.Sprintf("embedded taxonomy is invalid: %v", err))
	}
	return tax
}

// Load reads a taxonomy file. An empty path returns the embedded taxonomy.
func Load(path string) (*Taxonomy, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}
	tax, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("taxonomy %s: %w", path, err)
	}
	return tax, nil
}

// Parse decodes a taxonomy document and checks that labels are unique across
// dimensions and that every rule label exists.
func Parse(data []byte) (*Taxonomy, error) {
	var file taxonomyFile
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	if strings.TrimSpace(file.Version) == "" {
		return nil, errors.New("taxonomy version is required")
	}

	tax := &Taxonomy{
		version: strings.TrimSpace(file.Version),
		ordered: make(map[Dimension][]Label, len(Dimensions)),
		byName:  make(map[string]Label),
		byCode:  make(map[string]Label),
		byFold:  make(map[string]Label),
	}
	sets := map[Dimension][]Label{
		DimensionFormat: file.Format,
		DimensionTheme:  file.Theme,
		DimensionTrack:  file.Track,
	}
	for _, dim := range Dimensions {
		if len(sets[dim]) == 0 {
			return nil, fmt.Errorf("taxonomy dimension %s has no labels", dim)
		}
		for _, label := range sets[dim] {
			label.Name = strings.TrimSpace(label.Name)
			label.Code = strings.ToUpper(strings.TrimSpace(label.Code))
			label.Dimension = dim
			if label.Name == "" {
				return nil, fmt.Errorf("taxonomy dimension %s has an empty label", dim)
			}
			if prior, ok := tax.byName[label.Name]; ok {
				return nil, fmt.Errorf("label %q appears in both %s and %s", label.Name, prior.Dimension, dim)
			}
			if label.Code != "" {
				if _, ok := tax.byCode[label.Code]; ok {
					return nil, fmt.Errorf("label code %q is not unique", label.Code)
				}
				tax.byCode[label.Code] = label
			}
			tax.byName[label.Name] = label
			tax.byFold[foldKey(label.Name)] = label
			tax.ordered[dim] = append(tax.ordered[dim], label)
		}
	}
	for _, required := range []string{SeriesEpisodes, StandaloneEpisodes, RIHCSeries} {
		if label, ok := tax.byName[required]; !ok || label.Dimension != DimensionFormat {
			return nil, fmt.Errorf("taxonomy must define format label %q", required)
		}
	}
	return tax, nil
}

// Version identifies the taxonomy revision.
func (t *Taxonomy) Version() string { return t.version }

// Labels returns the labels of one dimension in declaration order.
func (t *Taxonomy) Labels(dim Dimension) []Label {
	return append([]Label(nil), t.ordered[dim]...)
}

// Lookup returns the label with the exact name.
func (t *Taxonomy) Lookup(name string) (Label, bool) {
	label, ok := t.byName[name]
	return label, ok
}

// DimensionOf reports which dimension owns the exact label name.
func (t *Taxonomy) DimensionOf(name string) (Dimension, bool) {
	label, ok := t.byName[name]
	return label.Dimension, ok
}

// Resolve maps a loosely formatted value onto a known label: exact name,
// then code, then a case- and whitespace-insensitive name match.
func (t *Taxonomy) Resolve(value string) (Label, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Label{}, false
	}
	if label, ok := t.byName[value]; ok {
		return label, true
	}
	if label, ok := t.byCode[strings.ToUpper(value)]; ok {
		return label, true
	}
	label, ok := t.byFold[foldKey(value)]
	return label, ok
}

func foldKey(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}

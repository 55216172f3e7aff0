// Package store holds the read-only record set the dashboard analyzes.
package store

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/couchcryptid/hydrogen-sites/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed data/sites.yaml
var bundled []byte

// ErrDuplicateID is returned when a dataset repeats a site id.
var ErrDuplicateID = errors.New("store: duplicate site id")

type dataset struct {
	Sites     []domain.Site        `yaml:"sites"`
	EnergyMix []domain.EnergyShare `yaml:"energy_mix"`
}

// Store is an immutable collection of sites. It is built once and safe for
// any number of concurrent readers.
type Store struct {
	existing    []domain.Site
	predictions []domain.Site
	index       map[int]domain.Site
	energyMix   []domain.EnergyShare
}

// Load builds a store from a YAML dataset file, or from the bundled dataset
// when path is empty.
func Load(path string) (*Store, error) {
	if path == "" {
		return Parse(bundled)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return Parse(data)
}

// Default returns a store over the bundled dataset. It panics if the bundled
// file is broken, which only a bad build can cause.
func Default() *Store {
	s, err := Parse(bundled)
	if err != nil {
		panic(err)
	}
	return s
}

// Parse builds a store from YAML dataset bytes. An empty document yields an
// empty store.
func Parse(data []byte) (*Store, error) {
	var ds dataset
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return New(ds.Sites, ds.EnergyMix)
}

// New builds a store from records already in memory. Records are split by
// type; relative order within each type is preserved.
func New(sites []domain.Site, energyMix []domain.EnergyShare) (*Store, error) {
	s := &Store{
		index:     make(map[int]domain.Site, len(sites)),
		energyMix: slices.Clone(energyMix),
	}
	for _, site := range sites {
		if _, ok := s.index[site.ID]; ok {
			return nil, fmt.Errorf("%w %d", ErrDuplicateID, site.ID)
		}
		s.index[site.ID] = site
		switch site.Type {
		case domain.SiteTypeExisting:
			s.existing = append(s.existing, site)
		case domain.SiteTypePrediction:
			s.predictions = append(s.predictions, site)
		default:
			return nil, fmt.Errorf("site %d: unknown site type %q", site.ID, site.Type)
		}
	}
	return s, nil
}

// Select returns a fresh copy of the records shown by a view. ViewAll, and
// any value that is not one of the known views, yields existing plants
// followed by predicted sites. Analysis notes are copied too, so callers
// cannot reach the stored records.
func (s *Store) Select(view domain.View) []domain.Site {
	switch view {
	case domain.ViewExisting:
		return cloneSites(make([]domain.Site, 0, len(s.existing)), s.existing)
	case domain.ViewPredictions:
		return cloneSites(make([]domain.Site, 0, len(s.predictions)), s.predictions)
	default:
		out := cloneSites(make([]domain.Site, 0, len(s.existing)+len(s.predictions)), s.existing)
		return cloneSites(out, s.predictions)
	}
}

// Site looks up a record by id.
func (s *Store) Site(id int) (domain.Site, bool) {
	site, ok := s.index[id]
	return cloneSite(site), ok
}

func cloneSites(dst, src []domain.Site) []domain.Site {
	for _, site := range src {
		dst = append(dst, cloneSite(site))
	}
	return dst
}

func cloneSite(site domain.Site) domain.Site {
	if site.Analysis != nil {
		note := *site.Analysis
		site.Analysis = &note
	}
	return site
}

// Len reports the total number of records.
func (s *Store) Len() int {
	return len(s.index)
}

// EnergyMix returns a copy of the static energy mix.
func (s *Store) EnergyMix() []domain.EnergyShare {
	return slices.Clone(s.energyMix)
}

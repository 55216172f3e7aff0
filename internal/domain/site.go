package domain

import (
	"fmt"
	"strings"
)

// SiteType tells which subset of the store a record belongs to.
type SiteType string

const (
	SiteTypeExisting   SiteType = "existing"
	SiteTypePrediction SiteType = "prediction"
)

// ParseSiteType validates a raw type label from a dataset file.
func ParseSiteType(s string) (SiteType, error) {
	switch SiteType(strings.ToLower(strings.TrimSpace(s))) {
	case SiteTypeExisting:
		return SiteTypeExisting, nil
	case SiteTypePrediction:
		return SiteTypePrediction, nil
	default:
		return "", fmt.Errorf("unknown site type %q", s)
	}
}

// UnmarshalText lets YAML and JSON decoders reject unknown type labels.
func (t *SiteType) UnmarshalText(b []byte) error {
	v, err := ParseSiteType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Site is a green-hydrogen facility or a modeled candidate location.
// Cost and carbon are dimensionless 0-100 indices where lower is better.
type Site struct {
	ID          int      `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	City        string   `json:"city" yaml:"city"`
	Lat         float64  `json:"lat" yaml:"lat"`
	Lng         float64  `json:"lng" yaml:"lng"`
	Capacity    string   `json:"capacity" yaml:"capacity"`
	Type        SiteType `json:"type" yaml:"type"`
	Status      string   `json:"status" yaml:"status"`
	Cost        int      `json:"cost" yaml:"cost"`
	Carbon      int      `json:"carbon" yaml:"carbon"`
	Coordinates string   `json:"coordinates" yaml:"coordinates"`
	Description string   `json:"description" yaml:"description"`

	// Analysis is a precomputed narrative note carried by some predicted sites.
	Analysis *string `json:"analysis,omitempty" yaml:"analysis,omitempty"`
}

// Combined returns the combined score (cost + carbon).
func (s Site) Combined() int {
	return s.Cost + s.Carbon
}

// AnalysisNote returns the precomputed note and whether the record has one.
func (s Site) AnalysisNote() (string, bool) {
	if s.Analysis == nil {
		return "", false
	}
	return *s.Analysis, true
}

// EnergyShare is one slice of the national energy mix shown next to the map.
type EnergyShare struct {
	Source string `json:"source" yaml:"source"`
	Share  int    `json:"share" yaml:"share"` // percent
}

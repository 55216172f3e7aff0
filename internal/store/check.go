package store

import (
	"fmt"

	"github.com/couchcryptid/hydrogen-sites/internal/domain"
)

// Finding is one data-quality observation about a loaded dataset. Findings
// never prevent loading; the ranking treats every index value as-is.
type Finding struct {
	SiteID  int    `json:"site_id,omitempty"`
	Check   string `json:"check"`
	Message string `json:"message"`
}

func (f Finding) String() string {
	if f.SiteID == 0 {
		return fmt.Sprintf("[%s] %s", f.Check, f.Message)
	}
	return fmt.Sprintf("[%s] site %d: %s", f.Check, f.SiteID, f.Message)
}

// Check names.
const (
	CheckIndexRange   = "index-range"
	CheckRequired     = "required"
	CheckAnalysisNote = "analysis-note"
	CheckEnergyMixSum = "energy-mix"
	CheckCoordinates  = "coordinates"
)

const minIndex, maxIndex = 0, 100

// Check inspects the dataset for values outside the documented conventions:
// indices outside 0..100, blank names, out-of-range coordinates, analysis
// notes on existing plants, and an energy mix that does not total 100.
func (s *Store) Check() []Finding {
	var out []Finding
	for _, site := range s.Select(domain.ViewAll) {
		out = append(out, checkSite(site)...)
	}

	if len(s.energyMix) > 0 {
		total := 0
		for _, e := range s.energyMix {
			total += e.Share
		}
		if total != 100 {
			out = append(out, Finding{Check: CheckEnergyMixSum, Message: fmt.Sprintf("shares total %d, want 100", total)})
		}
	}
	return out
}

func checkSite(site domain.Site) []Finding {
	var out []Finding
	add := func(check, format string, args ...any) {
		out = append(out, Finding{SiteID: site.ID, Check: check, Message: fmt.Sprintf(format, args...)})
	}

	if site.Name == "" {
		add(CheckRequired, "name is empty")
	}
	if site.Cost < minIndex || site.Cost > maxIndex {
		add(CheckIndexRange, "cost %d outside %d..%d", site.Cost, minIndex, maxIndex)
	}
	if site.Carbon < minIndex || site.Carbon > maxIndex {
		add(CheckIndexRange, "carbon %d outside %d..%d", site.Carbon, minIndex, maxIndex)
	}
	if site.Lat < -90 || site.Lat > 90 || site.Lng < -180 || site.Lng > 180 {
		add(CheckCoordinates, "lat/lng %.3f,%.3f out of range", site.Lat, site.Lng)
	}
	if _, ok := site.AnalysisNote(); ok && site.Type == domain.SiteTypeExisting {
		add(CheckAnalysisNote, "existing plant carries a model note")
	}
	return out
}

package store_test

import (
	"testing"

	"github.com/couchcryptid/hydrogen-sites/internal/domain"
	"github.com/couchcryptid/hydrogen-sites/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck_BundledDataset(t *testing.T) {
	findings := store.Default().Check()

	// Site 8 ships with a cost index above the documented range.
	require.Len(t, findings, 1)
	assert.Equal(t, store.Finding{SiteID: 8, Check: store.CheckIndexRange, Message: "cost 110 outside 0..100"}, findings[0])
	assert.Equal(t, "[index-range] site 8: cost 110 outside 0..100", findings[0].String())
}

func TestCheck_Findings(t *testing.T) {
	note := "should not be here"
	s, err := store.New([]domain.Site{
		{ID: 1, Name: "", Type: domain.SiteTypeExisting, Cost: 50, Carbon: -1, Analysis: &note},
		{ID: 2, Name: "Far", Type: domain.SiteTypePrediction, Cost: 50, Carbon: 5, Lat: 91},
	}, []domain.EnergyShare{{Source: "Solar", Share: 60}})
	require.NoError(t, err)

	var checks []string
	for _, f := range s.Check() {
		checks = append(checks, f.Check)
	}
	assert.Equal(t, []string{
		store.CheckRequired,
		store.CheckIndexRange,
		store.CheckAnalysisNote,
		store.CheckCoordinates,
		store.CheckEnergyMixSum,
	}, checks)
}

func TestCheck_EmptyStore(t *testing.T) {
	s, err := store.New(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, s.Check())
}

func TestFinding_StringWithoutSite(t *testing.T) {
	f := store.Finding{Check: store.CheckEnergyMixSum, Message: "shares total 60, want 100"}
	assert.Equal(t, "[energy-mix] shares total 60, want 100", f.String())
}

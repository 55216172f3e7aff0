package ranking_test

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/couchcryptid/hydrogen-sites/internal/domain"
	"github.com/couchcryptid/hydrogen-sites/internal/ranking"
	"github.com/couchcryptid/hydrogen-sites/internal/store"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func site(id, cost, carbon int) domain.Site {
	return domain.Site{ID: id, Cost: cost, Carbon: carbon, Type: domain.SiteTypePrediction}
}

func ids(sites []domain.Site) []int {
	out := make([]int, len(sites))
	for i, s := range sites {
		out[i] = s.ID
	}
	return out
}

// randomSites draws small index values so ties are frequent.
func randomSites(rng *rand.Rand, n int) []domain.Site {
	out := make([]domain.Site, n)
	for i := range out {
		out[i] = site(i+1, rng.IntN(6)*10+60, rng.IntN(5)*3)
	}
	return out
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	sites := []domain.Site{site(1, 70, 0), site(2, 70, 0), site(3, 90, 0)}

	r := ranking.Rank(sites, domain.MetricCost, 0)

	assert.Equal(t, []int{1, 2, 3}, ids(r.Sorted))
	require.True(t, r.HasData())
	assert.Equal(t, 1, r.Stats.Min.Site.ID)
	assert.Equal(t, 70, r.Stats.Min.Value)
	assert.Equal(t, 3, r.Stats.Max.Site.ID)
	assert.Equal(t, 90, r.Stats.Max.Value)
}

func TestSummarize_TiesAtEitherEndKeepFirstInInputOrder(t *testing.T) {
	// Input order deliberately differs from id order.
	sites := []domain.Site{site(5, 90, 0), site(1, 90, 0), site(3, 10, 0), site(2, 10, 0)}

	st, err := ranking.Summarize(sites, domain.MetricCost)
	require.NoError(t, err)

	assert.Equal(t, 5, st.Max.Site.ID)
	assert.Equal(t, 90, st.Max.Value)
	assert.Equal(t, 3, st.Min.Site.ID)
	assert.Equal(t, 10, st.Min.Value)
	assert.Equal(t, 3, st.LeastCost.ID)

	r := ranking.Rank(sites, domain.MetricCost, 0)
	assert.Equal(t, []int{3, 2, 5, 1}, ids(r.Sorted))
}

func TestRank_CombinedMetric(t *testing.T) {
	a := site(1, 65, 6)
	b := site(2, 68, 4)

	r := ranking.Rank([]domain.Site{b, a}, domain.MetricCombined, 0)

	assert.Equal(t, []int{1, 2}, ids(r.Sorted))
	assert.Equal(t, 71, domain.MetricCombined.Value(r.Sorted[0]))
	assert.Equal(t, 72, domain.MetricCombined.Value(r.Sorted[1]))
}

func TestRank_DoesNotModifyInput(t *testing.T) {
	sites := []domain.Site{site(1, 90, 1), site(2, 60, 2), site(3, 75, 3)}
	before := slices.Clone(sites)

	_ = ranking.Rank(sites, domain.MetricCost, 2)

	if diff := cmp.Diff(before, sites); diff != "" {
		t.Fatalf("input modified (-want +got):\n%s", diff)
	}
}

func TestRank_Empty(t *testing.T) {
	r := ranking.Rank(nil, domain.MetricCost, 3)

	assert.False(t, r.HasData())
	assert.Nil(t, r.Stats)
	assert.Empty(t, r.Sorted)
	assert.Empty(t, r.Top)

	_, err := ranking.Summarize(nil, domain.MetricCost)
	require.ErrorIs(t, err, ranking.ErrNoData)
}

func TestRank_SingleSite(t *testing.T) {
	only := site(9, 72, 9)

	r := ranking.Rank([]domain.Site{only}, domain.MetricCarbon, 0)

	require.True(t, r.HasData())
	st := r.Stats
	assert.Equal(t, 1, st.Count)
	assert.Equal(t, st.Min, st.Max)
	assert.Equal(t, 9, st.Min.Site.ID)
	assert.InDelta(t, 72.0, st.AvgCost, 1e-9)
	assert.InDelta(t, 9.0, st.AvgCarbon, 1e-9)
	assert.InDelta(t, 9.0, st.AvgMetric, 1e-9)
	assert.Equal(t, []int{9}, ids(r.Top))
}

func TestRank_TopN(t *testing.T) {
	sites := []domain.Site{site(1, 90, 0), site(2, 80, 0), site(3, 70, 0), site(4, 60, 0)}

	assert.Equal(t, []int{4, 3}, ids(ranking.Rank(sites, domain.MetricCost, 2).Top))
	assert.Equal(t, []int{4, 3, 2, 1}, ids(ranking.Rank(sites, domain.MetricCost, 10).Top))
	assert.Len(t, ranking.Rank(randomSites(rand.New(rand.NewPCG(1, 2)), 20), domain.MetricCost, 0).Top, ranking.DefaultTopN)
}

func TestSummarize_AveragesRoundToOneDecimal(t *testing.T) {
	// cost mean 66.666..., carbon mean 3.333..., combined mean 70.0
	sites := []domain.Site{site(1, 60, 10), site(2, 70, 0), site(3, 70, 0)}

	st, err := ranking.Summarize(sites, domain.MetricCombined)
	require.NoError(t, err)

	assert.Equal(t, 66.7, st.AvgCost)
	assert.Equal(t, 3.3, st.AvgCarbon)
	assert.Equal(t, 70.0, st.AvgMetric)
}

func TestSummarize_HalfRoundsAwayFromZero(t *testing.T) {
	st, err := ranking.Summarize([]domain.Site{site(1, 60, 1), site(2, 61, 2), site(3, 60, 2), site(4, 61, 2)}, domain.MetricCost)
	require.NoError(t, err)

	assert.Equal(t, 60.5, st.AvgCost)
	assert.Equal(t, 1.8, st.AvgCarbon) // 1.75
}

func TestSummarize_RecommendationPicks(t *testing.T) {
	sites := []domain.Site{
		site(1, 70, 9),
		site(2, 62, 12),
		site(3, 62, 5), // ties site 2 on cost, later in input
		site(4, 80, 3),
		site(5, 64, 3), // ties site 4 on carbon and site 3 on combined, later in input
	}

	st, err := ranking.Summarize(sites, domain.MetricCost)
	require.NoError(t, err)

	assert.Equal(t, 2, st.LeastCost.ID)
	assert.Equal(t, 4, st.LeastCarbon.ID)
	assert.Equal(t, 3, st.BestCombined.ID)
}

func TestRank_Properties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))

	for round := range 200 {
		sites := randomSites(rng, 1+rng.IntN(25))
		for _, metric := range domain.Metrics {
			r := ranking.Rank(sites, metric, 0)

			// Permutation of the input.
			gotIDs := ids(r.Sorted)
			wantIDs := ids(sites)
			slices.Sort(gotIDs)
			slices.Sort(wantIDs)
			require.Equal(t, wantIDs, gotIDs, "round %d metric %s", round, metric)

			// Non-decreasing, and stable: equal values keep ascending input
			// position, which for these fixtures is ascending id.
			for i := 1; i < len(r.Sorted); i++ {
				prev, cur := metric.Value(r.Sorted[i-1]), metric.Value(r.Sorted[i])
				require.LessOrEqual(t, prev, cur)
				if prev == cur {
					require.Less(t, r.Sorted[i-1].ID, r.Sorted[i].ID)
				}
			}

			require.True(t, r.HasData())
			st := r.Stats
			assert.LessOrEqual(t, float64(st.Min.Value), st.AvgMetric)
			assert.LessOrEqual(t, st.AvgMetric, float64(st.Max.Value))
			assert.Equal(t, r.Sorted[0].ID, st.Min.Site.ID, "min is the first minimal site in input order")

			again := ranking.Rank(sites, metric, 0)
			if diff := cmp.Diff(r, again); diff != "" {
				t.Fatalf("non-deterministic ranking (-first +second):\n%s", diff)
			}
		}
	}
}

func TestRank_BundledDataset(t *testing.T) {
	sites := store.Default().Select(domain.ViewPredictions)

	r := ranking.Rank(sites, domain.MetricCombined, 3)

	// Barmer 62+5, Kutch 65+8, Tuticorin 68+7.
	assert.Equal(t, []int{22, 16, 20}, ids(r.Top))
	require.True(t, r.HasData())
	assert.Equal(t, 22, r.Stats.LeastCost.ID)
	assert.Equal(t, 22, r.Stats.LeastCarbon.ID)
	assert.Equal(t, 70.1, r.Stats.AvgCost)
	assert.Equal(t, 8.9, r.Stats.AvgCarbon)
}

package pipeline_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/osm-map-etl/internal/domain"
	"github.com/couchcryptid/osm-map-etl/internal/observability"
	"github.com/couchcryptid/osm-map-etl/internal/pipeline"
)

func TestElementTransformer_Transform(t *testing.T) {
	tfm := pipeline.NewTransformer(nil, nil, discardLogger())

	rec, ok := tfm.Transform(context.Background(), element("way", "9",
		domain.NodeRef("1"),
		domain.Tag("addr:street", "High road"),
	))
	require.True(t, ok)
	street, ok := rec.Sub(domain.FieldAddress, "street")
	require.True(t, ok)
	assert.Equal(t, "High Road", street)

	_, ok = tfm.Transform(context.Background(), element("relation", "10"))
	assert.False(t, ok)
}

func TestCachedCleaner_MatchesInner(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	cached, err := pipeline.NewCachedCleaner(domain.StandardCleaner{}, 8, metrics)
	require.NoError(t, err)

	inner := domain.StandardCleaner{}
	for _, v := range []string{"High road", "Bull Ring", "High road"} {
		assert.Equal(t, inner.Street(v), cached.Street(v))
	}
	for _, v := range []string{"B152TT", "zzz", "B152TT", "zzz"} {
		wantV, wantOK := inner.Postcode(v)
		gotV, gotOK := cached.Postcode(v)
		assert.Equal(t, wantV, gotV)
		assert.Equal(t, wantOK, gotOK)
	}
	assert.Equal(t, "police_station", cached.Amenity("police"))
	got, ok := cached.LandUse("quarry")
	assert.True(t, ok)
	assert.Equal(t, "industrial", got)
	_, ok = cached.LandUse("unknown_value")
	assert.False(t, ok)

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.CleanCache.WithLabelValues("street", "hit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.CleanCache.WithLabelValues("street", "miss")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.CleanCache.WithLabelValues("postcode", "hit")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.CleanCache.WithLabelValues("landuse", "miss")), 0)
}

func TestCachedCleaner_Eviction(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	cached, err := pipeline.NewCachedCleaner(domain.StandardCleaner{}, 1, metrics)
	require.NoError(t, err)

	cached.Amenity("pub")
	cached.Amenity("cafe")
	cached.Amenity("pub")

	assert.InDelta(t, 3, testutil.ToFloat64(metrics.CleanCache.WithLabelValues("amenity", "miss")), 0)
}

func TestNewCachedCleaner_InvalidSize(t *testing.T) {
	_, err := pipeline.NewCachedCleaner(domain.StandardCleaner{}, 0, observability.NewMetricsForTesting())
	assert.Error(t, err)
}

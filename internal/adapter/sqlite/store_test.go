package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/osm-map-etl/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "osm.db")
	s, err := Open(context.Background(), path, discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func shaped(t *testing.T, name, id, user string, tags ...domain.Child) domain.Record {
	t.Helper()
	attrs := []domain.Attr{{Name: "id", Value: id}}
	if user != "" {
		attrs = append(attrs, domain.Attr{Name: "user", Value: user})
	}
	rec, ok := domain.ShapeElement(domain.RawElement{Name: name, Attrs: attrs, Children: tags})
	require.True(t, ok)
	return rec
}

func loadAll(t *testing.T, s *Store, recs ...domain.Record) {
	t.Helper()
	for _, r := range recs {
		require.NoError(t, s.Load(context.Background(), r))
	}
}

func TestStore_Aggregations(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	loadAll(t, s,
		shaped(t, "node", "1", "sk53", domain.Tag("amenity", "place_of_worship"), domain.Tag("religion", "christian")),
		shaped(t, "node", "2", "sk53", domain.Tag("amenity", "place_of_worship"), domain.Tag("religion", "muslim")),
		shaped(t, "way", "3", "brum", domain.Tag("amenity", "place_of_worship"), domain.Tag("religion", "christian"),
			domain.Tag("religion:denomination", "anglican")),
		shaped(t, "node", "4", "brum", domain.Tag("amenity", "place_of_worship")),
		shaped(t, "node", "5", "brum", domain.Tag("amenity", "pub"), domain.Tag("religion", "pastafarian")),
		shaped(t, "way", "6", "brum", domain.Tag("landuse", "quarry")),
		shaped(t, "way", "7", "ed", domain.Tag("landuse", "industrial")),
		shaped(t, "way", "8", "", domain.Tag("landuse", "meadow")),
		shaped(t, "way", "9", "ed", domain.Tag("landuse", "unknown_value")),
	)

	worship, err := s.PlacesOfWorshipByReligion(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]Count{{"christian", 2}, {"muslim", 1}}, worship); diff != "" {
		t.Errorf("places of worship (-want +got):\n%s", diff)
	}

	landUse, err := s.LandUseSummary(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff([]Count{{"industrial", 2}, {"agricultural", 1}}, landUse); diff != "" {
		t.Errorf("land use (-want +got):\n%s", diff)
	}

	editors, err := s.TopEditors(ctx, 2)
	require.NoError(t, err)
	if diff := cmp.Diff([]Count{{"brum", 4}, {"ed", 2}}, editors); diff != "" {
		t.Errorf("top editors (-want +got):\n%s", diff)
	}

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 9, n)
}

func TestStore_EmptyAggregations(t *testing.T) {
	s, _ := openTestStore(t)

	worship, err := s.PlacesOfWorshipByReligion(context.Background())
	require.NoError(t, err)
	assert.Empty(t, worship)
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	s, path := openTestStore(t)
	ctx := context.Background()

	for i := range commitEvery + 5 {
		require.NoError(t, s.Load(ctx, shaped(t, "node", strconv.Itoa(i), "sk53")))
	}
	require.NoError(t, s.Close())

	reopened, err := Open(ctx, path, discardLogger())
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, commitEvery+5, n)

	var doc string
	require.NoError(t, reopened.db.QueryRowContext(ctx, "SELECT doc FROM elements WHERE id = '0'").Scan(&doc))
	assert.JSONEq(t, `{"id":"0","type":"node","created":{"user":"sk53"}}`, doc)
}

func TestStore_CloseCommitsAfterLoadContextEnds(t *testing.T) {
	s, path := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	for i := range 3 {
		require.NoError(t, s.Load(ctx, shaped(t, "node", strconv.Itoa(i), "sk53")))
	}
	cancel()
	require.NoError(t, s.Close())

	reopened, err := Open(context.Background(), path, discardLogger())
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestStore_Reset(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	loadAll(t, s, shaped(t, "node", "1", "sk53"))
	require.NoError(t, s.Reset(ctx))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

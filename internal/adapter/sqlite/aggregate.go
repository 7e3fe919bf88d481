package sqlite

import (
	"context"
	"fmt"
)

// Count is one group of an aggregation.
type Count struct {
	Label string
	Count int
}

// field reads a top-level record field. A field that collided with a
// namespaced tag is an object whose bare value sits under "v".
func field(path string) string {
	return fmt.Sprintf("coalesce(json_extract(doc, '$.%[1]s.v'), json_extract(doc, '$.%[1]s'))", path)
}

// PlacesOfWorshipByReligion counts amenity=place_of_worship records per
// religion, ignoring those without one.
func (s *Store) PlacesOfWorshipByReligion(ctx context.Context) ([]Count, error) {
	q := fmt.Sprintf(`SELECT %[2]s AS label, count(*) AS n FROM elements
		WHERE %[1]s = 'place_of_worship' AND %[2]s IS NOT NULL
		GROUP BY label ORDER BY n DESC, label`, field("amenity"), field("religion"))
	return s.counts(ctx, q)
}

// LandUseSummary counts records per land-use category.
func (s *Store) LandUseSummary(ctx context.Context) ([]Count, error) {
	q := fmt.Sprintf(`SELECT %[1]s AS label, count(*) AS n FROM elements
		WHERE %[1]s IS NOT NULL
		GROUP BY label ORDER BY n DESC, label`, field("land_sum"))
	return s.counts(ctx, q)
}

// TopEditors returns the limit users with the most records.
func (s *Store) TopEditors(ctx context.Context, limit int) ([]Count, error) {
	q := `SELECT json_extract(doc, '$.created.user') AS label, count(*) AS n FROM elements
		WHERE json_extract(doc, '$.created.user') IS NOT NULL
		GROUP BY label ORDER BY n DESC, label LIMIT ?`
	return s.counts(ctx, q, limit)
}

func (s *Store) counts(ctx context.Context, q string, args ...any) ([]Count, error) {
	if err := s.Flush(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	defer rows.Close()

	var out []Count
	for rows.Next() {
		var c Count
		if err := rows.Scan(&c.Label, &c.Count); err != nil {
			return nil, fmt.Errorf("scan aggregate row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

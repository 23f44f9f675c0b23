package visit

import (
	"context"
	"time"

	"parlevrai/internal/adapters/storage"
	domain "parlevrai/internal/domain/visit"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new VisitStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Insert records a visit.
// PRE: v has been validated
func (s *SQLiteStore) Insert(ctx context.Context, v domain.Visit) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visit (id, visitor_id, account_id, is_authenticated, is_unique, path, referrer, language,
		 user_agent, device_type, os, browser, utm_source, utm_medium, utm_campaign,
		 ip_address, country, region, city, visited_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.VisitorID, v.AccountID, v.IsAuthenticated, v.IsUnique, v.Path, v.Referrer, v.Language,
		v.UserAgent, v.DeviceType, v.OS, v.Browser, v.UTM.Source, v.UTM.Medium, v.UTM.Campaign,
		v.IPAddress, v.Geo.Country, v.Geo.Region, v.Geo.City,
		v.VisitedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// HasVisitor reports whether any visit was already recorded for visitorID.
func (s *SQLiteStore) HasVisitor(ctx context.Context, visitorID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM (SELECT 1 FROM visit WHERE visitor_id = ? LIMIT 1)`, visitorID).Scan(&n)
	return n > 0, err
}

// Summary counts visits overall, unique and authenticated, per device type
// and per located country.
func (s *SQLiteStore) Summary(ctx context.Context) (Summary, error) {
	sum := Summary{ByDevice: make(map[string]int), ByCountry: make(map[string]int)}
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(is_unique), 0), COALESCE(SUM(is_authenticated), 0) FROM visit`,
	).Scan(&sum.Total, &sum.Unique, &sum.Authenticated)
	if err != nil {
		return Summary{}, err
	}

	if err := s.countBy(ctx, `SELECT device_type, COUNT(*) FROM visit GROUP BY device_type`, sum.ByDevice); err != nil {
		return Summary{}, err
	}
	if err := s.countBy(ctx, `SELECT country, COUNT(*) FROM visit WHERE country != '' GROUP BY country`, sum.ByCountry); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func (s *SQLiteStore) countBy(ctx context.Context, query string, into map[string]int) error {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return err
		}
		into[key] = n
	}
	return rows.Err()
}

// Package tokens persists and looks up per-team Slack access tokens.
//
// Rows are written by the OAuth install server and read by the gateway; the
// newest row per team (by recency timestamp) wins, so re-installing a
// workspace simply supersedes the old token.
package tokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// ErrNoToken is returned when a team has no stored token. Moderation for
// that team's events cannot proceed.
var ErrNoToken = errors.New("no access token for team")

type Store struct {
	db *sqlx.DB
}

// Open connects to Postgres and returns a Store.
func Open(databaseURL string) (*Store, error) {
	db, err := sqlx.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening token database: %w", err)
	}
	db.SetMaxOpenConns(15)
	db.SetConnMaxLifetime(10 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing connection, primarily for tests.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// AccessToken returns the most recent token for a team.
func (s *Store) AccessToken(ctx context.Context, teamID string) (string, error) {
	query, args, err := selectTokenSQL(teamID)
	if err != nil {
		return "", fmt.Errorf("building token query: %w", err)
	}

	var token string
	if err := s.db.GetContext(ctx, &token, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: %s", ErrNoToken, teamID)
		}
		return "", fmt.Errorf("querying token for team %s: %w", teamID, err)
	}
	return token, nil
}

// Save inserts a new token row for a team.
func (s *Store) Save(ctx context.Context, teamID, accessToken string) error {
	query, args, err := sq.Insert("tokens").
		Columns("team_id", "access_token").
		Values(teamID, accessToken).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building token insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("saving token for team %s: %w", teamID, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func selectTokenSQL(teamID string) (string, []interface{}, error) {
	return sq.Select("access_token").
		From("tokens").
		Where(sq.Eq{"team_id": teamID}).
		OrderBy("timestamp DESC").
		Limit(1).
		PlaceholderFormat(sq.Dollar).
		ToSql()
}

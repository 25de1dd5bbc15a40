package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pfrederiksen/concert-events/internal/event"
	"github.com/pfrederiksen/concert-events/internal/filter"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no listing has the requested id
var ErrNotFound = errors.New("concert not found")

const columns = `id, title, date, venue, address, price, price_cents, program, performers_json,
	source_url, source_name, description, tags_json, ticket_url, created_at, updated_at`

// Storage handles persistence of canonical listings
type Storage struct {
	db *sql.DB
}

// New opens (creating if needed) the catalog database at dbPath.
// ":memory:" opens a private in-memory catalog.
func New(dbPath string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dbPath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[2:])
	}

	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// One connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		db.Close() // nolint:errcheck
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error { return s.db.Close() }

func (s *Storage) migrate() error {
	stmts := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS concerts (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			date TEXT NOT NULL,
			date_day TEXT NOT NULL,
			venue TEXT NOT NULL,
			address TEXT,
			price TEXT,
			price_cents INTEGER,
			program TEXT,
			performers_json TEXT,
			source_url TEXT,
			source_name TEXT,
			description TEXT,
			tags_json TEXT NOT NULL DEFAULT '[]',
			ticket_url TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_concerts_date_day ON concerts(date_day);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Upsert inserts listings or replaces existing ones with the same id.
// created_at of an existing row is kept.
func (s *Storage) Upsert(ctx context.Context, concerts []*event.Canonical) error {
	if len(concerts) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() // nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO concerts(`+columns+`, date_day)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title=excluded.title, date=excluded.date, date_day=excluded.date_day,
			venue=excluded.venue, address=excluded.address, price=excluded.price,
			price_cents=excluded.price_cents, program=excluded.program,
			performers_json=excluded.performers_json, source_url=excluded.source_url,
			source_name=excluded.source_name, description=excluded.description,
			tags_json=excluded.tags_json, ticket_url=excluded.ticket_url,
			updated_at=excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	for _, c := range concerts {
		if c.Date.IsZero() {
			return fmt.Errorf("upserting %s: missing date", c.ID)
		}

		performers, err := encodePerformers(c.Performers)
		if err != nil {
			return fmt.Errorf("encoding performers for %s: %w", c.ID, err)
		}
		tags := c.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("encoding tags for %s: %w", c.ID, err)
		}

		_, err = stmt.ExecContext(ctx,
			c.ID, c.Title, c.Date.String(), c.Venue, c.Address, c.Price, c.PriceCents, c.Program,
			performers, c.SourceURL, c.SourceName, c.Description, string(tagsJSON), c.TicketURL,
			formatTime(c.CreatedAt), formatTime(c.UpdatedAt), c.Date.DateOnly(),
		)
		if err != nil {
			return fmt.Errorf("upserting %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// Get retrieves a listing by id
func (s *Storage) Get(ctx context.Context, id string) (*event.Canonical, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+columns+` FROM concerts WHERE id = ?`, id)
	c, err := scanConcert(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("reading concert %s: %w", id, err)
	}
	return c, nil
}

// List returns listings matching f ordered by date. A nil filter lists everything.
func (s *Storage) List(ctx context.Context, f *filter.Filter) ([]*event.Canonical, error) {
	if f == nil {
		f = filter.NewFilter()
	}

	var (
		where []string
		args  []interface{}
	)
	if from := f.FromDay(); from != "" {
		where = append(where, "date_day >= ?")
		args = append(args, from)
	}
	if to := f.ToDay(); to != "" {
		where = append(where, "date_day <= ?")
		args = append(args, to)
	}
	if f.MaxPriceCents != nil {
		where = append(where, "(price_cents <= ? OR price_cents IS NULL)")
		args = append(args, *f.MaxPriceCents)
	}
	if len(f.Venues) > 0 {
		var ors []string
		for _, v := range f.Venues {
			ors = append(ors, `LOWER(venue) LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(strings.ToLower(v))+"%")
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}
	if len(f.Tags) > 0 {
		placeholders := make([]string, len(f.Tags))
		for i, tag := range f.Tags {
			placeholders[i] = "?"
			args = append(args, strings.ToLower(tag))
		}
		where = append(where, `EXISTS (SELECT 1 FROM json_each(concerts.tags_json)
			WHERE LOWER(json_each.value) IN (`+strings.Join(placeholders, ", ")+`))`)
	}

	query := `SELECT ` + columns + ` FROM concerts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date_day, date, title"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing concerts: %w", err)
	}
	defer rows.Close() // nolint:errcheck

	concerts := make([]*event.Canonical, 0)
	for rows.Next() {
		c, err := scanConcert(rows)
		if err != nil {
			return nil, fmt.Errorf("reading concert: %w", err)
		}
		// Criteria SQL can't express (weekends) are applied here
		if f.Matches(c) {
			concerts = append(concerts, c)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing concerts: %w", err)
	}
	return concerts, nil
}

// DeleteBefore removes listings whose calendar date is before cutoff's date
func (s *Storage) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM concerts WHERE date_day < ?`, cutoff.Format("2006-01-02"))
	if err != nil {
		return 0, fmt.Errorf("deleting old concerts: %w", err)
	}
	return res.RowsAffected()
}

// DeleteAll removes every listing
func (s *Storage) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM concerts`)
	if err != nil {
		return 0, fmt.Errorf("deleting all concerts: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanConcert(row scanner) (*event.Canonical, error) {
	var (
		c                                   event.Canonical
		date, createdAt, updatedAt, tagsRaw string
		address, price, program, sourceURL  sql.NullString
		sourceName, ticketURL, performers   sql.NullString
		description                         sql.NullString
		priceCents                          sql.NullInt64
	)
	if err := row.Scan(&c.ID, &c.Title, &date, &c.Venue, &address, &price, &priceCents, &program,
		&performers, &sourceURL, &sourceName, &description, &tagsRaw, &ticketURL,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if c.Date, err = event.ParseDate(date); err != nil {
		return nil, fmt.Errorf("parsing date of %s: %w", c.ID, err)
	}
	c.Address = address.String
	c.Price = price.String
	c.Program = program.String
	c.SourceURL = sourceURL.String
	c.SourceName = sourceName.String
	c.TicketURL = ticketURL.String
	if priceCents.Valid {
		cents := int(priceCents.Int64)
		c.PriceCents = &cents
	}
	if description.Valid {
		d := description.String
		c.Description = &d
	}
	if performers.Valid {
		if err := json.Unmarshal([]byte(performers.String), &c.Performers); err != nil {
			return nil, fmt.Errorf("parsing performers of %s: %w", c.ID, err)
		}
	}
	if err := json.Unmarshal([]byte(tagsRaw), &c.Tags); err != nil {
		return nil, fmt.Errorf("parsing tags of %s: %w", c.ID, err)
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at of %s: %w", c.ID, err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at of %s: %w", c.ID, err)
	}
	return &c, nil
}

func encodePerformers(p event.Performers) (sql.NullString, error) {
	if p.IsZero() {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

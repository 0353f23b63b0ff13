package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"sjsage522/partsfinder/internal/category"
	"sjsage522/partsfinder/internal/listing"
	"sjsage522/partsfinder/logger"
	scrapeerrors "sjsage522/partsfinder/pkg/errors"
)

const selectColumns = `SELECT id, source, title, price, url, image, keyword, category,
	item_condition, item_id, found_date, archived FROM items`

// SQLStore implements Store over database/sql for SQLite and PostgreSQL
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
	log     *logger.Logger
}

// Open connects to the database. driver is "sqlite3" or "pgx".
func Open(driver, dsn string) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, scrapeerrors.NewConfiguration(fmt.Sprintf("unsupported database driver %q", driver), nil)
	}
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, scrapeerrors.NewStorage(driver, "failed to open database", err)
	}
	if driver == "sqlite3" {
		// one writer at a time; concurrent agents share the handle
		db.SetMaxOpenConns(1)
	}
	return New(db, driver)
}

// New wraps an open database handle
func New(db *sql.DB, driver string) (*SQLStore, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, scrapeerrors.NewConfiguration(fmt.Sprintf("unsupported database driver %q", driver), nil)
	}
	return &SQLStore{
		db:      db,
		dialect: d,
		now:     func() time.Time { return time.Now().UTC() },
		log:     logger.ForStore(),
	}, nil
}

func (s *SQLStore) storageError(message string, err error) error {
	return scrapeerrors.NewStorage(s.dialect.driver, message, err)
}

// Init creates the items table and adds columns missing from older tables
func (s *SQLStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.schema()); err != nil {
		return s.storageError("failed to create schema", err)
	}

	existing, err := s.columns(ctx)
	if err != nil {
		return err
	}
	for _, col := range addedColumns {
		if existing[col.name] {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE items ADD COLUMN %s %s", col.name, col.definition)
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return s.storageError("failed to add column "+col.name, err)
		}
		s.log.Info().Str("column", col.name).Msg("Migrated items table")
	}
	return nil
}

func (s *SQLStore) columns(ctx context.Context) (map[string]bool, error) {
	query := "SELECT name FROM pragma_table_info('items')"
	if s.dialect.positional {
		query = "SELECT column_name FROM information_schema.columns WHERE table_name = 'items'"
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, s.storageError("failed to inspect schema", err)
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, s.storageError("failed to inspect schema", err)
		}
		cols[name] = true
	}
	return cols, rows.Err()
}

// AddItem inserts item unless its URL is already stored. An empty category
// is filled in from the title and keyword.
func (s *SQLStore) AddItem(ctx context.Context, item listing.Listing) (bool, error) {
	if item.URL == "" {
		return false, s.storageError("listing has no url", nil)
	}
	cat := item.Category
	if cat == "" {
		cat = category.Classify(item.Title + " " + item.Keyword)
	}
	foundAt := item.FoundAt
	if foundAt.IsZero() {
		foundAt = s.now()
	}

	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`INSERT INTO items
		(source, title, price, url, image, keyword, category, item_condition, item_id, found_date, archived)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (url) DO NOTHING`),
		item.Source, item.Title, nullString(item.Price), item.URL, nullString(item.Image),
		nullString(item.Keyword), cat, nullString(item.Condition), nullString(item.ItemID),
		foundAt.UTC(), false)
	if err != nil {
		return false, s.storageError("failed to insert listing", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, s.storageError("failed to insert listing", err)
	}
	return n > 0, nil
}

// AddItems inserts listings in order and returns the number that were new
func (s *SQLStore) AddItems(ctx context.Context, items []listing.Listing) (int, error) {
	added := 0
	for _, item := range items {
		ok, err := s.AddItem(ctx, item)
		if err != nil {
			return added, err
		}
		if ok {
			added++
		}
	}
	return added, nil
}

func (s *SQLStore) GetItems(ctx context.Context, limit, offset int, archived bool) ([]listing.Listing, error) {
	return s.query(ctx, selectColumns+`
		WHERE archived = ?
		ORDER BY found_date DESC, id DESC
		LIMIT ? OFFSET ?`, archived, limit, offset)
}

func (s *SQLStore) GetRecentItems(ctx context.Context, hours, limit int) ([]listing.Listing, error) {
	cutoff := s.now().Add(-time.Duration(hours) * time.Hour).UTC()
	return s.query(ctx, selectColumns+`
		WHERE archived = ? AND found_date > ?
		ORDER BY found_date DESC, id DESC
		LIMIT ?`, false, cutoff, limit)
}

func (s *SQLStore) SearchItems(ctx context.Context, query string, limit int) ([]listing.Listing, error) {
	term := "%" + strings.TrimSpace(query) + "%"
	like := s.dialect.like
	return s.query(ctx, selectColumns+`
		WHERE archived = ? AND (title `+like+` ? OR keyword `+like+` ?)
		ORDER BY found_date DESC, id DESC
		LIMIT ?`, false, term, term, limit)
}

func (s *SQLStore) ArchiveItem(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.rebind("UPDATE items SET archived = ? WHERE id = ?"), true, id); err != nil {
		return s.storageError(fmt.Sprintf("failed to archive item %d", id), err)
	}
	return nil
}

func (s *SQLStore) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind("SELECT COUNT(*), COUNT(DISTINCT source) FROM items WHERE archived = ?"), false).
		Scan(&stats.TotalItems, &stats.Sources)
	if err != nil {
		return Stats{}, s.storageError("failed to read stats", err)
	}
	return stats, nil
}

func (s *SQLStore) GetItemsByCategory(ctx context.Context, cat string, limit, offset int, archived bool) ([]listing.Listing, error) {
	return s.query(ctx, selectColumns+`
		WHERE category = ? AND archived = ?
		ORDER BY found_date DESC, id DESC
		LIMIT ? OFFSET ?`, cat, archived, limit, offset)
}

func (s *SQLStore) GetCategoryStats(ctx context.Context) ([]CategoryCount, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(`SELECT category, COUNT(*) AS n
		FROM items
		WHERE archived = ?
		GROUP BY category
		ORDER BY n DESC, category`), false)
	if err != nil {
		return nil, s.storageError("failed to read category stats", err)
	}
	defer rows.Close()

	var counts []CategoryCount
	for rows.Next() {
		var c CategoryCount
		var name sql.NullString
		if err := rows.Scan(&name, &c.Count); err != nil {
			return nil, s.storageError("failed to read category stats", err)
		}
		c.Category = name.String
		if c.Category == "" {
			c.Category = category.Default
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageError("failed to read category stats", err)
	}
	return counts, nil
}

// Close closes the database handle
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) ([]listing.Listing, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(query), args...)
	if err != nil {
		return nil, s.storageError("failed to query listings", err)
	}
	defer rows.Close()

	items := []listing.Listing{}
	for rows.Next() {
		var item listing.Listing
		var price, image, keyword, cat, condition, itemID sql.NullString
		if err := rows.Scan(&item.ID, &item.Source, &item.Title, &price, &item.URL, &image,
			&keyword, &cat, &condition, &itemID, &item.FoundAt, &item.Archived); err != nil {
			return nil, s.storageError("failed to scan listing", err)
		}
		item.Price = price.String
		item.Image = image.String
		item.Keyword = keyword.String
		item.Category = cat.String
		item.Condition = condition.String
		item.ItemID = itemID.String
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageError("failed to read listings", err)
	}
	return items, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}

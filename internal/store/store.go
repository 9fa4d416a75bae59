// Package store persists form records as JSON documents in a single SQL
// table. SQLite and Postgres are supported through database/sql.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"go.uber.org/zap"

	"github.com/goliatone/go-formsession/pkg/crud"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("store: record not found")
	// ErrInvalidID is returned for identifiers that are not positive integers.
	ErrInvalidID = errors.New("store: invalid record id")
)

// Record is one stored document. Values always carry the identifier under
// crud.IDKey.
type Record struct {
	Entity string
	ID     int64
	Values map[string]any
}

// Option configures a SQLStore.
type Option func(*SQLStore)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *SQLStore) {
		if logger != nil {
			s.log = logger
		}
	}
}

// SQLStore keeps records in the records table.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	log     *zap.Logger
	// mu serializes writes so id allocation stays race free.
	mu sync.Mutex
}

// Open opens the database for driver and dsn and prepares the schema.
func Open(ctx context.Context, driver, dsn string, opts ...Option) (*SQLStore, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("store: %s dsn is required", dialect.Name)
	}
	db, err := sql.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dialect.Name, err)
	}
	if dialect.Name == SQLite.Name {
		db.SetMaxOpenConns(1)
	}
	s, err := New(ctx, db, dialect, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database and applies the schema.
func New(ctx context.Context, db *sql.DB, dialect Dialect, opts ...Option) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: dialect, log: zap.NewNop()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(s)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("store: ping %s: %w", dialect.Name, err)
	}
	if _, err := db.ExecContext(ctx, dialect.DDL); err != nil {
		return nil, fmt.Errorf("store: ensure records table: %w", err)
	}
	return s, nil
}

// DB exposes the underlying database.
func (s *SQLStore) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *SQLStore) Close() error { return s.db.Close() }

// Create stores values under the next free identifier of entity.
func (s *SQLStore) Create(ctx context.Context, entity string, values map[string]any) (rec Record, retErr error) {
	payload, err := encode(values)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("store: begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	var id int64
	row := tx.QueryRowContext(ctx, s.dialect.query(`SELECT COALESCE(MAX(id), 0) + 1 FROM records WHERE entity = ?`), entity)
	if err := row.Scan(&id); err != nil {
		return Record{}, fmt.Errorf("store: next id: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		s.dialect.query(`INSERT INTO records (entity, id, payload) VALUES (?, ?, ?)`),
		entity, id, string(payload)); err != nil {
		return Record{}, fmt.Errorf("store: insert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("store: commit: %w", err)
	}

	s.log.Debug("record created", zap.String("entity", entity), zap.Int64("id", id))
	return decodeRecord(entity, id, payload)
}

// Update merges values into the stored document as a JSON merge patch. Keys
// set to nil are stored as explicit nulls so a cleared field reads back empty
// instead of falling back to its default.
func (s *SQLStore) Update(ctx context.Context, entity string, id int64, values map[string]any) (rec Record, retErr error) {
	patch, err := encode(values)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, fmt.Errorf("store: begin: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()

	current, err := s.payload(ctx, tx, entity, id)
	if err != nil {
		return Record{}, err
	}
	merged, err := jsonpatch.MergePatch(current, patch)
	if err != nil {
		return Record{}, fmt.Errorf("store: merge: %w", err)
	}
	if merged, err = keepNulls(merged, values); err != nil {
		return Record{}, err
	}
	if _, err := tx.ExecContext(ctx,
		s.dialect.query(`UPDATE records SET payload = ? WHERE entity = ? AND id = ?`),
		string(merged), entity, id); err != nil {
		return Record{}, fmt.Errorf("store: update: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, fmt.Errorf("store: commit: %w", err)
	}

	s.log.Debug("record updated", zap.String("entity", entity), zap.Int64("id", id))
	return decodeRecord(entity, id, merged)
}

// Delete removes a record.
func (s *SQLStore) Delete(ctx context.Context, entity string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, s.dialect.query(`DELETE FROM records WHERE entity = ? AND id = ?`), entity, id)
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.log.Debug("record deleted", zap.String("entity", entity), zap.Int64("id", id))
	return nil
}

// Get loads a record.
func (s *SQLStore) Get(ctx context.Context, entity string, id int64) (Record, error) {
	payload, err := s.payload(ctx, s.db, entity, id)
	if err != nil {
		return Record{}, err
	}
	return decodeRecord(entity, id, payload)
}

// List returns the records of entity ordered by id. Where entries match when
// the stored value prints the same as the wanted one, so "1" matches 1.
func (s *SQLStore) List(ctx context.Context, entity string, where map[string]any) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.query(`SELECT id, payload FROM records WHERE entity = ? ORDER BY id`), entity)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var (
			id      int64
			payload string
		)
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		rec, err := decodeRecord(entity, id, []byte(payload))
		if err != nil {
			return nil, err
		}
		if matches(rec.Values, where) {
			out = append(out, rec)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	return out, nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) payload(ctx context.Context, q queryer, entity string, id int64) ([]byte, error) {
	var payload string
	err := q.QueryRowContext(ctx,
		s.dialect.query(`SELECT payload FROM records WHERE entity = ? AND id = ?`),
		entity, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: select: %w", err)
	}
	return []byte(payload), nil
}

// encode marshals values without the identifier key.
func encode(values map[string]any) ([]byte, error) {
	doc := make(map[string]any, len(values))
	for k, v := range values {
		if k == crud.IDKey {
			continue
		}
		doc[k] = v
	}
	payload, err := crud.Codec.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	return payload, nil
}

// keepNulls writes back the keys a merge patch removed because values cleared
// them.
func keepNulls(merged []byte, values map[string]any) ([]byte, error) {
	var cleared []string
	for k, v := range values {
		if v == nil && k != crud.IDKey {
			cleared = append(cleared, k)
		}
	}
	if len(cleared) == 0 {
		return merged, nil
	}
	doc := map[string]any{}
	if err := crud.Codec.Unmarshal(merged, &doc); err != nil {
		return nil, fmt.Errorf("store: decode merged: %w", err)
	}
	for _, k := range cleared {
		doc[k] = nil
	}
	out, err := crud.Codec.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("store: encode: %w", err)
	}
	return out, nil
}

func decodeRecord(entity string, id int64, payload []byte) (Record, error) {
	values := map[string]any{}
	if err := crud.Codec.Unmarshal(payload, &values); err != nil {
		return Record{}, fmt.Errorf("store: decode %s/%d: %w", entity, id, err)
	}
	values[crud.IDKey] = id
	return Record{Entity: entity, ID: id, Values: values}, nil
}

func matches(values, where map[string]any) bool {
	keys := make([]string, 0, len(where))
	for k := range where {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		got, ok := values[k]
		if !ok || fmt.Sprint(got) != fmt.Sprint(where[k]) {
			return false
		}
	}
	return true
}

// ParseID converts a wire identifier into a record id.
func ParseID(raw any) (int64, error) {
	var (
		id  int64
		err error
	)
	switch v := raw.(type) {
	case int64:
		id = v
	case int:
		id = int64(v)
	case int32:
		id = int64(v)
	case uint64:
		id = int64(v)
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidID, raw)
		}
		id = int64(v)
	case string:
		id, err = strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	case interface{ Int64() (int64, error) }:
		id, err = v.Int64()
	default:
		return 0, fmt.Errorf("%w: %v", ErrInvalidID, raw)
	}
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidID, raw)
	}
	return id, nil
}

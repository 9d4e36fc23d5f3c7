// internal/mockapi/store.go
package mockapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnknownCollection = errors.New("UNKNOWN_COLLECTION")
	ErrNotFound          = errors.New("NOT_FOUND")
	ErrInvalidRecord     = errors.New("INVALID_RECORD")
	ErrConflict          = errors.New("CONFLICT")
)

// timeLayout is fixed width so created_at sorts lexically in creation order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Collections are the record kinds the demo backend serves.
var Collections = map[string]bool{
	"profiles":           true,
	"jobs":               true,
	"applications":       true,
	"saved_jobs":         true,
	"bgv_documents":      true,
	"conversations":      true,
	"messages":           true,
	"announcements":      true,
	"groups":             true,
	"leave_applications": true,
}

const schema = `
CREATE TABLE IF NOT EXISTS records (
	collection TEXT NOT NULL,
	id         TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (collection, id)
);
CREATE TABLE IF NOT EXISTS users (
	email         TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	role          TEXT NOT NULL,
	profile_id    TEXT NOT NULL DEFAULT ''
);`

// Record is one stored document. id, createdAt and updatedAt are always present.
type Record map[string]interface{}

// Store is a JSON document store on SQLite. Every call waits Delay first.
type Store struct {
	db    *sql.DB
	delay time.Duration
	now   func() time.Time
}

func NewStore(ctx context.Context, db *sql.DB, delay time.Duration) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, delay: delay, now: time.Now}, nil
}

// NewReadOnlyStore wraps a store opened elsewhere. It skips schema creation
// and the artificial delay.
func NewReadOnlyStore(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// wait emulates backend latency. It returns early with ctx's error on cancellation.
func (s *Store) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(s.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func checkCollection(name string) error {
	if !Collections[name] {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, name)
	}
	return nil
}

// List returns the collection in creation order, keeping records whose fields
// match every filter entry by string form.
func (s *Store) List(ctx context.Context, collection string, filter map[string]string) ([]Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data, created_at, updated_at FROM records WHERE collection = ? ORDER BY created_at, id`,
		collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		if matches(rec, filter) {
			records = append(records, rec)
		}
	}
	return records, rows.Err()
}

func (s *Store) Get(ctx context.Context, collection, id string) (Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.get(ctx, s.db, collection, id)
}

// Create stores data under a fresh uuid unless data carries its own id.
// An id already taken in the collection yields ErrConflict.
func (s *Store) Create(ctx context.Context, collection string, data map[string]interface{}) (Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}
	return s.insert(ctx, s.db, collection, data)
}

// Update merges patch into the stored record. A nil value removes the field.
func (s *Store) Update(ctx context.Context, collection, id string, patch map[string]interface{}) (Record, error) {
	if err := checkCollection(collection); err != nil {
		return nil, err
	}
	if err := s.wait(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	current, err := s.get(ctx, tx, collection, id)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		switch k {
		case "id", "createdAt", "updatedAt":
			continue
		}
		if v == nil {
			delete(current, k)
			continue
		}
		current[k] = v
	}

	updatedAt := s.timestamp()
	current["updatedAt"] = updatedAt
	body, err := encode(current)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE records SET data = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		body, updatedAt, collection, id); err != nil {
		return nil, fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	return current, tx.Commit()
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	if err := checkCollection(collection); err != nil {
		return err
	}
	if err := s.wait(ctx); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return nil
}

// Count reports the number of records in all collections. It does not wait.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&n)
	return n, err
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func (s *Store) get(ctx context.Context, q queryer, collection, id string) (Record, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, data, created_at, updated_at FROM records WHERE collection = ? AND id = ?`,
		collection, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	return rec, err
}

func (s *Store) insert(ctx context.Context, q queryer, collection string, data map[string]interface{}) (Record, error) {
	rec := Record{}
	for k, v := range data {
		rec[k] = v
	}
	id, _ := rec["id"].(string)
	if id == "" {
		id = uuid.New().String()
	}
	ts := s.timestamp()
	rec["id"] = id
	rec["createdAt"] = ts
	rec["updatedAt"] = ts

	body, err := encode(rec)
	if err != nil {
		return nil, err
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO records (collection, id, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (collection, id) DO NOTHING`,
		collection, id, body, ts, ts)
	if err != nil {
		return nil, fmt.Errorf("create %s/%s: %w", collection, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: %s/%s already exists", ErrConflict, collection, id)
	}
	return rec, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(timeLayout)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner) (Record, error) {
	var id, data, createdAt, updatedAt string
	if err := row.Scan(&id, &data, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	rec := Record{}
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("decode record %s: %w", id, err)
	}
	rec["id"] = id
	rec["createdAt"] = createdAt
	rec["updatedAt"] = updatedAt
	return rec, nil
}

func encode(rec Record) (string, error) {
	body, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return string(body), nil
}

func matches(rec Record, filter map[string]string) bool {
	for k, want := range filter {
		v, ok := rec[k]
		if !ok || filterString(v) != want {
			return false
		}
	}
	return true
}

// filterString renders JSON numbers without exponent so 1200000 matches "1200000".
func filterString(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// sortedKeys is used for deterministic seeding order.
func sortedKeys(m map[string][]map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

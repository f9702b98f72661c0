// Package sqlite provides the durable write-behind mirror for the content
// cache. Every mirrored record carries the same fields as the in-memory
// entry, namespaced under a fixed key prefix. The mirror is strictly
// best-effort: the in-memory store never depends on it for correctness.
package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/pkg/errors"

	// Import the pure-Go sqlite driver.
	_ "modernc.org/sqlite"

	"github.com/smartclass/smartclassd/store/cache"
)

// keyNamespace prefixes every mirrored cache key so the table can be
// shared with future record kinds without collisions.
const keyNamespace = "smartclass:cache:"

const schema = `
CREATE TABLE IF NOT EXISTS cache_entry (
	key TEXT PRIMARY KEY,
	payload BLOB NOT NULL,
	created_ts INTEGER NOT NULL,
	expires_ts INTEGER NOT NULL,
	accessed_ts INTEGER NOT NULL,
	access_count INTEGER NOT NULL DEFAULT 0
);
`

// Mirror persists cache mutations to a local sqlite database.
type Mirror struct {
	db *sql.DB
}

// NewMirror opens (and if needed initializes) the mirror database.
func NewMirror(dsn string) (*Mirror, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sqlite db with dsn %s", dsn)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to ping sqlite db")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to create cache_entry table")
	}
	return &Mirror{db: db}, nil
}

// Close closes the underlying database.
func (m *Mirror) Close() error {
	return m.db.Close()
}

// OnChange applies a single cache mutation to the mirror.
func (m *Mirror) OnChange(ctx context.Context, event cache.Event) error {
	switch event.Op {
	case cache.OpSet:
		_, err := m.db.ExecContext(ctx, `
			INSERT INTO cache_entry (key, payload, created_ts, expires_ts, accessed_ts, access_count)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				payload = excluded.payload,
				created_ts = excluded.created_ts,
				expires_ts = excluded.expires_ts,
				accessed_ts = excluded.accessed_ts,
				access_count = excluded.access_count`,
			keyNamespace+event.Key,
			event.Payload,
			event.CreatedAt.UnixMilli(),
			event.ExpiresAt.UnixMilli(),
			event.LastAccessedAt.UnixMilli(),
			event.AccessCount,
		)
		return errors.Wrap(err, "failed to upsert cache entry")
	case cache.OpDelete:
		_, err := m.db.ExecContext(ctx, `DELETE FROM cache_entry WHERE key = ?`, keyNamespace+event.Key)
		return errors.Wrap(err, "failed to delete cache entry")
	default:
		return errors.Errorf("unknown cache event op: %s", event.Op)
	}
}

// Load returns all still-live mirrored entries for warm start. Expired
// rows are deleted on the way out.
func (m *Mirror) Load(ctx context.Context) ([]cache.Event, error) {
	now := time.Now().UnixMilli()
	if _, err := m.db.ExecContext(ctx, `DELETE FROM cache_entry WHERE expires_ts <= ?`, now); err != nil {
		return nil, errors.Wrap(err, "failed to purge expired mirror rows")
	}

	rows, err := m.db.QueryContext(ctx, `
		SELECT key, payload, created_ts, expires_ts, accessed_ts, access_count
		FROM cache_entry
		WHERE expires_ts > ?`, now)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query cache entries")
	}
	defer rows.Close()

	var events []cache.Event
	for rows.Next() {
		var key string
		var payload []byte
		var createdTS, expiresTS, accessedTS, accessCount int64
		if err := rows.Scan(&key, &payload, &createdTS, &expiresTS, &accessedTS, &accessCount); err != nil {
			return nil, errors.Wrap(err, "failed to scan cache entry")
		}
		events = append(events, cache.Event{
			Op:             cache.OpSet,
			Key:            strings.TrimPrefix(key, keyNamespace),
			Payload:        payload,
			CreatedAt:      time.UnixMilli(createdTS),
			ExpiresAt:      time.UnixMilli(expiresTS),
			LastAccessedAt: time.UnixMilli(accessedTS),
			AccessCount:    accessCount,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate cache entries")
	}
	return events, nil
}

// Ensure Mirror implements cache.Mirror
var _ cache.Mirror = (*Mirror)(nil)

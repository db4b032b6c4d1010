package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"energia/internal/logging"
	"energia/internal/types"
)

// LocalStore is the on-disk cache and offline queue, backed by SQLite.
// Meditations and uploads are cached as JSON blobs keyed by id so the cache
// schema never needs migrating when the record shape grows; the queue holds
// mutating operations that could not reach Firestore yet.
type LocalStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewLocalStore opens (or creates) the SQLite database at the given path.
func NewLocalStore(path string) (*LocalStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewLocalStore")
	defer timer.Stop()

	logging.Store("Initializing LocalStore at path: %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logging.StoreError("Failed to create directory %s: %v", dir, err)
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logging.StoreError("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	// synchronous=NORMAL is safe under WAL and much faster than FULL.
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	store := &LocalStore{db: db, dbPath: path}
	if err := store.initialize(); err != nil {
		logging.StoreError("Failed to initialize schema: %v", err)
		db.Close()
		return nil, err
	}
	logging.StoreDebug("Local cache schema initialized")
	return store, nil
}

func (s *LocalStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS meditations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		client_timestamp INTEGER NOT NULL DEFAULT 0,
		sync_state TEXT NOT NULL DEFAULT 'local-only',
		data TEXT NOT NULL,
		cached_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_meditations_user ON meditations(user_id, client_timestamp DESC);

	CREATE TABLE IF NOT EXISTS uploads (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		client_upload_time INTEGER NOT NULL DEFAULT 0,
		data TEXT NOT NULL,
		cached_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_uploads_user ON uploads(user_id, client_upload_time DESC);

	CREATE TABLE IF NOT EXISTS sync_queue (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		type TEXT NOT NULL,
		upload_id TEXT NOT NULL DEFAULT '',
		local_id TEXT NOT NULL DEFAULT '',
		payload TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *LocalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// PutMeditation caches a meditation, replacing any previous copy.
func (s *LocalStore) PutMeditation(rec types.MeditationRecord, state types.SyncState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode meditation: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO meditations (id, user_id, client_timestamp, sync_state, data, cached_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			client_timestamp = excluded.client_timestamp,
			sync_state = excluded.sync_state,
			data = excluded.data,
			cached_at = excluded.cached_at`,
		rec.ID, rec.UserID, rec.ClientTimestamp, string(state), string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to cache meditation %s: %w", rec.ID, err)
	}
	logging.StoreDebug("Cached meditation %s (%s)", rec.ID, state)
	return nil
}

// GetMeditation returns a cached meditation, or types.ErrNotFound.
func (s *LocalStore) GetMeditation(id string) (types.MeditationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRow(`SELECT data FROM meditations WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return types.MeditationRecord{}, types.ErrNotFound
	}
	if err != nil {
		return types.MeditationRecord{}, fmt.Errorf("failed to load meditation %s: %w", id, err)
	}

	var rec types.MeditationRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return types.MeditationRecord{}, fmt.Errorf("corrupt cached meditation %s: %w", id, err)
	}
	return rec, nil
}

// ListMeditations returns all cached meditations for a user, newest first.
func (s *LocalStore) ListMeditations(userID string) ([]types.MeditationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT data FROM meditations WHERE user_id = ? ORDER BY client_timestamp DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query meditations: %w", err)
	}
	defer rows.Close()

	var records []types.MeditationRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec types.MeditationRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			logging.StoreWarn("Skipping corrupt cached meditation: %v", err)
			continue
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// MarkSynced flips a cached meditation's sync state once the remote write
// confirmed.
func (s *LocalStore) MarkSynced(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`UPDATE meditations SET sync_state = ? WHERE id = ?`, string(types.SyncSynced), id)
	return err
}

// PutUpload caches an upload tracking record.
func (s *LocalStore) PutUpload(rec types.UploadRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode upload: %w", err)
	}
	_, err = s.db.Exec(`INSERT INTO uploads (id, user_id, client_upload_time, data, cached_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			client_upload_time = excluded.client_upload_time,
			data = excluded.data,
			cached_at = excluded.cached_at`,
		rec.ID, rec.UserID, rec.ClientUploadTime, string(data), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to cache upload %s: %w", rec.ID, err)
	}
	return nil
}

// GetUpload returns a cached upload record, or types.ErrNotFound.
func (s *LocalStore) GetUpload(id string) (types.UploadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var data string
	err := s.db.QueryRow(`SELECT data FROM uploads WHERE id = ?`, id).Scan(&data)
	if err == sql.ErrNoRows {
		return types.UploadRecord{}, types.ErrNotFound
	}
	if err != nil {
		return types.UploadRecord{}, fmt.Errorf("failed to load upload %s: %w", id, err)
	}

	var rec types.UploadRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return types.UploadRecord{}, fmt.Errorf("corrupt cached upload %s: %w", id, err)
	}
	return rec, nil
}

// ListUploads returns cached uploads for a user, newest first, capped at
// limit when limit > 0.
func (s *LocalStore) ListUploads(userID string, limit int) ([]types.UploadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT data FROM uploads WHERE user_id = ? ORDER BY client_upload_time DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer rows.Close()

	var records []types.UploadRecord
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var rec types.UploadRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			logging.StoreWarn("Skipping corrupt cached upload: %v", err)
			continue
		}
		records = append(records, rec)
		if limit > 0 && len(records) >= limit {
			break
		}
	}
	return records, rows.Err()
}

// Enqueue appends a mutating operation to the offline queue.
func (s *LocalStore) Enqueue(entry types.QueueEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().UnixMilli()
	}
	_, err := s.db.Exec(`INSERT INTO sync_queue (type, upload_id, local_id, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.Type, entry.UploadID, entry.LocalID, string(entry.Payload), entry.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s: %w", entry.Type, err)
	}
	logging.Queue("Queued %s operation for later sync", entry.Type)
	return nil
}

// queuedEntry pairs a queue entry with its stable sequence number so a
// processed entry can be deleted without touching entries added meanwhile.
type queuedEntry struct {
	Seq   int64
	Entry types.QueueEntry
}

// pendingEntries snapshots the queue in insertion order.
func (s *LocalStore) pendingEntries() ([]queuedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT seq, type, upload_id, local_id, payload, created_at FROM sync_queue ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to read queue: %w", err)
	}
	defer rows.Close()

	var entries []queuedEntry
	for rows.Next() {
		var q queuedEntry
		var payload string
		if err := rows.Scan(&q.Seq, &q.Entry.Type, &q.Entry.UploadID, &q.Entry.LocalID, &payload, &q.Entry.Timestamp); err != nil {
			return nil, err
		}
		q.Entry.Payload = []byte(payload)
		entries = append(entries, q)
	}
	return entries, rows.Err()
}

// deleteEntry removes a processed queue entry.
func (s *LocalStore) deleteEntry(seq int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM sync_queue WHERE seq = ?`, seq)
	return err
}

// QueueLen reports how many operations await sync.
func (s *LocalStore) QueueLen() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM sync_queue`).Scan(&n)
	return n, err
}

// meditationSortTime picks the best available creation instant for ordering:
// the server-assigned timestamp, then createdAt, then the client timestamp.
// A record carrying none of the three sorts as epoch 0.
func meditationSortTime(rec types.MeditationRecord) int64 {
	if t, err := time.Parse(time.RFC3339, rec.Timestamp); err == nil {
		return t.UnixMilli()
	}
	if t, err := time.Parse(time.RFC3339, rec.CreatedAt); err == nil {
		return t.UnixMilli()
	}
	return rec.ClientTimestamp
}

// sortMeditationsDesc orders records newest first.
func sortMeditationsDesc(records []types.MeditationRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return meditationSortTime(records[i]) > meditationSortTime(records[j])
	})
}

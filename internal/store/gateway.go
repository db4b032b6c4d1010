package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"energia/internal/logging"
	"energia/internal/types"
)

// Remote is the slice of the remote document store the gateway needs.
// *FirestoreClient satisfies it; tests substitute fakes.
type Remote interface {
	SaveMeditation(ctx context.Context, rec types.MeditationRecord) error
	// CommitMeditation writes the meditation document and, when the record
	// links an upload-tracking document, marks that upload analyzed in the
	// same atomic batch.
	CommitMeditation(ctx context.Context, rec types.MeditationRecord) error
	GetMeditation(ctx context.Context, id string) (types.MeditationRecord, error)
	ListMeditations(ctx context.Context, userID string) ([]types.MeditationRecord, error)
	TrackUpload(ctx context.Context, rec types.UploadRecord) error
	UpdateUploadAnalysis(ctx context.Context, uploadID, meditationID string, analysis types.AnalysisRecord) error
	RecentUploads(ctx context.Context, userID string, limit int) ([]types.UploadRecord, error)
	Ping(ctx context.Context) error
}

// ConnectionStatus is the result of a connectivity probe.
type ConnectionStatus struct {
	Connected    bool   `json:"isConnected"`
	UserID       string `json:"userId"`
	QueuedWrites int    `json:"queuedWrites"`
}

const saveMaxRetries = 3

// sleeper lets tests collapse the retry backoff.
type sleeper func(time.Duration)

// Gateway is the offline-first persistence layer. Every read prefers the
// local cache, every write lands locally even when the remote store is down,
// and queued writes are replayed when connectivity returns. Replay is
// at-least-once: the remote writes are idempotent upserts keyed by record id,
// so a duplicate replay rewrites the same document.
type Gateway struct {
	remote Remote
	local  *LocalStore
	sleep  sleeper
}

// NewGateway wires the remote client and local cache together.
func NewGateway(remote Remote, local *LocalStore) *Gateway {
	return &Gateway{remote: remote, local: local, sleep: time.Sleep}
}

// Save persists a meditation as one atomic batch: the meditation document
// plus, when the record links an upload-tracking document, the analyzed-status
// update on that upload. The batch is retried three times with a growing
// backoff (1s, 2s, 3s); after that one plain meditation-only write is
// attempted, and when that also fails the record is kept under an
// offline-meditation id and queued for replay. Save never loses data and
// never returns an error for remote unavailability.
func (g *Gateway) Save(ctx context.Context, rec types.MeditationRecord) (string, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Gateway.Save")
	defer timer.Stop()

	if rec.UserID == "" {
		rec.UserID = types.DefaultUserID
	}
	if rec.ClientTimestamp == 0 {
		rec.ClientTimestamp = time.Now().UnixMilli()
	}
	if rec.CreatedAt == "" {
		rec.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	if rec.Style == "" {
		rec.Style = types.DefaultStyle
	}
	if rec.Theme == "" {
		rec.Theme = types.DefaultTheme
	}
	if rec.ID == "" {
		rec.ID = types.NewRecordID("meditation")
	}

	var lastErr error
	for attempt := 1; attempt <= saveMaxRetries; attempt++ {
		err := g.remote.CommitMeditation(ctx, rec)
		if err == nil {
			if cacheErr := g.local.PutMeditation(rec, types.SyncSynced); cacheErr != nil {
				logging.StoreWarn("Failed to cache meditation %s after save: %v", rec.ID, cacheErr)
			}
			logging.Store("Meditation %s saved", rec.ID)
			return rec.ID, nil
		}
		lastErr = err
		logging.StoreWarn("Batched save attempt %d/%d for %s failed: %v", attempt, saveMaxRetries, rec.ID, err)
		g.sleep(time.Duration(attempt) * time.Second)
	}

	// One plain write before giving up: the batch can fail for reasons the
	// meditation document alone would not, e.g. a missing upload document.
	plainErr := g.remote.SaveMeditation(ctx, rec)
	if plainErr == nil {
		if cacheErr := g.local.PutMeditation(rec, types.SyncSynced); cacheErr != nil {
			logging.StoreWarn("Failed to cache meditation %s after save: %v", rec.ID, cacheErr)
		}
		logging.Store("Meditation %s saved without the upload update", rec.ID)
		return rec.ID, nil
	}
	lastErr = plainErr

	logging.StoreWarn("All save attempts failed for %s, keeping offline copy: %v", rec.ID, lastErr)
	return g.saveOffline(rec)
}

// saveOffline stores the meditation locally under an offline id and queues
// the original record for replay.
func (g *Gateway) saveOffline(rec types.MeditationRecord) (string, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to encode meditation for queue: %w", err)
	}

	offline := rec
	offline.ID = fmt.Sprintf("offline-meditation-%d", time.Now().UnixMilli())
	offline.Offline = true
	if err := g.local.PutMeditation(offline, types.SyncLocalOnly); err != nil {
		return "", fmt.Errorf("failed to store offline meditation: %w", err)
	}

	if err := g.local.Enqueue(types.QueueEntry{
		Type:    types.QueueSaveMeditation,
		LocalID: offline.ID,
		Payload: payload,
	}); err != nil {
		return "", fmt.Errorf("failed to queue meditation for sync: %w", err)
	}
	return offline.ID, nil
}

// Get returns a meditation by id without ever failing on a missing record:
// the local cache is checked first, then the remote store (caching a hit for
// later offline reads), and a missing record comes back as a readable
// placeholder flagged NotFound.
func (g *Gateway) Get(ctx context.Context, id string) (types.MeditationRecord, error) {
	if id == "" {
		return types.MeditationRecord{}, fmt.Errorf("meditation id is required")
	}

	if rec, err := g.local.GetMeditation(id); err == nil {
		logging.StoreDebug("Meditation %s served from local cache", id)
		return rec, nil
	}

	if strings.HasPrefix(id, "offline-") {
		return types.MeditationRecord{
			ID:             id,
			GeminiGuidance: "# Meditation Not Found\n\nThis meditation could not be found in your offline storage. It may have been deleted or the storage may have been cleared.",
			NotFound:       true,
			Offline:        true,
		}, nil
	}

	rec, err := g.remote.GetMeditation(ctx, id)
	if err == nil {
		if cacheErr := g.local.PutMeditation(rec, types.SyncSynced); cacheErr != nil {
			logging.StoreWarn("Failed to cache meditation %s: %v", id, cacheErr)
		}
		return rec, nil
	}

	logging.StoreWarn("Meditation %s unavailable remotely: %v", id, err)
	return types.MeditationRecord{
		ID:             id,
		GeminiGuidance: "# Meditation Not Found\n\nThis meditation could not be found. It may have been deleted or may not exist.",
		NotFound:       true,
	}, nil
}

// ListForUser merges remote and locally cached meditations for a user,
// deduplicated by id with the remote copy winning, newest first. The two
// sources are fetched concurrently; a remote failure degrades to
// local-only results instead of an error.
func (g *Gateway) ListForUser(ctx context.Context, userID string) ([]types.MeditationRecord, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Gateway.ListForUser")
	defer timer.Stop()

	if userID == "" {
		userID = types.DefaultUserID
	}

	var remote, local []types.MeditationRecord
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		recs, err := g.remote.ListMeditations(egCtx, userID)
		if err != nil {
			logging.StoreWarn("Remote list failed for %s, serving cached results: %v", userID, err)
			return nil
		}
		remote = recs
		return nil
	})
	eg.Go(func() error {
		recs, err := g.local.ListMeditations(userID)
		if err != nil {
			logging.StoreWarn("Local list failed for %s: %v", userID, err)
			return nil
		}
		local = recs
		return nil
	})
	eg.Wait()

	seen := make(map[string]bool, len(remote))
	merged := make([]types.MeditationRecord, 0, len(remote)+len(local))
	for _, rec := range remote {
		seen[rec.ID] = true
		merged = append(merged, rec)
	}
	for _, rec := range local {
		if !seen[rec.ID] {
			merged = append(merged, rec)
		}
	}
	sortMeditationsDesc(merged)
	return merged, nil
}

// TrackUpload records an image upload, queueing it when the remote store is
// unreachable. Returns the upload id (an offline id when queued).
func (g *Gateway) TrackUpload(ctx context.Context, rec types.UploadRecord) (string, error) {
	if rec.UserID == "" {
		rec.UserID = types.DefaultUserID
	}
	if rec.ClientUploadTime == 0 {
		rec.ClientUploadTime = time.Now().UnixMilli()
	}
	if rec.Status == "" {
		rec.Status = "uploaded"
	}
	if rec.ID == "" {
		rec.ID = types.NewRecordID("upload")
	}

	if err := g.remote.TrackUpload(ctx, rec); err != nil {
		logging.StoreWarn("Failed to track upload remotely, queueing: %v", err)

		// The offline id is what callers hold on to (and what a meditation
		// saved in the same session references), so the queued copy carries
		// it too and replay recreates the document under the same id.
		offline := rec
		offline.ID = fmt.Sprintf("offline-upload-%d", time.Now().UnixMilli())
		payload, marshalErr := json.Marshal(offline)
		if marshalErr != nil {
			return "", fmt.Errorf("failed to encode upload for queue: %w", marshalErr)
		}
		if putErr := g.local.PutUpload(offline); putErr != nil {
			return "", fmt.Errorf("failed to store offline upload: %w", putErr)
		}
		if queueErr := g.local.Enqueue(types.QueueEntry{
			Type:    types.QueueTrackImageUpload,
			Payload: payload,
		}); queueErr != nil {
			return "", fmt.Errorf("failed to queue upload for sync: %w", queueErr)
		}
		return offline.ID, nil
	}

	if err := g.local.PutUpload(rec); err != nil {
		logging.StoreWarn("Failed to cache upload %s: %v", rec.ID, err)
	}
	return rec.ID, nil
}

// analysisUpdate is the queued payload for an analysis update.
type analysisUpdate struct {
	MeditationID string               `json:"meditationId"`
	Analysis     types.AnalysisRecord `json:"analysis"`
}

// UpdateAnalysis marks an upload analyzed and links the meditation generated
// from it, queueing the update when the remote store is unreachable.
func (g *Gateway) UpdateAnalysis(ctx context.Context, uploadID, meditationID string, analysis types.AnalysisRecord) error {
	if uploadID == "" {
		return fmt.Errorf("upload id is required")
	}

	if err := g.remote.UpdateUploadAnalysis(ctx, uploadID, meditationID, analysis); err != nil {
		logging.StoreWarn("Failed to update analysis for %s remotely, queueing: %v", uploadID, err)

		payload, marshalErr := json.Marshal(analysisUpdate{MeditationID: meditationID, Analysis: analysis})
		if marshalErr != nil {
			return fmt.Errorf("failed to encode analysis update for queue: %w", marshalErr)
		}
		return g.local.Enqueue(types.QueueEntry{
			Type:     types.QueueUpdateImageAnalysis,
			UploadID: uploadID,
			Payload:  payload,
		})
	}

	if rec, err := g.local.GetUpload(uploadID); err == nil {
		rec.Status = "analyzed"
		rec.MeditationID = meditationID
		rec.AnalysisData = &analysis
		if putErr := g.local.PutUpload(rec); putErr != nil {
			logging.StoreWarn("Failed to refresh cached upload %s: %v", uploadID, putErr)
		}
	}
	return nil
}

// RecentUploads lists a user's uploads newest first, falling back to the
// local cache when the remote store is unreachable.
func (g *Gateway) RecentUploads(ctx context.Context, userID string, limit int) ([]types.UploadRecord, error) {
	if userID == "" {
		userID = types.DefaultUserID
	}
	records, err := g.remote.RecentUploads(ctx, userID, limit)
	if err != nil {
		logging.StoreWarn("Remote uploads list failed for %s, serving cache: %v", userID, err)
		return g.local.ListUploads(userID, limit)
	}
	return records, nil
}

// ProcessQueue replays queued writes against the remote store in insertion
// order. An entry is removed only after its replay succeeds; failures stay
// queued for the next pass. Returns how many entries were replayed.
func (g *Gateway) ProcessQueue(ctx context.Context) (int, error) {
	entries, err := g.local.pendingEntries()
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		logging.QueueDebug("No queued writes to process")
		return 0, nil
	}

	logging.Queue("Processing %d queued writes", len(entries))
	processed := 0
	for _, q := range entries {
		if err := g.replayEntry(ctx, q.Entry); err != nil {
			logging.QueueWarn("Replay of %s failed, keeping queued: %v", q.Entry.Type, err)
			continue
		}
		if err := g.local.deleteEntry(q.Seq); err != nil {
			logging.QueueWarn("Failed to remove replayed entry %d: %v", q.Seq, err)
			continue
		}
		processed++
	}
	logging.Queue("Replayed %d of %d queued writes", processed, len(entries))
	return processed, nil
}

func (g *Gateway) replayEntry(ctx context.Context, entry types.QueueEntry) error {
	switch entry.Type {
	case types.QueueSaveMeditation:
		var rec types.MeditationRecord
		if err := json.Unmarshal(entry.Payload, &rec); err != nil {
			return fmt.Errorf("corrupt queued meditation: %w", err)
		}
		if err := g.remote.CommitMeditation(ctx, rec); err != nil {
			return err
		}
		if err := g.local.PutMeditation(rec, types.SyncSynced); err != nil {
			return err
		}
		if entry.LocalID != "" {
			if err := g.local.MarkSynced(entry.LocalID); err != nil {
				logging.QueueWarn("Failed to mark offline copy %s synced: %v", entry.LocalID, err)
			}
		}
		return nil
	case types.QueueTrackImageUpload:
		var rec types.UploadRecord
		if err := json.Unmarshal(entry.Payload, &rec); err != nil {
			return fmt.Errorf("corrupt queued upload: %w", err)
		}
		return g.remote.TrackUpload(ctx, rec)
	case types.QueueUpdateImageAnalysis:
		var update analysisUpdate
		if err := json.Unmarshal(entry.Payload, &update); err != nil {
			return fmt.Errorf("corrupt queued analysis update: %w", err)
		}
		return g.remote.UpdateUploadAnalysis(ctx, entry.UploadID, update.MeditationID, update.Analysis)
	default:
		// Entries this build cannot replay stay queued; a newer build may
		// understand them.
		return fmt.Errorf("unknown queue entry type %q", entry.Type)
	}
}

// CheckConnection probes the remote store and, when reachable, drains the
// offline queue.
func (g *Gateway) CheckConnection(ctx context.Context) ConnectionStatus {
	status := ConnectionStatus{UserID: types.DefaultUserID}
	if n, err := g.local.QueueLen(); err == nil {
		status.QueuedWrites = n
	}

	if err := g.remote.Ping(ctx); err != nil {
		logging.StoreDebug("Connection check failed: %v", err)
		return status
	}
	status.Connected = true

	if _, err := g.ProcessQueue(ctx); err != nil {
		logging.QueueWarn("Queue processing after reconnect failed: %v", err)
	}
	if n, err := g.local.QueueLen(); err == nil {
		status.QueuedWrites = n
	}
	return status
}

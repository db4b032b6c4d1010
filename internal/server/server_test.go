package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"energia/internal/config"
	"energia/internal/emotion"
	"energia/internal/narrative"
	"energia/internal/pipeline"
	"energia/internal/store"
	"energia/internal/types"
	"energia/internal/vision"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type fakeRemote struct {
	meditations map[string]types.MeditationRecord
	uploads     map[string]types.UploadRecord
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		meditations: make(map[string]types.MeditationRecord),
		uploads:     make(map[string]types.UploadRecord),
	}
}

func (f *fakeRemote) SaveMeditation(_ context.Context, rec types.MeditationRecord) error {
	f.meditations[rec.ID] = rec
	return nil
}

func (f *fakeRemote) CommitMeditation(_ context.Context, rec types.MeditationRecord) error {
	if rec.UploadID != "" {
		up, ok := f.uploads[rec.UploadID]
		if !ok {
			return types.ErrNotFound
		}
		up.Status = "analyzed"
		up.MeditationID = rec.ID
		up.AnalysisData = &rec.VisionResult
		f.uploads[rec.UploadID] = up
	}
	f.meditations[rec.ID] = rec
	return nil
}

func (f *fakeRemote) GetMeditation(_ context.Context, id string) (types.MeditationRecord, error) {
	rec, ok := f.meditations[id]
	if !ok {
		return types.MeditationRecord{}, types.ErrNotFound
	}
	return rec, nil
}

func (f *fakeRemote) ListMeditations(_ context.Context, userID string) ([]types.MeditationRecord, error) {
	var out []types.MeditationRecord
	for _, rec := range f.meditations {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRemote) TrackUpload(_ context.Context, rec types.UploadRecord) error {
	f.uploads[rec.ID] = rec
	return nil
}

func (f *fakeRemote) UpdateUploadAnalysis(_ context.Context, uploadID, meditationID string, analysis types.AnalysisRecord) error {
	rec, ok := f.uploads[uploadID]
	if !ok {
		return types.ErrNotFound
	}
	rec.Status = "analyzed"
	rec.MeditationID = meditationID
	rec.AnalysisData = &analysis
	f.uploads[uploadID] = rec
	return nil
}

func (f *fakeRemote) RecentUploads(_ context.Context, userID string, limit int) ([]types.UploadRecord, error) {
	var out []types.UploadRecord
	for _, rec := range f.uploads {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeRemote) Ping(_ context.Context) error { return nil }

type stubGenerator struct{ text string }

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	return s.text, nil
}

const annotateBody = `{"responses":[{"labelAnnotations":[{"description":"Forest","score":0.9}],
	"imagePropertiesAnnotation":{"dominantColors":{"colors":[
		{"color":{"red":52,"green":168,"blue":83},"score":0.6}]}}}]}`

type testEnv struct {
	api    *httptest.Server
	remote *fakeRemote
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	visionSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(annotateBody))
	}))
	t.Cleanup(visionSrv.Close)

	local, err := store.NewLocalStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { local.Close() })

	remote := newFakeRemote()
	gw := store.NewGateway(remote, local)

	analyzer := vision.NewAnalyzer(vision.NewClient(config.VisionConfig{
		APIKey:   "test-key",
		Endpoint: visionSrv.URL,
	}), nil, types.FixedSelector(0))

	p := pipeline.New(
		analyzer,
		emotion.New(types.FixedSelector(0)),
		narrative.NewGenerator(&stubGenerator{text: "# Forest Calm\n\n## Step 1\nBreathe in."}, nil, types.FixedSelector(0)),
		gw,
		0,
	)

	srv := New(config.ServerConfig{Host: "127.0.0.1", Port: 0}, p, gw, nil)
	api := httptest.NewServer(srv.Handler())
	t.Cleanup(api.Close)

	return &testEnv{api: api, remote: remote}
}

func (e *testEnv) postJSON(t *testing.T, path string, body interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(e.api.URL+path, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestGenerateEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/photos", map[string]interface{}{
		"photoUrl": "https://example.com/forest.jpg",
		"userId":   "user-1",
		"style":    "Calm",
		"theme":    "Nature",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out generateResponse
	decodeBody(t, resp, &out)
	assert.NotEmpty(t, out.MeditationID)
	assert.NotEmpty(t, out.UploadID)
	assert.Equal(t, "# Forest Calm\n\n## Step 1\nBreathe in.", out.GeminiGuidance)
	assert.Equal(t, "complete", out.Status)
	assert.Contains(t, out.Analysis.Labels, "Forest")

	// Side effects hit the remote store.
	assert.Contains(t, env.remote.meditations, out.MeditationID)
	assert.Equal(t, "analyzed", env.remote.uploads[out.UploadID].Status)
}

func TestGenerateRequiresPhotoURL(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/photos", map[string]string{"userId": "user-1"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetMeditationEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.remote.meditations["med-1"] = types.MeditationRecord{
		ID:             "med-1",
		UserID:         "user-1",
		GeminiGuidance: "# Stored",
	}

	resp, err := http.Get(env.api.URL + "/api/meditations/med-1")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var rec types.MeditationRecord
	decodeBody(t, resp, &rec)
	assert.Equal(t, "# Stored", rec.GeminiGuidance)

	// Unknown ids come back as readable placeholders, still 200.
	resp, err = http.Get(env.api.URL + "/api/meditations/med-missing")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decodeBody(t, resp, &rec)
	assert.True(t, rec.NotFound)
	assert.Contains(t, rec.GeminiGuidance, "# Meditation Not Found")
}

func TestListMeditationsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.remote.meditations["med-1"] = types.MeditationRecord{ID: "med-1", UserID: "u", ClientTimestamp: 100}
	env.remote.meditations["med-2"] = types.MeditationRecord{ID: "med-2", UserID: "u", ClientTimestamp: 200}
	env.remote.meditations["med-3"] = types.MeditationRecord{ID: "med-3", UserID: "other"}

	resp, err := http.Get(env.api.URL + "/api/firestore/meditations/u")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var records []types.MeditationRecord
	decodeBody(t, resp, &records)
	require.Len(t, records, 2)
	assert.Equal(t, "med-2", records[0].ID)
}

func TestSaveMeditationEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/firestore/meditations", types.MeditationRecord{
		UserID:         "user-1",
		GeminiGuidance: "# Direct",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]string
	decodeBody(t, resp, &out)
	require.NotEmpty(t, out["id"])
	assert.Equal(t, "# Direct", env.remote.meditations[out["id"]].GeminiGuidance)
}

func TestUploadEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp := env.postJSON(t, "/api/firestore/imageUploads", types.UploadRecord{
		UserID:      "user-1",
		ImageSource: "https://example.com/a.jpg",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created map[string]string
	decodeBody(t, resp, &created)
	uploadID := created["id"]
	require.NotEmpty(t, uploadID)

	patchBody, err := json.Marshal(analysisUpdateRequest{
		MeditationID: "med-1",
		AnalysisData: types.AnalysisRecord{Labels: []string{"Sky"}},
	})
	require.NoError(t, err)
	req, err := http.NewRequest(http.MethodPatch, env.api.URL+"/api/firestore/imageUploads/"+uploadID, bytes.NewReader(patchBody))
	require.NoError(t, err)
	patchResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	patchResp.Body.Close()
	require.Equal(t, http.StatusOK, patchResp.StatusCode)
	assert.Equal(t, "analyzed", env.remote.uploads[uploadID].Status)
	assert.Equal(t, "med-1", env.remote.uploads[uploadID].MeditationID)

	listResp, err := http.Get(env.api.URL + "/api/uploads/user-1?limit=5")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, listResp.StatusCode)
	var uploads []types.UploadRecord
	decodeBody(t, listResp, &uploads)
	require.Len(t, uploads, 1)
	assert.Equal(t, uploadID, uploads[0].ID)
}

func TestProxyImageEndpoint(t *testing.T) {
	env := newTestEnv(t)

	imageSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpegdata"))
	}))
	defer imageSrv.Close()

	resp, err := http.Get(env.api.URL + "/api/proxy/image?url=" + imageSrv.URL)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out map[string]string
	decodeBody(t, resp, &out)
	expected := fmt.Sprintf("data:image/jpeg;base64,%s", base64.StdEncoding.EncodeToString([]byte("jpegdata")))
	assert.Equal(t, expected, out["dataUrl"])

	resp, err = http.Get(env.api.URL + "/api/proxy/image")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndStatusEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.api.URL + "/api/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]interface{}
	decodeBody(t, resp, &health)
	assert.Equal(t, "ok", health["status"])

	resp, err = http.Get(env.api.URL + "/api/status")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var status store.ConnectionStatus
	decodeBody(t, resp, &status)
	assert.True(t, status.Connected)
}

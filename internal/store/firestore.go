package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"energia/internal/config"
	"energia/internal/logging"
	"energia/internal/types"
)

// FirestoreClient talks to the Firestore REST API directly, without the
// official SDK. Documents are addressed as
// projects/{project}/databases/{database}/documents/{collection}/{id}
// and authenticated with an API key query parameter.
type FirestoreClient struct {
	baseURL    string
	basePath   string
	apiKey     string
	httpClient *http.Client
}

// NewFirestoreClient builds a REST client from config. The returned client is
// safe for concurrent use.
func NewFirestoreClient(cfg config.FirestoreConfig) *FirestoreClient {
	databaseID := cfg.DatabaseID
	if databaseID == "" {
		databaseID = "(default)"
	}
	basePath := fmt.Sprintf("projects/%s/databases/%s/documents", cfg.ProjectID, databaseID)
	return &FirestoreClient{
		baseURL:    "https://firestore.googleapis.com/v1/" + basePath,
		basePath:   basePath,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// firestoreValue is the tagged-union value representation of the REST API.
type firestoreValue struct {
	StringValue    *string          `json:"stringValue,omitempty"`
	IntegerValue   *string          `json:"integerValue,omitempty"`
	DoubleValue    *float64         `json:"doubleValue,omitempty"`
	BooleanValue   *bool            `json:"booleanValue,omitempty"`
	TimestampValue *string          `json:"timestampValue,omitempty"`
	NullValue      *string          `json:"nullValue,omitempty"`
	ArrayValue     *firestoreArray  `json:"arrayValue,omitempty"`
	MapValue       *firestoreFields `json:"mapValue,omitempty"`
}

type firestoreArray struct {
	Values []firestoreValue `json:"values,omitempty"`
}

type firestoreFields struct {
	Fields map[string]firestoreValue `json:"fields,omitempty"`
}

type firestoreDocument struct {
	Name       string                    `json:"name,omitempty"`
	Fields     map[string]firestoreValue `json:"fields,omitempty"`
	CreateTime string                    `json:"createTime,omitempty"`
	UpdateTime string                    `json:"updateTime,omitempty"`
}

// toValue converts a decoded-JSON value into the REST tagged union.
// Integer-valued float64s become integerValue (Firestore encodes int64 as a
// decimal string); everything else maps to the obvious variant.
func toValue(v interface{}) firestoreValue {
	switch x := v.(type) {
	case nil:
		s := "NULL_VALUE"
		return firestoreValue{NullValue: &s}
	case string:
		return firestoreValue{StringValue: &x}
	case bool:
		return firestoreValue{BooleanValue: &x}
	case float64:
		if x == float64(int64(x)) {
			s := strconv.FormatInt(int64(x), 10)
			return firestoreValue{IntegerValue: &s}
		}
		return firestoreValue{DoubleValue: &x}
	case int:
		s := strconv.Itoa(x)
		return firestoreValue{IntegerValue: &s}
	case int64:
		s := strconv.FormatInt(x, 10)
		return firestoreValue{IntegerValue: &s}
	case time.Time:
		s := x.UTC().Format(time.RFC3339Nano)
		return firestoreValue{TimestampValue: &s}
	case []interface{}:
		arr := &firestoreArray{Values: make([]firestoreValue, 0, len(x))}
		for _, item := range x {
			arr.Values = append(arr.Values, toValue(item))
		}
		return firestoreValue{ArrayValue: arr}
	case map[string]interface{}:
		return firestoreValue{MapValue: &firestoreFields{Fields: toFields(x)}}
	default:
		// Fall back to a JSON round trip for anything unexpected,
		// e.g. a struct that slipped through.
		raw, err := json.Marshal(x)
		if err != nil {
			s := fmt.Sprintf("%v", x)
			return firestoreValue{StringValue: &s}
		}
		var decoded interface{}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			s := string(raw)
			return firestoreValue{StringValue: &s}
		}
		return toValue(decoded)
	}
}

func toFields(m map[string]interface{}) map[string]firestoreValue {
	fields := make(map[string]firestoreValue, len(m))
	for k, v := range m {
		fields[k] = toValue(v)
	}
	return fields
}

// fromValue converts a REST value back to plain JSON-shaped Go values.
// integerValue strings become float64 to match encoding/json decoding of the
// same document, so callers see one numeric type either way.
func fromValue(v firestoreValue) interface{} {
	switch {
	case v.StringValue != nil:
		return *v.StringValue
	case v.IntegerValue != nil:
		n, err := strconv.ParseFloat(*v.IntegerValue, 64)
		if err != nil {
			return *v.IntegerValue
		}
		return n
	case v.DoubleValue != nil:
		return *v.DoubleValue
	case v.BooleanValue != nil:
		return *v.BooleanValue
	case v.TimestampValue != nil:
		return *v.TimestampValue
	case v.ArrayValue != nil:
		out := make([]interface{}, 0, len(v.ArrayValue.Values))
		for _, item := range v.ArrayValue.Values {
			out = append(out, fromValue(item))
		}
		return out
	case v.MapValue != nil:
		return fromFields(v.MapValue.Fields)
	default:
		return nil
	}
}

func fromFields(fields map[string]firestoreValue) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		out[k] = fromValue(v)
	}
	return out
}

// do issues one REST call and decodes the response into out (when non-nil).
// 404 maps to types.ErrNotFound so callers can branch without string checks.
func (c *FirestoreClient) do(ctx context.Context, method, rawURL string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("firestore request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return types.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("firestore API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func (c *FirestoreClient) docURL(collection, id string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}
	u := fmt.Sprintf("%s/%s/%s", c.baseURL, collection, url.PathEscape(id))
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// setDocument writes the full document at collection/id (PATCH upserts).
func (c *FirestoreClient) setDocument(ctx context.Context, collection, id string, data map[string]interface{}) error {
	timer := logging.StartTimer(logging.CategoryStore, "firestore.setDocument")
	defer timer.Stop()

	doc := firestoreDocument{Fields: toFields(data)}
	if err := c.do(ctx, http.MethodPatch, c.docURL(collection, id, nil), doc, nil); err != nil {
		logging.StoreError("Failed to write %s/%s: %v", collection, id, err)
		return err
	}
	logging.StoreDebug("Wrote document %s/%s", collection, id)
	return nil
}

// getDocument fetches collection/id as plain JSON-shaped fields.
func (c *FirestoreClient) getDocument(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	var doc firestoreDocument
	if err := c.do(ctx, http.MethodGet, c.docURL(collection, id, nil), nil, &doc); err != nil {
		return nil, err
	}
	return fromFields(doc.Fields), nil
}

// updateDocument patches only the named fields, leaving the rest untouched.
func (c *FirestoreClient) updateDocument(ctx context.Context, collection, id string, updates map[string]interface{}) error {
	query := url.Values{}
	for field := range updates {
		query.Add("updateMask.fieldPaths", field)
	}
	doc := firestoreDocument{Fields: toFields(updates)}
	return c.do(ctx, http.MethodPatch, c.docURL(collection, id, query), doc, nil)
}

// commit shapes for the :commit endpoint, which applies every write in the
// request atomically.
type commitRequest struct {
	Writes []commitWrite `json:"writes"`
}

type commitWrite struct {
	Update          *firestoreDocument `json:"update,omitempty"`
	UpdateMask      *documentMask      `json:"updateMask,omitempty"`
	CurrentDocument *precondition      `json:"currentDocument,omitempty"`
}

type documentMask struct {
	FieldPaths []string `json:"fieldPaths"`
}

type precondition struct {
	Exists bool `json:"exists"`
}

// resourceName is the full document path a :commit write addresses.
func (c *FirestoreClient) resourceName(collection, id string) string {
	return fmt.Sprintf("%s/%s/%s", c.basePath, collection, id)
}

// commit applies the writes as one atomic batch.
func (c *FirestoreClient) commit(ctx context.Context, writes []commitWrite) error {
	query := url.Values{}
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}
	return c.do(ctx, http.MethodPost, c.baseURL+":commit?"+query.Encode(), commitRequest{Writes: writes}, nil)
}

// runQuery shapes for the :runQuery endpoint.
type structuredQueryRequest struct {
	StructuredQuery structuredQuery `json:"structuredQuery"`
}

type structuredQuery struct {
	From    []collectionSelector `json:"from"`
	Where   *queryFilter         `json:"where,omitempty"`
	OrderBy []queryOrder         `json:"orderBy,omitempty"`
	Limit   int                  `json:"limit,omitempty"`
}

type collectionSelector struct {
	CollectionID string `json:"collectionId"`
}

type queryFilter struct {
	FieldFilter fieldFilter `json:"fieldFilter"`
}

type fieldFilter struct {
	Field fieldReference `json:"field"`
	Op    string         `json:"op"`
	Value firestoreValue `json:"value"`
}

type fieldReference struct {
	FieldPath string `json:"fieldPath"`
}

type queryOrder struct {
	Field     fieldReference `json:"field"`
	Direction string         `json:"direction"`
}

type runQueryResult struct {
	Document *firestoreDocument `json:"document,omitempty"`
	Error    *queryError        `json:"error,omitempty"`
}

type queryError struct {
	Code    int    `json:"code"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// runQuery executes a structured query filtered on userId, optionally ordered
// by orderField descending. Returns the decoded documents with their ids.
func (c *FirestoreClient) runQuery(ctx context.Context, collection, userID, orderField string, limit int) ([]map[string]interface{}, error) {
	query := url.Values{}
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}
	rawURL := c.baseURL + ":runQuery?" + query.Encode()

	sq := structuredQuery{
		From: []collectionSelector{{CollectionID: collection}},
		Where: &queryFilter{FieldFilter: fieldFilter{
			Field: fieldReference{FieldPath: "userId"},
			Op:    "EQUAL",
			Value: toValue(userID),
		}},
		Limit: limit,
	}
	if orderField != "" {
		sq.OrderBy = []queryOrder{{Field: fieldReference{FieldPath: orderField}, Direction: "DESCENDING"}}
	}

	var results []runQueryResult
	if err := c.do(ctx, http.MethodPost, rawURL, structuredQueryRequest{StructuredQuery: sq}, &results); err != nil {
		return nil, err
	}

	docs := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		if r.Error != nil {
			return nil, &IndexError{Status: r.Error.Status, Message: r.Error.Message}
		}
		if r.Document == nil {
			continue
		}
		fields := fromFields(r.Document.Fields)
		fields["id"] = documentID(r.Document.Name)
		docs = append(docs, fields)
	}
	return docs, nil
}

// IndexError surfaces a FAILED_PRECONDITION from :runQuery, which Firestore
// returns when an ordered query needs a composite index that does not exist.
type IndexError struct {
	Status  string
	Message string
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("firestore query error (%s): %s", e.Status, e.Message)
}

// RequiresIndex reports whether the error means a missing composite index.
func (e *IndexError) RequiresIndex() bool {
	return e.Status == "FAILED_PRECONDITION"
}

// documentID extracts the trailing id from a document resource name.
func documentID(name string) string {
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '/' {
			return name[i+1:]
		}
	}
	return name
}

const (
	collectionMeditations = "meditations"
	collectionUploads     = "imageUploads"
)

// Ping checks reachability with a cheap GET against the documents root.
// A 404 still proves the API answered, so it counts as reachable.
func (c *FirestoreClient) Ping(ctx context.Context) error {
	query := url.Values{}
	if c.apiKey != "" {
		query.Set("key", c.apiKey)
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil, nil); err != nil && !errors.Is(err, types.ErrNotFound) {
		return err
	}
	return nil
}

// SaveMeditation writes the meditation document and returns its id.
func (c *FirestoreClient) SaveMeditation(ctx context.Context, rec types.MeditationRecord) error {
	return c.setDocument(ctx, collectionMeditations, rec.ID, meditationFields(rec))
}

// CommitMeditation writes the meditation document and, when the record links
// an upload-tracking document, marks that upload analyzed in the same atomic
// commit, so the two documents never diverge. The upload update carries an
// exists precondition: a dangling upload id fails the whole batch instead of
// creating a stray half-document.
func (c *FirestoreClient) CommitMeditation(ctx context.Context, rec types.MeditationRecord) error {
	timer := logging.StartTimer(logging.CategoryStore, "firestore.CommitMeditation")
	defer timer.Stop()

	writes := []commitWrite{{
		Update: &firestoreDocument{
			Name:   c.resourceName(collectionMeditations, rec.ID),
			Fields: toFields(meditationFields(rec)),
		},
	}}
	if rec.UploadID != "" {
		updates := uploadAnalyzedUpdates(rec.ID, rec.VisionResult, rec.ClientTimestamp)
		paths := make([]string, 0, len(updates))
		for field := range updates {
			paths = append(paths, field)
		}
		sort.Strings(paths)
		writes = append(writes, commitWrite{
			Update: &firestoreDocument{
				Name:   c.resourceName(collectionUploads, rec.UploadID),
				Fields: toFields(updates),
			},
			UpdateMask:      &documentMask{FieldPaths: paths},
			CurrentDocument: &precondition{Exists: true},
		})
	}

	if err := c.commit(ctx, writes); err != nil {
		logging.StoreError("Batched write for %s failed: %v", rec.ID, err)
		return err
	}
	logging.StoreDebug("Committed %d-write batch for meditation %s", len(writes), rec.ID)
	return nil
}

// GetMeditation fetches a meditation by id; types.ErrNotFound when missing.
func (c *FirestoreClient) GetMeditation(ctx context.Context, id string) (types.MeditationRecord, error) {
	fields, err := c.getDocument(ctx, collectionMeditations, id)
	if err != nil {
		return types.MeditationRecord{}, err
	}
	rec := meditationFromFields(fields)
	rec.ID = id
	return rec, nil
}

// ListMeditations returns a user's meditations ordered newest first. When the
// ordered query fails for want of a composite index it retries unordered and
// sorts in memory, so a fresh project works before its indexes build.
func (c *FirestoreClient) ListMeditations(ctx context.Context, userID string) ([]types.MeditationRecord, error) {
	timer := logging.StartTimer(logging.CategoryStore, "firestore.ListMeditations")
	defer timer.Stop()

	docs, err := c.runQuery(ctx, collectionMeditations, userID, "clientTimestamp", 0)
	if err != nil {
		var indexErr *IndexError
		if errors.As(err, &indexErr) && indexErr.RequiresIndex() {
			logging.StoreWarn("Composite index missing for meditations query, falling back to unordered scan")
			docs, err = c.runQuery(ctx, collectionMeditations, userID, "", 0)
		}
		if err != nil {
			return nil, err
		}
	}

	records := make([]types.MeditationRecord, 0, len(docs))
	for _, fields := range docs {
		rec := meditationFromFields(fields)
		if id, ok := fields["id"].(string); ok {
			rec.ID = id
		}
		records = append(records, rec)
	}
	sortMeditationsDesc(records)
	return records, nil
}

// TrackUpload records an image upload with status "uploaded".
func (c *FirestoreClient) TrackUpload(ctx context.Context, rec types.UploadRecord) error {
	return c.setDocument(ctx, collectionUploads, rec.ID, uploadFields(rec))
}

// UpdateUploadAnalysis marks an upload as analyzed and attaches the analysis
// summary plus the id of the meditation generated from it. The read before
// the patch confirms the upload exists so a bad id fails loudly instead of
// creating a stray half-document.
func (c *FirestoreClient) UpdateUploadAnalysis(ctx context.Context, uploadID, meditationID string, analysis types.AnalysisRecord) error {
	if _, err := c.getDocument(ctx, collectionUploads, uploadID); err != nil {
		return fmt.Errorf("upload %s not found: %w", uploadID, err)
	}
	updates := uploadAnalyzedUpdates(meditationID, analysis, time.Now().UnixMilli())
	return c.updateDocument(ctx, collectionUploads, uploadID, updates)
}

// uploadAnalyzedUpdates builds the field set that flips an upload-tracking
// document to analyzed and links the meditation generated from it.
func uploadAnalyzedUpdates(meditationID string, analysis types.AnalysisRecord, clientAnalysisTime int64) map[string]interface{} {
	return map[string]interface{}{
		"status":             "analyzed",
		"analysisTime":       time.Now(),
		"clientAnalysisTime": clientAnalysisTime,
		"analysisData":       analysisMap(analysis),
		"meditationId":       meditationID,
	}
}

// RecentUploads returns a user's uploads ordered newest first, with the same
// missing-index fallback as ListMeditations.
func (c *FirestoreClient) RecentUploads(ctx context.Context, userID string, limit int) ([]types.UploadRecord, error) {
	docs, err := c.runQuery(ctx, collectionUploads, userID, "clientUploadTime", limit)
	if err != nil {
		var indexErr *IndexError
		if errors.As(err, &indexErr) && indexErr.RequiresIndex() {
			logging.StoreWarn("Composite index missing for uploads query, falling back to unordered scan")
			docs, err = c.runQuery(ctx, collectionUploads, userID, "", limit)
		}
		if err != nil {
			return nil, err
		}
	}

	records := make([]types.UploadRecord, 0, len(docs))
	for _, fields := range docs {
		rec := uploadFromFields(fields)
		if id, ok := fields["id"].(string); ok {
			rec.ID = id
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ClientUploadTime > records[j].ClientUploadTime
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// meditationFields builds the document written for a meditation.
func meditationFields(rec types.MeditationRecord) map[string]interface{} {
	fields := map[string]interface{}{
		"userId":            rec.UserID,
		"photoUrl":          rec.PhotoURL,
		"geminiGuidance":    rec.GeminiGuidance,
		"style":             rec.Style,
		"theme":             rec.Theme,
		"visionResult":      analysisMap(rec.VisionResult),
		"analysisComplete":  true,
		"analysisTimestamp": time.Now(),
		"clientTimestamp":   rec.ClientTimestamp,
		"createdAt":         rec.CreatedAt,
	}
	if rec.UploadID != "" {
		fields["uploadId"] = rec.UploadID
	}
	return fields
}

func analysisMap(a types.AnalysisRecord) map[string]interface{} {
	emotions := make(map[string]interface{}, len(a.Emotions))
	for name, lk := range a.Emotions {
		emotions[name] = string(lk)
	}
	colors := make([]interface{}, 0, len(a.DominantColors))
	for _, c := range a.DominantColors {
		colors = append(colors, map[string]interface{}{
			"hex":   c.Hex,
			"score": c.Score,
		})
	}
	return map[string]interface{}{
		"emotions":       emotions,
		"labels":         stringSlice(a.Labels),
		"objects":        stringSlice(a.Objects),
		"landmarks":      stringSlice(a.Landmarks),
		"dominantColors": colors,
		"colorEmotions":  a.ColorEmotions,
	}
}

func stringSlice(in []string) []interface{} {
	out := make([]interface{}, 0, len(in))
	for _, s := range in {
		out = append(out, s)
	}
	return out
}

func meditationFromFields(fields map[string]interface{}) types.MeditationRecord {
	rec := types.MeditationRecord{
		UserID:         asString(fields["userId"]),
		PhotoURL:       asString(fields["photoUrl"]),
		GeminiGuidance: asString(fields["geminiGuidance"]),
		Style:          asString(fields["style"]),
		Theme:          asString(fields["theme"]),
		UploadID:       asString(fields["uploadId"]),
	}
	rec.ClientTimestamp = asInt64(fields["clientTimestamp"])
	rec.CreatedAt = asString(fields["createdAt"])
	rec.Timestamp = asString(fields["timestamp"])
	if vr, ok := fields["visionResult"].(map[string]interface{}); ok {
		rec.VisionResult = analysisFromMap(vr)
	}
	return rec
}

func analysisFromMap(m map[string]interface{}) types.AnalysisRecord {
	a := types.AnalysisRecord{
		Labels:        asStrings(m["labels"]),
		Objects:       asStrings(m["objects"]),
		Landmarks:     asStrings(m["landmarks"]),
		ColorEmotions: asString(m["colorEmotions"]),
	}
	if emotions, ok := m["emotions"].(map[string]interface{}); ok {
		a.Emotions = make(map[string]types.Likelihood, len(emotions))
		for name, v := range emotions {
			a.Emotions[name] = types.Likelihood(asString(v))
		}
	}
	if colors, ok := m["dominantColors"].([]interface{}); ok {
		for _, item := range colors {
			cm, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			a.DominantColors = append(a.DominantColors, types.Color{
				Hex:   asString(cm["hex"]),
				Score: asFloat(cm["score"]),
			})
		}
	}
	return a
}

func uploadFields(rec types.UploadRecord) map[string]interface{} {
	status := rec.Status
	if status == "" {
		status = "uploaded"
	}
	return map[string]interface{}{
		"userId":           rec.UserID,
		"imageSource":      rec.ImageSource,
		"status":           status,
		"uploadTime":       time.Now(),
		"clientUploadTime": rec.ClientUploadTime,
		"metadata": map[string]interface{}{
			"fileType": rec.FileType,
			"fileName": rec.FileName,
			"fileSize": rec.FileSize,
		},
	}
}

func uploadFromFields(fields map[string]interface{}) types.UploadRecord {
	rec := types.UploadRecord{
		UserID:       asString(fields["userId"]),
		ImageSource:  asString(fields["imageSource"]),
		Status:       asString(fields["status"]),
		UploadTime:   asString(fields["uploadTime"]),
		MeditationID: asString(fields["meditationId"]),
	}
	rec.ClientUploadTime = asInt64(fields["clientUploadTime"])
	if metadata, ok := fields["metadata"].(map[string]interface{}); ok {
		rec.FileType = asString(metadata["fileType"])
		rec.FileName = asString(metadata["fileName"])
		rec.FileSize = asInt64(metadata["fileSize"])
	}
	if analysis, ok := fields["analysisData"].(map[string]interface{}); ok {
		a := analysisFromMap(analysis)
		rec.AnalysisData = &a
	}
	return rec
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

func asInt64(v interface{}) int64 {
	switch x := v.(type) {
	case float64:
		return int64(x)
	case int64:
		return x
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	default:
		return 0
	}
}

func asStrings(v interface{}) []string {
	items, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	appanalysis "github.com/hafizhrmd/cropscan/internal/application/analysis"
	domain "github.com/hafizhrmd/cropscan/internal/domain/analysis"
)

type stubClassifier struct {
	cls domain.Classification
	err error
}

func (s *stubClassifier) Classify(ctx context.Context, image []byte, contentType string) (domain.Classification, error) {
	return s.cls, s.err
}

type memRepo struct {
	records []*domain.Analysis
}

func (r *memRepo) Init(ctx context.Context) error { return nil }

func (r *memRepo) Save(ctx context.Context, a *domain.Analysis) error {
	r.records = append(r.records, a)
	return nil
}

func (r *memRepo) ListAll(ctx context.Context) ([]*domain.Analysis, error) {
	out := append([]*domain.Analysis{}, r.records...)
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, nil
}

func (r *memRepo) DeleteAll(ctx context.Context) error {
	r.records = nil
	return nil
}

type memStore struct {
	files map[string][]byte
}

func (s *memStore) Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.files[filename] = data
	return nil
}

func (s *memStore) Open(ctx context.Context, filename string) (io.ReadCloser, error) {
	data, ok := s.files[filename]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", filename, fs.ErrNotExist)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type tickingClock struct {
	t time.Time
}

func (c *tickingClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestRouter(cls domain.Classification) (http.Handler, *memRepo, *memStore) {
	repo := &memRepo{}
	store := &memStore{files: map[string][]byte{}}
	svc := &appanalysis.Service{
		Repo:       repo,
		Classifier: &stubClassifier{cls: cls},
		Images:     store,
		Clock:      &tickingClock{t: time.UnixMilli(1700000000000)},
	}
	return NewRouter(svc), repo, store
}

func blightClassification() domain.Classification {
	return domain.Classification{
		LeafName:    "Tomato",
		Status:      "Affected",
		Severity:    "30%",
		DiseaseName: "Blight",
		Reasoning:   "Fungal infection.",
		Confidence:  0.87,
		Succeeded:   true,
	}
}

func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRootEndpoint(t *testing.T) {
	router, _, _ := newTestRouter(blightClassification())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Crop Disease Analysis API is running", body["message"])
}

func TestAnalyzeEndpoint(t *testing.T) {
	router, repo, _ := newTestRouter(blightClassification())

	buf, contentType := multipartUpload(t, "file", "leaf.jpg", []byte("jpegbytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", buf)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		ID          string  `json:"id"`
		Filename    string  `json:"filename"`
		DiseaseName string  `json:"disease_name"`
		IsHealthy   bool    `json:"is_healthy"`
		Confidence  float64 `json:"confidence"`
		RawAnalysis struct {
			LeafName  string `json:"leaf_name"`
			Succeeded bool   `json:"succeeded"`
		} `json:"raw_analysis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.NotEmpty(t, body.ID)
	require.Equal(t, "Blight", body.DiseaseName)
	require.False(t, body.IsHealthy)
	require.Equal(t, 0.87, body.Confidence)
	require.Equal(t, "Tomato", body.RawAnalysis.LeafName)
	require.True(t, body.RawAnalysis.Succeeded)

	require.Len(t, repo.records, 1)
	require.Equal(t, body.ID, string(repo.records[0].ID))
}

func TestAnalyzeMissingFile(t *testing.T) {
	router, _, _ := newTestRouter(blightClassification())

	buf, contentType := multipartUpload(t, "image", "leaf.jpg", []byte("jpegbytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", buf)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryEndpointNewestFirst(t *testing.T) {
	router, _, _ := newTestRouter(blightClassification())

	for i := 0; i < 3; i++ {
		buf, contentType := multipartUpload(t, "file", "leaf.jpg", []byte("jpegbytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/analyze", buf)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []*domain.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		require.GreaterOrEqual(t, list[i-1].Timestamp, list[i].Timestamp)
	}
}

func TestClearHistoryEndpoint(t *testing.T) {
	router, repo, _ := newTestRouter(blightClassification())
	repo.records = append(repo.records, &domain.Analysis{ID: "id-1", Timestamp: 1000})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/history", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "History cleared", body["message"])

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestUploadServesStoredImage(t *testing.T) {
	router, _, store := newTestRouter(blightClassification())
	store.files["abc.jpg"] = []byte("jpegbytes")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/abc.jpg", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "jpegbytes", rec.Body.String())
	require.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
}

func TestUploadNotFound(t *testing.T) {
	router, _, _ := newTestRouter(blightClassification())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/nope.jpg", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyzeSentinelStillReturns200(t *testing.T) {
	repo := &memRepo{}
	svc := &appanalysis.Service{
		Repo:       repo,
		Classifier: &stubClassifier{cls: domain.ErrorClassification(), err: fmt.Errorf("service down")},
		Images:     &memStore{files: map[string][]byte{}},
		Clock:      &tickingClock{t: time.UnixMilli(1700000000000)},
	}
	router := NewRouter(svc)

	buf, contentType := multipartUpload(t, "file", "leaf.jpg", []byte("jpegbytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", buf)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		DiseaseName string  `json:"disease_name"`
		Confidence  float64 `json:"confidence"`
		RawAnalysis struct {
			Succeeded bool `json:"succeeded"`
		} `json:"raw_analysis"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Error", body.DiseaseName)
	require.Equal(t, 0.0, body.Confidence)
	require.False(t, body.RawAnalysis.Succeeded)
	require.Len(t, repo.records, 1)
}

package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/EgorLis/my-videos/internal/domain"
	"github.com/EgorLis/my-videos/internal/infra/storage/disk"
	mediasvc "github.com/EgorLis/my-videos/internal/media"
	"github.com/EgorLis/my-videos/internal/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeService отдаёт заранее заданные объекты; данные лежат в blobs.
type fakeService struct {
	objs  []domain.StoredObject
	blobs map[string][]byte
}

func (f *fakeService) Upload(context.Context, io.Reader, string) (domain.StoredObject, error) {
	return domain.StoredObject{}, errors.New("not supported")
}

func (f *fakeService) Latest(context.Context) (domain.StoredObject, error) {
	obj, ok := domain.Latest(f.objs)
	if !ok {
		return domain.StoredObject{}, domain.ErrNotFound
	}
	return obj, nil
}

func (f *fakeService) List(context.Context) ([]domain.StoredObject, error) {
	out := append([]domain.StoredObject(nil), f.objs...)
	domain.SortNewestFirst(out)
	return out, nil
}

func (f *fakeService) Stat(_ context.Context, id string) (int64, error) {
	b, ok := f.blobs[id]
	if !ok {
		return 0, domain.ErrNotFound
	}
	return int64(len(b)), nil
}

func (f *fakeService) Open(_ context.Context, id string, start, end int64) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.blobs[id][start : end+1])), nil
}

type streamRecord struct {
	status  int
	written int64
	outcome string
}

type recordingObserver struct{ got []streamRecord }

func (o *recordingObserver) RecordStream(status int, written int64, outcome string) {
	o.got = append(o.got, streamRecord{status, written, outcome})
}

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// Два объекта, B свежее A.
func twoObjects() *fakeService {
	return &fakeService{
		objs: []domain.StoredObject{
			{ID: "A", SizeBytes: 3, CreatedAt: t0},
			{ID: "B", SizeBytes: 10, CreatedAt: t0.Add(time.Minute)},
		},
		blobs: map[string][]byte{
			"A": []byte("abc"),
			"B": []byte("0123456789"),
		},
	}
}

func newHandler(svc *fakeService) (*Handler, *recordingObserver) {
	obs := &recordingObserver{}
	return &Handler{
		Log:         zap.NewNop().Sugar(),
		Media:       svc,
		Streamer:    stream.New(svc, 4),
		Metrics:     obs,
		ContentType: "video/webm",
	}, obs
}

func routes(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload", h.Upload)
	mux.HandleFunc("GET /get-latest-video", h.Latest)
	mux.HandleFunc("GET /uploads/{filename}", h.File)
	mux.HandleFunc("GET /videos", h.List)
	return mux
}

func get(t *testing.T, mux http.Handler, method, target, rng string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if rng != "" {
		req.Header.Set("Range", rng)
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestLatestRangeScenario(t *testing.T) {
	h, obs := newHandler(twoObjects())
	mux := routes(h)

	rec := get(t, mux, http.MethodGet, "/get-latest-video", "bytes=2-5")
	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "2345", rec.Body.String())
	assert.Equal(t, "bytes 2-5/10", rec.Header().Get("Content-Range"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Equal(t, "video/webm", rec.Header().Get("Content-Type"))

	rec = get(t, mux, http.MethodGet, "/get-latest-video", "bytes=8-20")
	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "89", rec.Body.String())
	assert.Equal(t, "bytes 8-9/10", rec.Header().Get("Content-Range"))

	rec = get(t, mux, http.MethodGet, "/get-latest-video", "bytes=10-12")
	require.Equal(t, http.StatusRequestedRangeNotSatisfiable, rec.Code)
	assert.Equal(t, "bytes */10", rec.Header().Get("Content-Range"))

	assert.Equal(t, []streamRecord{
		{http.StatusPartialContent, 4, outcomeComplete},
		{http.StatusPartialContent, 2, outcomeComplete},
		{http.StatusRequestedRangeNotSatisfiable, 0, outcomeRejected},
	}, obs.got)
}

func TestLatestWithoutRange(t *testing.T) {
	h, _ := newHandler(twoObjects())
	rec := get(t, routes(h), http.MethodGet, "/get-latest-video", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "0123456789", rec.Body.String())
	assert.Equal(t, "10", rec.Header().Get("Content-Length"))
	assert.Equal(t, "bytes", rec.Header().Get("Accept-Ranges"))
	assert.Empty(t, rec.Header().Get("Content-Range"))
}

func TestLatestSuffixRange(t *testing.T) {
	h, _ := newHandler(twoObjects())
	rec := get(t, routes(h), http.MethodGet, "/get-latest-video", "bytes=-3")

	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "789", rec.Body.String())
	assert.Equal(t, "bytes 7-9/10", rec.Header().Get("Content-Range"))
}

func TestLatestMalformedRange(t *testing.T) {
	h, _ := newHandler(twoObjects())
	for _, rng := range []string{"items=0-1", "bytes=a-b", "bytes=1-2,4-5", "bytes=5"} {
		rec := get(t, routes(h), http.MethodGet, "/get-latest-video", rng)
		assert.Equal(t, http.StatusBadRequest, rec.Code, rng)
	}
}

func TestLatestEmptyStore(t *testing.T) {
	h, obs := newHandler(&fakeService{blobs: map[string][]byte{}})
	rec := get(t, routes(h), http.MethodGet, "/get-latest-video", "bytes=0-1")

	require.Equal(t, http.StatusNotFound, rec.Code)
	var env domain.APIEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, domain.ErrCodeNotFound, env.Error.Code)
	assert.Equal(t, []streamRecord{{http.StatusNotFound, 0, outcomeRejected}}, obs.got)
}

func TestLatestHead(t *testing.T) {
	h, _ := newHandler(twoObjects())
	rec := get(t, routes(h), http.MethodHead, "/get-latest-video", "bytes=0-3")

	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bytes 0-3/10", rec.Header().Get("Content-Range"))
	assert.Equal(t, "4", rec.Header().Get("Content-Length"))
	assert.Zero(t, rec.Body.Len())
}

func TestFileByName(t *testing.T) {
	svc := twoObjects()
	svc.blobs["C"] = []byte("png-bytes")
	h, _ := newHandler(svc)
	mux := routes(h)

	rec := get(t, mux, http.MethodGet, "/uploads/A", "bytes=1-")
	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, "bc", rec.Body.String())
	assert.Equal(t, "video/webm", rec.Header().Get("Content-Type"))

	rec = get(t, mux, http.MethodGet, "/uploads/C.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))

	rec = get(t, mux, http.MethodGet, "/uploads/missing.webm", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestList(t *testing.T) {
	h, _ := newHandler(twoObjects())
	rec := get(t, routes(h), http.MethodGet, "/videos", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var env struct {
		Data struct {
			Videos []domain.FileResult `json:"videos"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data.Videos, 2)
	assert.Equal(t, "B", env.Data.Videos[0].ID)
	assert.Equal(t, "/uploads/B", env.Data.Videos[0].URL)
	assert.Equal(t, "A", env.Data.Videos[1].ID)
}

// failingStreamer согласует окно, но обрывается на середине копирования.
type failingStreamer struct{}

func (failingStreamer) Prepare(context.Context, string, string) (stream.Plan, error) {
	return stream.Plan{ID: "B", Window: stream.Window{Start: 0, End: 9, Total: 10}}, nil
}

func (failingStreamer) Copy(_ context.Context, dst io.Writer, _ stream.Plan) (int64, error) {
	n, _ := dst.Write([]byte("0123"))
	return int64(n), errors.New("disk read failed")
}

func TestMidStreamFailureAbortsConnection(t *testing.T) {
	h, obs := newHandler(twoObjects())
	h.Streamer = failingStreamer{}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/get-latest-video", nil)
	assert.PanicsWithValue(t, http.ErrAbortHandler, func() { h.Latest(rec, req) })
	assert.Equal(t, []streamRecord{{http.StatusOK, 4, outcomeAborted}}, obs.got)
}

func TestClientDisconnectStopsQuietly(t *testing.T) {
	h, obs := newHandler(twoObjects())
	h.Streamer = failingStreamer{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/get-latest-video", nil).WithContext(ctx)
	assert.NotPanics(t, func() { h.Latest(rec, req) })
	assert.Equal(t, outcomeAborted, obs.got[0].outcome)
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "ignored"))
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

// Реальный дисковый стор: загрузка, затем latest отдаёт те же байты.
func diskHandler(t *testing.T) *Handler {
	t.Helper()
	st, err := disk.New(t.TempDir(), zap.NewNop().Sugar())
	require.NoError(t, err)
	svc := mediasvc.NewService(st, zap.NewNop().Sugar(), mediasvc.Options{})
	return &Handler{
		Log:         zap.NewNop().Sugar(),
		Media:       svc,
		Streamer:    stream.New(st, 8),
		ContentType: "video/webm",
	}
}

func TestUploadThenLatest(t *testing.T) {
	h := diskHandler(t)
	mux := routes(h)
	payload := []byte(strings.Repeat("webm-frame;", 20))

	body, ct := multipartBody(t, "file", "clip.webm", payload)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res domain.UploadResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "File uploaded successfully!", res.Message)
	assert.Equal(t, "clip.webm", res.File.OriginalName)
	assert.Equal(t, int64(len(payload)), res.File.Size)
	assert.True(t, strings.HasSuffix(res.File.Filename, ".webm"))
	assert.Equal(t, "/uploads/"+res.File.Filename, res.File.URL)

	rec = get(t, mux, http.MethodGet, "/get-latest-video", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, payload, rec.Body.Bytes())

	rec = get(t, mux, http.MethodGet, res.File.URL, "bytes=0-3")
	require.Equal(t, http.StatusPartialContent, rec.Code)
	assert.Equal(t, payload[:4], rec.Body.Bytes())
}

func TestUploadRejectsBadRequests(t *testing.T) {
	h := diskHandler(t)
	mux := routes(h)

	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("raw"))
	req.Header.Set("Content-Type", "application/octet-stream")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body, ct := multipartBody(t, "other", "clip.webm", []byte("data"))
	req = httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// после отказов latest всё ещё пуст
	rec = get(t, mux, http.MethodGet, "/get-latest-video", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadTooLarge(t *testing.T) {
	h := diskHandler(t)

	body, ct := multipartBody(t, "file", "big.webm", bytes.Repeat([]byte{'x'}, 4096))
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	req.Body = http.MaxBytesReader(rec, req.Body, 1024)
	h.Upload(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	rec = get(t, routes(h), http.MethodGet, "/get-latest-video", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

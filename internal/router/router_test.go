package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inventapro/internal/config"
	"inventapro/internal/dto"
	"inventapro/internal/infra"
	"inventapro/internal/middleware"
	"inventapro/internal/service"
	"inventapro/internal/worker"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// ── Service fakes ─────────────────────────────────────────────────────────────

type fakeImports struct {
	res      *service.ImportResult
	err      error
	opts     service.ImportOptions
	rowsRead int
}

func (f *fakeImports) Import(_ context.Context, src infra.RowReader, opts service.ImportOptions) (*service.ImportResult, error) {
	f.opts = opts
	for {
		rows, err := src.NextChunk(1)
		f.rowsRead += len(rows)
		if err != nil {
			break
		}
	}
	return f.res, f.err
}

func (f *fakeImports) RecentLogs(context.Context, int) ([]dto.ImportLogResponse, error) {
	return []dto.ImportLogResponse{{ID: "log-1", FileName: "a.csv"}}, nil
}

type fakeJobs struct {
	fileName string
	data     []byte
	notify   string
	job      *dto.ImportJobResponse
}

func (f *fakeJobs) Enqueue(_ context.Context, fileName string, data []byte, notify string) (*dto.ImportJobResponse, error) {
	f.fileName, f.data, f.notify = fileName, data, notify
	return f.job, nil
}

func (f *fakeJobs) Status(_ context.Context, id uuid.UUID) (*dto.ImportJobResponse, error) {
	if f.job == nil || f.job.JobID != id.String() {
		return nil, service.ErrImportJobNotFound
	}
	return f.job, nil
}

func (f *fakeJobs) ProcessImportJob(context.Context, worker.ImportJobPayload) error { return nil }

type fakeProducts struct{ known uuid.UUID }

func (f *fakeProducts) List(_ context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	return &dto.ProductListResponse{Data: []dto.ProductResponse{{Code: "P-1"}}, Total: 1, Page: filter.Page, Limit: filter.Limit}, nil
}

func (f *fakeProducts) GetByID(_ context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	if id != f.known {
		return nil, service.ErrProductNotFound
	}
	return &dto.ProductResponse{ID: id.String(), Code: "P-1"}, nil
}

func (f *fakeProducts) BarcodePNG(_ context.Context, id uuid.UUID) ([]byte, error) {
	if id != f.known {
		return nil, service.ErrProductNotFound
	}
	return []byte("\x89PNG"), nil
}

func (f *fakeProducts) BarcodeLabelPDF(_ context.Context, id uuid.UUID) ([]byte, error) {
	if id != f.known {
		return nil, errors.New("storage down")
	}
	return []byte("%PDF-1.3"), nil
}

type fakeStock struct{ got dto.StockMovementFilter }

func (f *fakeStock) ListMovements(_ context.Context, filter dto.StockMovementFilter) (*dto.StockMovementListResponse, error) {
	f.got = filter
	return &dto.StockMovementListResponse{Page: filter.Page, Limit: filter.Limit}, nil
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

// ── Setup ─────────────────────────────────────────────────────────────────────

type testEnv struct {
	engine   *gin.Engine
	mr       *miniredis.Miniredis
	rdb      *redis.Client
	imports  *fakeImports
	jobs     *fakeJobs
	products *fakeProducts
	stock    *fakeStock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	env := &testEnv{
		mr:       mr,
		rdb:      rdb,
		imports:  &fakeImports{res: &service.ImportResult{FileName: "p.csv", TotalRows: 1, Imported: 1}},
		jobs:     &fakeJobs{},
		products: &fakeProducts{known: uuid.New()},
		stock:    &fakeStock{},
	}
	cfg := &config.Config{
		Env:               "test",
		JWTSecret:         testSecret,
		ImportTimeout:     time.Minute,
		ImportMaxUploadMB: 1,
	}
	env.engine = New(cfg, Deps{
		DB:       fakePinger{},
		Redis:    rdb,
		Imports:  env.imports,
		Jobs:     env.jobs,
		Products: env.products,
		Stock:    env.stock,
	})
	return env
}

func token(t *testing.T, role string) string {
	t.Helper()
	claims := middleware.JWTClaims{
		UserID:   uuid.NewString(),
		Username: "tester",
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (e *testEnv) do(t *testing.T, req *http.Request, role string) *httptest.ResponseRecorder {
	t.Helper()
	if role != "" {
		req.Header.Set("Authorization", "Bearer "+token(t, role))
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func uploadRequest(t *testing.T, target, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

var sampleCSV = []byte("name,code\nCola,P-1\n")

// ── Auth ──────────────────────────────────────────────────────────────────────

func TestAuth_MissingToken(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products", nil), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_WrongSecret(t *testing.T) {
	env := newTestEnv(t)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.JWTClaims{Role: middleware.RoleAdmin}).SignedString([]byte("other"))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := env.do(t, req, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ViewerCannotImport(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, uploadRequest(t, "/v1/products/import", "p.csv", sampleCSV), middleware.RoleViewer)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ── Import ────────────────────────────────────────────────────────────────────

func TestImport_Success(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, uploadRequest(t, "/v1/products/import", "p.csv", sampleCSV), middleware.RoleAdmin)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp dto.ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, service.MsgImportSucceeded, resp.Message)
	assert.Equal(t, 1, env.imports.rowsRead)
	assert.Equal(t, "p.csv", env.imports.opts.FileName)
	assert.Equal(t, time.Minute, env.imports.opts.Timeout)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestImport_RowErrorsReturn422(t *testing.T) {
	env := newTestEnv(t)
	env.imports.res = &service.ImportResult{
		TotalRows: 2,
		Imported:  1,
		Errors:    []service.RowError{{Row: 2, Line: 3, Kind: "UnitNotFound", Message: "Base unit kg not found."}},
	}

	w := env.do(t, uploadRequest(t, "/v1/products/import", "p.csv", sampleCSV), middleware.RoleAdmin)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp dto.ImportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, service.MsgImportWithErrors, resp.Message)
	assert.Equal(t, []string{"Row 2: Base unit kg not found."}, resp.Errors)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "UnitNotFound", resp.Rows[0].Kind)
}

func TestImport_TimeoutReturns504WithPartialResult(t *testing.T) {
	env := newTestEnv(t)
	env.imports.res = &service.ImportResult{TotalRows: 1, Imported: 1, TimedOut: true}
	env.imports.err = service.ErrImportTimeout

	w := env.do(t, uploadRequest(t, "/v1/products/import", "p.csv", sampleCSV), middleware.RoleAdmin)

	require.Equal(t, http.StatusGatewayTimeout, w.Code)
	assert.Contains(t, w.Body.String(), `"imported":1`)
	assert.Contains(t, w.Body.String(), `"timed_out":true`)
}

func TestImport_MissingFile(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/products/import", nil)
	w := env.do(t, req, middleware.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImport_UnsupportedExtension(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, uploadRequest(t, "/v1/products/import", "p.pdf", []byte("%PDF")), middleware.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Zero(t, env.imports.rowsRead)
}

func TestImport_TooLarge(t *testing.T) {
	env := newTestEnv(t)
	big := bytes.Repeat([]byte("x"), 2<<20)
	w := env.do(t, uploadRequest(t, "/v1/products/import", "p.csv", big), middleware.RoleAdmin)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestImport_AsyncEnqueues(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.New()
	env.jobs.job = &dto.ImportJobResponse{JobID: id.String(), Status: service.JobQueued, FileName: "p.csv"}

	w := env.do(t, uploadRequest(t, "/v1/products/import?async=true&notify_email=ops@example.com", "p.csv", sampleCSV), middleware.RoleAdmin)

	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, "/v1/products/import/jobs/"+id.String(), w.Header().Get("Location"))
	assert.Equal(t, "p.csv", env.jobs.fileName)
	assert.Equal(t, sampleCSV, env.jobs.data)
	assert.Equal(t, "ops@example.com", env.jobs.notify)
	assert.Zero(t, env.imports.rowsRead)
}

func TestImport_AsyncRejectsBadEmail(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, uploadRequest(t, "/v1/products/import?async=true&notify_email=nope", "p.csv", sampleCSV), middleware.RoleAdmin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestImportJob_Status(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.New()
	env.jobs.job = &dto.ImportJobResponse{JobID: id.String(), Status: service.JobCompleted}

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products/import/jobs/"+id.String(), nil), middleware.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"completed"`)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products/import/jobs/"+uuid.NewString(), nil), middleware.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products/import/jobs/not-a-uuid", nil), middleware.RoleAdmin)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportTemplate(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products/import/template?format=csv", nil), middleware.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "product-import-template.csv")
	assert.Contains(t, w.Body.String(), "name,code,category,brand")

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products/import/template", nil), middleware.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products/import/template?format=ods", nil), middleware.RoleAdmin)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestImportLogs(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products/import/logs", nil), middleware.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"file_name":"a.csv"`)
}

func TestDeadLetters(t *testing.T) {
	env := newTestEnv(t)
	worker.PushDeadLetter(context.Background(), env.rdb, worker.DeadLetter{
		Queue:   worker.QueueProductImport,
		Type:    worker.JobTypeProductImport,
		Payload: json.RawMessage(`{}`),
		Reason:  "boom",
	})

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products/import/dead-letters", nil), middleware.RoleAdmin)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"reason":"boom"`)
}

// ── Products & stock ─────────────────────────────────────────────────────────

func TestProducts_ListAndGet(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products?page=2&limit=5", nil), middleware.RoleViewer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"page":2`)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products/"+env.products.known.String(), nil), middleware.RoleViewer)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products/"+uuid.NewString(), nil), middleware.RoleViewer)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProducts_ListRejectsBadLimit(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products?limit=1000", nil), middleware.RoleViewer)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestProducts_BarcodeAndLabel(t *testing.T) {
	env := newTestEnv(t)
	id := env.products.known.String()

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products/"+id+"/barcode", nil), middleware.RoleViewer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products/"+id+"/barcode-label", nil), middleware.RoleViewer)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
}

func TestProducts_InternalErrorIsMasked(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/products/"+uuid.NewString()+"/barcode-label", nil), middleware.RoleViewer)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "storage down")
}

func TestStockMovements(t *testing.T) {
	env := newTestEnv(t)
	pid := uuid.NewString()

	w := env.do(t, httptest.NewRequest(http.MethodGet, "/v1/stock/movements?product_id="+pid, nil), middleware.RoleManager)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pid, env.stock.got.ProductID)
	assert.Equal(t, 100, env.stock.got.Limit)

	w = env.do(t, httptest.NewRequest(http.MethodGet, "/v1/stock/movements", nil), middleware.RoleViewer)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// ── Health ────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil), "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(io.Reader(w.Body)).Decode(&body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "local", body["storage"])
	assert.EqualValues(t, 0, body["import_dlq"])
}

func TestHealth_RedisDown(t *testing.T) {
	env := newTestEnv(t)
	env.mr.SetError("LOADING Redis is loading the dataset in memory")
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/health", nil), "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestSwaggerUI_OnlyOutsideProduction(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "swagger-ui")

	t.Cleanup(func() { gin.SetMode(gin.TestMode) })
	prod := New(&config.Config{Env: "production", JWTSecret: testSecret}, Deps{DB: fakePinger{}, Redis: env.rdb})
	w = httptest.NewRecorder()
	prod.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/swagger/index.html", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

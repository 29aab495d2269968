package fraud

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mbd888/fraudlens/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(svc *Service) *gin.Engine {
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/v1"))
	return r
}

func postCSV(t *testing.T, r *gin.Engine, filename, contents string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(contents))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/fraud/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestUploadHandlerReturnsSnapshot(t *testing.T) {
	svc, _, _ := newTestService()
	r := setupRouter(svc)

	w := postCSV(t, r, "tx.csv", "transaction_id,amount\ntx1,100\ntx2,200\n")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	body := decode(t, w)
	summary := body["summary"].(map[string]interface{})
	assert.Equal(t, float64(2), summary["total_transactions"])
	assert.NotNil(t, body["chart_data"])
	assert.NotNil(t, body["transactions"])
}

func TestUploadHandlerMissingFileField(t *testing.T) {
	svc, _, _ := newTestService()
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/v1/fraud/upload", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_request", decode(t, w)["error"])
}

func TestUploadHandlerErrorCodes(t *testing.T) {
	cases := []struct {
		name     string
		filename string
		contents string
		code     string
	}{
		{"not csv", "tx.txt", "transaction_id,amount\ntx1,100\n", "not_csv"},
		{"empty file", "tx.csv", "", "empty_file"},
		{"header only", "tx.csv", "transaction_id,amount\n", "empty_file"},
		{"missing amount", "tx.csv", "transaction_id,notes\ntx1,hi\n", "missing_amount_column"},
		{"malformed", "tx.csv", "transaction_id,amount\n\"tx1,100\n", "malformed_csv"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newTestService()
			r := setupRouter(svc)

			w := postCSV(t, r, tc.filename, tc.contents)
			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decode(t, w)
			assert.Equal(t, tc.code, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestInsightsHandler(t *testing.T) {
	svc, _, _ := newTestService()
	r := setupRouter(svc)

	postCSV(t, r, "tx.csv",
		"transaction_id,amount,timestamp,merchant_category\n"+
			"tx1,100,2024-03-01 14:00:00,groceries\n"+
			"tx2,90000,2024-03-01 02:30:00,crypto\n")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/fraud/insights", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "snapshot", body["source"])
	assert.Equal(t, float64(2), body["total_transactions"])
}

func TestStatusHandler(t *testing.T) {
	svc, _, _ := newTestService()
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/v1/fraud/status", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["has_data"])
	assert.Equal(t, float64(0), body["row_count"])

	postCSV(t, r, "tx.csv", "transaction_id,amount\ntx1,100\n")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/v1/fraud/status", nil))
	body = decode(t, w)
	assert.Equal(t, true, body["has_data"])
	assert.Equal(t, float64(1), body["row_count"])
}

func TestChartHandler(t *testing.T) {
	svc, _, _ := newTestService()
	r := setupRouter(svc)

	postCSV(t, r, "tx.csv", "transaction_id,amount,timestamp\ntx1,100,2024-03-01 10:00:00\n")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/v1/fraud/chart", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	dist := body["risk_distribution"].([]interface{})
	require.Len(t, dist, 3)
	first := dist[0].(map[string]interface{})
	assert.Equal(t, "Safe", first["name"])
	assert.Equal(t, "#22c55e", first["color"])
}

func TestExplainHandlerFound(t *testing.T) {
	svc, store, _ := newTestService()
	r := setupRouter(svc)

	require.NoError(t, store.ReplaceAll(context.Background(), []Record{
		{TransactionID: "tx1", Amount: 100},
		{TransactionID: "big1", Amount: 5000, IsFraud: true},
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/v1/fraud/explain/big1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, true, body["found"])
	assert.Equal(t, "big1", body["transaction_id"])
	assert.NotEmpty(t, body["points"])
}

func TestExplainHandlerNotFound(t *testing.T) {
	svc, _, _ := newTestService()
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/v1/fraud/explain/nope", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["found"])
	assert.Equal(t, "nope", body["transaction_id"])
}

func TestClearHandler(t *testing.T) {
	svc, store, _ := newTestService()
	r := setupRouter(svc)

	postCSV(t, r, "tx.csv", "transaction_id,amount\ntx1,100\n")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("DELETE", "/v1/fraud/records", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Data cleared successfully", decode(t, w)["message"])

	n, err := store.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

// failingStore surfaces storage errors to the HTTP layer as 500s.
type failingStore struct{ MemoryStore }

func (f *failingStore) Count(ctx context.Context) (int, error) {
	return 0, assert.AnError
}

func TestStatusHandlerStoreError(t *testing.T) {
	svc := NewService(&failingStore{}, snapshot.NewMemoryStore(), slog.Default())
	r := setupRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/v1/fraud/status", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal_error", decode(t, w)["error"])
}

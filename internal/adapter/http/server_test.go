package http_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	httpadapter "github.com/powerviz/plant-data-api/internal/adapter/http"
	"github.com/powerviz/plant-data-api/internal/config"
	"github.com/powerviz/plant-data-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubService struct {
	ingestResult domain.UploadResult
	ingestErr    error
	plants       []domain.PlantAggregate
	states       []string
	readyErr     error

	gotUserID   string
	gotFilename string
	gotState    string
	gotLimit    int
}

func (s *stubService) Ingest(_ context.Context, userID, filename string, _ []byte) (domain.UploadResult, error) {
	s.gotUserID = userID
	s.gotFilename = filename
	return s.ingestResult, s.ingestErr
}

func (s *stubService) TopPlants(_ context.Context, state string, limit int) []domain.PlantAggregate {
	s.gotState = state
	s.gotLimit = limit
	return s.plants
}

func (s *stubService) States(_ context.Context) []string { return s.states }

func (s *stubService) CheckReadiness(_ context.Context) error { return s.readyErr }

type nopSink struct{}

func (nopSink) Record(_ context.Context, _ domain.AuditEvent) error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr:           ":0",
		DefaultLimit:       10,
		CORSAllowedOrigins: []string{"http://localhost:5173"},
	}
}

func newTestServer(t *testing.T, svc *stubService, cfg *config.Config) *httpadapter.Server {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)
	srv, err := httpadapter.NewServer(cfg, svc, nopSink{}, logger)
	require.NoError(t, err)
	return srv
}

func multipartBody(t *testing.T, field, filename string, contents []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(contents)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestRootWelcome(t *testing.T) {
	srv := newTestServer(t, &stubService{}, testConfig())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Welcome to the Power Plant API", body["message"])
}

func TestHealthzReturns200(t *testing.T) {
	srv := newTestServer(t, &stubService{}, testConfig())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyz(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		srv := newTestServer(t, &stubService{}, testConfig())
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("store unreachable", func(t *testing.T) {
		srv := newTestServer(t, &stubService{readyErr: fmt.Errorf("bucket gone")}, testConfig())
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not ready", body["status"])
		assert.Equal(t, "bucket gone", body["error"])
	})
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubService{}, testConfig())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUpload(t *testing.T) {
	t.Run("success returns upload summary", func(t *testing.T) {
		svc := &stubService{ingestResult: domain.UploadResult{
			ObjectName: "cleaned_gen23.csv",
			Status:     "uploaded",
			Records:    42,
		}}
		srv := newTestServer(t, svc, testConfig())

		body, contentType := multipartBody(t, "file", "gen23.csv", []byte("GENID\n"))
		req := httptest.NewRequest(http.MethodPost, "/api/power-plants/upload", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("X-API-Key", "supersecretkey")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "cleaned_gen23.csv", resp["filename"])
		assert.Equal(t, "uploaded", resp["status"])
		assert.Equal(t, float64(42), resp["records_count"])

		assert.Equal(t, "gen23.csv", svc.gotFilename)
		assert.Equal(t, "supersec", svc.gotUserID, "user id is the first 8 chars of the api key")
	})

	t.Run("unsupported type maps to 400", func(t *testing.T) {
		svc := &stubService{ingestErr: domain.ErrUnsupportedFileType}
		srv := newTestServer(t, svc, testConfig())

		body, contentType := multipartBody(t, "file", "gen23.pdf", []byte("junk"))
		req := httptest.NewRequest(http.MethodPost, "/api/power-plants/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "only CSV and Excel files are supported")
	})

	t.Run("missing columns map to 400", func(t *testing.T) {
		svc := &stubService{ingestErr: &domain.MissingColumnsError{Columns: []string{"ORISPL"}}}
		srv := newTestServer(t, svc, testConfig())

		body, contentType := multipartBody(t, "file", "gen23.csv", []byte("FOO\n"))
		req := httptest.NewRequest(http.MethodPost, "/api/power-plants/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "ORISPL")
	})

	t.Run("store failure maps to generic 500", func(t *testing.T) {
		svc := &stubService{ingestErr: fmt.Errorf("store %q: connection refused", "cleaned_gen23.csv")}
		srv := newTestServer(t, svc, testConfig())

		body, contentType := multipartBody(t, "file", "gen23.csv", []byte("GENID\n"))
		req := httptest.NewRequest(http.MethodPost, "/api/power-plants/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "An internal server error occurred.")
		assert.NotContains(t, rec.Body.String(), "connection refused")
	})

	t.Run("missing file field maps to 400", func(t *testing.T) {
		srv := newTestServer(t, &stubService{}, testConfig())

		body, contentType := multipartBody(t, "wrong", "gen23.csv", []byte("GENID\n"))
		req := httptest.NewRequest(http.MethodPost, "/api/power-plants/upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestStatesEndpoint(t *testing.T) {
	t.Run("returns sorted states", func(t *testing.T) {
		svc := &stubService{states: []string{"CA", "NY", "TX"}}
		srv := newTestServer(t, svc, testConfig())
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/power-plants/states", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var states []string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &states))
		assert.Equal(t, []string{"CA", "NY", "TX"}, states)
	})

	t.Run("empty dataset yields empty array", func(t *testing.T) {
		srv := newTestServer(t, &stubService{}, testConfig())
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/power-plants/states", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, "[]", rec.Body.String())
	})
}

func TestTopPlantsEndpoint(t *testing.T) {
	t.Run("passes state and default limit through", func(t *testing.T) {
		svc := &stubService{plants: []domain.PlantAggregate{
			{ID: "1002", Name: "Beta", State: "CA", NetGeneration: 25000},
		}}
		srv := newTestServer(t, svc, testConfig())
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/power-plants/?state=CA", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "CA", svc.gotState)
		assert.Equal(t, 10, svc.gotLimit)

		var plants []map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plants))
		require.Len(t, plants, 1)
		assert.Equal(t, "1002", plants[0]["id"])
		assert.Equal(t, "Beta", plants[0]["name"])
		assert.Equal(t, float64(25000), plants[0]["netGeneration"])
	})

	t.Run("explicit limit", func(t *testing.T) {
		svc := &stubService{}
		srv := newTestServer(t, svc, testConfig())
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/power-plants/?state=NY&limit=3", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 3, svc.gotLimit)
		assert.JSONEq(t, "[]", rec.Body.String())
	})

	t.Run("missing state is 400", func(t *testing.T) {
		srv := newTestServer(t, &stubService{}, testConfig())
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/power-plants/", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "state query parameter is required")
	})

	t.Run("malformed limit is 400", func(t *testing.T) {
		srv := newTestServer(t, &stubService{}, testConfig())
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/power-plants/?state=CA&limit=lots", nil))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	t.Run("allowed origin is echoed", func(t *testing.T) {
		srv := newTestServer(t, &stubService{}, testConfig())
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("unlisted origin gets no header", func(t *testing.T) {
		srv := newTestServer(t, &stubService{}, testConfig())
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight succeeds without hitting handlers", func(t *testing.T) {
		srv := newTestServer(t, &stubService{}, testConfig())
		req := httptest.NewRequest(http.MethodOptions, "/api/power-plants/upload", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
	})
}

func TestJWTAuth(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubDER})

	cfg := testConfig()
	cfg.JWTPublicKey = string(pubPEM)

	signedToken := func(t *testing.T, expires time.Time) string {
		t.Helper()
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"sub": "user-1",
			"exp": expires.Unix(),
		})
		raw, err := token.SignedString(key)
		require.NoError(t, err)
		return raw
	}

	t.Run("valid token passes", func(t *testing.T) {
		srv := newTestServer(t, &stubService{}, cfg)
		req := httptest.NewRequest(http.MethodGet, "/api/power-plants/states", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, time.Now().Add(time.Hour)))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("missing token is 401", func(t *testing.T) {
		srv := newTestServer(t, &stubService{}, cfg)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/power-plants/states", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token is 401", func(t *testing.T) {
		srv := newTestServer(t, &stubService{}, cfg)
		req := httptest.NewRequest(http.MethodGet, "/api/power-plants/states", nil)
		req.Header.Set("Authorization", "Bearer "+signedToken(t, time.Now().Add(-time.Hour)))
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("health stays open", func(t *testing.T) {
		srv := newTestServer(t, &stubService{}, cfg)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("garbage public key fails construction", func(t *testing.T) {
		bad := testConfig()
		bad.JWTPublicKey = "not a pem block"
		logger := slog.New(slog.DiscardHandler)
		_, err := httpadapter.NewServer(bad, &stubService{}, nopSink{}, logger)
		assert.Error(t, err)
	})
}

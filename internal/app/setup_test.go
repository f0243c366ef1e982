package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/catalog/internal/service"
	"github.com/abgdnv/catalog/internal/store"
	pkgconfig "github.com/abgdnv/catalog/pkg/config"
	"github.com/abgdnv/catalog/pkg/messaging"
	"github.com/abgdnv/catalog/pkg/telemetry"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type recordingPublisher struct {
	subjects []string
}

func (p *recordingPublisher) Publish(_ context.Context, event messaging.Event) error {
	p.subjects = append(p.subjects, event.Subject())
	return nil
}

type staticVerifier struct{}

func (staticVerifier) Verify(_ context.Context, token string) (jwt.Token, error) {
	if token != "good" {
		return nil, fmt.Errorf("bad token")
	}
	return jwt.NewBuilder().Subject("admin").Build()
}

func do(t *testing.T, h http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCatalogHTTP_EndToEnd(t *testing.T) {
	pub := &recordingPublisher{}
	deps := SetupDependencies(store.NewMemoryStore(), pub, discard)
	h := SetupHttpHandler(deps)

	for i := 1; i <= 25; i++ {
		rr := do(t, h, http.MethodPost, "/api/v1/products", fmt.Sprintf(`{"name":"Product %02d","price":%d}`, i, i))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	rr := do(t, h, http.MethodGet, "/api/v1/products?page=3&limit=10", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var page service.PageDto
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Len(t, page.Data, 5)
	assert.Equal(t, service.PageMeta{Total: 25, Page: 3, LastPage: 3}, page.Meta)
	assert.NotEmpty(t, rr.Header().Get("X-Request-Id"))

	rr = do(t, h, http.MethodPatch, "/api/v1/products/5", `{"id":999,"name":"X"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var updated service.ProductDto
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, int64(5), updated.ID)
	assert.Equal(t, "X", updated.Name)

	rr = do(t, h, http.MethodDelete, "/api/v1/products/7", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/v1/products/7", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"message":"Product with id #7 not found","status":400}`, rr.Body.String())

	rr = do(t, h, http.MethodPost, "/api/v1/products", `{"name":"Product 01","price":1}`)
	assert.Equal(t, http.StatusConflict, rr.Code)

	assert.Len(t, pub.subjects, 27)
	assert.Equal(t, messaging.ProductUpdatedSubject, pub.subjects[25])
	assert.Equal(t, messaging.ProductRemovedSubject, pub.subjects[26])
}

func TestCatalogHTTP_PagingBounds(t *testing.T) {
	deps := SetupDependencies(store.NewMemoryStore(), nil, discard)
	h := SetupHttpHandler(deps)
	for i := 1; i <= 3; i++ {
		rr := do(t, h, http.MethodPost, "/api/v1/products", fmt.Sprintf(`{"name":"Product %d","price":1}`, i))
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	testCases := []struct {
		name     string
		query    string
		wantCode int
		wantLen  int
	}{
		{name: "max limit", query: "?limit=100", wantCode: http.StatusOK, wantLen: 3},
		{name: "limit above max", query: "?limit=101", wantCode: http.StatusBadRequest},
		{name: "limit at int32 max", query: "?limit=2147483647", wantCode: http.StatusBadRequest},
		{name: "page at int32 max", query: "?page=2147483647&limit=100", wantCode: http.StatusOK, wantLen: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// when
			rr := do(t, h, http.MethodGet, "/api/v1/products"+tc.query, "")

			// then
			require.Equal(t, tc.wantCode, rr.Code, rr.Body.String())
			if tc.wantCode != http.StatusOK {
				return
			}
			var page service.PageDto
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
			assert.Len(t, page.Data, tc.wantLen)
			assert.NotNil(t, page.Data)
			assert.Equal(t, int64(3), page.Meta.Total)
		})
	}
}

func TestCatalogHTTP_AuthAndMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	shutdown, err := telemetry.NewMeterProvider(ServiceName, registry)
	require.NoError(t, err)
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	deps := SetupDependencies(store.NewMemoryStore(), nil, discard)
	deps.Verifier = staticVerifier{}
	deps.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	h := SetupHttpHandler(deps)

	rr := do(t, h, http.MethodPost, "/api/v1/products", `{"name":"Lamp","price":1}`)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/v1/products", `{"name":"Lamp","price":1}`, "Authorization", "Bearer bad")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = do(t, h, http.MethodPost, "/api/v1/products", `{"name":"Lamp","price":1}`, "Authorization", "Bearer good")
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, h, http.MethodGet, "/api/v1/products", "")
	assert.Equal(t, http.StatusOK, rr.Code, "reads stay public")

	rr = do(t, h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "products_created")
}

func TestSetupStore_InMemory(t *testing.T) {
	st, closeFn, err := SetupStore(context.Background(), pkgconfig.DatabaseConfig{InMemory: true}, discard)

	require.NoError(t, err)
	t.Cleanup(closeFn)
	assert.IsType(t, &store.MemoryStore{}, st)
}

func TestSetupPublisher_Disabled(t *testing.T) {
	pub, closeFn, err := SetupPublisher(context.Background(), pkgconfig.NATSConfig{Enabled: false}, discard)

	require.NoError(t, err)
	t.Cleanup(closeFn)
	assert.IsType(t, messaging.NopPublisher{}, pub)
}

func TestSetupVerifier_Disabled(t *testing.T) {
	v, err := SetupVerifier(context.Background(), pkgconfig.IdP{Enabled: false})

	require.NoError(t, err)
	assert.Nil(t, v)
}

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample returns the counter value of the series of name carrying labels,
// and the number of series of that family.
func sample(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) (float64, int) {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			matched := 0
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] == lp.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return m.GetCounter().GetValue(), len(family.GetMetric())
			}
		}
		return 0, len(family.GetMetric())
	}
	return 0, 0
}

func TestCollector_Middleware_UsesRoutePattern(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.Get("/documents/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	for _, id := range []string{"a", "b", "c"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/documents/"+id, nil))
	}
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	value, series := sample(t, reg, "signdesk_http_requests_total",
		map[string]string{"method": "GET", "route": "/documents/{id}", "status_code": "404"})
	assert.Equal(t, 3.0, value)
	assert.Equal(t, 2, series)

	value, _ = sample(t, reg, "signdesk_http_requests_total",
		map[string]string{"method": "GET", "route": "/healthz", "status_code": "200"})
	assert.Equal(t, 1.0, value)
}

func TestCollector_DocumentEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordDocumentCreated(false, 0)
	c.RecordDocumentCreated(true, 3<<20)
	c.RecordDocumentCreated(true, 2048)
	c.RecordDocumentSigned()

	value, _ := sample(t, reg, "signdesk_documents_created_total", map[string]string{"kind": "metadata"})
	assert.Equal(t, 1.0, value)
	value, _ = sample(t, reg, "signdesk_documents_created_total", map[string]string{"kind": "upload"})
	assert.Equal(t, 2.0, value)
	value, _ = sample(t, reg, "signdesk_documents_signed_total", nil)
	assert.Equal(t, 1.0, value)
}

func TestSetupMetricsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordDocumentSigned()

	srv := httptest.NewServer(SetupMetricsRoute(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "signdesk_documents_signed_total 1")
}

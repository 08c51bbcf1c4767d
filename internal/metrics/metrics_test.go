package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ucp-agent/internal/model"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	return string(body)
}

func TestInstrumentRoundTripper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	m := New()
	client := &http.Client{Transport: m.InstrumentRoundTripper(http.DefaultTransport)}

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	resp.Body.Close()

	out := scrape(t, m)
	if !strings.Contains(out, `ucp_agent_merchant_requests_total{code="404",method="get"} 1`) {
		t.Errorf("missing request counter:\n%s", out)
	}
	if !strings.Contains(out, `ucp_agent_merchant_request_duration_seconds_count{method="get"} 1`) {
		t.Errorf("missing duration histogram:\n%s", out)
	}
}

func TestObserveTool(t *testing.T) {
	m := New()
	m.ObserveTool("get_checkout", nil)
	m.ObserveTool("get_checkout", model.NewNoActiveSessionError())
	m.ObserveTool("get_checkout", model.NewNoActiveSessionError())

	out := scrape(t, m)
	if !strings.Contains(out, `ucp_agent_tool_calls_total{outcome="ok",tool="get_checkout"} 1`) {
		t.Errorf("missing ok counter:\n%s", out)
	}
	if !strings.Contains(out, `ucp_agent_tool_calls_total{outcome="no_active_session",tool="get_checkout"} 2`) {
		t.Errorf("missing no_active_session counter:\n%s", out)
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveTool("x", nil)
	if rt := m.InstrumentRoundTripper(http.DefaultTransport); rt != http.DefaultTransport {
		t.Error("nil Metrics should return the transport unchanged")
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/alerts"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/api/types/readings"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/auth"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/db/memory"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/idempotency"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/metrics"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/telemetry"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/utils/echoutil"
)

const (
	tenantA = "11111111-1111-4111-8111-111111111111"
	tenantB = "22222222-2222-4222-8222-222222222222"
)

func newTestServer(t *testing.T, required bool) (*httptest.Server, *prometheus.Registry, *auth.Keyring) {
	t.Helper()
	kr := auth.NewKeyring(map[string]auth.Key{"k1": {Secret: []byte("test-secret")}})
	reg := prometheus.NewRegistry()
	e := BuildServer(Deps{
		DB:           memory.New(),
		Keyring:      kr,
		AuthRequired: required,
		Idempotency:  idempotency.NewMemory(time.Hour),
		Telemetry:    telemetry.Null{},
		Thresholds:   alerts.Default(),
		Metrics:      metrics.NewServer(reg),
		Gatherer:     reg,
		Logger:       zap.NewNop(),
		Loglevel:     "off",
	})
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv, reg, kr
}

func bearer(t *testing.T, kr *auth.Keyring, tenantId string) string {
	t.Helper()
	tok, err := kr.Sign("k1", &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "field-app", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		TenantId: tenantId,
	})
	if err != nil {
		t.Fatal(err)
	}
	return "Bearer " + tok
}

func send(t *testing.T, srv *httptest.Server, method, path string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestServer(t *testing.T) {
	t.Run("public routes pass without tenant", func(t *testing.T) {
		srv, _, _ := newTestServer(t, true)
		if resp := send(t, srv, http.MethodGet, "/healthz", nil, nil); resp.StatusCode != http.StatusOK {
			t.Errorf("/healthz: %d", resp.StatusCode)
		}
		if resp := send(t, srv, http.MethodGet, "/metrics", nil, nil); resp.StatusCode != http.StatusOK {
			t.Errorf("/metrics: %d", resp.StatusCode)
		}
	})

	t.Run("a scoped route refuses requests without token when auth is required", func(t *testing.T) {
		srv, reg, _ := newTestServer(t, true)
		resp := send(t, srv, http.MethodGet, "/api/farms", nil, map[string]string{echoutil.HeaderTenantId: tenantA})
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("status: %d", resp.StatusCode)
		}

		expected := `
# HELP aquafarm_tenant_rejections_total Requests refused while resolving the tenant
# TYPE aquafarm_tenant_rejections_total counter
aquafarm_tenant_rejections_total{reason="unauthenticated"} 1
`
		if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "aquafarm_tenant_rejections_total"); err != nil {
			t.Error(err)
		}
	})

	t.Run("a header contradicting the token is refused with 403", func(t *testing.T) {
		srv, reg, kr := newTestServer(t, true)
		resp := send(t, srv, http.MethodGet, "/api/ponds", nil, map[string]string{
			"Authorization":         bearer(t, kr, tenantA),
			echoutil.HeaderTenantId: tenantB,
		})
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status: %d", resp.StatusCode)
		}

		expected := `
# HELP aquafarm_tenant_rejections_total Requests refused while resolving the tenant
# TYPE aquafarm_tenant_rejections_total counter
aquafarm_tenant_rejections_total{reason="tenant-mismatch"} 1
`
		if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "aquafarm_tenant_rejections_total"); err != nil {
			t.Error(err)
		}
	})

	t.Run("a reading recorded with the token tenant is listed for it only", func(t *testing.T) {
		srv, reg, kr := newTestServer(t, true)
		at := time.Date(2026, 4, 1, 6, 0, 0, 0, time.UTC)
		ph := 7.3
		authA := map[string]string{"Authorization": bearer(t, kr, tenantA), "Idempotency-Key": "k-1"}

		resp := send(t, srv, http.MethodPost, "/mobile/water-quality/readings", readings.Spec{PH: &ph, RecordedAt: &at}, authA)
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("first: %d", resp.StatusCode)
		}
		resp = send(t, srv, http.MethodPost, "/mobile/water-quality/readings", readings.Spec{PH: &ph, RecordedAt: &at}, authA)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("replay: %d", resp.StatusCode)
		}

		expected := `
# HELP aquafarm_water_readings_total Water-quality readings received, by outcome (created or replayed)
# TYPE aquafarm_water_readings_total counter
aquafarm_water_readings_total{outcome="created"} 1
aquafarm_water_readings_total{outcome="replayed"} 1
`
		if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "aquafarm_water_readings_total"); err != nil {
			t.Error(err)
		}
	})

	t.Run("with auth optional, a header-only tenant is accepted", func(t *testing.T) {
		srv, _, _ := newTestServer(t, false)
		resp := send(t, srv, http.MethodGet, "/api/farms", nil, map[string]string{echoutil.HeaderTenantId: tenantA})
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status: %d", resp.StatusCode)
		}
		resp = send(t, srv, http.MethodGet, "/api/farms", nil, nil)
		if resp.StatusCode != http.StatusForbidden {
			t.Errorf("status without tenant: %d", resp.StatusCode)
		}
	})
}

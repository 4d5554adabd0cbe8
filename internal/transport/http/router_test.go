package httptransport_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	claimshandler "nomadpool/internal/claims/handler"
	claimsmodels "nomadpool/internal/claims/models"
	claimsservice "nomadpool/internal/claims/service"
	claimsstore "nomadpool/internal/claims/store"
	"nomadpool/internal/custody"
	"nomadpool/internal/events"
	"nomadpool/internal/ledger"
	lochandler "nomadpool/internal/location/handler"
	locservice "nomadpool/internal/location/service"
	locstore "nomadpool/internal/location/store"
	polhandler "nomadpool/internal/policy/handler"
	polmodels "nomadpool/internal/policy/models"
	polservice "nomadpool/internal/policy/service"
	polstore "nomadpool/internal/policy/store"
	poolhandler "nomadpool/internal/pool/handler"
	poolservice "nomadpool/internal/pool/service"
	"nomadpool/internal/premium"
	repservice "nomadpool/internal/reputation/service"
	repstore "nomadpool/internal/reputation/store"
	httptransport "nomadpool/internal/transport/http"
	"nomadpool/pkg/domain"
	"nomadpool/pkg/platform/middleware/principal"
)

const adminToken = "test-admin-token"

type testServer struct {
	srv       *httptest.Server
	validator *principal.Validator
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.Default()
	tx := ledger.New()

	profiles := locstore.NewInMemory()
	registry := locservice.NewRegistry(profiles, logger)
	require.NoError(t, locstore.Seed(context.Background(), profiles))

	pool := poolservice.New(20, logger)
	custodian := custody.NewLogCustodian(logger)
	eventsPub := events.NewPublisher(events.NewInMemoryStore(), logger)
	reputation := repservice.New(repstore.NewInMemory(), logger)

	calc := premium.NewCalculator(registry, 100)
	policies := polservice.New(polstore.NewInMemory(), registry, calc, pool, custodian, tx, logger)
	claims := claimsservice.New(claimsstore.NewInMemory(), policies, pool, reputation, custodian, tx,
		80, domain.Unit, logger)

	validator := principal.NewValidator("test-signing-key")
	router := httptransport.NewRouter(nil,
		lochandler.New(registry, adminToken, logger),
		polhandler.New(policies, validator, adminToken, logger),
		claimshandler.New(claims, validator, adminToken, logger),
		poolhandler.New(pool, validator, adminToken, logger),
		events.NewHandler(eventsPub, adminToken, logger),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testServer{srv: srv, validator: validator}
}

func (ts *testServer) do(t *testing.T, method, path string, body any, as domain.Principal, admin bool) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(t, err)

	if as != "" {
		token, err := ts.validator.Issue(as)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if admin {
		req.Header.Set("X-Admin-Token", adminToken)
	}

	resp, err := ts.srv.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestLocationsArePublic(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/locations", nil, "", false)
	profiles := decode[[]map[string]any](t, resp)
	assert.NotEmpty(t, profiles)
}

func TestPolicyEndpointsRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/policies", map[string]any{}, "", false)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, "/admin/events", nil, "", false)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPolicyAndClaimFlow(t *testing.T) {
	ts := newTestServer(t)

	// fund the pool so a claim can clear the reserve check
	resp := ts.do(t, http.MethodPost, "/pool/contributions", map[string]any{
		"amount": 100 * int64(domain.Unit),
	}, "backer", false)
	resp.Body.Close()
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	resp = ts.do(t, http.MethodPost, "/policies", map[string]any{
		"location":      "thailand",
		"coverage":      2 * int64(domain.Unit),
		"duration_days": 30,
		"payment":       int64(domain.Unit),
	}, "alice", false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	policy := decode[polmodels.Policy](t, resp)
	assert.Equal(t, polmodels.StatusActive, policy.Status)

	resp = ts.do(t, http.MethodPost, "/claims", map[string]any{
		"policy_id": policy.ID,
		"amount":    int64(domain.Unit),
		"description": "hospital bill",
	}, "alice", false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	claim := decode[claimsmodels.Claim](t, resp)
	assert.Equal(t, claimsmodels.StatusPending, claim.Status)

	resp = ts.do(t, http.MethodPost, fmt.Sprintf("/admin/claims/%d/decision", claim.ID), map[string]any{
		"approve": true,
	}, "", true)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	decided := decode[claimsmodels.Claim](t, resp)
	assert.Equal(t, claimsmodels.StatusApproved, decided.Status)

	resp = ts.do(t, http.MethodGet, fmt.Sprintf("/policies/%d", policy.ID), nil, "alice", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	settled := decode[polmodels.Policy](t, resp)
	assert.Equal(t, polmodels.StatusClaimed, settled.Status)
}

func TestRelocationEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/policies", map[string]any{
		"location":      "thailand",
		"coverage":      int64(domain.Unit),
		"duration_days": 30,
		"payment":       int64(domain.Unit),
	}, "alice", false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	policy := decode[polmodels.Policy](t, resp)

	resp = ts.do(t, http.MethodPost, fmt.Sprintf("/policies/%d/relocate", policy.ID), map[string]any{
		"location": "indonesia",
		"payment":  int64(domain.Unit),
	}, "alice", false)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	moved := decode[struct {
		Policy            polmodels.Policy `json:"policy"`
		PremiumAdjustment int64            `json:"premium_adjustment"`
	}](t, resp)
	assert.Equal(t, "indonesia", string(moved.Policy.Location))
	assert.Positive(t, moved.PremiumAdjustment)
}

func TestClaimValidationSurfacesAsUnprocessable(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/policies", map[string]any{
		"location":      "thailand",
		"coverage":      10 * int64(domain.Unit),
		"duration_days": 30,
		"payment":       int64(domain.Unit),
	}, "alice", false)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	policy := decode[polmodels.Policy](t, resp)

	// the pool holds only the premium, nowhere near the claim amount
	resp = ts.do(t, http.MethodPost, "/claims", map[string]any{
		"policy_id": policy.ID,
		"amount":    5 * int64(domain.Unit),
		"description": "storm",
	}, "alice", false)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

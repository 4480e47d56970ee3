package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Motorsize/internal/config"
	"Motorsize/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() config.Config {
	return config.Config{RateLimit: 1000, RateBurst: 1000, BatchWorkers: 2, TokenKey: "k"}
}

const ipmBody = `{"topology":"IPM","average_shear_stress_kpa":80,"max_rotor_speed_rpm":12000,"max_torque_nm":200,"base_speed_rpm":3000}`

func TestRoutesWithoutAccounts(t *testing.T) {
	srv := httptest.NewServer(NewHandler(Deps{Config: testConfig(), Logger: zap.NewNop()}))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/tools/motor/calc", "application/json", strings.NewReader(ipmBody))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))

	resp, err = http.Post(srv.URL+"/api/tools/motor/batch", "application/json", strings.NewReader(`{"items":[`+ipmBody+`]}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/login", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPreflight(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(Deps{Config: testConfig()}).ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/api/tools/motor/calc", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAccountFlow(t *testing.T) {
	h := NewHandler(Deps{Config: testConfig(), Repo: repo.NewMemoryRepository()})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/register",
		strings.NewReader(`{"login":"ann","email":"ann@example.com","password":"secret1"}`)))
	require.Equal(t, http.StatusCreated, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	req := httptest.NewRequest(http.MethodPost, "/api/user/designs", strings.NewReader(ipmBody))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user/designs", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit, cfg.RateBurst = 0.001, 1
	h := NewHandler(Deps{Config: cfg})

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tools/motor/calc", strings.NewReader(ipmBody)))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

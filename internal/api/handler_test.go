package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hance08/paycore/internal/api"
	"github.com/hance08/paycore/internal/model"
	"github.com/hance08/paycore/internal/platform"
	"github.com/hance08/paycore/internal/service"
	"github.com/hance08/paycore/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const userID int64 = 42

var now = time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)

type testServer struct {
	svc    *service.Service
	router http.Handler
	source *model.Account
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := zaptest.NewLogger(t)
	svc := service.NewService(service.Deps{
		Repo:   store.NewMemoryStore(),
		Clock:  platform.FixedClock{At: now},
		Logger: logger,
	}, service.Config{
		Transfer: service.TransferConfig{MaxRetries: 10, RetryBase: time.Millisecond},
	})

	ctx := context.Background()
	source, err := svc.Account.Open(ctx, service.OpenAccountInput{
		Number: "ACC-SRC", UserID: userID, OpeningBalance: decimal.RequireFromString("1000"),
	})
	require.NoError(t, err)
	_, err = svc.Account.Open(ctx, service.OpenAccountInput{Number: "ACC-DST", UserID: userID})
	require.NoError(t, err)

	return &testServer{svc: svc, router: api.NewRouter(svc, logger), source: source}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestCreateTransfer(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	body := `{"source_account_id": 1, "amount": "250.50", "rail": "internal", "destination": "ACC-DST"}`
	headers := map[string]string{api.HeaderIdempotencyKey: "req-1"}

	rec := s.do(t, http.MethodPost, "/v1/transfers", body, headers)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	got := decodeBody(t, rec)
	assert.Equal(t, "INTERNAL", got["rail"])
	assert.Equal(t, "749.5", got["remaining_balance"])
	assert.Equal(t, false, got["replayed"])
	assert.True(t, strings.HasPrefix(got["transaction_id"].(string), "INT-"))

	replay := s.do(t, http.MethodPost, "/v1/transfers", body, headers)
	require.Equal(t, http.StatusOK, replay.Code)
	assert.Equal(t, got["transaction_id"], decodeBody(t, replay)["transaction_id"])
	assert.Equal(t, true, decodeBody(t, replay)["replayed"])

	conflict := s.do(t, http.MethodPost, "/v1/transfers",
		`{"source_account_id": 1, "amount": "1", "rail": "INTERNAL", "destination": "ACC-DST"}`, headers)
	assert.Equal(t, http.StatusConflict, conflict.Code)
	assert.Equal(t, "IDEMPOTENCY_CONFLICT", decodeBody(t, conflict)["code"])

	missing := s.do(t, http.MethodPost, "/v1/transfers", body, nil)
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, "BAD_REQUEST", decodeBody(t, missing)["code"])
}

func TestCreateTransferErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		body    string
		status  int
		code    string
		message string
	}{
		{
			"insufficient funds",
			`{"source_account_id": 1, "amount": "5000", "rail": "INTERNAL", "destination": "ACC-DST"}`,
			http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Insufficient balance",
		},
		{
			"rtgs minimum",
			`{"source_account_id": 1, "amount": "100", "rail": "RTGS", "destination": "1234@HDFC0001"}`,
			http.StatusUnprocessableEntity, "RAIL_POLICY_VIOLATION", "",
		},
		{
			"unknown source",
			`{"source_account_id": 99, "amount": "1", "rail": "UPI", "destination": "a@bank"}`,
			http.StatusNotFound, "ACCOUNT_NOT_FOUND", "Account not found",
		},
		{
			"missing destination",
			`{"source_account_id": 1, "amount": "1", "rail": "INTERNAL", "destination": "NOPE"}`,
			http.StatusUnprocessableEntity, "DESTINATION_NOT_FOUND", "Destination account not found or inactive",
		},
		{
			"bad amount",
			`{"source_account_id": 1, "amount": "0.001", "rail": "INTERNAL", "destination": "ACC-DST"}`,
			http.StatusBadRequest, "INVALID_AMOUNT", "Invalid amount",
		},
		{
			"unknown rail",
			`{"source_account_id": 1, "amount": "1", "rail": "SWIFT", "destination": "x"}`,
			http.StatusBadRequest, "BAD_REQUEST", "",
		},
		{
			"unknown field",
			`{"source": 1}`,
			http.StatusBadRequest, "BAD_REQUEST", "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := newTestServer(t)
			rec := s.do(t, http.MethodPost, "/v1/transfers", tt.body, map[string]string{api.HeaderIdempotencyKey: tt.name})
			require.Equal(t, tt.status, rec.Code, rec.Body.String())

			got := decodeBody(t, rec)
			assert.Equal(t, tt.code, got["code"])
			if tt.message != "" {
				assert.Equal(t, tt.message, got["message"])
			}
		})
	}
}

func TestRunSweep(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	ctx := context.Background()
	yesterday := model.Date(now).AddDate(0, 0, -1)

	_, err := s.svc.Instruction.Create(ctx, service.CreateInstructionInput{
		UserID: userID, Name: "Savings", Type: model.RecurringDeposit,
		FromAccount: "ACC-SRC", ToAccount: "ACC-DST",
		Amount: decimal.RequireFromString("100"), Frequency: model.Daily, StartDate: yesterday,
	})
	require.NoError(t, err)
	_, err = s.svc.Instruction.Create(ctx, service.CreateInstructionInput{
		UserID: userID, Name: "Too much", Type: model.FundTransfer,
		FromAccount: "ACC-SRC", ToAccount: "ACC-DST",
		Amount: decimal.RequireFromString("5000"), Frequency: model.Daily, StartDate: yesterday,
	})
	require.NoError(t, err)

	rec := s.do(t, http.MethodPost, "/v1/sweeps", `{"as_of": "2026-03-10"}`, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decodeBody(t, rec)
	assert.Equal(t, "2026-03-10", got["as_of"])
	assert.EqualValues(t, 1, got["executed"])
	assert.EqualValues(t, 1, got["failed"])
	failures := got["failures"].([]any)
	require.Len(t, failures, 1)
	assert.Equal(t, "INSUFFICIENT_FUNDS", failures[0].(map[string]any)["code"])

	empty := s.do(t, http.MethodPost, "/v1/sweeps", "", nil)
	require.Equal(t, http.StatusOK, empty.Code)
	assert.EqualValues(t, 0, decodeBody(t, empty)["executed"])

	bad := s.do(t, http.MethodPost, "/v1/sweeps", `{"as_of": "10/03/2026"}`, nil)
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestChangeInstruction(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)
	si, err := s.svc.Instruction.Create(context.Background(), service.CreateInstructionInput{
		UserID: userID, Name: "Rent", Type: model.FundTransfer,
		FromAccount: "ACC-SRC", ToAccount: "ACC-DST",
		Amount: decimal.RequireFromString("10"), Frequency: model.Monthly, StartDate: model.Date(now),
	})
	require.NoError(t, err)

	path := func(action string) string { return "/v1/instructions/" + si.InstructionID + "/" + action }
	owner := map[string]string{api.HeaderUserID: "42"}

	rec := s.do(t, http.MethodPost, path("pause"), "", owner)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "PAUSED", decodeBody(t, rec)["status"])

	rec = s.do(t, http.MethodPost, path("pause"), "", owner)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "INVALID_TRANSITION", decodeBody(t, rec)["code"])

	rec = s.do(t, http.MethodPost, path("cancel"), "", map[string]string{api.HeaderUserID: "43"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, path("cancel"), "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, path("explode"), "", owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, path("cancel"), "", owner)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CANCELLED", decodeBody(t, rec)["status"])
}

func TestGetAccount(t *testing.T) {
	t.Parallel()

	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/v1/accounts/ACC-SRC", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)
	assert.Equal(t, "ACC-SRC", got["number"])
	assert.Equal(t, "1000", got["balance"])
	assert.Equal(t, "ACTIVE", got["status"])

	rec = s.do(t, http.MethodGet, "/v1/accounts/NOPE", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, http.StatusServiceUnavailable, api.StatusFor(service.KindStoreConflict))
	assert.Equal(t, http.StatusInternalServerError, api.StatusFor(service.KindInternal))
	assert.Equal(t, http.StatusOK, api.StatusFor(service.KindNone))
}

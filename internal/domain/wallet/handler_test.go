package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/c8r-platform/c8r-api/internal/middleware"
)

func testAuth(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reqBody *strings.Reader
	if body == "" {
		reqBody = strings.NewReader("")
	} else {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("invalid response JSON: %v", err)
		}
	}
	return rec, env
}

func TestHandler_GetBalance(t *testing.T) {
	f := newFixture()
	userID := f.addUser(2500)
	router := NewHandler(f.svc, nil).Routes(testAuth(userID))

	rec, env := doRequest(t, router, http.MethodGet, "/balance", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp BalanceResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("invalid balance payload: %v", err)
	}
	if resp.Balance != 2500 {
		t.Fatalf("expected balance 2500, got %d", resp.Balance)
	}
}

func TestHandler_PurchasePlugin_InsufficientBalanceIs402(t *testing.T) {
	f := newFixture()
	userID := f.addUser(100)
	pluginID := f.addPlugin(250)
	router := NewHandler(f.svc, nil).Routes(testAuth(userID))

	rec, env := doRequest(t, router, http.MethodPost, "/plugins/"+pluginID.String()+"/purchase", "")
	if rec.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "INSUFFICIENT_BALANCE" {
		t.Fatalf("expected INSUFFICIENT_BALANCE error code, got %+v", env.Error)
	}
	if !strings.Contains(env.Error.Message, "150") {
		t.Fatalf("expected shortfall in message, got %q", env.Error.Message)
	}
}

func TestHandler_PurchasePlugin_NotFoundAndConflict(t *testing.T) {
	f := newFixture()
	userID := f.addUser(1000)
	pluginID := f.addPlugin(250)
	router := NewHandler(f.svc, nil).Routes(testAuth(userID))

	rec, _ := doRequest(t, router, http.MethodPost, "/plugins/"+uuid.NewString()+"/purchase", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown plugin, got %d", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodPost, "/plugins/"+pluginID.String()+"/purchase", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for first purchase, got %d", rec.Code)
	}

	rec, env := doRequest(t, router, http.MethodPost, "/plugins/"+pluginID.String()+"/purchase", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate purchase, got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "CONFLICT" {
		t.Fatalf("expected CONFLICT error code, got %+v", env.Error)
	}
}

func TestHandler_Stake_ValidatesBody(t *testing.T) {
	f := newFixture()
	userID := f.addUser(1000)
	router := NewHandler(f.svc, nil).Routes(testAuth(userID))

	rec, _ := doRequest(t, router, http.MethodPost, "/stakes", `{"amount": -5}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for negative amount, got %d", rec.Code)
	}

	rec, env := doRequest(t, router, http.MethodPost, "/stakes", `{"amount": 500}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp StakeResponse
	if err := json.Unmarshal(env.Data, &resp); err != nil {
		t.Fatalf("invalid stake payload: %v", err)
	}
	if resp.LockDays != 30 || resp.APYBasisPoints != 1200 {
		t.Fatalf("expected defaulted lock and configured APY, got %+v", resp)
	}
}

func TestHandler_Unstake_LockedIs409(t *testing.T) {
	f := newFixture()
	userID := f.addUser(1000)
	router := NewHandler(f.svc, nil).Routes(testAuth(userID))

	stake, err := f.svc.StakeTokens(context.Background(), userID, 500, 30)
	if err != nil {
		t.Fatalf("stake failed: %v", err)
	}

	rec, _ := doRequest(t, router, http.MethodPost, "/stakes/"+stake.ID.String()+"/unstake", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for locked stake, got %d", rec.Code)
	}

	rec, _ = doRequest(t, router, http.MethodPost, "/stakes/"+uuid.NewString()+"/unstake", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown stake, got %d", rec.Code)
	}
}

func TestHandler_Session_Lifecycle(t *testing.T) {
	f := newFixture()
	userID := f.addUser(0)
	router := NewHandler(f.svc, nil).Routes(testAuth(userID))

	rec, env := doRequest(t, router, http.MethodGet, "/session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var session SessionResponse
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("invalid session payload: %v", err)
	}
	if session.Connected {
		t.Fatal("expected disconnected before connect")
	}

	rec, env = doRequest(t, router, http.MethodPost, "/connect", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("invalid session payload: %v", err)
	}
	if !session.Connected || !strings.HasPrefix(session.Address, "0x") {
		t.Fatalf("expected connected session with mock address, got %+v", session)
	}

	rec, _ = doRequest(t, router, http.MethodDelete, "/session", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if _, ok := f.svc.Session(userID); ok {
		t.Fatal("expected session cleared after disconnect")
	}
}

func TestHandler_GetTransactions_EmptyIsArray(t *testing.T) {
	f := newFixture()
	userID := f.addUser(0)
	router := NewHandler(f.svc, nil).Routes(testAuth(userID))

	rec, env := doRequest(t, router, http.MethodGet, "/transactions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if string(env.Data) != "[]" {
		t.Fatalf("expected empty JSON array, got %s", env.Data)
	}
}

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
)

// helper to perform requests with auth token
func performRequest(r http.Handler, method, path string, body io.Reader, token string, contentType string) *httptest.ResponseRecorder {
	// allow callers to pass nil for body safely
	req, _ := http.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func setupTestServer(t *testing.T) *gin.Engine {
	// integration tests are opt-in. Set DB_DSN_TEST=1 and DB_DSN to run them.
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	gin.SetMode(gin.TestMode)
	_ = os.Setenv("UPLOAD_BASE", t.TempDir())
	initDB()
	r := gin.Default()
	setupRoutes(r)
	return r
}

func postJSON(r http.Handler, path string, payload any, token string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(payload)
	return performRequest(r, http.MethodPost, path, bytes.NewBuffer(b), token, "application/json")
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad response body: %v (%s)", err, resp.Body.String())
	}
	return out
}

func TestFullFlow(t *testing.T) {
	r := setupTestServer(t)

	email := fmt.Sprintf("flow-%d@example.com", os.Getpid())

	// 1. Register and login
	resp := postJSON(r, "/register", map[string]string{"email": email, "name": "Flow User", "password": "secret123"}, "")
	if resp.Code != 200 && resp.Code != 409 {
		t.Fatalf("register failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = postJSON(r, "/login", map[string]string{"email": email, "password": "secret123"}, "")
	if resp.Code != 200 {
		t.Fatalf("login failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	token, _ := decodeBody(t, resp)["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %s", resp.Body.String())
	}

	// 2. Create an organization (creator becomes owner, defaults are seeded)
	resp = postJSON(r, "/orgs", map[string]string{"name": "Colmado Flow", "currency": "DOP"}, token)
	if resp.Code != 200 {
		t.Fatalf("create org failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	orgID := int(decodeBody(t, resp)["id"].(float64))
	base := fmt.Sprintf("/orgs/%d", orgID)

	// 3. Seeded accounts and categories are visible
	resp = performRequest(r, http.MethodGet, base+"/accounts", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list accounts failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var accounts []map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &accounts)
	if len(accounts) < 2 {
		t.Fatalf("expected seeded accounts, got %s", resp.Body.String())
	}
	accountID := int(accounts[0]["id"].(float64))
	otherAccountID := int(accounts[1]["id"].(float64))

	resp = performRequest(r, http.MethodGet, base+"/categories", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list categories failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	var categories []map[string]any
	_ = json.Unmarshal(resp.Body.Bytes(), &categories)
	var incomeCatID, expenseCatID int
	for _, cat := range categories {
		switch cat["type"] {
		case "income":
			incomeCatID = int(cat["id"].(float64))
		case "expense":
			expenseCatID = int(cat["id"].(float64))
		}
	}
	if incomeCatID == 0 || expenseCatID == 0 {
		t.Fatalf("expected seeded categories of both types, got %s", resp.Body.String())
	}

	// 4. Record income, expense and a transfer
	resp = postJSON(r, base+"/transactions", map[string]any{
		"type": "income", "amount": "1000.00", "description": "Ventas del día",
		"occurred_at": "2026-03-01", "account_id": accountID, "category_id": incomeCatID,
	}, token)
	if resp.Code != 200 {
		t.Fatalf("create income failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = postJSON(r, base+"/transactions", map[string]any{
		"type": "expense", "amount": "200.00", "description": "Suministros",
		"occurred_at": "2026-03-02", "account_id": accountID, "category_id": expenseCatID,
		"itbis_pct": "18",
	}, token)
	if resp.Code != 200 {
		t.Fatalf("create expense failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = postJSON(r, base+"/transactions", map[string]any{
		"type": "transfer", "amount": "300.00", "description": "Depósito",
		"occurred_at": "2026-03-03", "account_id": accountID, "transfer_to_account_id": otherAccountID,
	}, token)
	if resp.Code != 200 {
		t.Fatalf("create transfer failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 5. Invalid drafts are rejected with structured errors
	resp = postJSON(r, base+"/transactions", map[string]any{
		"type": "transfer", "amount": "50.00", "description": "Self transfer",
		"occurred_at": "2026-03-03", "account_id": accountID, "transfer_to_account_id": accountID,
	}, token)
	if resp.Code != 400 {
		t.Fatalf("expected 400 for same-account transfer, got %d body=%s", resp.Code, resp.Body.String())
	}
	if errs, ok := decodeBody(t, resp)["errors"]; !ok || errs == nil {
		t.Fatalf("expected errors list in rejection, got %s", resp.Body.String())
	}

	// 6. Listing returns transactions plus totals
	resp = performRequest(r, http.MethodGet, base+"/transactions", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("list transactions failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	listBody := decodeBody(t, resp)
	totals, _ := listBody["totals"].(map[string]any)
	if totals == nil || totals["count"].(float64) != 3 {
		t.Fatalf("expected totals with 3 transactions, got %s", resp.Body.String())
	}

	// 7. Summary and monthly breakdown
	resp = performRequest(r, http.MethodGet, base+"/summary", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("summary failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodGet, base+"/summary/monthly", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("monthly summary failed status=%d body=%s", resp.Code, resp.Body.String())
	}

	// 8. CSV export round-trips through the importer
	resp = performRequest(r, http.MethodGet, base+"/reports/transactions.csv", nil, token, "")
	if resp.Code != 200 {
		t.Fatalf("export failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	exported := resp.Body.Bytes()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	w, _ := mw.CreateFormFile("file", "transactions.csv")
	_, _ = w.Write(exported)
	_ = mw.Close()
	resp = performRequest(r, http.MethodPost, base+"/transactions/import", buf, token, mw.FormDataContentType())
	if resp.Code != 200 {
		t.Fatalf("import failed status=%d body=%s", resp.Code, resp.Body.String())
	}
	importBody := decodeBody(t, resp)
	if imported := importBody["imported"].(float64); imported != 3 {
		t.Fatalf("expected 3 imported rows, got %v (errors: %v)", imported, importBody["errors"])
	}

	// 9. Referenced rows cannot be deleted: the category with booked
	// expenses, the account sourcing transactions, and the account that only
	// receives a transfer all hold the delete
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("%s/categories/%d", base, expenseCatID), nil, token, "")
	if resp.Code != 409 {
		t.Fatalf("expected 409 deleting referenced category, got %d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("%s/accounts/%d", base, accountID), nil, token, "")
	if resp.Code != 409 {
		t.Fatalf("expected 409 deleting source account, got %d body=%s", resp.Code, resp.Body.String())
	}
	resp = performRequest(r, http.MethodDelete, fmt.Sprintf("%s/accounts/%d", base, otherAccountID), nil, token, "")
	if resp.Code != 409 {
		t.Fatalf("expected 409 deleting transfer destination account, got %d body=%s", resp.Code, resp.Body.String())
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("referential_delete_blocked")) {
		t.Fatalf("expected referential_delete_blocked error, got %s", resp.Body.String())
	}

	// 10. Unauthorized access to protected endpoint should be 401
	unauth := performRequest(r, http.MethodGet, base+"/transactions", nil, "", "")
	if unauth.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unauthorized list got %d", unauth.Code)
	}
}

func TestMigrateCommand(t *testing.T) {
	if os.Getenv("DB_DSN_TEST") != "1" {
		t.Skip("integration tests are disabled; set DB_DSN_TEST=1 to enable")
	}
	initDB()
}

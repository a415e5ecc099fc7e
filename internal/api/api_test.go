package api

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/xuri/excelize/v2"

	"pharmacy/m/internal/auth"
	"pharmacy/m/internal/store"
	"pharmacy/m/internal/testutil"
)

type testAPI struct {
	t      *testing.T
	db     *sqlx.DB
	tokens *auth.Tokens
	router http.Handler
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.SeedCatalog(t, db)
	testutil.AddEmployee(t, db, "EP01", "admin", "Admin@123", "admin", false)
	testutil.AddEmployee(t, db, "EP02", "staff", "Staff@123", "staff", false)
	testutil.AddEmployee(t, db, "EP03", "locked", "Locked@123", "staff", true)

	tokens := auth.NewTokens("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(store.New(db), tokens, logger, Options{DefaultStaffPassword: "Staff@123"})
	return &testAPI{t: t, db: db, tokens: tokens, router: h.Router()}
}

func (a *testAPI) token(id, username, role string) string {
	a.t.Helper()
	tok, err := a.tokens.IssueAccess(auth.Identity{ID: id, Username: username, Role: role})
	if err != nil {
		a.t.Fatalf("IssueAccess: %v", err)
	}
	return tok
}

func (a *testAPI) adminToken() string { return a.token("EP01", "admin", "admin") }
func (a *testAPI) staffToken() string { return a.token("EP02", "staff", "staff") }

func (a *testAPI) do(method, path, token string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			a.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return out
}

func TestWelcome(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(http.MethodGet, "/", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["message"] != "Welcome to our application." {
		t.Errorf("body = %v", body)
	}
}

func TestHealth(t *testing.T) {
	a := newTestAPI(t)
	if w := a.do(http.MethodGet, "/health", "", nil); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
}

func TestAuthentication(t *testing.T) {
	a := newTestAPI(t)
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer abc", http.StatusUnauthorized},
		{"valid token", "Bearer " + a.staffToken(), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/customers", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			a.router.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRefreshTokenRejectedAsAccess(t *testing.T) {
	a := newTestAPI(t)
	refresh, err := a.tokens.IssueRefresh("EP01")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	if w := a.do(http.MethodGet, "/api/customers", refresh, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d", w.Code)
	}
}

func TestRoleGating(t *testing.T) {
	a := newTestAPI(t)
	staff := a.staffToken()

	if w := a.do(http.MethodGet, "/api/user/getAllUsers", staff, nil); w.Code != http.StatusOK {
		t.Errorf("staff getAllUsers status = %d", w.Code)
	}
	if w := a.do(http.MethodPost, "/api/user/createUser", staff, map[string]any{"username": "x"}); w.Code != http.StatusForbidden {
		t.Errorf("staff createUser status = %d", w.Code)
	}
	if w := a.do(http.MethodDelete, "/api/user/deleteUser/EP03", staff, nil); w.Code != http.StatusForbidden {
		t.Errorf("staff deleteUser status = %d", w.Code)
	}
	if w := a.do(http.MethodGet, "/api/medicines", staff, nil); w.Code != http.StatusOK {
		t.Errorf("staff medicines status = %d", w.Code)
	}
	if w := a.do(http.MethodGet, "/api/medicines", a.token("EP09", "ghost", "guest"), nil); w.Code != http.StatusForbidden {
		t.Errorf("unknown role status = %d", w.Code)
	}
}

func TestLogin(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodPost, "/api/user/login", "", map[string]string{"username": "staff", "password": "Staff@123"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body)
	}
	body := decodeBody(t, w)
	access, _ := body["accessToken"].(string)
	identity, err := a.tokens.ParseAccess(access)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if identity.ID != "EP02" || identity.Role != "staff" {
		t.Errorf("identity = %+v", identity)
	}
	user, _ := body["user"].(map[string]any)
	if _, ok := user["password"]; ok {
		t.Error("password leaked in login response")
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == refreshCookie {
			cookie = c
		}
	}
	if cookie == nil {
		t.Fatal("refresh cookie not set")
	}
	if !cookie.HttpOnly || cookie.SameSite != http.SameSiteStrictMode || cookie.MaxAge != int((24*time.Hour).Seconds()) {
		t.Errorf("cookie = %+v", cookie)
	}
}

func TestLoginFailures(t *testing.T) {
	a := newTestAPI(t)
	tests := []struct {
		name     string
		username string
		password string
		want     int
	}{
		{"missing password", "staff", "", http.StatusBadRequest},
		{"unknown user", "nobody", "Staff@123", http.StatusNotFound},
		{"wrong password", "staff", "Wrong@123", http.StatusUnauthorized},
		{"locked account", "locked", "Wrong@123", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(http.MethodPost, "/api/user/login", "", map[string]string{"username": tt.username, "password": tt.password})
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRefreshAndLogout(t *testing.T) {
	a := newTestAPI(t)

	if w := a.do(http.MethodPost, "/api/user/refresh", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("refresh without cookie status = %d", w.Code)
	}

	raw, err := a.tokens.IssueRefresh("EP02")
	if err != nil {
		t.Fatalf("IssueRefresh: %v", err)
	}
	w := a.do(http.MethodPost, "/api/user/refresh", "", nil, &http.Cookie{Name: refreshCookie, Value: raw})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh status = %d body = %s", w.Code, w.Body)
	}
	access, _ := decodeBody(t, w)["accessToken"].(string)
	if _, err := a.tokens.ParseAccess(access); err != nil {
		t.Errorf("refreshed access token: %v", err)
	}

	lockedRaw, _ := a.tokens.IssueRefresh("EP03")
	if w := a.do(http.MethodPost, "/api/user/refresh", "", nil, &http.Cookie{Name: refreshCookie, Value: lockedRaw}); w.Code != http.StatusForbidden {
		t.Errorf("refresh locked status = %d", w.Code)
	}

	w = a.do(http.MethodPost, "/api/user/logout", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == refreshCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("logout did not clear the refresh cookie")
	}
}

func TestRegisterAndAdminOps(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodPost, "/api/user/register", "", map[string]string{
		"username": "newbie", "password": "Newbie@123", "fullname": "New Bie",
		"address": "Hue", "phoneNumber": "0987654321",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register status = %d body = %s", w.Code, w.Body)
	}
	user, _ := decodeBody(t, w)["user"].(map[string]any)
	if user["employee_id"] != "EP04" || user["role"] != "staff" {
		t.Errorf("registered user = %v", user)
	}

	if w := a.do(http.MethodPost, "/api/user/register", "", map[string]string{
		"username": "boss", "password": "Boss@1234", "fullname": "Boss",
		"address": "Hue", "phoneNumber": "0987654322", "role": "admin",
	}); w.Code != http.StatusForbidden {
		t.Errorf("second admin register status = %d", w.Code)
	}

	admin := a.adminToken()
	w = a.do(http.MethodPut, "/api/user/lockUser/EP04", admin, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("lock status = %d body = %s", w.Code, w.Body)
	}
	if locked, _ := decodeBody(t, w)["user"].(map[string]any)["isLocked"].(bool); !locked {
		t.Error("account not locked")
	}
	if w := a.do(http.MethodPut, "/api/user/lockUser/EP01", admin, nil); w.Code != http.StatusForbidden {
		t.Errorf("self lock status = %d", w.Code)
	}

	w = a.do(http.MethodPost, "/api/user/createUser", admin, map[string]string{"username": "clerk"})
	if w.Code != http.StatusCreated {
		t.Fatalf("createUser status = %d body = %s", w.Code, w.Body)
	}
	if w := a.do(http.MethodPost, "/api/user/login", "", map[string]string{"username": "clerk", "password": "Staff@123"}); w.Code != http.StatusOK {
		t.Errorf("default password login status = %d", w.Code)
	}

	if w := a.do(http.MethodDelete, "/api/user/deleteUser/EP01", admin, nil); w.Code != http.StatusForbidden {
		t.Errorf("delete admin status = %d", w.Code)
	}
	if w := a.do(http.MethodDelete, "/api/user/deleteUser/EP04", admin, nil); w.Code != http.StatusOK {
		t.Errorf("delete staff status = %d", w.Code)
	}
	if w := a.do(http.MethodGet, "/api/user/getDetailUser/EP04", admin, nil); w.Code != http.StatusNotFound {
		t.Errorf("detail after delete status = %d", w.Code)
	}
}

func TestProfileAndPassword(t *testing.T) {
	a := newTestAPI(t)
	staff := a.staffToken()

	w := a.do(http.MethodPut, "/api/user/updateInfoMySelf", staff, map[string]string{"address": "Da Nang"})
	if w.Code != http.StatusOK {
		t.Fatalf("update self status = %d body = %s", w.Code, w.Body)
	}
	if addr := decodeBody(t, w)["user"].(map[string]any)["address"]; addr != "Da Nang" {
		t.Errorf("address = %v", addr)
	}
	if w := a.do(http.MethodPut, "/api/user/updateInfoMySelf", staff, map[string]string{}); w.Code != http.StatusBadRequest {
		t.Errorf("empty update status = %d", w.Code)
	}
	if w := a.do(http.MethodPut, "/api/user/updateInfoMySelf", staff, map[string]string{"fullname": ""}); w.Code != http.StatusBadRequest {
		t.Errorf("blank fullname status = %d", w.Code)
	}

	if w := a.do(http.MethodPut, "/api/user/changePassword", staff, map[string]string{
		"currentPassword": "Nope@1234", "newPassword": "Fresh@123",
	}); w.Code != http.StatusBadRequest {
		t.Errorf("wrong current password status = %d", w.Code)
	}
	if w := a.do(http.MethodPut, "/api/user/changePassword", staff, map[string]string{
		"currentPassword": "Staff@123", "newPassword": "Fresh@123",
	}); w.Code != http.StatusOK {
		t.Errorf("change password status = %d body = %s", w.Code, w.Body)
	}
	if w := a.do(http.MethodPost, "/api/user/login", "", map[string]string{"username": "staff", "password": "Fresh@123"}); w.Code != http.StatusOK {
		t.Errorf("login with new password status = %d", w.Code)
	}
}

func TestFilterUsers(t *testing.T) {
	a := newTestAPI(t)
	staff := a.staffToken()

	w := a.do(http.MethodGet, "/api/user/filterUser?query=ad&sortBy=username&order=desc", staff, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body)
	}
	users, _ := decodeBody(t, w)["users"].([]any)
	if len(users) != 1 {
		t.Errorf("users = %v", users)
	}
	w = a.do(http.MethodGet, "/api/user/filterUser?query=%25", staff, nil)
	if users, _ := decodeBody(t, w)["users"].([]any); w.Code != http.StatusOK || len(users) != 0 {
		t.Errorf("wildcard query status = %d users = %v", w.Code, users)
	}
	if w := a.do(http.MethodGet, "/api/user/filterUser?sortBy=password", staff, nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad sortBy status = %d", w.Code)
	}
	if w := a.do(http.MethodGet, "/api/user/filterUser?sortBy=phoneNumber&query=abc", staff, nil); w.Code != http.StatusBadRequest {
		t.Errorf("non numeric phone query status = %d", w.Code)
	}
}

func TestCustomerCRUD(t *testing.T) {
	a := newTestAPI(t)
	tok := a.staffToken()

	w := a.do(http.MethodPost, "/api/customers", tok, map[string]string{"customer_name": "Pham Dung", "phone": "0712345678", "address": "Hai Phong"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", w.Code, w.Body)
	}
	created, _ := decodeBody(t, w)["data"].(map[string]any)
	if created["customer_id"] != "KH02" || created["name"] != "Pham Dung" {
		t.Errorf("created = %v", created)
	}

	if w := a.do(http.MethodPost, "/api/customers", tok, map[string]string{"name": "Bad", "phone": "123", "address": "x"}); w.Code != http.StatusBadRequest {
		t.Errorf("invalid phone status = %d", w.Code)
	}
	if w := a.do(http.MethodPost, "/api/customers", tok, map[string]string{"name": "X", "unknown": "y"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d", w.Code)
	}

	if w := a.do(http.MethodPut, "/api/customers/KH02", tok, map[string]string{"name": "Pham Dung", "phone": "0812345678", "address": "Hai Phong"}); w.Code != http.StatusOK {
		t.Errorf("update status = %d body = %s", w.Code, w.Body)
	}
	if w := a.do(http.MethodGet, "/api/customers/KH02", tok, nil); w.Code != http.StatusOK {
		t.Errorf("get status = %d", w.Code)
	}
	if w := a.do(http.MethodDelete, "/api/customers/KH02", tok, nil); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := a.do(http.MethodGet, "/api/customers/KH02", tok, nil); w.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", w.Code)
	}
}

func TestNotesOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	tok := a.staffToken()

	w := a.do(http.MethodPost, "/api/receivednotes", tok, map[string]any{
		"supplier_id":   "S1",
		"received_date": "2024-03-10",
		"details": []map[string]any{
			{"medicine_id": "MD1", "quantity": 10, "price": 2},
		},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", w.Code, w.Body)
	}
	note, _ := decodeBody(t, w)["data"].(map[string]any)
	if note["received_note_id"] != "RN01" || note["employee_id"] != "EP02" || note["total_price"] != float64(20) {
		t.Errorf("note = %v", note)
	}

	if w := a.do(http.MethodPost, "/api/received-note-details", tok, map[string]any{
		"received_note_id": "RN01", "medicine_id": "MD1", "quantity": 1, "price": 1,
	}); w.Code != http.StatusBadRequest {
		t.Errorf("duplicate detail status = %d", w.Code)
	}
	if w := a.do(http.MethodPost, "/api/received-note-details", tok, map[string]any{
		"received_note_id": "RN01", "medicine_id": "MD2", "quantity": 2, "price": 3,
	}); w.Code != http.StatusCreated {
		t.Errorf("add detail status = %d body = %s", w.Code, w.Body)
	}

	w = a.do(http.MethodGet, "/api/received-note-details/RN01", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("details status = %d", w.Code)
	}
	if details, _ := decodeBody(t, w)["data"].([]any); len(details) != 2 {
		t.Errorf("details = %v", details)
	}

	if w := a.do(http.MethodPut, "/api/received-note-details/RN01/MD2", tok, map[string]any{"quantity": 0, "price": 3}); w.Code != http.StatusBadRequest {
		t.Errorf("zero quantity status = %d", w.Code)
	}
	if w := a.do(http.MethodDelete, "/api/received-note-details/RN01/MD9", tok, nil); w.Code != http.StatusNotFound {
		t.Errorf("delete missing detail status = %d", w.Code)
	}

	if w := a.do(http.MethodPost, "/api/delivery-notes", tok, map[string]any{"customer_id": "KH99"}); w.Code != http.StatusBadRequest {
		t.Errorf("unknown customer status = %d", w.Code)
	}

	if w := a.do(http.MethodDelete, "/api/receivednotes/RN01", tok, nil); w.Code != http.StatusOK {
		t.Errorf("delete note status = %d", w.Code)
	}
	if w := a.do(http.MethodGet, "/api/received-note-details/RN01", tok, nil); w.Code != http.StatusNotFound {
		t.Errorf("details after delete status = %d", w.Code)
	}
}

func seedPeriodNotes(t *testing.T, db *sqlx.DB) {
	testutil.Exec(t, db,
		`INSERT INTO received_notes VALUES ('RN01', 'EP01', 'S1', '2024-03-10 09:00:00')`,
		`INSERT INTO received_note_details VALUES ('RN01', 'MD1', 10, 100)`,
		`INSERT INTO received_note_details VALUES ('RN01', 'MD2', 5, 200)`,
		`INSERT INTO delivery_notes VALUES ('DN01', 'EP02', 'KH01', '2024-03-12 15:30:00')`,
		`INSERT INTO delivery_note_details VALUES ('DN01', 'MD1', 1, 50)`,
		`INSERT INTO received_notes VALUES ('RN02', 'EP01', 'S1', '2024-07-01 00:00:00')`,
		`INSERT INTO received_note_details VALUES ('RN02', 'MD1', 1, 999)`,
	)
}

func TestStatistics(t *testing.T) {
	a := newTestAPI(t)
	seedPeriodNotes(t, a.db)
	tok := a.staffToken()

	for _, path := range []string{
		"/api/statistic/day?startDate=2024-03-01&endDate=2024-03-31",
		"/api/statistic/quarter?quarter=1&year=2024",
		"/api/statistic/month?month=3&year=2024",
	} {
		t.Run(path, func(t *testing.T) {
			w := a.do(http.MethodGet, path, tok, nil)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d body = %s", w.Code, w.Body)
			}
			body := decodeBody(t, w)
			if body["success"] != true {
				t.Errorf("success = %v", body["success"])
			}
			want := map[string]float64{"totalPriceInput": 300, "totalPriceOutput": 50, "totalProfit": 250, "avgPriceInput": 150}
			for key, v := range want {
				if body[key] != v {
					t.Errorf("%s = %v, want %v", key, body[key], v)
				}
			}
		})
	}

	w := a.do(http.MethodGet, "/api/statistic/year?year=2024", tok, nil)
	body := decodeBody(t, w)
	if body["totalPriceInput"] != float64(1299) {
		t.Errorf("yearly totalPriceInput = %v", body["totalPriceInput"])
	}

	w = a.do(http.MethodGet, "/api/statistic/year?year=2023", tok, nil)
	body = decodeBody(t, w)
	if body["avgPriceInput"] != float64(0) || body["avgPriceOutput"] != float64(0) {
		t.Errorf("empty year averages = %v, %v", body["avgPriceInput"], body["avgPriceOutput"])
	}

	for _, path := range []string{
		"/api/statistic/day?startDate=2024-03-31&endDate=2024-03-01",
		"/api/statistic/quarter?quarter=5&year=2024",
		"/api/statistic/month?year=2024",
	} {
		if w := a.do(http.MethodGet, path, tok, nil); w.Code != http.StatusBadRequest {
			t.Errorf("%s status = %d", path, w.Code)
		}
	}
	if w := a.do(http.MethodGet, "/api/statistic/week?year=2024", tok, nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown period status = %d", w.Code)
	}
}

func TestStatisticsExport(t *testing.T) {
	a := newTestAPI(t)
	seedPeriodNotes(t, a.db)

	w := a.do(http.MethodGet, "/api/statistic/month/export?month=3&year=2024", a.adminToken(), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	if profit, _ := f.GetCellValue("Summary", "B13"); profit != "250" {
		t.Errorf("profit cell = %q", profit)
	}
}

func TestMedicinesOverHTTP(t *testing.T) {
	a := newTestAPI(t)
	tok := a.staffToken()

	medicine := map[string]any{
		"medicine_id": "MD3", "name": "Aspirin", "manufacturer_id": "M1", "supplier_id": "S1",
		"category_id": "C1", "effects": "Pain", "quantity": 20, "price": 1.25,
	}
	if w := a.do(http.MethodPost, "/api/medicines", tok, medicine); w.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", w.Code, w.Body)
	}
	if w := a.do(http.MethodPost, "/api/medicines", tok, medicine); w.Code != http.StatusBadRequest {
		t.Errorf("duplicate id status = %d", w.Code)
	}

	medicine["medicine_id"], medicine["supplier_id"] = "MD4", "S9"
	if w := a.do(http.MethodPost, "/api/medicines", tok, medicine); w.Code != http.StatusBadRequest {
		t.Errorf("unknown supplier status = %d", w.Code)
	}

	w := a.do(http.MethodGet, "/api/medicines?search=aspi", tok, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	found, _ := decodeBody(t, w)["data"].([]any)
	if len(found) != 1 {
		t.Fatalf("search results = %v", found)
	}
	if price := found[0].(map[string]any)["price"]; price != 1.25 {
		t.Errorf("price = %v", price)
	}
}

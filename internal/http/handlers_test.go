package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/domain"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/repository"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/service"
	"github.com/Hrittik-Chatterjee/crm-backend-lite/internal/store"
)

type testStack struct {
	handler    http.Handler
	businesses *repository.MemoryBusinessRepo
	users      *repository.MemoryUserRepo
	biz        *domain.Business
}

// newTestStack wires the full chain (router, middleware, services) over the
// in-memory stores, with one admin, one designer and one seeded business.
func newTestStack(t *testing.T) *testStack {
	t.Helper()
	logger := zap.NewNop()

	businesses := repository.NewMemoryBusinessRepo()
	users := repository.NewMemoryUserRepo()
	contents := repository.NewMemoryContentRepo()
	sessions := store.NewMemoryKV()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	admin := &domain.User{Username: "admin", Password: string(hash), Roles: []string{domain.RoleAdmin}}
	designer := &domain.User{Username: "designer", Password: string(hash), Roles: []string{domain.RoleContentDesigner}}
	for _, u := range []*domain.User{admin, designer} {
		if err := users.Create(context.Background(), u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	biz := &domain.Business{
		BusinessName: "Acme Coffee",
		Tags:         "#food",
		AssignedCD:   []primitive.ObjectID{designer.ID},
	}
	if err := businesses.Create(context.Background(), biz); err != nil {
		t.Fatalf("seed business: %v", err)
	}

	authSvc := service.NewAuthService(users, sessions, "test-secret", 7, logger)
	contentSvc := service.NewContentService(contents, businesses, users,
		service.NewWebhookNotifier("", logger), logger)
	businessSvc := service.NewBusinessService(businesses, logger)

	auth := NewAuthMiddleware(authSvc, logger)
	router := NewRouter(logger)
	router.RegisterAuthRoutes(NewAuthHandler(authSvc, false, logger), auth)
	router.RegisterContentRoutes(NewContentHandler(contentSvc, logger), auth)
	router.RegisterBusinessRoutes(NewBusinessHandler(businessSvc, logger), auth)
	router.RegisterHealthRoutes(NewHealthHandler(nil, logger))

	return &testStack{
		handler:    CORS("http://localhost:5173", router),
		businesses: businesses,
		users:      users,
		biz:        biz,
	}
}

// login posts credentials and returns the session cookie.
func (s *testStack) login(t *testing.T, username string) *http.Cookie {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":"s3cret"}`, username)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body: %s", w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatalf("no session cookie in login response")
	return nil
}

func (s *testStack) do(t *testing.T, method, target, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func TestLogin_SetsCookieAndReturnsProfile(t *testing.T) {
	s := newTestStack(t)

	body := `{"username":"admin","password":"s3cret"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"code":2000`) {
		t.Fatalf("expected wrapper code=2000, got: %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"username":"admin"`) {
		t.Fatalf("expected profile in body, got: %s", w.Body.String())
	}

	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			cookie = c
		}
	}
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("expected session cookie, got: %v", w.Header().Get("Set-Cookie"))
	}
	if !cookie.HttpOnly {
		t.Fatalf("session cookie must be httpOnly")
	}
	if cookie.MaxAge <= 0 {
		t.Fatalf("expected positive cookie max-age, got %d", cookie.MaxAge)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	s := newTestStack(t)

	w := s.do(t, http.MethodPost, "/auth/login", `{"username":"admin","password":"nope"}`, nil)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"code":-1`) {
		t.Fatalf("expected error envelope, got: %s", w.Body.String())
	}
}

func TestProtectedRoutes_RequireAuth(t *testing.T) {
	s := newTestStack(t)

	for _, target := range []string{"/content", "/businesses", "/auth/me"} {
		w := s.do(t, http.MethodGet, target, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("GET %s without token: status = %d", target, w.Code)
		}
	}
}

func TestAuthMe_BearerFallback(t *testing.T) {
	s := newTestStack(t)
	cookie := s.login(t, "admin")

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+cookie.Value)
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"username":"admin"`) {
		t.Fatalf("expected profile, got: %s", w.Body.String())
	}
}

func TestContentLifecycle_OverHTTP(t *testing.T) {
	s := newTestStack(t)
	cookie := s.login(t, "admin")

	// create
	body := fmt.Sprintf(`{"business":%q,"contentType":"poster","date":"03/10/2026","tags":"#launch"}`, s.biz.ID.Hex())
	w := s.do(t, http.MethodPost, "/content", body, cookie)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"businessName":"Acme Coffee"`) {
		t.Fatalf("expected expanded business ref, got: %s", w.Body.String())
	}
	created := struct {
		Result struct {
			ID string `json:"id"`
		} `json:"result"`
	}{}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	id := created.Result.ID
	if id == "" {
		t.Fatalf("no id in create response: %s", w.Body.String())
	}

	// designer assigned as primary CD becomes the assignee
	if !strings.Contains(w.Body.String(), `"username":"designer"`) {
		t.Fatalf("expected designer ref, got: %s", w.Body.String())
	}

	// patch tags; new hashtags flow into the business record
	w = s.do(t, http.MethodPatch, "/content/"+id, `{"tags":"#launch #Spring"}`, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body: %s", w.Code, w.Body.String())
	}
	stored, err := s.businesses.GetByID(context.Background(), s.biz.ID)
	if err != nil {
		t.Fatalf("reload business: %v", err)
	}
	if stored.Tags != "#food #launch #spring" {
		t.Fatalf("business tags = %q, want %q", stored.Tags, "#food #launch #spring")
	}

	// get
	w = s.do(t, http.MethodGet, "/content/"+id, "", cookie)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"tags":"#launch #Spring"`) {
		t.Fatalf("get status = %d, body: %s", w.Code, w.Body.String())
	}

	// delete returns the removed record, then get turns 404
	w = s.do(t, http.MethodDelete, "/content/"+id, "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body: %s", w.Code, w.Body.String())
	}
	w = s.do(t, http.MethodGet, "/content/"+id, "", cookie)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", w.Code)
	}
}

func TestContentList_DesignerScope(t *testing.T) {
	s := newTestStack(t)
	admin := s.login(t, "admin")

	for _, ct := range []string{"poster", "video"} {
		body := fmt.Sprintf(`{"business":%q,"contentType":%q,"date":"03/10/2026"}`, s.biz.ID.Hex(), ct)
		w := s.do(t, http.MethodPost, "/content", body, admin)
		if w.Code != http.StatusCreated {
			t.Fatalf("seed content status = %d", w.Code)
		}
	}

	designer := s.login(t, "designer")
	w := s.do(t, http.MethodGet, "/content?contentType=video", "", designer)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, body: %s", w.Code, w.Body.String())
	}
	// Role scope wins over the requested type: only the poster is visible.
	if !strings.Contains(w.Body.String(), `"total":1`) || strings.Contains(w.Body.String(), `"contentType":"video"`) {
		t.Fatalf("expected only the poster, got: %s", w.Body.String())
	}
}

func TestContent_MethodNotAllowed(t *testing.T) {
	s := newTestStack(t)
	cookie := s.login(t, "admin")

	w := s.do(t, http.MethodPut, "/content", "", cookie)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestLogout_RevokesSession(t *testing.T) {
	s := newTestStack(t)
	cookie := s.login(t, "admin")

	w := s.do(t, http.MethodPost, "/auth/logout", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("logout status = %d", w.Code)
	}
	var cleared *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			cleared = c
		}
	}
	if cleared == nil || cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Fatalf("expected expired empty cookie, got: %v", w.Header().Get("Set-Cookie"))
	}

	w = s.do(t, http.MethodGet, "/auth/me", "", cookie)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout status = %d", w.Code)
	}
}

func TestBusinessDirectory(t *testing.T) {
	s := newTestStack(t)
	cookie := s.login(t, "admin")

	w := s.do(t, http.MethodGet, "/businesses", "", cookie)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"businessName":"Acme Coffee"`) {
		t.Fatalf("list status = %d, body: %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/businesses/"+s.biz.ID.Hex(), "", cookie)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"businessName":"Acme Coffee"`) {
		t.Fatalf("get status = %d, body: %s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/businesses/"+primitive.NewObjectID().Hex(), "", cookie)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get unknown status = %d", w.Code)
	}
}

func TestContentExport_StreamsWorkbook(t *testing.T) {
	s := newTestStack(t)
	cookie := s.login(t, "admin")

	body := fmt.Sprintf(`{"business":%q,"contentType":"poster","date":"03/10/2026"}`, s.biz.ID.Hex())
	if w := s.do(t, http.MethodPost, "/content", body, cookie); w.Code != http.StatusCreated {
		t.Fatalf("seed content status = %d", w.Code)
	}

	w := s.do(t, http.MethodGet, "/content/export", "", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("export status = %d, body: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "spreadsheetml") {
		t.Fatalf("content type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "content-calendar.xlsx") {
		t.Fatalf("content disposition = %q", cd)
	}
	// xlsx files are zip archives
	if !strings.HasPrefix(w.Body.String(), "PK") {
		t.Fatalf("expected zip magic in export body")
	}
}

func TestCORS_Preflight(t *testing.T) {
	s := newTestStack(t)

	req := httptest.NewRequest(http.MethodOptions, "/content", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("allow-origin = %q", got)
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("expected credentialed CORS")
	}
}

func TestHealthz_NoStoreConfigured(t *testing.T) {
	s := newTestStack(t)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("health status = %d, body: %s", w.Code, w.Body.String())
	}
}

package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"orgroles/internal/audit"
	"orgroles/internal/config"
	"orgroles/internal/dbtest"
	"orgroles/internal/events"
	httpserver "orgroles/internal/http"
	"orgroles/internal/models"
	"orgroles/internal/seed"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "admin12345"
)

type server struct {
	t   *testing.T
	db  *gorm.DB
	r   *gin.Engine
	cfg config.Config
}

func newServer(t *testing.T) *server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := dbtest.Open(t)
	require.NoError(t, seed.FirstSetup(context.Background(), gdb, seed.Admin{Email: adminEmail, Password: adminPassword}, zap.NewNop()))

	cfg := config.Config{
		JWTSecret:      "test-secret",
		SessionTTL:     time.Hour,
		TokenTTL:       time.Hour,
		MaxUploadBytes: 1 << 20,
		AdminNoticeURL: "/admin/org-structure",
		MyAccountURL:   "/my-account",
	}
	d := events.New(nil)
	audit.Recorder{DB: gdb}.Subscribe(d)
	r := httpserver.NewRouter(httpserver.Deps{DB: gdb, Config: cfg, Log: zap.NewNop(), Events: d})
	return &server{t: t, db: gdb, r: r, cfg: cfg}
}

func (s *server) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.r.ServeHTTP(w, req)
	return w
}

func (s *server) json(method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, token)
}

func (s *server) form(path, token string, values url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return s.do(req, token)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (s *server) login(email, password string) string {
	w := s.json(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return decode(s.t, w)["token"].(string)
}

func (s *server) create(token, path string, body any, key string) uint64 {
	w := s.json(http.MethodPost, path, token, body)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return uint64(decode(s.t, w)[key].(map[string]any)["id"].(float64))
}

type structure struct {
	acme, sales, rep uint64
}

func (s *server) buildStructure(token string) structure {
	var st structure
	st.acme = s.create(token, "/api/v1/admin/companies", map[string]any{"name": "Acme"}, "company")
	st.sales = s.create(token, "/api/v1/admin/departments", map[string]any{"company_id": st.acme, "name": "Sales"}, "department")
	st.rep = s.create(token, "/api/v1/admin/job-roles", map[string]any{"department_id": st.sales, "label": "Rep", "mapped_role": "staff"}, "job_role")
	return st
}

func TestAdminCRUD(t *testing.T) {
	s := newServer(t)
	tok := s.login(adminEmail, adminPassword)
	st := s.buildStructure(tok)

	w := s.json(http.MethodPost, "/api/v1/admin/job-roles", tok, map[string]any{"label": "Orphan"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"department required"}`, w.Body.String())

	w = s.json(http.MethodPost, "/api/v1/admin/job-roles", tok, map[string]any{"department_id": st.sales, "company_id": 999, "label": "Scout", "mapped_role": "no_such_role"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	jr := decode(t, w)["job_role"].(map[string]any)
	assert.Equal(t, "customer", jr["mapped_role"])
	assert.EqualValues(t, st.acme, jr["company_id"])

	w = s.json(http.MethodPost, "/api/v1/admin/companies", tok, map[string]any{"name": "ACME"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.json(http.MethodGet, "/api/v1/admin/job-roles?department_id="+itoa(st.sales), tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	roles := decode(t, w)["job_roles"].([]any)
	require.Len(t, roles, 2)
	assert.Equal(t, "Sales", roles[0].(map[string]any)["department_name"])

	w = s.json(http.MethodDelete, "/api/v1/admin/companies/"+itoa(st.acme), tok, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	var n int64
	require.NoError(t, s.db.Model(&models.JobRole{}).Count(&n).Error)
	assert.Zero(t, n)
	require.NoError(t, s.db.Model(&models.AuditLog{}).Where("action = ?", events.StructureDeleted).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestAdminRoutesNeedManageOptions(t *testing.T) {
	s := newServer(t)

	w := s.json(http.MethodGet, "/api/v1/admin/companies", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	tok := s.login(adminEmail, adminPassword)
	st := s.buildStructure(tok)
	w = s.json(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email": "ann@example.com", "password": "s3cret-pass",
		"company_id": st.acme, "department_id": st.sales, "job_role_id": st.rep,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	customer := decode(t, w)["token"].(string)

	w = s.json(http.MethodGet, "/api/v1/admin/companies", customer, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"forbidden","missing":"manage_options"}`, w.Body.String())
}

func TestRegistrationFlow(t *testing.T) {
	s := newServer(t)
	tok := s.login(adminEmail, adminPassword)
	st := s.buildStructure(tok)

	w := s.json(http.MethodGet, "/api/v1/registration/form", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	form := decode(t, w)
	assert.Equal(t, true, form["auto_assign"])
	assert.Len(t, form["departments"], 1)

	w = s.json(http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": "ann@example.com", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": "ann@example.com", "password": "s3cret-pass"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Len(t, decode(t, w)["fields"], 2)

	w = s.json(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email": "ann@example.com", "name": "Ann", "password": "s3cret-pass",
		"department_id": st.sales, "job_role_id": st.rep,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ann := decode(t, w)["token"].(string)

	w = s.json(http.MethodGet, "/api/v1/me", ann, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	assert.ElementsMatch(t, []any{"customer", "staff"}, me["roles"])
	assert.Equal(t, false, me["can_manage"])
	assert.EqualValues(t, st.rep, me["primary_assignment"].(map[string]any)["job_role_id"])

	w = s.json(http.MethodPut, "/api/v1/account/organization", ann, map[string]any{"company_id": st.acme})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.json(http.MethodPut, "/api/v1/account/organization", ann, map[string]any{
		"company_id": st.acme, "department_id": st.sales, "job_role_id": st.rep,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["saved"])

	var n int64
	require.NoError(t, s.db.Model(&models.AuditLog{}).Where("action = ?", events.OnboardingCompleted).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestSuspendedUserIsLockedOut(t *testing.T) {
	s := newServer(t)
	tok := s.login(adminEmail, adminPassword)
	st := s.buildStructure(tok)

	w := s.json(http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"email": "bob@example.com", "password": "s3cret-pass",
		"department_id": st.sales, "job_role_id": st.rep,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	res := decode(t, w)
	bob := res["token"].(string)
	bobID := uint64(res["user"].(map[string]any)["id"].(float64))

	w = s.json(http.MethodPost, "/api/v1/admin/users/1/deactivate", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.json(http.MethodPost, "/api/v1/admin/users/"+itoa(bobID)+"/deactivate", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodGet, "/api/v1/me", bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.json(http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "bob@example.com", "password": "s3cret-pass"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.json(http.MethodPost, "/api/v1/admin/users/"+itoa(bobID)+"/activate", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.json(http.MethodGet, "/api/v1/me", bob, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLookups(t *testing.T) {
	s := newServer(t)
	tok := s.login(adminEmail, adminPassword)
	st := s.buildStructure(tok)

	w := s.form("/api/v1/lookups/departments", "", url.Values{"nonce": {"bad"}, "company_id": {itoa(st.acme)}})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"success":false,"data":{"message":"invalid token"}}`, w.Body.String())

	w = s.json(http.MethodGet, "/api/v1/lookups/token", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	nonce := decode(t, w)["nonce"].(string)

	w = s.form("/api/v1/lookups/departments", "", url.Values{"nonce": {nonce}, "company_id": {itoa(st.acme)}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[{"id":`+itoa(st.sales)+`,"name":"Sales"}]}`, w.Body.String())

	w = s.form("/api/v1/lookups/departments", "", url.Values{"nonce": {nonce}, "company_id": {"0"}})
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())

	w = s.form("/api/v1/lookups/job-roles", "", url.Values{"nonce": {nonce}, "department_id": {itoa(st.sales)}})
	assert.JSONEq(t, `{"success":true,"data":[{"id":`+itoa(st.rep)+`,"label":"Rep"}]}`, w.Body.String())

	w = s.form("/api/v1/lookups/job-roles", "", url.Values{"nonce": {nonce}, "department_id": {"9999"}})
	assert.JSONEq(t, `{"success":true,"data":[]}`, w.Body.String())

	// A guest token does not work for a logged-in caller.
	w = s.form("/api/v1/lookups/departments", tok, url.Values{"nonce": {nonce}, "company_id": {itoa(st.acme)}})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func (s *server) upload(token, nonce, filename, content string, html bool) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(s.t, mw.WriteField("_nonce", nonce))
	fw, err := mw.CreateFormFile("csv", filename)
	require.NoError(s.t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(s.t, err)
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/structure/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if html {
		req.Header.Set("Accept", "text/html")
	}
	return s.do(req, token)
}

func TestImportExport(t *testing.T) {
	s := newServer(t)
	tok := s.login(adminEmail, adminPassword)

	w := s.json(http.MethodGet, "/api/v1/admin/structure/tokens", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tokens := decode(t, w)
	importNonce := tokens["import_nonce"].(string)
	exportNonce := tokens["export_nonce"].(string)

	w = s.upload(tok, exportNonce, "org.csv", "company,department,job_role\n", false)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"notice":"error","message":"Import failed: nonce invalid."}`, w.Body.String())

	w = s.upload(tok, importNonce, "org.csv", "company,department\nAcme,Sales\n", false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "CSV header missing required column: job_role", decode(t, w)["message"])

	csv := "company,company_slug,department,department_slug,job_role,job_role_slug,mapped_role,mapped_role_display,capability_json,notes\n" +
		"Acme,,Sales,,Rep,,sales_rep,,,\n" +
		"Acme,,Sales,,Manager,,sales_mgr,,,\n"
	w = s.upload(tok, importNonce, "org.csv", csv, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	res := decode(t, w)
	assert.Equal(t, "success", res["notice"])
	assert.Contains(t, res["message"], "Created → companies 1, departments 1, job roles 2, access roles 2.")

	w = s.upload(tok, importNonce, "org.csv", csv+",,Orphan,,,,,,,\n", true)
	require.Equal(t, http.StatusSeeOther, w.Code)
	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/admin/org-structure", loc.Path)
	assert.Equal(t, "warning", loc.Query().Get("notice"))
	assert.Contains(t, loc.Query().Get("msg"), "Errors: 1.")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/structure/export?_nonce="+url.QueryEscape(exportNonce), nil)
	w = s.do(req, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Acme,acme,Sales,sales,Manager,manager,sales_mgr,Sales Mgr,{},", strings.TrimSpace(lines[1]))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/structure/export?format=xlsx&_nonce="+url.QueryEscape(exportNonce), nil)
	w = s.do(req, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("PK")))

	w = s.json(http.MethodGet, "/api/v1/admin/audit?action="+events.ImportCompleted, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	res = decode(t, w)
	assert.Len(t, res["logs"], 2)
	assert.Nil(t, res["next_cursor"])

	w = s.json(http.MethodGet, "/api/v1/admin/audit?limit=500", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStorefrontPolicy(t *testing.T) {
	s := newServer(t)

	w := s.json(http.MethodGet, "/api/v1/storefront/policy?page=checkout", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	policy := decode(t, w)["policy"].(map[string]any)
	assert.Equal(t, false, policy["purchasable"])
	assert.Equal(t, "Login to purchase", policy["add_to_cart_text"])
	assert.Equal(t, "/my-account", policy["redirect_to"])

	tok := s.login(adminEmail, adminPassword)
	w = s.json(http.MethodPut, "/api/v1/admin/settings", tok, map[string]any{"disable_guest_purchase": false})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.json(http.MethodGet, "/api/v1/storefront/policy?page=cart", "", nil)
	policy = decode(t, w)["policy"].(map[string]any)
	assert.Equal(t, true, policy["purchasable"])
	assert.Nil(t, policy["redirect_to"])

	w = s.json(http.MethodGet, "/api/v1/storefront/policy?page=nope", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func itoa(n uint64) string {
	b, _ := json.Marshal(n)
	return string(b)
}

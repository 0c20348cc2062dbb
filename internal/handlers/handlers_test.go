package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/arzan03/PalavraDoDia/internal/db"
	"github.com/arzan03/PalavraDoDia/internal/metrics"
	"github.com/arzan03/PalavraDoDia/internal/models"
	"github.com/arzan03/PalavraDoDia/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "admin@palavradodia.com"
	testPassword = "admin123"
)

type envelopeResponse struct {
	Success     bool                `json:"success"`
	Token       string              `json:"token"`
	Message     string              `json:"message"`
	Errors      []models.FieldError `json:"errors"`
	Data        json.RawMessage     `json:"data"`
	CurrentPage int                 `json:"currentPage"`
	TotalPages  int                 `json:"totalPages"`
	TotalItems  int                 `json:"totalItems"`
}

type memoryImages struct{}

func (memoryImages) Put(_ context.Context, name string, r io.Reader, _ int64, _ string) (string, error) {
	_, err := io.Copy(io.Discard, r)
	return "http://img.test/palavra-images/" + name, err
}

func (memoryImages) Remove(context.Context, string) error { return nil }

type testServer struct {
	app     *fiber.App
	entries *db.MemoryEntryRepository
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	accounts := db.NewMemoryAccountRepository()
	entries := db.NewMemoryEntryRepository()
	auth := services.NewAuthService(accounts, "handler-secret", time.Hour, log)
	_, err := auth.EnsureAdmin(context.Background(), "Administrador", testEmail, testPassword)
	require.NoError(t, err)

	app := NewApp(Deps{
		Auth:    auth,
		Entries: services.NewEntryService(entries, memoryImages{}, 1<<20, log),
		Metrics: metrics.New(),
		Log:     log,
	})
	return &testServer{app: app, entries: entries}
}

func (s *testServer) do(t *testing.T, method, path string, body any, token string) (*http.Response, envelopeResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (*http.Response, envelopeResponse) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelopeResponse
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get(fiber.HeaderContentType), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	if s.token != "" {
		return s.token
	}
	resp, env := s.do(t, fiber.MethodPost, "/api/auth/login", map[string]string{
		"email": testEmail, "password": testPassword,
	}, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	s.token = env.Token
	return s.token
}

func entryBody(word string) map[string]any {
	return map[string]any{
		"word":       map[string]string{"pt": word, "en": "Word"},
		"quote":      map[string]string{"pt": "Citação"},
		"reference":  map[string]string{"pt": "João 3:16"},
		"reflection": map[string]string{"pt": "Reflexão"},
	}
}

func decodeEntry(t *testing.T, raw json.RawMessage) models.Entry {
	t.Helper()
	var e models.Entry
	require.NoError(t, json.Unmarshal(raw, &e))
	return e
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)

	t.Run("Success", func(t *testing.T) {
		resp, env := s.do(t, fiber.MethodPost, "/api/auth/login", map[string]string{
			"email": testEmail, "password": testPassword,
		}, "")
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.True(t, env.Success)
		assert.NotEmpty(t, env.Token)
		assert.NotContains(t, string(env.Data), "password")
		assert.Contains(t, string(env.Data), testEmail)

		var cookie *http.Cookie
		for _, c := range resp.Cookies() {
			if c.Name == "token" {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		assert.Equal(t, env.Token, cookie.Value)
		assert.True(t, cookie.HttpOnly)
	})

	t.Run("WrongPassword", func(t *testing.T) {
		resp, env := s.do(t, fiber.MethodPost, "/api/auth/login", map[string]string{
			"email": testEmail, "password": "admin124",
		}, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.False(t, env.Success)
		assert.Equal(t, "Credenciais inválidas", env.Message)
	})

	t.Run("MissingFields", func(t *testing.T) {
		resp, env := s.do(t, fiber.MethodPost, "/api/auth/login", map[string]string{"email": testEmail}, "")
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "Email e senha são obrigatórios", env.Message)
	})
}

func TestMe(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	resp, env := s.do(t, fiber.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var account models.Account
	require.NoError(t, json.Unmarshal(env.Data, &account))
	assert.Equal(t, testEmail, account.Email)
	assert.Equal(t, models.RoleAdmin, account.Role)

	req := httptest.NewRequest(fiber.MethodGet, "/api/auth/me", nil)
	req.Header.Set(fiber.HeaderCookie, "token="+token)
	resp, _ = s.send(t, req)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	s := newTestServer(t)
	id := "65f0c0ffee65f0c0ffee65f0"

	routes := []struct{ method, path string }{
		{fiber.MethodGet, "/api/auth/me"},
		{fiber.MethodPost, "/api/words"},
		{fiber.MethodGet, "/api/words"},
		{fiber.MethodGet, "/api/words/" + id},
		{fiber.MethodPut, "/api/words/" + id},
		{fiber.MethodDelete, "/api/words/" + id},
		{fiber.MethodPost, "/api/words/" + id + "/images/word"},
	}
	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			resp, env := s.do(t, r.method, r.path, nil, "")
			assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
			assert.False(t, env.Success)
			assert.Equal(t, "Acesso não autorizado. Faça login para continuar.", env.Message)
		})
	}
	assert.Zero(t, s.entries.CallCount())

	resp, _ := s.do(t, fiber.MethodGet, "/api/words", nil, "garbage")
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestWordsLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	resp, env := s.do(t, fiber.MethodPost, "/api/words", entryBody("Esperança"), token)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	created := decodeEntry(t, env.Data)
	assert.Equal(t, models.StatusDraft, created.Status)
	assert.Equal(t, models.LanguagePT, created.Language)
	id := created.ID.Hex()

	resp, env = s.do(t, fiber.MethodGet, "/api/words/"+id, nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, created.Word, decodeEntry(t, env.Data).Word)

	resp, env = s.do(t, fiber.MethodPut, "/api/words/"+id, map[string]string{"status": "published"}, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decodeEntry(t, env.Data)
	assert.Equal(t, models.StatusPublished, updated.Status)
	assert.Equal(t, created.Quote, updated.Quote)
	require.NotNil(t, updated.UpdatedBy)

	resp, env = s.do(t, fiber.MethodPut, "/api/words/"+id, map[string]string{"status": "archived"}, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, env = s.do(t, fiber.MethodGet, "/api/words?status=published&search=ESPER", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, env.TotalItems)

	resp, env = s.do(t, fiber.MethodDelete, "/api/words/"+id, nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Palavra excluída com sucesso", env.Message)

	resp, env = s.do(t, fiber.MethodGet, "/api/words/"+id, nil, token)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Palavra não encontrada", env.Message)

	resp, _ = s.do(t, fiber.MethodDelete, "/api/words/"+id, nil, token)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, fiber.MethodPut, "/api/words/"+id, map[string]string{"status": "draft"}, token)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, fiber.MethodGet, "/api/words/not-an-id", nil, token)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateWord_MissingReflection(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	body := entryBody("Paz")
	delete(body, "reflection")

	resp, env := s.do(t, fiber.MethodPost, "/api/words", body, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "reflection.pt")
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "reflection.pt", env.Errors[0].Field)
}

func TestListWords_Pagination(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	for i := 0; i < 25; i++ {
		body := entryBody("Palavra " + strconv.Itoa(i))
		body["publishDate"] = time.Date(2024, 1, 1+i, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		resp, _ := s.do(t, fiber.MethodPost, "/api/words", body, token)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp, env := s.do(t, fiber.MethodGet, "/api/words?page=1&limit=10", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var items []models.Entry
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 10)
	assert.Equal(t, 1, env.CurrentPage)
	assert.Equal(t, 3, env.TotalPages)
	assert.Equal(t, 25, env.TotalItems)
	assert.Equal(t, "Palavra 24", items[0].Word.PT)

	_, env = s.do(t, fiber.MethodGet, "/api/words?page=3&limit=10", nil, token)
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 5)

	_, env = s.do(t, fiber.MethodGet, "/api/words?startDate=2024-01-10&endDate=2024-01-12", nil, token)
	assert.Equal(t, 3, env.TotalItems)

	_, env = s.do(t, fiber.MethodGet, "/api/words?search=nada-aqui", nil, token)
	assert.Equal(t, "[]", string(env.Data))
	assert.Equal(t, 0, env.TotalItems)

	resp, env = s.do(t, fiber.MethodGet, "/api/words?limit=1099511627776", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &items))
	assert.Len(t, items, 25)
	assert.Equal(t, 1, env.TotalPages)

	resp, env = s.do(t, fiber.MethodGet, "/api/words?page=9223372036854775807&limit=10", nil, token)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "[]", string(env.Data))
	assert.Equal(t, 25, env.TotalItems)

	resp, env = s.do(t, fiber.MethodGet, "/api/words?startDate=ontem", nil, token)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "startDate", env.Errors[0].Field)
}

func TestUploadImage(t *testing.T) {
	s := newTestServer(t)
	token := s.login(t)

	_, env := s.do(t, fiber.MethodPost, "/api/words", entryBody("Luz"), token)
	id := decodeEntry(t, env.Data).ID.Hex()

	upload := func(kind, contentType string) (*http.Response, envelopeResponse) {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="luz.png"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("\x89PNG fake"))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(fiber.MethodPost, "/api/words/"+id+"/images/"+kind, &body)
		req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
		return s.send(t, req)
	}

	resp, env := upload("reflection", "image/png")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	entry := decodeEntry(t, env.Data)
	assert.True(t, strings.HasPrefix(entry.Images.Reflection, "http://img.test/palavra-images/"+id+"/reflection-"))

	resp, _ = upload("reflection", "text/plain")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	resp, env := s.do(t, fiber.MethodGet, "/health", nil, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	resp, _ = s.do(t, fiber.MethodGet, "/api/words", nil, "")
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err := s.app.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "palavra_http_requests_total")
	assert.Contains(t, string(raw), `palavra_http_requests_total{method="GET",route="/api/words",status="401"} 1`)
	assert.NotContains(t, string(raw), `route="/api/words",status="200"`)
}

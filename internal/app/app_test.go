package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arzan03/PalavraDoDia/internal/config"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	public := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(public, "index.html"), []byte("<h1>Palavra do Dia</h1>"), 0o600))

	return &config.Config{
		Port:          "0",
		AppEnv:        "test",
		PublicDir:     public,
		StorageDriver: config.DriverMemory,
		DBTimeout:     500 * time.Millisecond,
		JWTSecret:     "app-secret",
		JWTExpire:     time.Hour,
		AdminName:     "Administrador",
		AdminEmail:    "admin@palavradodia.com",
		AdminPassword: "admin123",
		Minio: config.MinioConfig{
			Endpoint:     "127.0.0.1:1",
			AccessKey:    "minioadmin",
			SecretKey:    "minioadmin",
			Bucket:       "palavra-images",
			PublicURL:    "http://127.0.0.1:1",
			MaxImageSize: 1024,
		},
	}
}

func TestNew_MemoryDriverBootstrapsAdmin(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := New(context.Background(), testConfig(t), log)
	require.NoError(t, err)

	body, _ := json.Marshal(map[string]string{"email": "admin@palavradodia.com", "password": "admin123"})
	req := httptest.NewRequest(fiber.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := a.HTTP().Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestNew_ServesFrontEndFallback(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	a, err := New(context.Background(), testConfig(t), log)
	require.NoError(t, err)

	resp, err := a.HTTP().Test(httptest.NewRequest(fiber.MethodGet, "/painel/palavras", nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "Palavra do Dia")
}

func TestNew_InvalidAdminFails(t *testing.T) {
	cfg := testConfig(t)
	cfg.AdminEmail = "invalido"

	_, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

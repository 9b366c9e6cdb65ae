package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"artfolio_backend/database"
	"artfolio_backend/internal/app"
	"artfolio_backend/internal/config"

	"github.com/stretchr/testify/require"
)

// TestServer - приложение поверх in-memory SQLite и локального хранилища
type TestServer struct {
	Server *httptest.Server
	App    *app.App
}

// NewTestServer поднимает изолированный сервер на каждый тест
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.Server.Env = "test"
	cfg.Database.Driver = "sqlite"
	cfg.JWT.Secret = "my_super_secret_key_for_tests_12345"
	cfg.Storage.BasePath = t.TempDir()
	cfg.Upload.MaxPending = 3

	db, err := database.OpenSQLite("file::memory:")
	require.NoError(t, err, "Не удалось открыть тестовую БД")
	require.NoError(t, database.AutoMigrate(db))

	application, err := app.New(cfg, db)
	require.NoError(t, err)

	server := httptest.NewServer(application.Router)

	t.Cleanup(func() {
		server.Close()
		application.Close()
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return &TestServer{Server: server, App: application}
}

// SendRequest отправляет JSON-запрос и возвращает ответ с телом
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "Ошибка кодирования JSON для запроса")
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return ts.do(t, req)
}

// SendFile отправляет multipart-форму с полем file
func (ts *TestServer) SendFile(t *testing.T, path, token, fileName, contentType string, data []byte) (*http.Response, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return ts.do(t, req)
}

func (ts *TestServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()

	res, err := ts.Server.Client().Do(req)
	require.NoError(t, err, "Ошибка отправки HTTP-запроса")
	defer res.Body.Close()

	resBody, err := io.ReadAll(res.Body)
	require.NoError(t, err, "Ошибка чтения тела ответа")
	return res, string(resBody)
}

// decode разбирает JSON-ответ в out
func decode(t *testing.T, body string, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(body), out), "body: %s", body)
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	SessionID   string `json:"session_id"`
}

// register регистрирует пользователя и возвращает токен его сессии
func register(t *testing.T, ts *TestServer, username string) authResponse {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": username,
		"email":    username + "@test.com",
		"password": "super_password123",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode, body)

	var auth authResponse
	decode(t, body, &auth)
	return auth
}

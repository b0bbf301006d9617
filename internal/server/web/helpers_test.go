package web

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/scribblenest/internal/common"
	"github.com/dmitrijs2005/scribblenest/internal/logging"
	"github.com/dmitrijs2005/scribblenest/internal/server/config"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scribblenest/internal/server/services"
	"github.com/dmitrijs2005/scribblenest/internal/server/storage"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// pngBytes starts with the PNG signature, which is all content sniffing
// looks at.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type testEnv struct {
	srv    *Server
	store  *repomanager.MemoryRepositoryManager
	images *storage.LocalStore
}

func testConfig() *config.Config {
	return &config.Config{
		HTTPAddr:              "127.0.0.1:0",
		SecretKey:             "test-secret",
		SessionKey:            "test-session-key",
		TokenValidityDuration: time.Hour,
		BcryptCost:            bcrypt.MinCost,
		StoreTimeout:          time.Second,
		MaxUploadSize:         1 << 10,
	}
}

func newTestEnvWith(t *testing.T, wrap func(*repomanager.MemoryRepositoryManager) repomanager.RepositoryManager) *testEnv {
	t.Helper()

	cfg := testConfig()
	mem := repomanager.NewMemoryRepositoryManager()
	var m repomanager.RepositoryManager = mem
	if wrap != nil {
		m = wrap(mem)
	}

	images, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	log := logging.Nop{}
	srv, err := NewServer(cfg, log, Services{
		Users:   services.NewUserService(m, images, cfg, log),
		Posts:   services.NewPostService(m, cfg, log),
		Uploads: services.NewUploadService(m, images, cfg, log),
	}, m, images.Dir())
	require.NoError(t, err)

	return &testEnv{srv: srv, store: mem, images: images}
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWith(t, nil)
}

func (e *testEnv) do(req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec.Result()
}

func formRequest(method, target string, vals url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(vals.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func getRequest(target string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func multipartRequest(t *testing.T, field, filename string, body []byte, cookies ...*http.Cookie) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = fw.Write(body)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "nothing attached"))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	return buf.String()
}

func registerForm(email string) url.Values {
	return url.Values{
		"email":    {email},
		"password": {"pw"},
		"username": {"alice"},
		"name":     {"Alice"},
		"age":      {"30"},
	}
}

// register signs a user up and returns the session cookie and user ID.
func (e *testEnv) register(t *testing.T, email string) (*http.Cookie, string) {
	t.Helper()

	resp := e.do(formRequest(http.MethodPost, "/register", registerForm(email)))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	c := findCookie(resp, common.SessionCookieName)
	require.NotNil(t, c)

	u, err := e.store.Users().GetByEmail(context.Background(), email)
	require.NoError(t, err)
	return &http.Cookie{Name: c.Name, Value: c.Value}, u.ID
}

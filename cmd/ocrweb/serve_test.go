package main

import (
	"bytes"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ocrweb/internal/config"
	"ocrweb/internal/model"
	pipeMocks "ocrweb/internal/pipeline/mocks"
	"ocrweb/internal/service"
	serviceMocks "ocrweb/internal/service/mocks"
	"ocrweb/internal/view"
)

var tokenField = regexp.MustCompile(`name="csrf_token" value="([^"]+)"`)

func testApp(t *testing.T, svc service.ExtractionService) *fiber.App {
	t.Helper()
	renderer, err := view.NewRenderer()
	require.NoError(t, err)

	cfg := config.Defaults()
	cfg.SecretKey = "test-secret"
	app, err := newApp(cfg, appDeps{
		Service:    svc,
		Recognizer: new(pipeMocks.MockRecognizer),
		View:       renderer,
		Registry:   prometheus.NewRegistry(),
		MediaRoot:  t.TempDir(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	return app
}

func send(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, string) {
	t.Helper()
	req.Host = "localhost"
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

// formSession loads the upload form and returns its token and cookie.
func formSession(t *testing.T, app *fiber.App) (string, *http.Cookie) {
	t.Helper()
	resp, body := send(t, app, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	m := tokenField.FindStringSubmatch(body)
	require.Len(t, m, 2, "form has no csrf token")
	for _, c := range resp.Cookies() {
		if c.Name == "csrf_" {
			return m[1], c
		}
	}
	t.Fatal("csrf cookie not set")
	return "", nil
}

func uploadRequest(t *testing.T, token string, cookie *http.Cookie) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if token != "" {
		require.NoError(t, w.WriteField("csrf_token", token))
	}
	part, err := w.CreateFormFile("file", "sample.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if cookie != nil {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}
	return req
}

func TestNewApp_UploadRoundTrip(t *testing.T) {
	svc := new(serviceMocks.MockExtractionService)
	svc.On("Process", mock.Anything, mock.MatchedBy(func(in service.UploadInput) bool {
		return in.OriginalName == "sample.png" && in.Size == 9
	})).Return(&model.Extraction{
		File:   model.StoredFile{Name: "sample.png", OriginalName: "sample.png", URL: "/media/sample.png", Size: 9},
		Result: &model.OCRResult{Engine: "tesseract", Text: "hello", Records: []model.Record{}},
	}, nil).Once()
	app := testApp(t, svc)

	token, cookie := formSession(t, app)
	// plain HTTP keeps the cookie usable outside debug mode
	assert.False(t, cookie.Secure)
	assert.True(t, cookie.HttpOnly)

	resp, body := send(t, app, uploadRequest(t, token, cookie))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, `id="result"`)
	assert.Contains(t, body, "&#34;text&#34;: &#34;hello&#34;")
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	svc.AssertExpectations(t)
}

func TestNewApp_Rejections(t *testing.T) {
	svc := new(serviceMocks.MockExtractionService)
	app := testApp(t, svc)

	t.Run("missing token", func(t *testing.T) {
		_, cookie := formSession(t, app)
		resp, _ := send(t, app, uploadRequest(t, "", cookie))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("token without cookie", func(t *testing.T) {
		token, _ := formSession(t, app)
		resp, _ := send(t, app, uploadRequest(t, token, nil))
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("unknown host", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	svc.AssertNotCalled(t, "Process", mock.Anything, mock.Anything)
}

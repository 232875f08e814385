package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/guaraci/paylink/internal/domain"
	"github.com/guaraci/paylink/internal/intake"
	"github.com/guaraci/paylink/internal/metrics"
	"github.com/guaraci/paylink/internal/notify"
	"github.com/guaraci/paylink/internal/ratelimit"
	"github.com/guaraci/paylink/internal/repository/memory"
	"github.com/guaraci/paylink/internal/service/paylink"
	"github.com/guaraci/paylink/internal/service/submission"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []domain.NotificationEmail
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg domain.NotificationEmail) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

type testEnv struct {
	router http.Handler
	repo   *memory.PaymentLinkRepo
	sender *recordingSender
}

func newTestEnv(t *testing.T, opts RouterOptions, hopts ...HandlersOption) *testEnv {
	t.Helper()
	repo := memory.NewPaymentLinkRepo()
	links := paylink.NewService(repo)
	composer, err := notify.NewComposer(time.UTC)
	require.NoError(t, err)
	sender := &recordingSender{}
	pipeline := submission.NewPipeline(links, composer, sender, "ops@guaraci.test",
		submission.WithMetrics(opts.Metrics))

	h := NewHandlers(pipeline, hopts...)
	hc := NewHealthChecker(links)
	return &testEnv{router: SetupRoutes(h, hc, opts), repo: repo, sender: sender}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func generateLinkJSON(body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/generate-link", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type upload struct {
	field, filename, contentType string
	content                      []byte
}

func submitRequest(t *testing.T, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, f.filename))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/submit-payment", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func bothFiles() []upload {
	return []upload{
		{domain.FieldFotoDocumento, "doc.png", "image/png", []byte("FOTO")},
		{domain.FieldSelfieDocumento, "selfie.jpg", "image/jpeg", []byte("SELFIE")},
	}
}

func validFields(linkID string) map[string]string {
	return map[string]string{
		"nome":     "Ana",
		"email":    "ana@x.com",
		"telefone": "111",
		"linkId":   linkID,
	}
}

func TestEndToEnd(t *testing.T) {
	env := newTestEnv(t, RouterOptions{})

	rec := env.do(generateLinkJSON(`{"redirectUrl":"https://example.com/done"}`))
	require.Equal(t, http.StatusOK, rec.Code)
	created := decodeBody(t, rec)
	assert.Equal(t, "Link criado com sucesso!", created["message"])
	require.NotEmpty(t, created["id"])

	rec = env.do(submitRequest(t, validFields(created["id"]), bothFiles()...))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "Pagamento enviado com sucesso!", body["message"])
	assert.Equal(t, "https://example.com/done", body["redirectUrl"])

	require.Len(t, env.sender.sent, 2)
	assert.Equal(t, "ops@guaraci.test", env.sender.sent[0].To)
	assert.Len(t, env.sender.sent[0].Attachments, 2)
	assert.Equal(t, "ana@x.com", env.sender.sent[1].To)
	assert.Empty(t, env.sender.sent[1].Attachments)
}

func TestGenerateLink_IDsAreFresh(t *testing.T) {
	env := newTestEnv(t, RouterOptions{})
	seen := map[string]bool{}

	for i := 0; i < 20; i++ {
		rec := env.do(generateLinkJSON(fmt.Sprintf(`{"redirectUrl":"https://example.com/%d"}`, i)))
		require.Equal(t, http.StatusOK, rec.Code)
		id := decodeBody(t, rec)["id"]
		assert.False(t, seen[id])
		seen[id] = true

		link, err := env.repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("https://example.com/%d", i), link.RedirectURL)
	}
}

func TestGenerateLink_Form(t *testing.T) {
	env := newTestEnv(t, RouterOptions{})

	form := url.Values{"redirectUrl": {"https://example.com/form"}}
	req := httptest.NewRequest(http.MethodPost, "/api/generate-link", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	rec := env.do(req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, env.repo.Len())
}

func TestGenerateLink_Missing(t *testing.T) {
	env := newTestEnv(t, RouterOptions{})

	for _, body := range []string{`{}`, `{"redirectUrl":""}`, `{"redirectUrl":"   "}`, `not json`} {
		rec := env.do(generateLinkJSON(body))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Dados de pagamento obrigatórios", decodeBody(t, rec)["error"])
	}
	assert.Zero(t, env.repo.Len())
}

func TestSubmitPayment_MissingFields(t *testing.T) {
	env := newTestEnv(t, RouterOptions{})

	fields := validFields("whatever")
	delete(fields, "telefone")
	rec := env.do(submitRequest(t, fields, bothFiles()...))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Dados obrigatórios ausentes.", decodeBody(t, rec)["error"])
	assert.Empty(t, env.sender.sent)
}

func TestSubmitPayment_NotMultipart(t *testing.T) {
	env := newTestEnv(t, RouterOptions{})

	req := httptest.NewRequest(http.MethodPost, "/api/submit-payment", strings.NewReader(`{"nome":"Ana"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := env.do(req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Dados obrigatórios ausentes.", decodeBody(t, rec)["error"])
}

func TestSubmitPayment_MissingImages(t *testing.T) {
	env := newTestEnv(t, RouterOptions{})
	link, err := paylink.NewService(env.repo).CreateLink(context.Background(), "https://r")
	require.NoError(t, err)

	rec := env.do(submitRequest(t, validFields(link.ID), bothFiles()[0]))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Imagens obrigatórias ausentes.", decodeBody(t, rec)["error"])
	assert.Empty(t, env.sender.sent)
}

func TestSubmitPayment_TooManyFiles(t *testing.T) {
	env := newTestEnv(t, RouterOptions{})
	link, err := paylink.NewService(env.repo).CreateLink(context.Background(), "https://r")
	require.NoError(t, err)

	files := append(bothFiles(), upload{domain.FieldSelfieDocumento, "again.jpg", "image/jpeg", []byte("X")})
	rec := env.do(submitRequest(t, validFields(link.ID), files...))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Imagens inválidas.", decodeBody(t, rec)["error"])
	assert.Empty(t, env.sender.sent)
}

func TestSubmitPayment_IntakeLimits(t *testing.T) {
	env := newTestEnv(t, RouterOptions{}, WithIntakeLimits(intake.Limits{AllowedTypes: []string{"image/png"}}))
	link, err := paylink.NewService(env.repo).CreateLink(context.Background(), "https://r")
	require.NoError(t, err)

	rec := env.do(submitRequest(t, validFields(link.ID), bothFiles()...))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, env.sender.sent)
}

func TestSubmitPayment_UnknownLink(t *testing.T) {
	env := newTestEnv(t, RouterOptions{})

	rec := env.do(submitRequest(t, validFields("never-created"), bothFiles()...))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Link não encontrado.", decodeBody(t, rec)["error"])
	assert.Empty(t, env.sender.sent)
}

func TestSubmitPayment_Resubmission(t *testing.T) {
	env := newTestEnv(t, RouterOptions{})
	link, err := paylink.NewService(env.repo).CreateLink(context.Background(), "https://r")
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		rec := env.do(submitRequest(t, validFields(link.ID), bothFiles()...))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Len(t, env.sender.sent, 4)
}

func TestSubmitPayment_DispatchFailure(t *testing.T) {
	env := newTestEnv(t, RouterOptions{})
	env.sender.err = errors.New("SES MessageRejected: Email address is not verified")
	link, err := paylink.NewService(env.repo).CreateLink(context.Background(), "https://r")
	require.NoError(t, err)

	rec := env.do(submitRequest(t, validFields(link.ID), bothFiles()...))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Erro interno ao processar o pagamento.", decodeBody(t, rec)["error"])
	assert.NotContains(t, rec.Body.String(), "SES")
}

func TestRateLimit(t *testing.T) {
	m := metrics.New()
	env := newTestEnv(t, RouterOptions{Limiter: ratelimit.NewMemoryLimiter(2, time.Minute), Metrics: m})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.RemoteAddr = "203.0.113.9:4000"
		codes = append(codes, env.do(req).Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("no reachable servers") }

func TestHealth(t *testing.T) {
	env := newTestEnv(t, RouterOptions{Metrics: metrics.New()})

	for _, path := range []string{"/", "/health", "/health/ready"} {
		rec := env.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	rec := env.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "paylink_http_request_duration_seconds")
}

func TestReadinessDown(t *testing.T) {
	hc := NewHealthChecker(failingPinger{})
	rec := httptest.NewRecorder()
	hc.HandleReadiness(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ready":false`)
	assert.NotContains(t, rec.Body.String(), "no reachable servers")
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, RouterOptions{AllowedOrigins: []string{"https://guaraci.app"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/generate-link", nil)
	req.Header.Set("Origin", "https://guaraci.app")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := env.do(req)
	assert.Equal(t, "https://guaraci.app", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/generate-link", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec = env.do(req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDefaultAllowsAny(t *testing.T) {
	env := newTestEnv(t, RouterOptions{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := env.do(req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

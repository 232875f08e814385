package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/guaraci/paylink/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 3, 14, 18, 30, 5, 0, time.UTC)

func newTestComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := NewComposer(time.UTC)
	require.NoError(t, err)
	return c
}

func testSubmission() domain.Submission {
	return domain.Submission{
		Nome:     "Ana",
		Email:    "a@x.io",
		Telefone: "11999999999",
		LinkID:   "link-123",
		FotoDocumento: &domain.Attachment{
			Field: domain.FieldFotoDocumento, Filename: "front.png", ContentType: "image/png", Content: []byte("PNG"),
		},
		SelfieDocumento: &domain.Attachment{
			Field: domain.FieldSelfieDocumento, Filename: "me.jpg", ContentType: "image/jpeg", Content: []byte("JPG"),
		},
	}
}

func TestRenderOperatorEmail(t *testing.T) {
	c := newTestComposer(t)

	out, err := c.RenderOperatorEmail("Ana", "a@x.io", "11999999999", "link-123", fixedNow)
	require.NoError(t, err)

	for _, want := range []string{
		"<!DOCTYPE html>",
		"<style>",
		"Novo Pagamento Recebido",
		"<td>Ana</td>",
		"<td>a@x.io</td>",
		"<td>11999999999</td>",
		"<td>link-123</td>",
		"<td>14/03/2025, 18:30:05</td>",
		"Documentos anexados:",
		"1. Foto do documento",
		"2. Selfie com documento",
		"© 2025 Guaraci",
	} {
		assert.Contains(t, out, want)
	}
}

func TestRenderSubmitterEmail(t *testing.T) {
	c := newTestComposer(t)

	out, err := c.RenderSubmitterEmail("Ana", "link-123", fixedNow)
	require.NoError(t, err)

	for _, want := range []string{
		"Pagamento em Processamento",
		"Olá, Ana!",
		"ID da transação: link-123",
		"Data: 14/03/2025, 18:30:05",
		"Equipe Guaraci",
		"© 2025 Guaraci",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Documentos anexados")
}

func TestRenderEscapesInput(t *testing.T) {
	c := newTestComposer(t)
	payload := `<script>alert("x")</script>`

	op, err := c.RenderOperatorEmail(payload, payload, payload, payload, fixedNow)
	require.NoError(t, err)
	sub, err := c.RenderSubmitterEmail(payload, payload, fixedNow)
	require.NoError(t, err)

	for _, out := range []string{op, sub} {
		assert.NotContains(t, out, "<script>")
		assert.Contains(t, out, "&lt;script&gt;")
	}
}

func TestRenderTimeZone(t *testing.T) {
	loc := Location("America/Sao_Paulo")
	if loc == time.UTC {
		t.Skip("zone database unavailable")
	}
	c, err := NewComposer(loc)
	require.NoError(t, err)

	// Sao Paulo is UTC-3 with no daylight saving since 2019.
	out, err := c.RenderSubmitterEmail("Ana", "link-123", fixedNow)
	require.NoError(t, err)
	assert.Contains(t, out, "14/03/2025, 15:30:05")
}

func TestFooterYearFollowsClock(t *testing.T) {
	c := newTestComposer(t)

	out, err := c.RenderSubmitterEmail("Ana", "link-123", time.Date(2031, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, out, "© 2031 Guaraci")
}

func TestLocationFallback(t *testing.T) {
	assert.Equal(t, time.UTC, Location("Not/AZone"))
}

func TestNewComposerNilLocation(t *testing.T) {
	c, err := NewComposer(nil)
	require.NoError(t, err)

	out, err := c.RenderSubmitterEmail("Ana", "l", fixedNow)
	require.NoError(t, err)
	assert.Contains(t, out, "14/03/2025, 18:30:05")
}

func TestOperatorEmail(t *testing.T) {
	c := newTestComposer(t)
	sub := testSubmission()

	msg, err := c.OperatorEmail(sub, fixedNow, "ops@guaraci.test")
	require.NoError(t, err)

	assert.Equal(t, "ops@guaraci.test", msg.To)
	assert.Equal(t, OperatorSubject, msg.Subject)
	assert.True(t, strings.Contains(msg.HTML, "<td>Ana</td>"))
	require.Len(t, msg.Attachments, 2)
	assert.Equal(t, domain.EmailAttachment{Filename: "foto_documento.jpg", ContentType: "image/png", Content: []byte("PNG")}, msg.Attachments[0])
	assert.Equal(t, domain.EmailAttachment{Filename: "selfie_documento.jpg", ContentType: "image/jpeg", Content: []byte("JPG")}, msg.Attachments[1])
}

func TestOperatorEmailMissingAttachment(t *testing.T) {
	c := newTestComposer(t)
	sub := testSubmission()
	sub.SelfieDocumento = nil

	_, err := c.OperatorEmail(sub, fixedNow, "ops@guaraci.test")
	assert.Error(t, err)
}

func TestSubmitterEmail(t *testing.T) {
	c := newTestComposer(t)

	msg, err := c.SubmitterEmail(testSubmission(), fixedNow)
	require.NoError(t, err)

	assert.Equal(t, "a@x.io", msg.To)
	assert.Equal(t, SubmitterSubject, msg.Subject)
	assert.Empty(t, msg.Attachments)
	assert.Contains(t, msg.HTML, "Pagamento em Processamento")
}

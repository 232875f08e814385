package api

import (
	"errors"
	"mime"
	"net/http"

	"github.com/guaraci/paylink/internal/domain"
	"github.com/guaraci/paylink/internal/intake"
	"github.com/guaraci/paylink/internal/pkg/httputil"
	"github.com/guaraci/paylink/internal/pkg/logger"
	"github.com/guaraci/paylink/internal/service/paylink"
	"github.com/guaraci/paylink/internal/service/submission"
)

// Client-facing messages.
const (
	msgLinkCreated     = "Link criado com sucesso!"
	msgLinkDataMissing = "Dados de pagamento obrigatórios"
	msgInternal        = "Erro interno"
	msgFieldsMissing   = "Dados obrigatórios ausentes."
	msgLinkNotFound    = "Link não encontrado."
	msgPaymentSent     = "Pagamento enviado com sucesso!"
	msgPaymentFailed   = "Erro interno ao processar o pagamento."
)

const defaultMaxMemory = 32 << 20

// Handlers serves the payment link endpoints.
type Handlers struct {
	pipeline  *submission.Pipeline
	limits    intake.Limits
	maxMemory int64
}

// HandlersOption customizes Handlers.
type HandlersOption func(*Handlers)

// WithIntakeLimits enables attachment size and type checks.
func WithIntakeLimits(l intake.Limits) HandlersOption {
	return func(h *Handlers) { h.limits = l }
}

// WithMaxMemory sets how much of a multipart body is kept in memory before
// spilling file parts to temporary files.
func WithMaxMemory(n int64) HandlersOption {
	return func(h *Handlers) {
		if n > 0 {
			h.maxMemory = n
		}
	}
}

func NewHandlers(p *submission.Pipeline, opts ...HandlersOption) *Handlers {
	h := &Handlers{pipeline: p, maxMemory: defaultMaxMemory}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type generateLinkRequest struct {
	RedirectURL string `json:"redirectUrl"`
}

type generateLinkResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type submitPaymentResponse struct {
	Message     string `json:"message"`
	RedirectURL string `json:"redirectUrl"`
}

// GenerateLink issues a payment link. The body may be JSON or a form.
//
//	POST /api/generate-link
func (h *Handlers) GenerateLink(w http.ResponseWriter, r *http.Request) {
	redirectURL, err := h.readRedirectURL(r)
	if err != nil {
		logger.Debug("generate-link: unreadable body", "error", err.Error())
		httputil.BadRequest(w, msgLinkDataMissing)
		return
	}

	link, err := h.pipeline.CreateLink(r.Context(), redirectURL)
	if errors.Is(err, paylink.ErrRedirectURLRequired) {
		httputil.BadRequest(w, msgLinkDataMissing)
		return
	}
	if err != nil {
		httputil.InternalError(w, err, msgInternal)
		return
	}

	httputil.OK(w, generateLinkResponse{Message: msgLinkCreated, ID: link.ID})
}

func (h *Handlers) readRedirectURL(r *http.Request) (string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		var req generateLinkRequest
		if err := httputil.Decode(r, &req); err != nil {
			return "", err
		}
		return req.RedirectURL, nil
	}

	form, err := intake.ParseRequest(r, h.maxMemory)
	if err != nil {
		return "", err
	}
	defer form.RemoveAll()
	return intake.Value(form, "redirectUrl"), nil
}

// SubmitPayment accepts the identity documents for a payment link and
// notifies the operator and the submitter.
//
//	POST /api/submit-payment
func (h *Handlers) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	form, err := intake.ParseRequest(r, h.maxMemory)
	if err != nil {
		logger.Debug("submit-payment: unreadable body", "error", err.Error())
		httputil.BadRequest(w, msgFieldsMissing)
		return
	}
	defer form.RemoveAll()

	sub := domain.Submission{
		Nome:     intake.Value(form, domain.FieldNome),
		Email:    intake.Value(form, domain.FieldEmail),
		Telefone: intake.Value(form, domain.FieldTelefone),
		LinkID:   intake.Value(form, domain.FieldLinkID),
	}
	pair, extractErr := intake.Extract(form, h.limits)
	if pair != nil {
		sub.FotoDocumento = pair.FotoDocumento
		sub.SelfieDocumento = pair.SelfieDocumento
	}

	res, err := h.pipeline.SubmitUpload(r.Context(), sub, extractErr)
	if err != nil {
		writeSubmitError(w, err)
		return
	}

	httputil.OK(w, submitPaymentResponse{Message: msgPaymentSent, RedirectURL: res.RedirectURL})
}

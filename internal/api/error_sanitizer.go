package api

import (
	"errors"
	"net/http"

	"github.com/guaraci/paylink/internal/pkg/httputil"
	"github.com/guaraci/paylink/internal/service/submission"
)

// writeSubmitError maps pipeline errors to responses. Anything that is not a
// client error is logged in full and answered with a generic message.
func writeSubmitError(w http.ResponseWriter, err error) {
	var verr *submission.ValidationError
	switch {
	case errors.As(err, &verr):
		httputil.BadRequest(w, verr.Message())
	case errors.Is(err, submission.ErrLinkNotFound):
		httputil.NotFound(w, msgLinkNotFound)
	default:
		httputil.InternalError(w, err, msgPaymentFailed)
	}
}

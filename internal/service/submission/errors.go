package submission

import (
	"errors"
	"fmt"
	"strings"

	"github.com/guaraci/paylink/internal/domain"
)

// ErrLinkNotFound is returned when the submitted link id does not resolve.
var ErrLinkNotFound = errors.New("payment link not found")

// Stage names a state of the submission state machine.
type Stage int

const (
	StageReceived Stage = iota
	StageValidated
	StageLinkResolved
	StageNotifiedOperator
	StageNotifiedSubmitter
	StageComplete
)

func (s Stage) String() string {
	switch s {
	case StageReceived:
		return "received"
	case StageValidated:
		return "validated"
	case StageLinkResolved:
		return "link_resolved"
	case StageNotifiedOperator:
		return "notified_operator"
	case StageNotifiedSubmitter:
		return "notified_submitter"
	case StageComplete:
		return "complete"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// ValidationKind classifies a rejected submission.
type ValidationKind int

const (
	KindFields ValidationKind = iota
	KindAttachments
	KindInvalidAttachments
)

// ValidationError reports a submission rejected before any side effect.
type ValidationError struct {
	Kind    ValidationKind
	Missing []string
	Err     error
}

func (e *ValidationError) Error() string {
	switch e.Kind {
	case KindFields:
		return "missing required fields: " + strings.Join(e.Missing, ", ")
	case KindAttachments:
		return "missing required attachments: " + strings.Join(e.Missing, ", ")
	default:
		if e.Err != nil {
			return "invalid attachment: " + e.Err.Error()
		}
		return "invalid attachment"
	}
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Message is the client-facing text for the rejection.
func (e *ValidationError) Message() string {
	switch e.Kind {
	case KindFields:
		return "Dados obrigatórios ausentes."
	case KindAttachments:
		return "Imagens obrigatórias ausentes."
	default:
		return "Imagens inválidas."
	}
}

// DispatchError reports a notification that could not be handed to the mail
// sender. Stage is the state that was not reached.
type DispatchError struct {
	Stage   Stage
	Outcome domain.DispatchOutcome
	Err     error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed before %s: %v", e.Stage, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

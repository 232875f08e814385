// Package notify renders the two submission notifications: the operator
// email carrying the document images and the submitter confirmation.
package notify

import (
	"fmt"
	"html"
	"time"

	"github.com/guaraci/paylink/internal/domain"
	"github.com/osteele/liquid"
)

const (
	// Brand is the product name shown in headers and footers.
	Brand = "Guaraci"

	OperatorSubject  = "Novo pagamento recebido"
	SubmitterSubject = "Pagamento processado com sucesso"

	// TimestampLayout renders as "dd/MM/yyyy, HH:mm:ss".
	TimestampLayout = "02/01/2006, 15:04:05"

	DefaultTimeZone = "America/Sao_Paulo"
)

// Location resolves an IANA zone name, falling back to UTC when the zone
// database does not know it.
func Location(name string) *time.Location {
	if name == "" {
		name = DefaultTimeZone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Composer renders notification bodies from templates parsed once at
// construction. It is safe for concurrent use.
type Composer struct {
	loc       *time.Location
	operator  *liquid.Template
	submitter *liquid.Template
}

// NewComposer parses the notification templates. A nil loc means UTC.
func NewComposer(loc *time.Location) (*Composer, error) {
	if loc == nil {
		loc = time.UTC
	}

	engine := liquid.NewEngine()
	engine.RegisterFilter("escape", func(s string) string {
		return html.EscapeString(s)
	})

	operator, err := engine.ParseString(operatorTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing operator template: %w", err)
	}
	submitter, err := engine.ParseString(submitterTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing submitter template: %w", err)
	}

	return &Composer{loc: loc, operator: operator, submitter: submitter}, nil
}

func (c *Composer) bindings(now time.Time) liquid.Bindings {
	local := now.In(c.loc)
	return liquid.Bindings{
		"brand":     Brand,
		"timestamp": local.Format(TimestampLayout),
		"year":      local.Year(),
	}
}

// RenderOperatorEmail renders the HTML sent to the operator for a new
// submission.
func (c *Composer) RenderOperatorEmail(nome, email, telefone, linkID string, now time.Time) (string, error) {
	b := c.bindings(now)
	b["nome"] = nome
	b["email"] = email
	b["telefone"] = telefone
	b["link_id"] = linkID

	out, err := c.operator.RenderString(b)
	if err != nil {
		return "", fmt.Errorf("rendering operator email: %w", err)
	}
	return out, nil
}

// RenderSubmitterEmail renders the processing confirmation sent back to the
// submitter.
func (c *Composer) RenderSubmitterEmail(nome, linkID string, now time.Time) (string, error) {
	b := c.bindings(now)
	b["nome"] = nome
	b["link_id"] = linkID

	out, err := c.submitter.RenderString(b)
	if err != nil {
		return "", fmt.Errorf("rendering submitter email: %w", err)
	}
	return out, nil
}

// OperatorEmail builds the operator notification with both document images
// attached under fixed filenames.
func (c *Composer) OperatorEmail(sub domain.Submission, now time.Time, to string) (domain.NotificationEmail, error) {
	body, err := c.RenderOperatorEmail(sub.Nome, sub.Email, sub.Telefone, sub.LinkID, now)
	if err != nil {
		return domain.NotificationEmail{}, err
	}

	msg := domain.NotificationEmail{To: to, Subject: OperatorSubject, HTML: body}
	for _, a := range []struct {
		filename string
		att      *domain.Attachment
	}{
		{domain.FotoDocumentoFilename, sub.FotoDocumento},
		{domain.SelfieDocumentoFilename, sub.SelfieDocumento},
	} {
		if a.att == nil {
			return domain.NotificationEmail{}, fmt.Errorf("operator email: %s missing", a.filename)
		}
		msg.Attachments = append(msg.Attachments, domain.EmailAttachment{
			Filename:    a.filename,
			ContentType: a.att.ContentType,
			Content:     a.att.Content,
		})
	}
	return msg, nil
}

// SubmitterEmail builds the confirmation addressed to the submitter.
func (c *Composer) SubmitterEmail(sub domain.Submission, now time.Time) (domain.NotificationEmail, error) {
	body, err := c.RenderSubmitterEmail(sub.Nome, sub.LinkID, now)
	if err != nil {
		return domain.NotificationEmail{}, err
	}
	return domain.NotificationEmail{To: sub.Email, Subject: SubmitterSubject, HTML: body}, nil
}

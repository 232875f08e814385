// Package intake extracts the identity-document images from a multipart
// submission. Files are held in memory for the duration of the request and
// are never written to any store.
package intake

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/guaraci/paylink/internal/domain"
)

// DefaultContentType is used when a part carries no Content-Type header.
const DefaultContentType = "application/octet-stream"

var (
	ErrMissingAttachment  = errors.New("required attachment missing")
	ErrTooManyFiles       = errors.New("more than one file in attachment field")
	ErrAttachmentRejected = errors.New("attachment rejected")
)

// Limits constrains accepted files. The zero value accepts any non-empty
// upload of any type.
type Limits struct {
	MaxFileBytes int64
	AllowedTypes []string
}

// Enabled reports whether any check beyond presence is configured.
func (l Limits) Enabled() bool {
	return l.MaxFileBytes > 0 || len(l.AllowedTypes) > 0
}

func (l Limits) allows(contentType string) bool {
	if len(l.AllowedTypes) == 0 {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	for _, t := range l.AllowedTypes {
		if strings.EqualFold(strings.TrimSpace(t), mediaType) {
			return true
		}
	}
	return false
}

// Pair holds the two required document images.
type Pair struct {
	FotoDocumento   *domain.Attachment
	SelfieDocumento *domain.Attachment
}

// Extract reads both document parts from form. Whatever was read is returned
// alongside ErrMissingAttachment so callers can still report in field order.
func Extract(form *multipart.Form, limits Limits) (*Pair, error) {
	pair := &Pair{}
	if form == nil {
		return pair, ErrMissingAttachment
	}

	var missing bool
	for _, target := range []struct {
		field string
		dst   **domain.Attachment
	}{
		{domain.FieldFotoDocumento, &pair.FotoDocumento},
		{domain.FieldSelfieDocumento, &pair.SelfieDocumento},
	} {
		att, err := extractOne(form, target.field, limits)
		if errors.Is(err, ErrMissingAttachment) {
			missing = true
			continue
		}
		if err != nil {
			return pair, err
		}
		*target.dst = att
	}
	if missing {
		return pair, ErrMissingAttachment
	}
	return pair, nil
}

func extractOne(form *multipart.Form, field string, limits Limits) (*domain.Attachment, error) {
	headers := form.File[field]
	switch {
	case len(headers) == 0:
		return nil, ErrMissingAttachment
	case len(headers) > 1:
		return nil, fmt.Errorf("%w: %s", ErrTooManyFiles, field)
	}
	fh := headers[0]

	if limits.MaxFileBytes > 0 && fh.Size > limits.MaxFileBytes {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d", ErrAttachmentRejected, field, fh.Size, limits.MaxFileBytes)
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = DefaultContentType
	}
	if !limits.allows(contentType) {
		return nil, fmt.Errorf("%w: %s has type %s", ErrAttachmentRejected, field, contentType)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", field, err)
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", field, err)
	}
	return &domain.Attachment{
		Field:       field,
		Filename:    fh.Filename,
		ContentType: contentType,
		Content:     content,
	}, nil
}

// ParseRequest parses a multipart body keeping up to maxMemory bytes in
// memory. A request that is not multipart yields a form holding only its
// urlencoded values so validation reports missing parts normally.
func ParseRequest(r *http.Request, maxMemory int64) (*multipart.Form, error) {
	err := r.ParseMultipartForm(maxMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		form := &multipart.Form{
			Value: map[string][]string{},
			File:  map[string][]*multipart.FileHeader{},
		}
		for k, v := range r.PostForm {
			form.Value[k] = v
		}
		return form, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parsing multipart form: %w", err)
	}
	return r.MultipartForm, nil
}

// Value returns the first value of a text field, or "".
func Value(form *multipart.Form, field string) string {
	if form == nil {
		return ""
	}
	if v := form.Value[field]; len(v) > 0 {
		return v[0]
	}
	return ""
}

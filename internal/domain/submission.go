package domain

// Multipart field names accepted by the submission endpoint.
const (
	FieldNome            = "nome"
	FieldEmail           = "email"
	FieldTelefone        = "telefone"
	FieldLinkID          = "linkId"
	FieldFotoDocumento   = "fotoDocumento"
	FieldSelfieDocumento = "selfieDocumento"
)

// Filenames used for the operator attachments regardless of what the
// submitter uploaded.
const (
	FotoDocumentoFilename   = "foto_documento.jpg"
	SelfieDocumentoFilename = "selfie_documento.jpg"
)

// Attachment is one uploaded binary part held in memory.
type Attachment struct {
	Field       string `json:"field"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"-"`
}

// Size returns the payload length in bytes.
func (a *Attachment) Size() int {
	if a == nil {
		return 0
	}
	return len(a.Content)
}

// Submission is a transient identity-document upload tied to a payment link.
// It lives for the duration of one request and is never persisted.
type Submission struct {
	Nome            string      `json:"nome"`
	Email           string      `json:"email"`
	Telefone        string      `json:"telefone"`
	LinkID          string      `json:"linkId"`
	FotoDocumento   *Attachment `json:"-"`
	SelfieDocumento *Attachment `json:"-"`
}

// MissingFields returns the names of required text fields that are empty, in
// a stable order. Values are taken as sent; whitespace counts as present.
func (s Submission) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name, value string
	}{
		{FieldNome, s.Nome},
		{FieldEmail, s.Email},
		{FieldTelefone, s.Telefone},
		{FieldLinkID, s.LinkID},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// MissingAttachments returns the names of required file parts that are absent.
func (s Submission) MissingAttachments() []string {
	var missing []string
	if s.FotoDocumento == nil {
		missing = append(missing, FieldFotoDocumento)
	}
	if s.SelfieDocumento == nil {
		missing = append(missing, FieldSelfieDocumento)
	}
	return missing
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubmissionMissingFields(t *testing.T) {
	tests := []struct {
		name string
		sub  Submission
		want []string
	}{
		{"all present", Submission{Nome: "Ana", Email: "ana@x.com", Telefone: "111", LinkID: "abc"}, nil},
		{"whitespace nome is present", Submission{Nome: "  ", Email: "ana@x.com", Telefone: "111", LinkID: "abc"}, nil},
		{"empty", Submission{}, []string{FieldNome, FieldEmail, FieldTelefone, FieldLinkID}},
		{"missing link", Submission{Nome: "Ana", Email: "ana@x.com", Telefone: "111"}, []string{FieldLinkID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sub.MissingFields())
		})
	}
}

func TestSubmissionMissingAttachments(t *testing.T) {
	att := &Attachment{Field: FieldFotoDocumento, Content: []byte{1}}

	assert.Equal(t, []string{FieldFotoDocumento, FieldSelfieDocumento}, Submission{}.MissingAttachments())
	assert.Equal(t, []string{FieldSelfieDocumento}, Submission{FotoDocumento: att}.MissingAttachments())
	assert.Nil(t, Submission{FotoDocumento: att, SelfieDocumento: att}.MissingAttachments())
}

func TestDispatchOutcome(t *testing.T) {
	assert.True(t, DispatchOutcome{OperatorSent: true, SubmitterSent: true}.Complete())
	assert.False(t, DispatchOutcome{OperatorSent: true, SubmitterSent: true}.Partial())
	assert.True(t, DispatchOutcome{OperatorSent: true}.Partial())
	assert.False(t, DispatchOutcome{}.Partial())
	assert.False(t, DispatchOutcome{}.Complete())
}

func TestAttachmentSize(t *testing.T) {
	var nilAtt *Attachment
	assert.Equal(t, 0, nilAtt.Size())
	assert.Equal(t, 3, (&Attachment{Content: []byte("abc")}).Size())
}

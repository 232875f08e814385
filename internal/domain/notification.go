package domain

// EmailAttachment is a binary part embedded in an outgoing notification.
type EmailAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// NotificationEmail is a fully composed message ready for a mail sender.
type NotificationEmail struct {
	To          string
	Subject     string
	HTML        string
	Attachments []EmailAttachment
}

// DispatchOutcome records which of the two submission notifications were
// handed to the mail sender. Dispatch is not atomic: the operator email may
// go out even when the submitter email then fails.
type DispatchOutcome struct {
	OperatorSent  bool `json:"operator_sent"`
	SubmitterSent bool `json:"submitter_sent"`
}

// Complete reports whether both notifications were sent.
func (o DispatchOutcome) Complete() bool {
	return o.OperatorSent && o.SubmitterSent
}

// Partial reports whether one notification went out but not the other.
func (o DispatchOutcome) Partial() bool {
	return o.OperatorSent != o.SubmitterSent
}

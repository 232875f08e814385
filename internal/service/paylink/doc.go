// Package paylink implements the payment link store service.
//
// A payment link is an opaque id that maps to the URL a submitter is sent to
// after uploading their documents. Links are append-only: created once,
// looked up any number of times, never updated, deleted or expired.
//
// The service layer contains pure business logic and depends on the
// Repository interface defined in repository.go. It never imports
// net/http or a database driver directly.
package paylink

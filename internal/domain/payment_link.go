package domain

import "time"

// PaymentLink maps an opaque link id to the destination a submitter is sent
// to after a successful submission. Links are append-only: they are never
// updated, deleted, consumed or expired.
type PaymentLink struct {
	ID          string    `json:"id" db:"id" bson:"id" dynamodbav:"ID"`
	RedirectURL string    `json:"redirectUrl" db:"redirect_url" bson:"redirectUrl" dynamodbav:"RedirectURL"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" bson:"createdAt" dynamodbav:"CreatedAt"`
}

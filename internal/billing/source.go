// Package billing fetches the current month's rent and utility charges from
// an upstream source so the bot can post them without a human typing them in.
package billing

import (
	"context"
	"errors"
)

// Charges are the amounts due for the current billing period, in cents.
type Charges struct {
	RentCents    int64 `json:"rent_cents"`
	UtilityCents int64 `json:"utilities_cents"`
}

var ErrUnavailable = errors.New("billing source unavailable")

// Source provides the current charges.
type Source interface {
	FetchCurrentCharges(ctx context.Context) (Charges, error)
}

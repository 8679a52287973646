package cart

import (
	"strings"

	"github.com/google/uuid"
)

// Owner identifies who a cart belongs to: a signed-in customer or an
// anonymous guest session. Exactly one of the two fields is set.
type Owner struct {
	CustomerID   uuid.UUID
	SessionToken string
}

// CustomerOwner builds an owner for a signed-in customer.
func CustomerOwner(customerID uuid.UUID) Owner {
	return Owner{CustomerID: customerID}
}

// GuestOwner builds an owner for a guest session token.
func GuestOwner(token string) Owner {
	return Owner{SessionToken: strings.TrimSpace(token)}
}

// Valid reports whether exactly one identity is present.
func (o Owner) Valid() bool {
	hasCustomer := o.CustomerID != uuid.Nil
	hasSession := o.SessionToken != ""
	return hasCustomer != hasSession
}

// IsGuest reports whether the owner is a guest session.
func (o Owner) IsGuest() bool {
	return o.CustomerID == uuid.Nil && o.SessionToken != ""
}

// FlagKey is the kvcache key for this owner's persisted UI flags.
func (o Owner) FlagKey() string {
	if o.IsGuest() {
		return "cart:flags:guest:" + o.SessionToken
	}
	return "cart:flags:" + o.CustomerID.String()
}

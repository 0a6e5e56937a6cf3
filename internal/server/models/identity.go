package models

import "strconv"

// Identity is the caller as resolved by the external auth collaborator.
// Only the capability flags are consumed here.
type Identity struct {
	ID         int64 `json:"id"`
	IsAdmin    bool  `json:"is_admin"`
	IsSupplier bool  `json:"is_supplier"`
	IsCustomer bool  `json:"is_customer"`
}

// Key is the identity string used for per-user counters.
func (i Identity) Key() string {
	return strconv.FormatInt(i.ID, 10)
}

// Owns reports whether the caller supplied the given resource.
func (i Identity) Owns(supplierID int64) bool {
	return i.ID == supplierID
}

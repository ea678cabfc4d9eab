package identity

import "time"

// User represents a registered wallet owner. The user's id doubles as its
// ledger account id.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash []byte
	CreatedAt    time.Time
}

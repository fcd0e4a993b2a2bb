// Package accounts persists (username, password digest) pairs.
package accounts

import "context"

// Account is one stored credential. PasswordHash is the hex digest produced
// by a cryptox.Digester, never the plaintext.
type Account struct {
	Username     string
	PasswordHash string
}

// Repository stores accounts keyed by username.
//
// Create must be atomic with respect to the username: when two callers race
// on the same name, exactly one observes created == true.
type Repository interface {
	Create(ctx context.Context, account *Account) (created bool, err error)
	GetByUsername(ctx context.Context, username string) (*Account, error)
}

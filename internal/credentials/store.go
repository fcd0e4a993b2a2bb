// Package credentials implements registration and password verification on
// top of an accounts.Repository.
package credentials

import (
	"context"
	"errors"
	"fmt"

	"github.com/vedant281104/AgriShield/internal/accounts"
	"github.com/vedant281104/AgriShield/internal/common"
	"github.com/vedant281104/AgriShield/internal/cryptox"
	"github.com/vedant281104/AgriShield/internal/logging"
)

// RegisterOutcome is the non-error result of Register.
type RegisterOutcome int

const (
	RegisterSuccess RegisterOutcome = iota + 1
	RegisterDuplicate
)

func (o RegisterOutcome) String() string {
	switch o {
	case RegisterSuccess:
		return "success"
	case RegisterDuplicate:
		return "duplicate"
	default:
		return "unknown"
	}
}

// VerifyOutcome is the non-error result of Verify. The zero value is Rejected.
type VerifyOutcome int

const (
	Rejected VerifyOutcome = iota
	Authenticated
)

func (o VerifyOutcome) String() string {
	if o == Authenticated {
		return "authenticated"
	}
	return "rejected"
}

// ErrStorage marks failures of the underlying database. It is never returned
// for a duplicate username or a wrong password.
var ErrStorage = errors.New("credential storage failure")

// Store registers and verifies username/password pairs. It is safe for
// concurrent use as long as the repository is.
type Store struct {
	repo     accounts.Repository
	digester cryptox.Digester
	// compared against when the username does not exist so that both
	// rejection paths do the same work
	dummy string
}

func NewStore(repo accounts.Repository, digester cryptox.Digester) (*Store, error) {
	dummy, err := common.MakeRandHexString(cryptox.DigestHexLen / 2)
	if err != nil {
		return nil, fmt.Errorf("dummy digest: %w", err)
	}
	return &Store{repo: repo, digester: digester, dummy: dummy}, nil
}

// Register stores a new account. A taken username yields RegisterDuplicate
// with a nil error and leaves the existing account untouched.
func (s *Store) Register(ctx context.Context, username, password string) (RegisterOutcome, error) {
	account := &accounts.Account{
		Username:     username,
		PasswordHash: s.digester.Digest(password),
	}

	created, err := s.repo.Create(ctx, account)
	if err != nil {
		return 0, storageError(ctx, "register", err)
	}
	if !created {
		return RegisterDuplicate, nil
	}
	return RegisterSuccess, nil
}

// Verify checks password against the stored digest. Unknown usernames and
// wrong passwords both yield Rejected with a nil error.
func (s *Store) Verify(ctx context.Context, username, password string) (VerifyOutcome, error) {
	candidate := s.digester.Digest(password)

	account, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = cryptox.Equal(candidate, s.dummy)
			return Rejected, nil
		}
		return Rejected, storageError(ctx, "verify", err)
	}

	if !cryptox.Equal(candidate, account.PasswordHash) {
		return Rejected, nil
	}
	return Authenticated, nil
}

func storageError(ctx context.Context, op string, err error) error {
	return logging.NewOperationError("credentials."+op, logging.RequestIDFromContext(ctx), fmt.Errorf("%w: %w", ErrStorage, err))
}

package credentials

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vedant281104/AgriShield/internal/accounts"
	"github.com/vedant281104/AgriShield/internal/common"
	"github.com/vedant281104/AgriShield/internal/cryptox"
	"github.com/vedant281104/AgriShield/internal/logging"
	"github.com/vedant281104/AgriShield/internal/storage"
)

func newSQLiteStore(t *testing.T, d cryptox.Digester) *Store {
	t.Helper()
	db, err := storage.Open(context.Background(), "sqlite://"+filepath.Join(t.TempDir(), "users.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := NewStore(db.Accounts(), d)
	require.NoError(t, err)
	return s
}

func argon(t *testing.T) cryptox.Digester {
	t.Helper()
	d, err := cryptox.NewArgon2idDigester("unit-test-pepper")
	require.NoError(t, err)
	return d
}

func TestRegisterThenVerify(t *testing.T) {
	s := newSQLiteStore(t, argon(t))
	ctx := context.Background()

	out, err := s.Register(ctx, "farmer", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, RegisterSuccess, out)

	v, err := s.Verify(ctx, "farmer", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, Authenticated, v)
}

func TestRegister_DuplicateKeepsOriginalPassword(t *testing.T) {
	s := newSQLiteStore(t, cryptox.SHA256Digester{})
	ctx := context.Background()

	out, err := s.Register(ctx, "farmer", "first")
	require.NoError(t, err)
	require.Equal(t, RegisterSuccess, out)

	out, err = s.Register(ctx, "farmer", "second")
	require.NoError(t, err)
	assert.Equal(t, RegisterDuplicate, out)

	v, err := s.Verify(ctx, "farmer", "first")
	require.NoError(t, err)
	assert.Equal(t, Authenticated, v)

	v, err = s.Verify(ctx, "farmer", "second")
	require.NoError(t, err)
	assert.Equal(t, Rejected, v)
}

func TestVerify_WrongPasswordAndUnknownUserAreIndistinguishable(t *testing.T) {
	s := newSQLiteStore(t, cryptox.SHA256Digester{})
	ctx := context.Background()

	_, err := s.Register(ctx, "farmer", "right")
	require.NoError(t, err)

	wrongOut, wrongErr := s.Verify(ctx, "farmer", "wrong")
	unknownOut, unknownErr := s.Verify(ctx, "nobody", "right")

	assert.Equal(t, Rejected, wrongOut)
	assert.Equal(t, wrongOut, unknownOut)
	assert.Equal(t, wrongErr, unknownErr)
	assert.NoError(t, wrongErr)
}

func TestVerify_UsernameIsCaseSensitive(t *testing.T) {
	s := newSQLiteStore(t, cryptox.SHA256Digester{})
	ctx := context.Background()

	_, err := s.Register(ctx, "Farmer", "pw")
	require.NoError(t, err)

	v, err := s.Verify(ctx, "farmer", "pw")
	require.NoError(t, err)
	assert.Equal(t, Rejected, v)
}

func TestRegister_ConcurrentSameUsername(t *testing.T) {
	s := newSQLiteStore(t, cryptox.SHA256Digester{})
	ctx := context.Background()

	const n = 16
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		outcomes = make(map[RegisterOutcome]int)
		errs     []error
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out, err := s.Register(ctx, "racer", fmt.Sprintf("pw-%d", i))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			outcomes[out]++
		}(i)
	}
	wg.Wait()

	require.Empty(t, errs)
	assert.Equal(t, 1, outcomes[RegisterSuccess])
	assert.Equal(t, n-1, outcomes[RegisterDuplicate])
}

type failingRepo struct {
	err error
}

func (r failingRepo) Create(context.Context, *accounts.Account) (bool, error) { return false, r.err }

func (r failingRepo) GetByUsername(context.Context, string) (*accounts.Account, error) {
	return nil, r.err
}

func TestStorageFaultsAreDistinct(t *testing.T) {
	s, err := NewStore(failingRepo{err: errors.New("disk I/O error")}, cryptox.SHA256Digester{})
	require.NoError(t, err)

	ctx := logging.WithRequestID(context.Background(), "req-1")

	_, err = s.Register(ctx, "a", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStorage)

	var opErr *logging.OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, "credentials.register", opErr.Operation)
	assert.Equal(t, "req-1", opErr.RequestID)

	v, err := s.Verify(ctx, "a", "b")
	assert.ErrorIs(t, err, ErrStorage)
	assert.Contains(t, err.Error(), "disk I/O error")
	assert.Equal(t, Rejected, v)
}

func TestNotFoundIsNotAStorageFault(t *testing.T) {
	s, err := NewStore(failingRepo{err: common.ErrorNotFound}, cryptox.SHA256Digester{})
	require.NoError(t, err)

	v, err := s.Verify(context.Background(), "ghost", "pw")
	require.NoError(t, err)
	assert.Equal(t, Rejected, v)
}

func TestOutcomeStrings(t *testing.T) {
	assert.Equal(t, "success", RegisterSuccess.String())
	assert.Equal(t, "duplicate", RegisterDuplicate.String())
	assert.Equal(t, "unknown", RegisterOutcome(0).String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "rejected", Rejected.String())
}

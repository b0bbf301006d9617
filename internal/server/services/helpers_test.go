package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/scribblenest/internal/logging"
	"github.com/dmitrijs2005/scribblenest/internal/server/config"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

func testConfig() *config.Config {
	return &config.Config{
		SecretKey:             "k",
		TokenValidityDuration: time.Hour,
		BcryptCost:            bcrypt.MinCost,
		StoreTimeout:          time.Second,
		MaxUploadSize:         1 << 20,
	}
}

var errUnlink = errors.New("users collection unavailable")

// flakyUsers fails post-list updates, as a store that loses a write between
// the two halves of a cross-document operation.
type flakyUsers struct {
	users.Repository
}

func (f flakyUsers) AddPost(context.Context, string, string) error    { return errUnlink }
func (f flakyUsers) RemovePost(context.Context, string, string) error { return errUnlink }

// flakyManager serves flakyUsers to InTx while Users() stays healthy.
type flakyManager struct {
	*repomanager.MemoryRepositoryManager
	transactional bool
}

func (m *flakyManager) Transactional() bool { return m.transactional }

func (m *flakyManager) InTx(ctx context.Context, fn repomanager.TxFunc) error {
	return fn(ctx, flakyUsers{m.MemoryRepositoryManager.Users()}, m.MemoryRepositoryManager.Posts())
}

var _ repomanager.RepositoryManager = (*flakyManager)(nil)

func newServices(t *testing.T, m repomanager.RepositoryManager) (*UserService, *PostService) {
	t.Helper()
	cfg := testConfig()
	return NewUserService(m, nil, cfg, logging.Nop{}), NewPostService(m, cfg, logging.Nop{})
}

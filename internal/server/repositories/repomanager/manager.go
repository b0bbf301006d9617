// Package repomanager is the persistence gateway: it opens one store
// connection at startup, hands out the users and posts repositories and
// runs multi-document work in a transaction where the backend supports it.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/posts"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/users"
)

// TxFunc receives repositories bound to the running transaction (or to the
// plain connection on backends without one).
type TxFunc func(ctx context.Context, users users.Repository, posts posts.Repository) error

type RepositoryManager interface {
	Users() users.Repository
	Posts() posts.Repository

	// InTx runs fn atomically when Transactional reports true; otherwise fn
	// runs against the plain connection and partial failures are possible.
	InTx(ctx context.Context, fn TxFunc) error
	Transactional() bool

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

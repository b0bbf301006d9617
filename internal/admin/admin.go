// Package admin implements the operator command line: creating accounts
// without the web form and running a reconcile pass on demand.
package admin

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/scribblenest/internal/common"
	"github.com/dmitrijs2005/scribblenest/internal/logging"
	"github.com/dmitrijs2005/scribblenest/internal/server/config"
	"github.com/dmitrijs2005/scribblenest/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/scribblenest/internal/server/services"
)

// ErrUnknownCommand is returned by Run for anything but the known commands.
var ErrUnknownCommand = errors.New("unknown command")

const usage = `usage: admin <command> [flags]

commands:
  register   create a user account (password is read without echo)
  reconcile  prune dangling post references once and print a report
  help       show this message
`

// IsCommand reports whether name is a command that needs the store.
func IsCommand(name string) bool {
	return name == "register" || name == "reconcile"
}

func PrintUsage(w io.Writer) {
	fmt.Fprint(w, usage)
}

type App struct {
	users      *services.UserService
	reconciler *services.Reconciler
	in         *bufio.Reader
	out        io.Writer
}

func NewApp(cfg *config.Config, logger logging.Logger, store repomanager.RepositoryManager, in io.Reader, out io.Writer) *App {
	return &App{
		users:      services.NewUserService(store, nil, cfg, logger),
		reconciler: services.NewReconciler(store, 0, cfg.StoreTimeout, logger),
		in:         bufio.NewReader(in),
		out:        out,
	}
}

// Run executes one command. args[0] is the command name.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		PrintUsage(a.out)
		return ErrUnknownCommand
	}

	switch args[0] {
	case "register":
		return a.register(ctx)
	case "reconcile":
		return a.reconcile(ctx)
	case "help", "-h", "--help":
		PrintUsage(a.out)
		return nil
	default:
		PrintUsage(a.out)
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
}

func (a *App) register(ctx context.Context) error {
	email, err := GetSimpleText(a.in, "Email", a.out)
	if err != nil {
		return err
	}
	username, err := GetSimpleText(a.in, "Username", a.out)
	if err != nil {
		return err
	}
	name, err := GetSimpleText(a.in, "Name", a.out)
	if err != nil {
		return err
	}
	ageText, err := GetSimpleText(a.in, "Age", a.out)
	if err != nil {
		return err
	}

	age := 0
	if ageText != "" {
		if age, err = strconv.Atoi(ageText); err != nil {
			return fmt.Errorf("%w: age must be a whole number", common.ErrValidation)
		}
	}

	pw, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	// Only the terminal read buffer is cleared; the string copy handed to
	// Register lives until the GC collects it.
	defer common.WipeByteArray(pw)

	res, err := a.users.Register(ctx, services.RegisterInput{
		Email:    email,
		Password: string(pw),
		Username: username,
		Name:     name,
		Age:      age,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Registered %s (id %s)\n", res.User.Email, res.User.ID)
	return nil
}

func (a *App) reconcile(ctx context.Context) error {
	rep, err := a.reconciler.RunOnce(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "users checked: %d\ndangling references pruned: %d\norphans linked: %d\nfailures: %d\n",
		rep.Users, rep.Pruned, rep.Linked, rep.Failed)
	return nil
}

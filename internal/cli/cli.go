// Package cli implements the dashboard terminal commands.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/google/subcommands"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/app"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/validation"
)

// Env is shared by every command. The application is built on first use so
// that help and usage errors never touch the database.
type Env struct {
	Open func(ctx context.Context) (*app.App, error)
	Out  io.Writer
	Err  io.Writer

	// Raw prints markdown without terminal styling.
	Raw bool

	app *app.App
}

// App returns the wired application, building it on first call.
func (e *Env) App(ctx context.Context) (*app.App, error) {
	if e.app != nil {
		return e.app, nil
	}
	a, err := e.Open(ctx)
	if err != nil {
		return nil, err
	}
	e.app = a
	return a, nil
}

// Close releases the application if it was built.
func (e *Env) Close() error {
	if e.app == nil {
		return nil
	}
	return e.app.Close()
}

func (e *Env) out() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

func (e *Env) errOut() io.Writer {
	if e.Err == nil {
		return os.Stderr
	}
	return e.Err
}

func (e *Env) print(md string) {
	printMarkdown(e.out(), md, e.Raw)
}

// fail reports err and maps it to an exit status. Failures the user can fix
// get a hint instead of the raw error chain.
func (e *Env) fail(err error) subcommands.ExitStatus {
	var vErr *validation.Error
	if errors.As(err, &vErr) {
		fmt.Fprintln(e.errOut(), "Error: invalid input")
		for _, field := range slices.Sorted(maps.Keys(vErr.Fields)) {
			fmt.Fprintf(e.errOut(), "  %s: %s\n", field, vErr.Fields[field])
		}
		return subcommands.ExitUsageError
	}
	fmt.Fprintf(e.errOut(), "Error: %s\n", apperrors.Message(err))
	fmt.Fprintf(e.errOut(), "  %v\n", err)
	return subcommands.ExitFailure
}

// Register adds every command to c.
func Register(c *subcommands.Commander, env *Env) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")

	c.Register(&summaryCmd{env: env}, "portfolio")
	c.Register(&holdingsCmd{env: env}, "portfolio")
	c.Register(&addHoldingCmd{env: env}, "portfolio")
	c.Register(&updateHoldingCmd{env: env}, "portfolio")
	c.Register(&removeHoldingCmd{env: env}, "portfolio")
	c.Register(&snapshotCmd{env: env}, "portfolio")
	c.Register(&historyCmd{env: env}, "portfolio")

	c.Register(&marketCmd{env: env}, "market")
	c.Register(&newsCmd{env: env}, "market")

	c.Register(&scrapsCmd{env: env}, "scraps")
	c.Register(&addScrapCmd{env: env}, "scraps")
	c.Register(&removeScrapCmd{env: env}, "scraps")

	c.Register(&reportCmd{env: env}, "report")
	c.Register(&attemptsCmd{env: env}, "report")

	c.Register(&statusCmd{env: env}, "system")
}

// usage prints a usage error for the command.
func usage(env *Env, f *flag.FlagSet, msg string) subcommands.ExitStatus {
	fmt.Fprintf(env.errOut(), "Error: %s\n", msg)
	f.SetOutput(env.errOut())
	f.Usage()
	return subcommands.ExitUsageError
}

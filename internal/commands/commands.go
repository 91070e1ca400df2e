// Package commands implements the spendlog command line client on top of a
// session against the record store.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/subcommands"

	applog "spendlog/internal/log"
	"spendlog/internal/recordstore"
	"spendlog/internal/render"
	"spendlog/internal/session"
	"spendlog/internal/state"
)

const dateLayout = "2006-01-02"

// Env is what every command shares.
type Env struct {
	Session  *session.Orchestrator
	Budgets  BudgetStore
	Renderer *render.Renderer
	Out      io.Writer
	Err      io.Writer
	// Plain skips terminal styling.
	Plain bool
	Now   func() time.Time
}

// Commands returns the commands in registration order, grouped as
// "expenses", "categories" and "budgets" by Register.
func Commands(env *Env) []subcommands.Command {
	return []subcommands.Command{
		&addCmd{env: env},
		&rmCmd{env: env},
		&historyCmd{env: env},
		&summaryCmd{env: env},
		&categoriesCmd{env: env},
		&addCategoryCmd{env: env},
		&budgetsCmd{env: env},
		&addBudgetCmd{env: env},
		&setBudgetCmd{env: env},
		&rmBudgetCmd{env: env},
	}
}

// Register adds the commands to c.
func Register(c *subcommands.Commander, env *Env) {
	for _, cmd := range Commands(env) {
		group := "expenses"
		switch cmd.(type) {
		case *categoriesCmd, *addCategoryCmd:
			group = "categories"
		case *budgetsCmd, *addBudgetCmd, *setBudgetCmd, *rmBudgetCmd:
			group = "budgets"
		}
		c.Register(cmd, group)
	}
}

// TraceState logs every session state transition at debug level until the
// returned func is called.
func TraceState(store *state.Store, logger *slog.Logger) func() {
	return store.Subscribe(func(s state.State) {
		args := []any{
			"loading", s.Loading,
			"expenses", len(s.Expenses),
			"categories", len(s.Categories),
		}
		if s.Error != "" {
			args = append(args, applog.FieldError, s.Error)
		}
		logger.Debug("Session state changed", args...)
	})
}

func (e *Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

func (e *Env) print(md string) subcommands.ExitStatus {
	if err := render.Print(e.Out, md, e.Plain); err != nil {
		fmt.Fprintf(e.Err, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// fail reports a record store error the way the session surfaces it.
func (e *Env) fail(err error) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, "Error: %s\n", recordstore.Message(err))
	return subcommands.ExitFailure
}

func (e *Env) usage(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(e.Err, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}

// parseDay reads a YYYY-MM-DD date in the location of now. Today keeps the
// current time of day so the record sorts after earlier ones.
func parseDay(s string, now time.Time) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, s, now.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	y, m, day := now.Date()
	if d.Year() == y && d.Month() == m && d.Day() == day {
		return now, nil
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, now.Location()), nil
}

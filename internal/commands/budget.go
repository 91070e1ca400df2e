package commands

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"spendlog/internal/core"
)

// BudgetStore is the part of the record store the budget commands use.
type BudgetStore interface {
	ListBudgets(ctx context.Context) ([]core.BudgetStatus, error)
	CreateBudget(ctx context.Context, b core.NewBudget) (core.BudgetStatus, error)
	UpdateBudget(ctx context.Context, id string, b core.NewBudget) (core.BudgetStatus, error)
	DeleteBudget(ctx context.Context, id string) error
}

type budgetsCmd struct {
	env *Env
}

func (*budgetsCmd) Name() string     { return "budgets" }
func (*budgetsCmd) Synopsis() string { return "show spending against each budget this month" }
func (*budgetsCmd) Usage() string {
	return `spendlog budgets

  Lists budgets with what was spent against them since the first of the month.
`
}

func (*budgetsCmd) SetFlags(*flag.FlagSet) {}

func (c *budgetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	budgets, err := c.env.Budgets.ListBudgets(ctx)
	if err != nil {
		return c.env.fail(err)
	}
	return c.env.print(c.env.Renderer.Budgets(budgets))
}

// budgetFlags are shared by add-budget and set-budget.
type budgetFlags struct {
	name     string
	amount   string
	category string
}

func (b *budgetFlags) register(f *flag.FlagSet) {
	f.StringVar(&b.name, "name", "", "Budget name.")
	f.StringVar(&b.amount, "a", "", "Monthly limit, e.g. 300 or 300,50.")
	f.StringVar(&b.category, "c", "", "Category to cap. Empty caps all spending.")
}

func (b *budgetFlags) parse(env *Env) (core.NewBudget, subcommands.ExitStatus, bool) {
	amount, err := core.ParseMoney(b.amount)
	if err != nil {
		return core.NewBudget{}, env.usage("invalid amount %q: %v", b.amount, err), false
	}
	nb := core.NewBudget{Name: b.name, Amount: amount, Category: b.category}.Normalize()
	if err := nb.Validate(); err != nil {
		return core.NewBudget{}, env.usage("%v", err), false
	}
	return nb, subcommands.ExitSuccess, true
}

type addBudgetCmd struct {
	env *Env
	budgetFlags
}

func (*addBudgetCmd) Name() string     { return "add-budget" }
func (*addBudgetCmd) Synopsis() string { return "create a monthly budget" }
func (*addBudgetCmd) Usage() string {
	return `spendlog add-budget -name <name> -a <amount> [-c <category>]

  Creates a monthly budget for one category, or for everything without -c.
`
}

func (c *addBudgetCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *addBudgetCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	nb, status, ok := c.parse(c.env)
	if !ok {
		return status
	}
	created, err := c.env.Budgets.CreateBudget(ctx, nb)
	if err != nil {
		return c.env.fail(err)
	}
	return c.env.print(c.env.Renderer.Budgets([]core.BudgetStatus{created}))
}

type setBudgetCmd struct {
	env *Env
	budgetFlags
}

func (*setBudgetCmd) Name() string     { return "set-budget" }
func (*setBudgetCmd) Synopsis() string { return "replace a budget" }
func (*setBudgetCmd) Usage() string {
	return `spendlog set-budget -name <name> -a <amount> [-c <category>] <id>

  Replaces the name, limit and category of an existing budget.
`
}

func (c *setBudgetCmd) SetFlags(f *flag.FlagSet) { c.register(f) }

func (c *setBudgetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.env.usage("exactly one budget id is required")
	}
	nb, status, ok := c.parse(c.env)
	if !ok {
		return status
	}
	updated, err := c.env.Budgets.UpdateBudget(ctx, f.Arg(0), nb)
	if err != nil {
		return c.env.fail(err)
	}
	return c.env.print(c.env.Renderer.Budgets([]core.BudgetStatus{updated}))
}

type rmBudgetCmd struct {
	env *Env
}

func (*rmBudgetCmd) Name() string     { return "rm-budget" }
func (*rmBudgetCmd) Synopsis() string { return "delete a budget" }
func (*rmBudgetCmd) Usage() string {
	return `spendlog rm-budget <id>
`
}

func (*rmBudgetCmd) SetFlags(*flag.FlagSet) {}

func (c *rmBudgetCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		return c.env.usage("exactly one budget id is required")
	}
	if err := c.env.Budgets.DeleteBudget(ctx, f.Arg(0)); err != nil {
		return c.env.fail(err)
	}
	return c.env.print("Deleted budget `" + f.Arg(0) + "`\n")
}

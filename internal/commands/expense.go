package commands

import (
	"context"
	"flag"
	"strings"
	"time"

	"github.com/google/subcommands"

	"spendlog/internal/core"
)

type addCmd struct {
	env         *Env
	amount      string
	category    string
	description string
	date        string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an expense" }
func (*addCmd) Usage() string {
	return `spendlog add -a <amount> -c <category> [-d <description>] [-date YYYY-MM-DD]

  Records an expense and shows the refreshed summaries.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.amount, "a", "", "Amount, e.g. 12.50 or 12,50.")
	f.StringVar(&c.category, "c", "", "Category name.")
	f.StringVar(&c.description, "d", "", "Optional description.")
	f.StringVar(&c.date, "date", "", "Date of the expense. Defaults to now.")
}

func (c *addCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	amount, err := core.ParseMoney(c.amount)
	if err != nil {
		return c.env.usage("invalid amount %q: %v", c.amount, err)
	}
	ne := core.NewExpense{
		Amount:      amount,
		Category:    c.category,
		Description: c.description,
	}
	now := c.env.now()
	if c.date != "" {
		if ne.Date, err = parseDay(c.date, now); err != nil {
			return c.env.usage("%v", err)
		}
	}
	ne = ne.Normalize(now)
	if err := ne.Validate(); err != nil {
		return c.env.usage("%v", err)
	}

	created, err := c.env.Session.AddExpense(ctx, ne)
	if err != nil {
		return c.env.fail(err)
	}
	st := c.env.Session.State()
	md := c.env.Renderer.Expense(created)
	if st.Error == "" {
		md += "\n" + c.env.Renderer.Summaries(st.Summaries)
	}
	return c.env.print(md)
}

type rmCmd struct {
	env *Env
}

func (*rmCmd) Name() string     { return "rm" }
func (*rmCmd) Synopsis() string { return "delete expenses by id" }
func (*rmCmd) Usage() string {
	return `spendlog rm <id>...

  Deletes each expense and stops at the first failure.
`
}

func (*rmCmd) SetFlags(*flag.FlagSet) {}

func (c *rmCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		return c.env.usage("at least one expense id is required")
	}
	var b strings.Builder
	for _, id := range f.Args() {
		if err := c.env.Session.DeleteExpense(ctx, id); err != nil {
			if b.Len() > 0 {
				c.env.print(b.String())
			}
			return c.env.fail(err)
		}
		b.WriteString("Deleted `" + id + "`\n\n")
	}
	return c.env.print(b.String())
}

type historyCmd struct {
	env      *Env
	days     int
	category string
	limit    int
}

func (*historyCmd) Name() string     { return "history" }
func (*historyCmd) Synopsis() string { return "list expenses grouped by day" }
func (*historyCmd) Usage() string {
	return `spendlog history [-days N] [-c <category>] [-n N]

  Lists recent expenses newest first, one section per day.
`
}

func (c *historyCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.days, "days", 30, "Number of days to include, today counting as one. 0 lists everything.")
	f.StringVar(&c.category, "c", "", "Only this category.")
	f.IntVar(&c.limit, "n", 0, "Maximum number of expenses. 0 uses the server default.")
}

func (c *historyCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.days < 0 || c.limit < 0 {
		return c.env.usage("-days and -n must not be negative")
	}
	now := c.env.now()
	filter := core.ExpenseFilter{
		Category: strings.TrimSpace(c.category),
		Limit:    c.limit,
	}
	if c.days > 0 {
		filter.StartDate = time.Date(now.Year(), now.Month(), now.Day()-(c.days-1), 0, 0, 0, 0, now.Location())
	}

	if err := c.env.Session.LoadExpenses(ctx, filter); err != nil {
		return c.env.fail(err)
	}
	return c.env.print(c.env.Renderer.History(c.env.Session.History(), now))
}

package commands

import (
	"context"
	"flag"
	"time"

	"github.com/google/subcommands"

	"spendlog/internal/aggregate"
	"spendlog/internal/core"
)

// localLimit caps the records fetched for a local summary.
const localLimit = 10000

type summaryCmd struct {
	env    *Env
	period string
	local  bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "show spending for today, this week and this month" }
func (*summaryCmd) Usage() string {
	return `spendlog summary [-p day|week|month] [-local]

  Fetches the summaries from the record store. With -p, shows the category
  ranking of a single period. With -local, downloads the records of the
  current periods and aggregates them on this machine instead.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "p", "", "Single period to detail.")
	f.BoolVar(&c.local, "local", false, "Aggregate downloaded records instead of asking the server.")
}

func (c *summaryCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var period core.Period
	if c.period != "" {
		p, err := core.ParsePeriod(c.period)
		if err != nil {
			return c.env.usage("%v", err)
		}
		period = p
	}

	var summaries map[core.Period]core.Summary
	if c.local {
		start, end := span(c.env.now())
		filter := core.ExpenseFilter{StartDate: start, EndDate: end.Add(-time.Nanosecond), Limit: localLimit}
		if err := c.env.Session.LoadExpenses(ctx, filter); err != nil {
			return c.env.fail(err)
		}
		summaries = c.env.Session.LocalSummaries()
	} else {
		if err := c.env.Session.RefreshSummaries(ctx); err != nil {
			return c.env.fail(err)
		}
		summaries = c.env.Session.State().Summaries
	}
	if period == "" {
		return c.env.print(c.env.Renderer.Summaries(summaries))
	}
	return c.env.print(c.env.Renderer.Summary(summaries[period]))
}

// span is the smallest interval covering the window of every period.
func span(now time.Time) (start, end time.Time) {
	for i, p := range core.Periods {
		s, e := aggregate.Window(p, now)
		if i == 0 || s.Before(start) {
			start = s
		}
		if i == 0 || e.After(end) {
			end = e
		}
	}
	return start, end
}

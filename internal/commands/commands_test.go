package commands

import (
	"bytes"
	"context"
	"flag"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/subcommands"

	"spendlog/internal/core"
	apphttp "spendlog/internal/http"
	applog "spendlog/internal/log"
	"spendlog/internal/recordstore"
	"spendlog/internal/render"
	"spendlog/internal/services"
	"spendlog/internal/session"
	"spendlog/internal/state"
	"spendlog/internal/storage/memory"
)

var testNow = time.Date(2024, 1, 17, 12, 0, 0, 0, time.UTC)

type harness struct {
	env *Env
	svc *services.ExpenseService
	out *bytes.Buffer
	err *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	clock := func() time.Time { return testNow }
	svc := services.NewExpenseService(memory.New(),
		services.WithClock(clock),
		services.WithLogger(applog.Discard()))
	if _, err := svc.EnsureDefaultCategories(context.Background(), core.DefaultCategories()); err != nil {
		t.Fatal(err)
	}
	srv := apphttp.NewServer(apphttp.Config{}, svc, applog.New(applog.Config{Writer: io.Discard}), nil)
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Shutdown(context.Background())
	})

	client, err := recordstore.NewClient(ts.URL, recordstore.WithHTTPClient(ts.Client()),
		recordstore.WithLogger(applog.Discard()))
	if err != nil {
		t.Fatal(err)
	}
	h := &harness{svc: svc, out: &bytes.Buffer{}, err: &bytes.Buffer{}}
	h.env = &Env{
		Session: session.New(state.NewStore(), client,
			session.WithClock(clock),
			session.WithLogger(applog.Discard())),
		Budgets:  client,
		Renderer: render.New("USD"),
		Out:      h.out,
		Err:      h.err,
		Plain:    true,
		Now:      clock,
	}
	return h
}

// run parses args for the named command and executes it.
func (h *harness) run(t *testing.T, name string, args ...string) subcommands.ExitStatus {
	t.Helper()
	h.out.Reset()
	h.err.Reset()
	for _, c := range Commands(h.env) {
		if c.Name() != name {
			continue
		}
		fs := flag.NewFlagSet(name, flag.ContinueOnError)
		c.SetFlags(fs)
		if err := fs.Parse(args); err != nil {
			t.Fatalf("parse %v: %v", args, err)
		}
		return c.Execute(context.Background(), fs)
	}
	t.Fatalf("no command %q", name)
	return subcommands.ExitFailure
}

func TestCommands_Names(t *testing.T) {
	var names []string
	for _, c := range Commands(&Env{}) {
		names = append(names, c.Name())
	}
	want := "add rm history summary categories add-category budgets add-budget set-budget rm-budget"
	if got := strings.Join(names, " "); got != want {
		t.Errorf("commands = %q, want %q", got, want)
	}
}

func TestAdd(t *testing.T) {
	h := newHarness(t)

	if st := h.run(t, "add", "-a", "12,50", "-c", "Food", "-d", "lunch"); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v, stderr = %s", st, h.err)
	}
	out := h.out.String()
	for _, want := range []string{
		"Added **$12.50** to **Food** on Jan 17, 2024 (lunch)",
		"| Today | $12.50 | 1 | Food |",
		"| This month | $12.50 | 1 | Food |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	list, err := h.svc.ListExpenses(context.Background(), core.ExpenseFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Amount.Cents != 1250 || list[0].Description != "lunch" {
		t.Errorf("stored = %+v", list)
	}
}

func TestAdd_PastDate(t *testing.T) {
	h := newHarness(t)

	if st := h.run(t, "add", "-a", "3", "-c", "Bills", "-date", "2024-01-02"); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v, stderr = %s", st, h.err)
	}
	if !strings.Contains(h.out.String(), "on Jan 02, 2024") {
		t.Errorf("out = %s", h.out)
	}
	if !strings.Contains(h.out.String(), "| Today | $0.00 | 0 | - |") {
		t.Errorf("past expense counted today:\n%s", h.out)
	}
}

func TestAdd_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing amount", []string{"-c", "Food"}, "invalid amount"},
		{"zero amount", []string{"-a", "0", "-c", "Food"}, "invalid amount"},
		{"missing category", []string{"-a", "5"}, "empty category"},
		{"bad date", []string{"-a", "5", "-c", "Food", "-date", "17/01/2024"}, "expected YYYY-MM-DD"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			if st := h.run(t, "add", tt.args...); st != subcommands.ExitUsageError {
				t.Fatalf("status = %v", st)
			}
			if !strings.Contains(h.err.String(), tt.want) {
				t.Errorf("stderr = %q, want %q", h.err, tt.want)
			}
		})
	}
}

func TestRm(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	e, err := h.svc.CreateExpense(ctx, core.NewExpense{Amount: core.Money{Cents: 900}, Category: "Food", Date: testNow})
	if err != nil {
		t.Fatal(err)
	}

	if st := h.run(t, "rm", e.ID); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v, stderr = %s", st, h.err)
	}
	if !strings.Contains(h.out.String(), "Deleted `"+e.ID+"`") {
		t.Errorf("out = %s", h.out)
	}

	if st := h.run(t, "rm", e.ID); st != subcommands.ExitFailure {
		t.Fatalf("second delete status = %v", st)
	}
	if got := h.err.String(); got != "Error: Expense not found\n" {
		t.Errorf("stderr = %q", got)
	}

	if st := h.run(t, "rm"); st != subcommands.ExitUsageError {
		t.Errorf("no args status = %v", st)
	}
}

func TestHistory(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, e := range []core.NewExpense{
		{Amount: core.Money{Cents: 1000}, Category: "Food", Date: testNow.Add(-time.Hour)},
		{Amount: core.Money{Cents: 700}, Category: "Bills", Date: testNow.AddDate(0, 0, -1)},
		{Amount: core.Money{Cents: 300}, Category: "Food", Date: testNow.AddDate(0, 0, -40)},
	} {
		if _, err := h.svc.CreateExpense(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	if st := h.run(t, "history"); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v, stderr = %s", st, h.err)
	}
	out := h.out.String()
	if !strings.Contains(out, "## Today ($10.00)") || !strings.Contains(out, "## Yesterday ($7.00)") {
		t.Errorf("out =\n%s", out)
	}
	if strings.Contains(out, "$3.00") {
		t.Errorf("expense outside the window listed:\n%s", out)
	}

	if st := h.run(t, "history", "-days", "0", "-c", "Food"); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v", st)
	}
	out = h.out.String()
	if !strings.Contains(out, "$3.00") || strings.Contains(out, "Bills") {
		t.Errorf("filtered out =\n%s", out)
	}

	if st := h.run(t, "history", "-n", "-1"); st != subcommands.ExitUsageError {
		t.Errorf("negative limit status = %v", st)
	}
}

func TestSummary(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, e := range []core.NewExpense{
		{Amount: core.Money{Cents: 1250}, Category: "Food", Date: testNow},
		{Amount: core.Money{Cents: 500}, Category: "Transport", Date: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)},
	} {
		if _, err := h.svc.CreateExpense(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	if st := h.run(t, "summary"); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v, stderr = %s", st, h.err)
	}
	if !strings.Contains(h.out.String(), "| This week | $17.50 | 2 | Food |") {
		t.Errorf("out =\n%s", h.out)
	}

	if st := h.run(t, "summary", "-p", "weekly"); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v", st)
	}
	out := h.out.String()
	if !strings.Contains(out, "# This week") || !strings.Contains(out, "| Transport | $5.00 | 1 |") {
		t.Errorf("out =\n%s", out)
	}

	if st := h.run(t, "summary", "-p", "year"); st != subcommands.ExitUsageError {
		t.Errorf("unknown period status = %v", st)
	}
}

func TestSummary_Local(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	for _, e := range []core.NewExpense{
		{Amount: core.Money{Cents: 1250}, Category: "Food", Date: testNow},
		{Amount: core.Money{Cents: 500}, Category: "Transport", Date: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)},
		{Amount: core.Money{Cents: 700}, Category: "Food", Date: time.Date(2024, 1, 31, 23, 59, 59, 500, time.UTC)},
		{Amount: core.Money{Cents: 900}, Category: "Food", Date: time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC)},
	} {
		if _, err := h.svc.CreateExpense(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	if st := h.run(t, "summary", "-local"); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v, stderr = %s", st, h.err)
	}
	out := h.out.String()
	for _, want := range []string{
		"| Today | $12.50 | 1 | Food |",
		"| This week | $17.50 | 2 | Food |",
		"| This month | $24.50 | 3 | Food |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
	if got := len(h.env.Session.State().Expenses); got != 3 {
		t.Errorf("cached expenses = %d, want 3", got)
	}

	if st := h.run(t, "summary", "-local", "-p", "month"); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v", st)
	}
	if !strings.Contains(h.out.String(), "| Food | $19.50 | 2 |") {
		t.Errorf("out =\n%s", h.out)
	}
}

func TestBudgetCommands(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	if _, err := h.svc.CreateExpense(ctx, core.NewExpense{Amount: core.Money{Cents: 4550}, Category: "Food", Date: testNow}); err != nil {
		t.Fatal(err)
	}

	if st := h.run(t, "budgets"); st != subcommands.ExitSuccess || !strings.Contains(h.out.String(), "_No budgets yet._") {
		t.Fatalf("empty budgets: %v %s", st, h.out)
	}

	if st := h.run(t, "add-budget", "-name", "Groceries", "-a", "300", "-c", "Food"); st != subcommands.ExitSuccess {
		t.Fatalf("add-budget status = %v, stderr = %s", st, h.err)
	}
	if !strings.Contains(h.out.String(), "| Groceries | Food | $45.50 | $300.00 | $254.50 |") {
		t.Fatalf("out =\n%s", h.out)
	}
	budgets, err := h.svc.ListBudgets(ctx)
	if err != nil || len(budgets) != 1 {
		t.Fatalf("stored budgets = %+v, %v", budgets, err)
	}
	id := budgets[0].ID

	if st := h.run(t, "set-budget", "-name", "Everything", "-a", "40", id); st != subcommands.ExitSuccess {
		t.Fatalf("set-budget status = %v, stderr = %s", st, h.err)
	}
	if !strings.Contains(h.out.String(), "| Everything | All | $45.50 | $40.00 | **over by $5.50** |") {
		t.Fatalf("out =\n%s", h.out)
	}

	if st := h.run(t, "budgets"); st != subcommands.ExitSuccess || !strings.Contains(h.out.String(), "`"+id+"`") {
		t.Fatalf("budgets: %v %s", st, h.out)
	}

	if st := h.run(t, "rm-budget", id); st != subcommands.ExitSuccess {
		t.Fatalf("rm-budget status = %v, stderr = %s", st, h.err)
	}
	if st := h.run(t, "rm-budget", id); st != subcommands.ExitFailure || h.err.String() != "Error: Budget not found\n" {
		t.Fatalf("second rm-budget: %v %q", st, h.err)
	}
	if st := h.run(t, "set-budget", "-name", "x", "-a", "1", id); st != subcommands.ExitFailure {
		t.Errorf("set-budget on missing id = %v", st)
	}
}

func TestBudgetCommands_Usage(t *testing.T) {
	h := newHarness(t)
	cases := [][]string{
		{"add-budget", "-name", "Food"},
		{"add-budget", "-name", "", "-a", "10"},
		{"add-budget", "-name", "Food", "-a", "-3"},
		{"set-budget", "-name", "Food", "-a", "10"},
		{"rm-budget"},
		{"rm-budget", "a", "b"},
	}
	for _, args := range cases {
		if st := h.run(t, args[0], args[1:]...); st != subcommands.ExitUsageError {
			t.Errorf("%v: status = %v, want usage error", args, st)
		}
	}
}

func TestTraceState(t *testing.T) {
	h := newHarness(t)
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Component: applog.ComponentCLI, Writer: &buf})
	untrace := TraceState(h.env.Session.Store(), logger.Logger)

	if st := h.run(t, "rm", "missing"); st != subcommands.ExitFailure {
		t.Fatalf("status = %v", st)
	}
	out := buf.String()
	if !strings.Contains(out, "Session state changed") || !strings.Contains(out, "loading=true") {
		t.Fatalf("trace = %q", out)
	}
	if !strings.Contains(out, `error="Expense not found"`) {
		t.Errorf("error transition not traced: %q", out)
	}

	untrace()
	buf.Reset()
	h.env.Session.ClearError()
	if buf.Len() != 0 {
		t.Errorf("traced after unsubscribe: %q", buf.String())
	}
}

func TestSpan(t *testing.T) {
	// Thursday Feb 1 2024: the week starts in January.
	start, end := span(time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC))
	if !start.Equal(time.Date(2024, 1, 29, 0, 0, 0, 0, time.UTC)) || !end.Equal(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("span = %v .. %v", start, end)
	}
}

func TestCategories(t *testing.T) {
	h := newHarness(t)

	if st := h.run(t, "categories"); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v, stderr = %s", st, h.err)
	}
	if !strings.Contains(h.out.String(), "| Food |") {
		t.Errorf("out =\n%s", h.out)
	}

	if st := h.run(t, "add-category", "-name", "Pets", "-color", "#123456"); st != subcommands.ExitSuccess {
		t.Fatalf("status = %v, stderr = %s", st, h.err)
	}
	if !strings.Contains(h.out.String(), "| Pets | #123456 |") {
		t.Errorf("out =\n%s", h.out)
	}

	if st := h.run(t, "add-category", "-name", "Pets"); st != subcommands.ExitFailure {
		t.Fatalf("duplicate status = %v", st)
	}
	if got := h.err.String(); got != "Error: Category already exists\n" {
		t.Errorf("stderr = %q", got)
	}

	if st := h.run(t, "add-category", "-name", "X", "-color", "red"); st != subcommands.ExitUsageError {
		t.Errorf("bad color status = %v", st)
	}
}

func TestParseDay(t *testing.T) {
	d, err := parseDay("2024-01-17", testNow)
	if err != nil || !d.Equal(testNow) {
		t.Errorf("today = %v, %v", d, err)
	}
	d, err = parseDay("2024-01-10", testNow)
	if err != nil || d.Day() != 10 || d.Hour() != 12 {
		t.Errorf("past = %v, %v", d, err)
	}
	if _, err := parseDay("yesterday", testNow); err == nil {
		t.Error("expected error")
	}
}

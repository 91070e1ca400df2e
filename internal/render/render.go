// Package render turns session views into markdown and prints it to a
// terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"

	"spendlog/internal/core"
	"spendlog/internal/grouping"
)

const wordWrap = 100

var periodTitles = map[core.Period]string{
	core.Day:   "Today",
	core.Week:  "This week",
	core.Month: "This month",
}

// Renderer formats amounts in a single display currency.
type Renderer struct {
	currency string
}

// New falls back to EUR when currency is not a known ISO code.
func New(currency string) *Renderer {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if money.GetCurrency(currency) == nil {
		currency = money.EUR
	}
	return &Renderer{currency: currency}
}

// Amount formats m with the currency symbol, e.g. "$62.50".
func (r *Renderer) Amount(m core.Money) string {
	return money.New(m.Cents, r.currency).Display()
}

// Summaries renders one row per period in display order.
func (r *Renderer) Summaries(summaries map[core.Period]core.Summary) string {
	var b strings.Builder
	b.WriteString("# Spending\n\n")
	b.WriteString("| Period | Total | Expenses | Top category |\n")
	b.WriteString("|---|---:|---:|---|\n")
	for _, p := range core.Periods {
		s, ok := summaries[p]
		if !ok {
			s = core.EmptySummary(p)
		}
		top := "-"
		if len(s.TopCategories) > 0 {
			top = cell(s.TopCategories[0].Category)
		}
		fmt.Fprintf(&b, "| %s | %s | %d | %s |\n", periodTitles[p], r.Amount(s.TotalAmount), s.ExpenseCount, top)
	}
	return b.String()
}

// Summary renders one period with its category ranking.
func (r *Renderer) Summary(s core.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", periodTitles[s.Period])
	fmt.Fprintf(&b, "**%s** across %d %s\n\n", r.Amount(s.TotalAmount), s.ExpenseCount, plural(s.ExpenseCount, "expense"))
	if len(s.TopCategories) == 0 {
		b.WriteString("_No expenses yet._\n")
		return b.String()
	}
	b.WriteString("| Category | Amount | Count |\n")
	b.WriteString("|---|---:|---:|\n")
	for _, c := range s.TopCategories {
		fmt.Fprintf(&b, "| %s | %s | %d |\n", cell(c.Category), r.Amount(c.Amount), c.Count)
	}
	return b.String()
}

// History renders groups newest first with "Today"/"Yesterday" headings.
func (r *Renderer) History(groups []core.ExpenseGroup, now time.Time) string {
	var b strings.Builder
	b.WriteString("# History\n\n")
	if len(groups) == 0 {
		b.WriteString("_No expenses yet._\n")
		return b.String()
	}
	for _, g := range groups {
		fmt.Fprintf(&b, "## %s (%s)\n\n", grouping.Label(g.Date, now), r.Amount(g.Total))
		for _, e := range g.Expenses {
			fmt.Fprintf(&b, "- %s **%s**", r.Amount(e.Amount), inline(e.Category))
			if e.Description != "" {
				fmt.Fprintf(&b, " %s", inline(e.Description))
			}
			fmt.Fprintf(&b, " `%s`\n", e.ID)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (r *Renderer) Categories(cats []core.Category) string {
	var b strings.Builder
	b.WriteString("# Categories\n\n")
	b.WriteString("| | Name | Color |\n")
	b.WriteString("|---|---|---|\n")
	for _, c := range cats {
		fmt.Fprintf(&b, "| %s | %s | %s |\n", cell(c.Icon), cell(c.Name), cell(c.Color))
	}
	return b.String()
}

// Budgets renders month-to-date spending against each budget. A budget
// without a category covers all spending.
func (r *Renderer) Budgets(budgets []core.BudgetStatus) string {
	var b strings.Builder
	b.WriteString("# Budgets this month\n\n")
	if len(budgets) == 0 {
		b.WriteString("_No budgets yet._\n")
		return b.String()
	}
	b.WriteString("| Budget | Category | Spent | Limit | Left | ID |\n")
	b.WriteString("|---|---|---:|---:|---:|---|\n")
	for _, s := range budgets {
		category := s.Category
		if category == "" {
			category = "All"
		}
		left := r.Amount(s.Remaining())
		if s.Exceeded() {
			left = "**over by " + r.Amount(core.Money{Cents: -s.Remaining().Cents}) + "**"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | `%s` |\n",
			cell(s.Name), cell(category), r.Amount(s.Spent), r.Amount(s.Amount), left, s.ID)
	}
	return b.String()
}

// Expense renders a confirmation for a created record.
func (r *Renderer) Expense(e core.Expense) string {
	line := fmt.Sprintf("Added **%s** to **%s** on %s", r.Amount(e.Amount), inline(e.Category), e.Date.Format("Jan 02, 2006"))
	if e.Description != "" {
		line += fmt.Sprintf(" (%s)", inline(e.Description))
	}
	return line + fmt.Sprintf("\n\nid `%s`\n", e.ID)
}

// Print renders md for a terminal. plain writes md unstyled, for pipes.
func Print(w io.Writer, md string, plain bool) error {
	if plain {
		_, err := io.WriteString(w, md)
		return err
	}
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wordWrap),
	)
	if err != nil {
		return fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := tr.Render(md)
	if err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// cell escapes text for a table cell.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(inline(s), "|", `\|`)
}

// inline flattens user text onto one line and escapes markdown emphasis.
func inline(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.NewReplacer("*", `\*`, "_", `\_`, "`", "'").Replace(s)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

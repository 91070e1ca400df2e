package state

import (
	"slices"

	"spendlog/internal/core"
)

// State is a snapshot of the session. Expenses are newest first.
type State struct {
	Expenses   []core.Expense
	Categories []core.Category
	Summaries  map[core.Period]core.Summary
	Loading    bool
	Error      string
}

// InitialState has no data, no error and a zero summary for every period.
func InitialState() State {
	summaries := make(map[core.Period]core.Summary, len(core.Periods))
	for _, p := range core.Periods {
		summaries[p] = core.EmptySummary(p)
	}
	return State{
		Expenses:   []core.Expense{},
		Categories: []core.Category{},
		Summaries:  summaries,
	}
}

// Reduce returns the state that results from applying a to s.
// s is never modified. Unknown actions return s unchanged.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetLoading:
		s.Loading = a.Loading
	case SetError:
		s.Error = a.Message
		s.Loading = false
	case SetExpenses:
		s.Expenses = cloneSlice(a.Expenses)
		s.Loading = false
	case AddExpense:
		next := make([]core.Expense, 0, len(s.Expenses)+1)
		next = append(next, a.Expense)
		s.Expenses = append(next, s.Expenses...)
		s.Loading = false
	case DeleteExpense:
		s.Expenses = slices.DeleteFunc(cloneSlice(s.Expenses), func(e core.Expense) bool {
			return e.ID == a.ID
		})
		s.Loading = false
	case SetCategories:
		s.Categories = cloneSlice(a.Categories)
	case AddCategory:
		next := make([]core.Category, 0, len(s.Categories)+1)
		next = append(next, s.Categories...)
		s.Categories = append(next, a.Category)
	case SetSummaries:
		s.Summaries = cloneSummaries(a.Summaries)
	case UpdateSummary:
		next := cloneSummaries(s.Summaries)
		next[a.Period] = cloneSummary(a.Summary)
		s.Summaries = next
	}
	return s
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func cloneSummary(s core.Summary) core.Summary {
	s.TopCategories = cloneSlice(s.TopCategories)
	return s
}

func cloneSummaries(in map[core.Period]core.Summary) map[core.Period]core.Summary {
	out := make(map[core.Period]core.Summary, len(in))
	for p, s := range in {
		out[p] = cloneSummary(s)
	}
	return out
}

// clone deep-copies s so that a snapshot can be handed out safely.
func clone(s State) State {
	s.Expenses = cloneSlice(s.Expenses)
	s.Categories = cloneSlice(s.Categories)
	s.Summaries = cloneSummaries(s.Summaries)
	return s
}

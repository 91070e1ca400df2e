package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"spendlog/internal/core"
)

func TestNewTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentSession, Writer: &buf})
	l.Info("hello", FieldPeriod, "day")
	out := buf.String()
	if !strings.Contains(out, "component=session") || !strings.Contains(out, "period=day") {
		t.Fatalf("output = %q", out)
	}

	buf.Reset()
	l.WithComponent(ComponentHTTP).Warn("moved")
	if out := buf.String(); !strings.Contains(out, "component=http") || strings.Contains(out, "component=session") {
		t.Fatalf("output = %q", out)
	}

	buf.Reset()
	l.Base().With(FieldComponent, ComponentWorker).Info("own tag")
	if out := buf.String(); strings.Count(out, "component=") != 1 || !strings.Contains(out, "component=worker") {
		t.Fatalf("output = %q", out)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFieldsToSliceSkipsComponent(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentHTTP).
		WithExpense(core.Expense{ID: "e1", Amount: core.Money{Cents: 250}, Category: "Food"}).
		WithError(errors.New("boom")).
		WithError(nil)
	slice := f.ToSlice()
	if len(slice) != 8 {
		t.Fatalf("slice = %v", slice)
	}
	for i := 0; i < len(slice); i += 2 {
		if slice[i] == FieldComponent {
			t.Fatalf("component must be skipped: %v", slice)
		}
	}
}

func TestContextCarriesLogger(t *testing.T) {
	var buf bytes.Buffer
	base := New(Config{Component: ComponentHTTP, Writer: &buf})
	ctx := NewContext(context.Background(), base.With(FieldRequestID, "req_1"))
	FromContext(ctx).Info("inside")
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("output = %q", buf.String())
	}

	if FromContext(context.Background()) == nil {
		t.Fatalf("FromContext must fall back to the default logger")
	}
}

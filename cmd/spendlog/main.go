package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/google/subcommands"

	"spendlog/internal/cli"
	"spendlog/internal/commands"
	"spendlog/internal/config"
	applog "spendlog/internal/log"
	"spendlog/internal/recordstore"
	"spendlog/internal/render"
	"spendlog/internal/session"
	"spendlog/internal/state"
)

var (
	plain    = flag.Bool("plain", false, "Print raw markdown instead of styled output.")
	storeURL = flag.String("url", "", "Record store base URL. Overrides RECORD_STORE_URL.")
)

func main() {
	cli.LoadEnvFile()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	env := &commands.Env{Out: os.Stdout, Err: os.Stderr}
	commands.Register(commander, env)

	flag.Parse()

	// Logs share stderr with command errors, so stay quiet unless asked.
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "warn"
	}
	logger := cli.SetupLogger(level, applog.ComponentCLI, os.Stderr)

	cfg := config.Load()
	if *storeURL != "" {
		cfg.RecordStoreURL = *storeURL
	}
	if err := cfg.ValidateClient(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitUsageError))
	}

	client, err := recordstore.NewClient(cfg.RecordStoreURL, recordstore.WithLogger(logger.Base()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(int(subcommands.ExitFailure))
	}
	env.Session = session.New(state.NewStore(), client,
		session.WithLogger(logger.Base()),
		session.WithTimeout(cfg.RequestTimeout),
		session.WithRecentLimit(cfg.RecentLimit))
	env.Budgets = client
	env.Renderer = render.New(cfg.Currency)
	env.Plain = *plain
	untrace := commands.TraceState(env.Session.Store(), logger.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	status := commander.Execute(ctx)
	stop()
	untrace()
	os.Exit(int(status))
}

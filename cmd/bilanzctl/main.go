package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"

	"github.com/okian/bilanz/internal/cli"
	"github.com/okian/bilanz/pkg/logger"
)

func main() {
	verbose := flag.Bool("v", false, "log debug output to stderr")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, c := range cli.Commands(os.Stdout, os.Stderr) {
		commander.Register(c, "analysis")
	}

	flag.Parse()

	if err := logger.Init(logger.WithOutput(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(int(subcommands.ExitFailure))
	}
	level := "warn"
	if *verbose {
		level = "debug"
	}
	_ = logger.SetLevelString(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}

// Package main provides the entry point for the Learning Hub toolkit.
//
// Usage:
//
//	learninghub [global flags] <command> [command flags] [args]
//
// Global flags are the configuration flags (see -h); every one of them can
// also be set from the environment or a .env file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"slices"
	"sort"
	"syscall"

	"github.com/samber/do/v2"

	"github.com/learninghub/learninghub/internal/config"
	"github.com/learninghub/learninghub/internal/di"
	"github.com/learninghub/learninghub/internal/errors"
	"github.com/learninghub/learninghub/internal/logger"
)

type command struct {
	name    string
	args    string
	summary string
	run     func(ctx context.Context, injector *do.RootScope, args []string, w io.Writer) error
}

var commands = []command{
	{"serve", "", "Run the dev gateway (with the mock when MOCK_ENABLED)", runServe},
	{"mock", "", "Run the mock API standalone on MOCK_PORT", runMock},
	{"list", "[-search s] [-type t] [-tags a,b] [-page n]", "List resources", runList},
	{"browse", "", "Browse resources interactively from stdin", runBrowse},
	{"show", "<id>", "Show one resource", runShow},
	{"tags", "", "List tags by usage", runTags},
	{"create", "-title t -description d -type t [...]", "Create a resource", runCreate},
	{"update", "<id> [-title t] [...]", "Update a resource", runUpdate},
	{"delete", "<id>", "Delete a resource", runDelete},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, rest, err := config.Load("learninghub", args)
	if errors.Is(err, flag.ErrHelp) {
		usage(stderr)
		return 0
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	if len(rest) == 0 {
		usage(stderr)
		return 2
	}

	i := slices.IndexFunc(commands, func(c command) bool { return c.name == rest[0] })
	if i < 0 {
		fmt.Fprintf(stderr, "Unknown command %q\n\n", rest[0])
		usage(stderr)
		return 2
	}

	injector := di.NewContainer(cfg)
	defer shutdown(injector)

	if err := commands[i].run(ctx, injector, rest[1:], stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		printError(stderr, err)
		return 1
	}
	return 0
}

func shutdown(injector *do.RootScope) {
	log, err := do.Invoke[*logger.Logger](injector)
	if err != nil {
		return
	}
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
}

// printError writes the user-facing message and any field errors.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %s\n", errors.Message(err))

	var e *errors.Error
	if !errors.As(err, &e) {
		return
	}
	fields := e.Fields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, fields[name])
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: learninghub [global flags] <command> [command flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %-48s %s\n", c.name, c.args, c.summary)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'learninghub -h' for the global flags.")
}

// Package command defines the redif-cli application on urfave/cli/v2.
//
// With positional arguments the CLI sends them as one command, prints the
// reply and exits; an error reply exits with status 1. Without arguments
// it starts the interactive REPL.
package command

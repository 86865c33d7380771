package command

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/redif-go/internal/cli/connection"
	"github.com/yndnr/redif-go/internal/cli/output"
	"github.com/yndnr/redif-go/internal/cli/repl"
	"github.com/yndnr/redif-go/internal/infra/buildinfo"
	"github.com/yndnr/redif-go/pkg/resp"
)

// DefaultServer is the address used when --server is not given.
const DefaultServer = "127.0.0.1:4400"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:      "redif-cli",
		Usage:     "redif command-line client",
		UsageText: "redif-cli [global options] [command [arguments...]]",
		Version:   buildinfo.String(),
		Flags:     globalFlags(),
		Action:    run,
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "redif server address (host:port)",
			EnvVars: []string{"REDIF_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: raw, json, yaml",
			Value:   string(output.FormatRaw),
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "Dial and per-command timeout",
			Value: connection.DefaultTimeout,
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Output  string
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server:  c.String("server"),
		Output:  c.String("output"),
		Timeout: c.Duration("timeout"),
	}
}

func run(c *cli.Context) error {
	flags := ParseGlobalFlags(c)

	f, err := output.NewFormatter(output.Format(flags.Output))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}

	client := connection.NewClient(flags.Server, flags.Timeout)
	defer client.Close()

	if c.NArg() > 0 {
		return runOnce(c.Context, client, f, c.App.Writer, c.Args().Slice())
	}

	r, err := repl.New(repl.Config{Stdout: c.App.Writer, Stderr: c.App.ErrWriter},
		func(ctx context.Context, args []string) error {
			_, err := execute(ctx, client, f, c.App.Writer, args)
			return err
		})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	return r.Run(c.Context)
}

func runOnce(ctx context.Context, client *connection.Client, f output.Formatter, w io.Writer, args []string) error {
	v, err := execute(ctx, client, f, w, args)
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	if v.Kind() == resp.KindError {
		return cli.Exit("", 1)
	}
	return nil
}

// execute sends args and writes the formatted reply to w.
func execute(ctx context.Context, client *connection.Client, f output.Formatter, w io.Writer, args []string) (resp.Value, error) {
	v, err := client.Do(ctx, args...)
	if err != nil {
		return v, err
	}
	return v, f.Format(w, v)
}

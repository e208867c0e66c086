// Package cli implements the bilanzctl subcommands.
package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/subcommands"

	service "github.com/okian/bilanz/internal/app"
	"github.com/okian/bilanz/pkg/logger"
)

const outputFileMode = 0o644

// common holds the flags shared by every command.
type common struct {
	in      string
	url     string
	timeout time.Duration
	title   string
}

func (c *common) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.in, "in", "", "YAML or JSON file with the two periods (or pass it as the first argument)")
	f.StringVar(&c.url, "url", "", "base URL of a running bilanz server; computes locally when empty")
	f.DurationVar(&c.timeout, "timeout", defaultTimeout, "HTTP timeout when -url is set")
	f.StringVar(&c.title, "title", "Bilanzanalyse", "document title")
}

func (c *common) backend() Backend {
	if c.url != "" {
		return NewClient(c.url, c.timeout)
	}
	return service.New(service.WithIndex(false), service.WithTitle(c.title))
}

func (c *common) input(f *flag.FlagSet) string {
	if c.in == "" && f.NArg() > 0 {
		return f.Arg(0)
	}
	return c.in
}

// run loads the input and hands it to fn, mapping errors to exit codes.
func (c *common) run(ctx context.Context, f *flag.FlagSet, stderr io.Writer, fn func(ctx context.Context, b Backend, in string) error) subcommands.ExitStatus {
	in := c.input(f)
	if in == "" {
		fmt.Fprintln(stderr, "Error: no input file given")
		return subcommands.ExitUsageError
	}
	if err := fn(ctx, c.backend(), in); err != nil {
		logger.Get().Debug(ctx, "command failed", logger.String("input", in), logger.Error(err))
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// Commands returns every bilanzctl subcommand writing to stdout and stderr.
func Commands(stdout, stderr io.Writer) []subcommands.Command {
	return []subcommands.Command{
		&ratiosCmd{stdout: stdout, stderr: stderr},
		&csvCmd{stdout: stdout, stderr: stderr},
		&pdfCmd{stdout: stdout, stderr: stderr},
	}
}

type ratiosCmd struct {
	common
	style  string
	raw    bool
	stdout io.Writer
	stderr io.Writer
}

func (*ratiosCmd) Name() string     { return "ratios" }
func (*ratiosCmd) Synopsis() string { return "print the derived ratios of two periods" }
func (*ratiosCmd) Usage() string {
	return `bilanzctl ratios [-in <file>] [-url <server>] [-style <style>] [-raw]

  Derives the balance sheet ratios and prints them as a table.
`
}

func (c *ratiosCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.style, "style", "auto", "glamour style: auto, dark, light, notty, ascii")
	f.BoolVar(&c.raw, "raw", false, "print Markdown without terminal rendering")
}

func (c *ratiosCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return c.run(ctx, f, c.stderr, func(ctx context.Context, b Backend, in string) error {
		raw, err := LoadPeriods(in)
		if err != nil {
			return err
		}
		set, err := b.Analyze(ctx, raw)
		if err != nil {
			return err
		}
		md := Markdown(c.title, set)
		if !c.raw {
			if md, err = RenderMarkdown(md, c.style); err != nil {
				return err
			}
		}
		_, err = io.WriteString(c.stdout, md)
		return err
	})
}

// exportCmd is shared by csv and pdf.
type exportCmd struct {
	common
	out    string
	stdout io.Writer
	stderr io.Writer
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.setFlags(f)
	f.StringVar(&c.out, "o", "", "output file; writes to stdout when empty")
}

func (c *exportCmd) write(data []byte) error {
	if c.out == "" {
		_, err := c.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(c.out, data, outputFileMode); err != nil {
		return fmt.Errorf("%w: %v", ErrOutput, err)
	}
	fmt.Fprintf(c.stderr, "wrote %s (%d bytes)\n", c.out, len(data))
	return nil
}

type csvCmd exportCmd

func (*csvCmd) Name() string     { return "csv" }
func (*csvCmd) Synopsis() string { return "export the derived table as CSV" }
func (*csvCmd) Usage() string {
	return `bilanzctl csv [-in <file>] [-url <server>] [-o <file>]

  Writes the header row and one row per period.
`
}

func (c *csvCmd) SetFlags(f *flag.FlagSet) { (*exportCmd)(c).SetFlags(f) }

func (c *csvCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e := (*exportCmd)(c)
	return c.run(ctx, f, c.stderr, func(ctx context.Context, b Backend, in string) error {
		raw, err := LoadPeriods(in)
		if err != nil {
			return err
		}
		data, err := b.ExportCSV(ctx, raw)
		if err != nil {
			return err
		}
		return e.write(data)
	})
}

type pdfCmd exportCmd

func (*pdfCmd) Name() string     { return "pdf" }
func (*pdfCmd) Synopsis() string { return "export the two page PDF report" }
func (*pdfCmd) Usage() string {
	return `bilanzctl pdf [-in <file>] [-url <server>] -o <file>

  Writes the table page followed by the chart page.
`
}

func (c *pdfCmd) SetFlags(f *flag.FlagSet) { (*exportCmd)(c).SetFlags(f) }

func (c *pdfCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e := (*exportCmd)(c)
	return c.run(ctx, f, c.stderr, func(ctx context.Context, b Backend, in string) error {
		raw, err := LoadPeriods(in)
		if err != nil {
			return err
		}
		data, err := b.ExportPDF(ctx, raw)
		if err != nil {
			return err
		}
		return e.write(data)
	})
}

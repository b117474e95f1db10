package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/tracehttp/internal/bench"
	"github.com/wesleyorama2/tracehttp/internal/check"
	tracehttp "github.com/wesleyorama2/tracehttp/internal/http"
	"github.com/wesleyorama2/tracehttp/internal/output"
)

func newDoCmd(a *app) *cobra.Command {
	f := &requestFlags{}
	cmd := &cobra.Command{
		Use:   "do [URL]",
		Short: "Send a request and show where its time went",
		Example: `  tracehttp do https://example.com
  tracehttp do -X POST -H 'Content-Type: application/json' -d '{"a":1}' https://httpbin.org/post
  tracehttp do -f request.yaml -e token=abc --extract $.id`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExchange(cmd, args, f)
		},
	}
	f.register(cmd.Flags(), true)
	return cmd
}

func newVerbCmd(a *app, method string) *cobra.Command {
	f := &requestFlags{method: method}
	cmd := &cobra.Command{
		Use:   strings.ToLower(method) + " [URL]",
		Short: fmt.Sprintf("Send a %s request", method),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExchange(cmd, args, f)
		},
	}
	f.register(cmd.Flags(), false)
	return cmd
}

func (a *app) newClient(f *requestFlags) *tracehttp.Client {
	opts := []tracehttp.ClientOption{
		tracehttp.WithLogger(a.logger),
		tracehttp.WithMaxRedirects(f.maxRedirects),
	}
	if a.settings.Insecure {
		opts = append(opts, tracehttp.WithInsecureSkipVerify())
	}
	if f.sharedClock {
		opts = append(opts, tracehttp.WithSharedClock())
	}
	return tracehttp.NewClient(opts...)
}

func (a *app) runExchange(cmd *cobra.Command, args []string, f *requestFlags) error {
	p, err := f.plan(cmd, args, a.settings.ConnectTimeout)
	if err != nil {
		return err
	}

	var schema *check.Schema
	if p.schema != "" {
		if schema, err = check.LoadSchema(p.schema); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	formatter := output.GetFormatter(a.format, f.verbose, a.noColor(out))
	client := a.newClient(f)

	if a.format == output.FormatText {
		fmt.Fprint(out, formatter.FormatRequest(p.spec))
	}

	if f.repeat > 1 {
		return a.runRepeat(cmd.Context(), out, formatter, client, p, f)
	}

	resp, err := client.Do(cmd.Context(), p.spec, p.timeout)
	if err != nil {
		fmt.Fprint(out, formatter.FormatError(err))
		return errReported
	}
	fmt.Fprint(out, formatter.FormatResponse(resp))

	report := check.Run(resp.Body, p.extract, schema)
	if report.Empty() {
		return nil
	}
	fmt.Fprint(out, formatter.FormatReport(report))
	if !report.Passed() {
		return errReported
	}
	return nil
}

// runRepeat runs the exchange f.repeat times and prints the phase summary.
// Response checks are not run in this mode.
func (a *app) runRepeat(ctx context.Context, out io.Writer, formatter output.FormatProvider,
	client *tracehttp.Client, p *exchangePlan, f *requestFlags) error {
	if len(p.extract) > 0 || p.schema != "" {
		a.logger.Warn("response checks are skipped with --repeat")
	}

	runner := &bench.Runner{
		Count:    f.repeat,
		Interval: f.interval,
		Logger:   a.logger,
		OnResult: func(i int, resp *tracehttp.Response, err error) {
			if a.format != output.FormatText || !f.verbose {
				return
			}
			if err != nil {
				fmt.Fprintf(out, "  #%d %s", i, formatter.FormatError(err))
				return
			}
			fmt.Fprintf(out, "  #%d %d in %dms\n", i, resp.Status, resp.Stats.Total)
		},
	}

	summary, err := runner.Run(ctx, func(ctx context.Context) (*tracehttp.Response, error) {
		return client.Do(ctx, p.spec, p.timeout)
	})
	fmt.Fprint(out, formatter.FormatSummary(summary))
	if err != nil {
		return err
	}
	if summary.Errors == summary.Runs {
		return errReported
	}
	return nil
}

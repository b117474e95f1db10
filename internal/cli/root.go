package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	nested "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thediveo/enumflag/v2"

	"github.com/wesleyorama2/tracehttp/internal/config"
	"github.com/wesleyorama2/tracehttp/internal/diag"
	"github.com/wesleyorama2/tracehttp/internal/output"
)

var version = "0.1.0"

// errReported is returned once a failure has already been written to the
// output, so Execute only sets the exit code.
var errReported = errors.New("reported")

// app is the state shared by every command of one invocation.
type app struct {
	v           *viper.Viper
	cfgFile     string
	format      output.Format
	traceEvents bool
	settings    config.Settings
	logger      *logrus.Logger
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: logrus.New()}

	root := &cobra.Command{
		Use:     "tracehttp",
		Short:   "An HTTP client that shows where the time goes",
		Version: version,
		Long: `tracehttp sends one HTTP request and reports the response together with a
waterfall of its phases: DNS lookup, TCP connect, TLS handshake, request
transmission, server processing and content transfer.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./tracehttp.yaml or $HOME/.config/tracehttp/tracehttp.yaml)")
	flags.VarP(enumflag.New(&a.format, "format", output.FormatIds, enumflag.EnumCaseInsensitive),
		"output", "o", "output format: text, json or yaml")
	flags.Bool("no-color", false, "disable colored output")
	flags.String("log-level", "warn", "log level: trace, debug, info, warn or error")
	flags.BoolP("insecure", "k", false, "skip TLS certificate verification")
	flags.Uint64("connect-timeout", 0, "exchange budget in seconds (0 means 10)")
	flags.BoolVar(&a.traceEvents, "trace-events", false, "print the raw diagnostic events to stderr")

	a.v.BindPFlag(config.KeyOutput, flags.Lookup("output"))
	a.v.BindPFlag(config.KeyNoColor, flags.Lookup("no-color"))
	a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	a.v.BindPFlag(config.KeyInsecure, flags.Lookup("insecure"))
	a.v.BindPFlag(config.KeyConnectTimeout, flags.Lookup("connect-timeout"))

	root.AddCommand(newDoCmd(a))
	for _, method := range []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD"} {
		root.AddCommand(newVerbCmd(a, method))
	}
	root.AddCommand(newServeCmd(a))
	return root
}

// init reads the settings once flags are parsed.
func (a *app) init(cmd *cobra.Command, _ []string) error {
	if err := config.Init(a.v, a.cfgFile); err != nil {
		return err
	}
	a.settings = config.Load(a.v)

	format, err := output.ParseFormat(a.settings.Output)
	if err != nil {
		return err
	}
	a.format = format

	level, err := logrus.ParseLevel(a.settings.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	a.logger.SetOutput(cmd.ErrOrStderr())
	a.logger.SetLevel(level)
	a.logger.SetFormatter(newLogFormatter(a.settings.NoColor))

	if a.traceEvents {
		events := diag.Logger()
		events.SetOutput(cmd.ErrOrStderr())
		events.SetFormatter(newLogFormatter(a.settings.NoColor))
	}
	return nil
}

func newLogFormatter(noColor bool) logrus.Formatter {
	return &nested.Formatter{
		HideKeys:        true,
		FieldsOrder:     []string{diag.FieldRequestID, diag.FieldSource, "method", "url"},
		TimestampFormat: time.StampMilli,
		NoColors:        noColor,
	}
}

// noColor reports whether text output to w should be plain.
func (a *app) noColor(w io.Writer) bool {
	return a.settings.NoColor || !output.ColorEnabled(w)
}

// Execute runs the command line and returns the exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return 1
	}
	return 0
}

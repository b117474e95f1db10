package cli

import (
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/tracehttp/internal/config"
	tracehttp "github.com/wesleyorama2/tracehttp/internal/http"
	"github.com/wesleyorama2/tracehttp/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run exchanges for HTTP callers and export their phases as metrics",
		Long: `serve accepts request payloads on POST /request and answers with the
traced response. Phase histograms are exported on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []tracehttp.ClientOption{tracehttp.WithLogger(a.logger)}
			if a.settings.Insecure {
				opts = append(opts, tracehttp.WithInsecureSkipVerify())
			}
			srv := server.New(server.Options{
				Addr:     a.settings.Serve.Addr,
				User:     a.settings.Serve.User,
				Password: a.settings.Serve.Password,
				Logger:   a.logger,
			}, tracehttp.NewClient(opts...))
			return srv.Run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "127.0.0.1:7878", "listen address")
	flags.String("user", "", "basic auth user, empty disables auth")
	flags.String("password", "", "basic auth password, plain or bcrypt hash")
	a.v.BindPFlag(config.KeyServeAddr, flags.Lookup("addr"))
	a.v.BindPFlag(config.KeyServeUser, flags.Lookup("user"))
	a.v.BindPFlag(config.KeyServePassword, flags.Lookup("password"))
	return cmd
}

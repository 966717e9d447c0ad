package commands

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/erraggy/restparams/internal/endpoints"
)

type serveFlags struct {
	addr      string
	endpoints string
}

func newServeCommand(a *app) *cobra.Command {
	flags := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve --endpoints <file>",
		Short: "Serve declared endpoints over HTTP",
		Long: `Serve every endpoint of an endpoints file. Each endpoint validates its
parameters and echoes the validated arguments as JSON; rejected requests get
the 400 error envelope. Prometheus metrics are exposed on /metrics.

Environment:
  RESTPARAMS_MAX_BODY_SIZE  request body limit in bytes (default 10 MiB)
  RESTPARAMS_STRICT_BOOL    parse bool params strictly (default false)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := endpoints.Load(flags.endpoints)
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			router, err := endpoints.NewRouter(f, endpoints.ConfigFromEnv(), reg, a.logger)
			if err != nil {
				return err
			}
			return endpoints.NewServer(flags.addr, router, a.logger).ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&flags.addr, "addr", ":8080", "address to listen on")
	cmd.Flags().StringVar(&flags.endpoints, "endpoints", "", "endpoints YAML file")
	_ = cmd.MarkFlagRequired("endpoints")
	return cmd
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/smartquiz/internal/api"
	"github.com/abhisek/smartquiz/internal/ingest"
	"github.com/abhisek/smartquiz/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the quiz HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.Addr
		}
		origins, _ := cmd.Flags().GetStringSlice("cors-origin")
		ttl, _ := cmd.Flags().GetDuration("session-ttl")

		chain, _ := newGenerator(ctx, b.EventRepo())
		srv := api.New(api.Deps{
			Generator:      chain,
			Fetcher:        ingest.NewFetcher(nil),
			Questions:      b.QuestionSetRepo(),
			History:        b.HistoryRepo(),
			BackendName:    b.Name(),
			DefaultUser:    cfg.User,
			AllowedOrigins: origins,
			SessionTTL:     ttl,
			Logger:         logging.For("api"),
		})
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides SMARTQUIZ_ADDR)")
	serveCmd.Flags().StringSlice("cors-origin", []string{"*"}, "Allowed CORS origins")
	serveCmd.Flags().Duration("session-ttl", api.DefaultSessionTTL, "Idle time before a quiz session is dropped")
}

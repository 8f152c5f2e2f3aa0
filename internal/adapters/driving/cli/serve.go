package cli

import (
	"context"
	"errors"

	"github.com/google/gops/agent"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docchat/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the JSON API for documents, retrieval and chats until interrupted.

Every /api route expects the caller's user id in the configured user header
(X-User-ID by default), set by an authenticating proxy in front of docchat.
Identity webhooks are accepted on /api/webhooks/identity when
server.webhook_secret is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveAddr string
	serveGops bool
)

// runServer is replaced in tests to avoid binding a port.
var runServer = func(ctx context.Context, s *httpapi.Server) error {
	return s.Run(ctx)
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().BoolVar(&serveGops, "gops", false, "Start the gops diagnostics agent")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if active == nil {
		return errors.New("services not configured")
	}

	settings := active.Server
	if serveAddr != "" {
		settings.Addr = serveAddr
	}

	server, err := httpapi.NewServer(httpapi.Ports{
		Documents: active.Documents,
		Retrieval: active.Retrieval,
		Chats:     active.Chats,
		Identity:  active.Identity,
	}, settings)
	if err != nil {
		return err
	}

	if serveGops {
		if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
			logger.Warn("gops: %v", err)
		} else {
			defer agent.Close()
		}
	}

	if settings.WebhookSecret == "" {
		logger.Info("serve: no webhook secret configured; identity webhooks will be rejected")
	}
	cmd.Printf("docchat API listening on %s\n", server.Addr())
	return runServer(cmd.Context(), server)
}

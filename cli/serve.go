package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/AmarBackInField/Legal-MultiAgent-Chatbot/server"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP and WebSocket API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		if servePort != "" {
			cfg.App.Port = servePort
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		srv, err := server.New(server.Config{
			Answerer: a.orchestrator,
			Logger:   a.log,
		})
		if err != nil {
			return err
		}

		a.log.Info("legal assistant ready",
			zap.String("websocket", "ws://localhost:"+cfg.App.Port+"/ws"),
			zap.String("health", "http://localhost:"+cfg.App.Port+"/health"),
			zap.Int("documents", a.index.Count()))
		return srv.Run(ctx, ":"+cfg.App.Port)
	},
}

func init() {
	serveCmd.Flags().StringVarP(&servePort, "port", "p", "", "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-reconciliation-service/internal/server"
	"bank-reconciliation-service/pkg/logger"
)

var (
	servePort      int
	allowedOrigins []string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reconciliation HTTP API",
	Long: `Serve starts an HTTP server exposing the reconciliation engine.

Endpoints:
  POST /api/v1/reconcile  run a reconciliation over JSON transaction sets
  GET  /healthz           liveness probe

Examples:
  reconciler serve
  reconciler serve --port 9090 --allowed-origins https://ops.example.com`,

	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "port to listen on")
	serveCmd.Flags().StringSliceVar(&allowedOrigins, "allowed-origins", []string{"*"}, "CORS allowed origins")

	viper.BindPFlag("port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("allowed-origins", serveCmd.Flags().Lookup("allowed-origins"))
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &server.Config{
		Port:           viper.GetInt("port"),
		AllowedOrigins: viper.GetStringSlice("allowed-origins"),
	}

	log := logger.WithComponent("server")

	router, err := server.New(config, log)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", config.Port)
	log.WithField("addr", addr).Info("starting HTTP server")

	return http.ListenAndServe(addr, router)
}

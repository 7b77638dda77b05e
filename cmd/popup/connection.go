package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/SMD-Bioinformatics-Lund/eyrie/internal/api"
	"github.com/spf13/cobra"
)

var connectionCmd = &cobra.Command{
	Use:   "test-connection",
	Short: "Check that the tracking service is reachable",
	Long: `Call the health endpoint of the tracking service and, when
credentials are available, log in.`,
	RunE: runConnection,
}

var (
	connectionAPI      string
	connectionUsername string
	connectionPassword string
)

func init() {
	connectionCmd.Flags().StringVar(&connectionAPI, "api", "", "Tracking service API URL (overrides api.url)")
	connectionCmd.Flags().StringVar(&connectionUsername, "username", "", "Tracking service username")
	connectionCmd.Flags().StringVar(&connectionPassword, "password", "", "Tracking service password")
}

func runConnection(cmd *cobra.Command, args []string) error {
	toolCfg, err := loadToolConfig()
	if err != nil {
		return err
	}

	baseURL := toolCfg.API.URL
	if connectionAPI != "" {
		baseURL = connectionAPI
	}
	username, password, err := credentials(toolCfg, connectionUsername, connectionPassword)
	if err != nil {
		return err
	}

	client := api.NewClient(
		api.WithBaseURL(baseURL),
		api.WithTimeout(toolCfg.Timeout()),
		api.WithCredentials(username, password),
		api.WithDebug(debug),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := client.TestConnection(ctx); err != nil {
		return fmt.Errorf("cannot reach %s: %w", client.ServiceRoot(), err)
	}
	printSuccess("Service at %s is healthy", client.ServiceRoot())

	if username == "" {
		printInfo("No credentials given; skipping login")
		return nil
	}
	if err := client.Authenticate(ctx); err != nil {
		return fmt.Errorf("login as %s failed: %w", username, err)
	}
	printSuccess("Logged in as %s", username)
	if info := client.TokenInfo(); info != nil && !info.ExpiresAt.IsZero() {
		printInfo("Token expires %s", info.ExpiresAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

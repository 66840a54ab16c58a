package cmd

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"vidyeet/internal/app/model"
	"vidyeet/internal/credentials"
	"vidyeet/internal/mux"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check whether Mux credentials are configured and valid",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := credentials.DefaultStore()
	if err != nil {
		return err
	}

	source := "credentials file"
	if envCredentials().Valid() {
		source = "environment"
	}

	creds, err := credentials.Resolve(store, envCredentials())
	if errors.Is(err, credentials.ErrNotLoggedIn) {
		return renderer.Status(&model.StatusResult{})
	}
	if err != nil {
		return err
	}

	result := &model.StatusResult{TokenID: creds.MaskedID(), Source: source}

	client := mux.NewClient(mux.Options{
		BaseURL:    cfg.API.Endpoint,
		Timeout:    cfg.API.Timeout(),
		AuthHeader: creds.AuthHeader(),
	})
	if err := runWithSpinnerIfTerminal("Checking credentials", func() error { return client.Ping(ctx) }); err != nil {
		slog.Debug("Credential check failed", "error", err)
		result.Detail = err.Error()
	} else {
		result.IsAuthenticated = true
	}

	return renderer.Status(result)
}

func runWithSpinnerIfTerminal(title string, fn func() error) error {
	if renderer.Machine() {
		return fn()
	}
	return runWithSpinner(title, fn)
}

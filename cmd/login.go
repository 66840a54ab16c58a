package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"vidyeet/internal/app/model"
	"vidyeet/internal/credentials"
	"vidyeet/internal/mux"
)

const accessTokensURL = "https://dashboard.mux.com/settings/access-tokens"

var (
	loginTokenID     string
	loginTokenSecret string
	loginOpen        bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save Mux API credentials",
	Long: `Prompt for a Mux access token id and secret, verify them against the
API and store them in the user config directory.

Pass --token-id and --token-secret to skip the prompt.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVar(&loginTokenID, "token-id", "", "Mux access token id")
	loginCmd.Flags().StringVar(&loginTokenSecret, "token-secret", "", "Mux access token secret")
	loginCmd.Flags().BoolVar(&loginOpen, "open", false, "Open the Mux access token page in a browser")
	rootCmd.AddCommand(loginCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := credentials.DefaultStore()
	if err != nil {
		return err
	}

	creds := credentials.Credentials{
		TokenID:     strings.TrimSpace(loginTokenID),
		TokenSecret: strings.TrimSpace(loginTokenSecret),
	}

	if !creds.Valid() {
		if renderer.Machine() {
			return usageError{fmt.Errorf("--token-id and --token-secret are required when not running in a terminal")}
		}
		if err := promptCredentials(&creds); err != nil {
			return err
		}
	}

	if err := verifyCredentials(ctx, creds); err != nil {
		return err
	}

	replaced, err := store.Save(creds)
	if err != nil {
		return err
	}

	return renderer.Login(&model.LoginResult{WasLoggedIn: replaced})
}

func promptCredentials(creds *credentials.Credentials) error {
	renderer.Info(fmt.Sprintf("Create an access token with Mux Video permissions at:\n  %s", accessTokensURL))
	if loginOpen {
		_ = browser.OpenURL(accessTokensURL)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Mux Token ID").
				Value(&creds.TokenID).
				Validate(required("Token ID")),
			huh.NewInput().
				Title("Mux Token Secret").
				EchoMode(huh.EchoModePassword).
				Value(&creds.TokenSecret).
				Validate(required("Token Secret")),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	creds.TokenID = strings.TrimSpace(creds.TokenID)
	creds.TokenSecret = strings.TrimSpace(creds.TokenSecret)
	return nil
}

func verifyCredentials(ctx context.Context, creds credentials.Credentials) error {
	client := mux.NewClient(mux.Options{
		BaseURL:    cfg.API.Endpoint,
		Timeout:    cfg.API.Timeout(),
		AuthHeader: creds.AuthHeader(),
	})

	verify := func() error {
		if err := client.Ping(ctx); err != nil {
			return fmt.Errorf("failed to verify credentials: %w", err)
		}
		return nil
	}

	return runWithSpinnerIfTerminal("Verifying credentials", verify)
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	return err
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

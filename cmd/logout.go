package cmd

import (
	"github.com/spf13/cobra"

	"vidyeet/internal/app/model"
	"vidyeet/internal/credentials"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove saved Mux API credentials",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	store, err := credentials.DefaultStore()
	if err != nil {
		return err
	}

	removed, err := store.Remove()
	if err != nil {
		return err
	}

	return renderer.Logout(&model.LogoutResult{WasLoggedIn: removed})
}

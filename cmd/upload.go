package cmd

import (
	"log/slog"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"vidyeet/internal/app"
	"vidyeet/internal/credentials"
)

var (
	uploadTitle string
	uploadOpen  bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a video file to Mux",
	Long: `Upload a local video file to Mux Video.

The file is sent in chunks, then vidyeet waits until Mux has created the
asset and prints its HLS streaming URL and MP4 download URL. When the
account has reached its asset limit, the oldest asset is deleted once to
make room.`,
	Args: exactFileArg,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadTitle, "title", "t", "", "Title stored in the asset metadata")
	uploadCmd.Flags().BoolVar(&uploadOpen, "open", false, "Open the HLS URL in a browser when done")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	store, err := credentials.DefaultStore()
	if err != nil {
		return err
	}
	creds, err := credentials.Resolve(store, envCredentials())
	if err != nil {
		return err
	}

	if uploadTitle != "" {
		cfg.Asset.Title = uploadTitle
	}

	svc, err := app.BuildService(cfg, creds)
	if err != nil {
		return err
	}

	result, err := svc.Upload(ctx, args[0], renderer.Progress)
	if err != nil {
		return err
	}

	if err := renderer.UploadResult(result); err != nil {
		return err
	}

	if uploadOpen && result.HLSURL != "" {
		if err := browser.OpenURL(result.HLSURL); err != nil {
			slog.Warn("Failed to open browser", "url", result.HLSURL, "error", err)
		}
	}

	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var downloadOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <id>",
	Short: "Download the response archive for a processed invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runDownload,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "Output file (default <id>.zip)")
}

func runDownload(cmd *cobra.Command, args []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}
	user, err := svc.store.currentUser()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), svc.cfg.Timeout())
	defer cancel()

	archive, err := svc.api.Download(ctx, user, args[0])
	if err != nil {
		return err
	}

	out := downloadOutput
	if out == "" {
		out = args[0] + ".zip"
	}
	if err := os.WriteFile(out, archive, 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %d bytes to %s\n", len(archive), out)
	return nil
}

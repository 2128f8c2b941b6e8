package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rezonia/efactura/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status <upload-id>",
	Short: "Poll the processing state of an uploaded invoice",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	resp, err := svc.api.Status(ctx, user, args[0])
	if err != nil {
		return err
	}

	state := resp.UploadState()
	fmt.Printf("State: %s\n", state)
	if resp.DownloadID != "" {
		fmt.Printf("Download id: %s\n", resp.DownloadID)
	}
	if state == model.UploadStateFailed && resp.Error != "" {
		fmt.Printf("Error: %s\n", resp.Error)
	}
	return nil
}

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/efactura/internal/ubl"
)

var uploadSkipValidation bool

var uploadCmd = &cobra.Command{
	Use:   "upload <invoice.xml>",
	Short: "Upload a UBL invoice to e-Factura",
	Long: `Upload an invoice XML document for the configured CIF.

The document is cleaned and structurally validated locally before the
upload; pass --skip-validation to send it as-is.

Examples:
  efactura upload invoice.xml
  efactura upload invoice.xml --skip-validation`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().BoolVar(&uploadSkipValidation, "skip-validation", false, "Skip local structural validation")
}

func runUpload(cmd *cobra.Command, args []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}
	user, err := svc.store.currentUser()
	if err != nil {
		return err
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	invoiceXML := ubl.Clean(string(raw))

	if !uploadSkipValidation {
		result := ubl.Validate(invoiceXML)
		if !result.Valid {
			fmt.Println("Invoice failed local validation:")
			for _, issue := range result.Errors {
				fmt.Printf("  [%s] %s (%s)\n", issue.Code, issue.Message, issue.Location)
			}
			return fmt.Errorf("invalid invoice document")
		}
		for _, issue := range result.Warnings {
			fmt.Printf("Warning: [%s] %s\n", issue.Code, issue.Message)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), svc.cfg.Timeout())
	defer cancel()

	resp, err := svc.api.Upload(ctx, user, invoiceXML)
	if err != nil {
		return err
	}
	if !resp.Succeeded() {
		return fmt.Errorf("upload rejected: %s", resp.Error)
	}
	fmt.Printf("Uploaded. id_incarcare=%s\n", resp.UploadID)
	return nil
}

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/efactura/internal/ubl"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate <invoice.xml>",
	Short: "Validate an invoice document locally",
	Long: `Run the structural validation pass on an invoice document.

Checks that the document is well-formed XML and carries the required UBL
elements; warns when the CustomizationID is not the CIUS-RO conformance
identifier. This is presence checking, not full XSD validation - the
authoritative verdict comes from the remote system on upload.

Examples:
  efactura validate invoice.xml
  efactura validate invoice.xml --json`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Print the result as JSON")
}

func runValidate(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	result := ubl.Validate(string(raw))

	if validateJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
	} else {
		printValidation(result)
	}

	if !result.Valid {
		return fmt.Errorf("invalid invoice document")
	}
	return nil
}

func printValidation(result *ubl.ValidationResult) {
	if !result.WellFormed {
		fmt.Println("Document is not well-formed XML.")
	}
	for _, issue := range result.Errors {
		fmt.Printf("ERROR   [%s] %s", issue.Code, issue.Message)
		if issue.Location != "" {
			fmt.Printf(" at %s", issue.Location)
		}
		fmt.Println()
	}
	for _, issue := range result.Warnings {
		fmt.Printf("WARNING [%s] %s\n", issue.Code, issue.Message)
	}
	if result.Valid && len(result.Warnings) == 0 {
		fmt.Println("OK")
	}
}

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var loginScope string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the ANAF identity provider",
	Long: `Start the OAuth2 authorization-code flow.

Prints the authorization URL; open it in a browser with your certificate
enrolled, approve the request, then paste the redirect URL (or just the
code) back here. The resulting token is cached locally and refreshed
automatically by the other commands.`,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginScope, "scope", "", "Optional OAuth2 scope")
}

func runLogin(cmd *cobra.Command, args []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}

	authorizeURL, state, err := svc.auth.BeginAuthorization(loginScope)
	if err != nil {
		return err
	}

	fmt.Println("Open this URL in a browser with your ANAF certificate:")
	fmt.Println()
	fmt.Println("  " + authorizeURL)
	fmt.Println()
	fmt.Print("Paste the redirect URL or authorization code: ")

	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return fmt.Errorf("no input")
	}
	code, callbackState := parseCallbackInput(strings.TrimSpace(scanner.Text()))
	if code == "" {
		return fmt.Errorf("no authorization code in input")
	}
	if callbackState == "" {
		// Bare code pasted; the state round-tripped through this process.
		callbackState = state
	}

	ctx, cancel := context.WithTimeout(context.Background(), svc.cfg.Timeout())
	defer cancel()

	token, err := svc.auth.CompleteAuthorization(ctx, "", code, callbackState)
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s (token valid until %s)\n",
		token.User, token.ExpiresAt().Local().Format(time.RFC1123))
	return nil
}

// parseCallbackInput accepts either a full redirect URL or a bare code.
func parseCallbackInput(input string) (code, state string) {
	if u, err := url.Parse(input); err == nil && u.Query().Get("code") != "" {
		return u.Query().Get("code"), u.Query().Get("state")
	}
	return input, ""
}

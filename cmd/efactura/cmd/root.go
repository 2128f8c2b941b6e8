package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rezonia/efactura/internal/config"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	environment  string
	clientID     string
	clientSecret string
	redirectURI  string
	cif          string
	tokenFile    string
)

var rootCmd = &cobra.Command{
	Use:   "efactura",
	Short: "Interact with Romania's ANAF e-Factura system",
	Long: `efactura is a CLI for the ANAF e-Factura electronic invoicing system.

It authenticates with the certificate-protected ANAF identity provider
(OAuth2 authorization-code flow), uploads UBL 2.1 invoices, polls their
processing state, lists SPV messages, and downloads response archives.

Examples:
  # Log in (prints the authorization URL, paste the code back)
  efactura login

  # Validate an invoice locally before sending it
  efactura validate invoice.xml

  # Upload an invoice and poll its state
  efactura upload invoice.xml
  efactura status 5001234567

  # List messages from the last 30 days
  efactura messages --days 30

  # Start the HTTP API server
  efactura serve --address :8080`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&environment, "env", "", "ANAF environment: test or prod (env: EFACTURA_ENV)")
	rootCmd.PersistentFlags().StringVar(&clientID, "client-id", "", "OAuth2 client id (env: EFACTURA_CLIENT_ID)")
	rootCmd.PersistentFlags().StringVar(&clientSecret, "client-secret", "", "OAuth2 client secret (env: EFACTURA_CLIENT_SECRET)")
	rootCmd.PersistentFlags().StringVar(&redirectURI, "redirect-uri", "", "OAuth2 redirect URI (env: EFACTURA_REDIRECT_URI)")
	rootCmd.PersistentFlags().StringVar(&cif, "cif", "", "Company fiscal code (env: EFACTURA_CIF)")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", "", "Token cache file (default ~/.efactura/token.json)")
}

// loadConfig reads the environment configuration and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if environment != "" {
		cfg.Environment = config.Environment(environment)
	}
	if clientID != "" {
		cfg.ClientID = clientID
	}
	if clientSecret != "" {
		cfg.ClientSecret = clientSecret
	}
	if redirectURI != "" {
		cfg.RedirectURI = redirectURI
	}
	if cif != "" {
		cfg.CIF = cif
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the CLI logger. Verbose mode switches to the development
// encoder with debug level.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	log, err := logCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return log, nil
}

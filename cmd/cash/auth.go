package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/the-cash-must-flow/internal/cli"
	"github.com/Veraticus/the-cash-must-flow/internal/common"
	"github.com/Veraticus/the-cash-must-flow/internal/config"
	"github.com/Veraticus/the-cash-must-flow/internal/sheets"
	"github.com/Veraticus/the-cash-must-flow/internal/ynab"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
		Long:  `Authenticate with YNAB and Google Sheets.`,
	}

	cmd.AddCommand(authYNABCmd())
	cmd.AddCommand(authSheetsCmd())

	return cmd
}

func authYNABCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ynab <personal-access-token>",
		Short: "Save a YNAB personal access token",
		Long: `Check a YNAB personal access token against the API and save it to the
config file as ynab.access_token.

Create a token under Account Settings → Developer Settings in YNAB.`,
		Args: cobra.ExactArgs(1),
		RunE: runAuthYNAB,
	}
}

func runAuthYNAB(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	token := strings.TrimSpace(args[0])
	if token == "" {
		return common.NewUserError("the access token is empty", common.ErrMissingConfig)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := ynab.NewClient(ynab.Config{
		AccessToken:     token,
		BaseURL:         cfg.YNAB.BaseURL,
		RequestsPerHour: cfg.YNAB.RequestsPerHour,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	budgets, err := client.ListBudgets(ctx)
	if err != nil {
		return fmt.Errorf("token check failed: %w", err)
	}

	viper.Set("ynab.access_token", token)
	if err := saveConfig(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Token saved; %d budgets visible", len(budgets))))
	return nil
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This command will:
1. Print a URL to authenticate with Google
2. Save the token next to the config file
3. Update your config file with the refresh token

You'll need to run this once to set up Google Sheets export.`,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")
	cmd.Flags().Int("port", sheets.DefaultCallbackPort, "local port for the OAuth2 callback")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	clientID := viper.GetString("sheets.client_id")
	clientSecret := viper.GetString("sheets.client_secret")

	if flagID, _ := cmd.Flags().GetString("client-id"); flagID != "" {
		clientID = flagID
	}
	if flagSecret, _ := cmd.Flags().GetString("client-secret"); flagSecret != "" {
		clientSecret = flagSecret
	}

	if clientID == "" {
		clientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if clientSecret == "" {
		clientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}

	if clientID == "" || clientSecret == "" {
		return common.NewUserError(
			"OAuth2 credentials not found. Set sheets.client_id and sheets.client_secret in config or use --client-id and --client-secret",
			common.ErrMissingConfig)
	}

	tokenFile, err := config.DefaultTokenFile()
	if err != nil {
		return err
	}
	port, _ := cmd.Flags().GetInt("port")

	slog.Info("Starting Google Sheets authentication", "token_file", tokenFile)

	token, err := sheets.AuthenticateOAuth2Interactive(ctx, sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
		CallbackPort: port,
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	viper.Set("sheets.refresh_token", token.RefreshToken)
	if err := saveConfig(); err != nil {
		slog.Warn("Failed to update config file with refresh token", "error", err)
		fmt.Fprintln(out, cli.FormatWarning("Could not save the refresh token to the config file"))
		fmt.Fprintf(out, "Add this to your config.yaml manually:\nsheets:\n  refresh_token: %q\n", token.RefreshToken)
	} else {
		fmt.Fprintln(out, cli.FormatSuccess("Authentication successful!"))
	}

	fmt.Fprintln(out, cli.FormatInfo("Google Sheets is ready. Export with 'cash cashflow --export' or 'cash balance --export'."))
	return nil
}

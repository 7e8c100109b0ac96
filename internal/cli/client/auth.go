package client

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// AuthCmd creates the auth parent command
func AuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the server URL and admin token",
		Long:  "Login, logout, and check which server the roadmap CLI talks to",
	}

	cmd.AddCommand(AuthLoginCmd())
	cmd.AddCommand(AuthLogoutCmd())
	cmd.AddCommand(AuthStatusCmd())

	return cmd
}

// AuthLoginCmd creates the auth login command
func AuthLoginCmd() *cobra.Command {
	var adminToken string
	var apiURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the server URL and admin token",
		Long:  "Store the server URL and optional admin token in global config (~/.config/roadmap/config.json)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogin(cmd.OutOrStdout(), apiURL, adminToken)
		},
	}

	cmd.Flags().StringVar(&adminToken, "token", "", "Admin token for snapshot and decision endpoints")
	cmd.Flags().StringVar(&apiURL, "url", defaultAPIURL, "API URL")

	return cmd
}

// AuthLogoutCmd creates the auth logout command
func AuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear stored settings",
		Long:  "Remove the stored server URL and admin token from global config",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthLogout(cmd.OutOrStdout())
		},
	}
}

// AuthStatusCmd creates the auth status command
func AuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the effective server settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAuthStatus(cmd.OutOrStdout(), outputJSON)
		},
	}
}

func runAuthLogin(out io.Writer, apiURL, adminToken string) error {
	if apiURL == "" {
		return fmt.Errorf("api url cannot be empty")
	}

	config := &GlobalConfig{
		APIURL:     apiURL,
		AdminToken: adminToken,
	}

	if err := SaveGlobalConfig(config); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	fmt.Fprintf(out, "Saved settings for %s\n", apiURL)
	return nil
}

func runAuthLogout(out io.Writer) error {
	if err := DeleteGlobalConfig(); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}

	fmt.Fprintln(out, "Successfully logged out")
	return nil
}

func runAuthStatus(out io.Writer, outputJSON bool) error {
	source, apiURL, adminToken := ResolveSettings()

	if outputJSON {
		status := map[string]any{
			"source":  string(source),
			"api_url": apiURL,
			"admin":   adminToken != "",
		}
		if adminToken != "" {
			status["admin_token"] = maskToken(adminToken)
		}
		data, err := json.MarshalIndent(status, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "Source: %s\n", source)
	fmt.Fprintf(out, "API URL: %s\n", apiURL)
	if adminToken == "" {
		fmt.Fprintln(out, "Admin token: not set")
	} else {
		fmt.Fprintf(out, "Admin token: %s\n", maskToken(adminToken))
	}
	return nil
}

func maskToken(token string) string {
	if len(token) < 8 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Fprintln(out, string(data))
	return nil
}


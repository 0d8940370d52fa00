package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"walletscout/pkg/auth"
	"walletscout/pkg/ui"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the xAI API key",
	Long: `Manage the stored xAI API key securely.

The key is stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your API key or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the xAI API key securely",
	Long: `Store the xAI API key securely in the system keychain or an encrypted file.

You will be prompted for the key, which is hidden as you type. Get a key
from the xAI console at https://console.x.ai.`,
	Example: `  # Interactive login
  walletscout auth login`,
	Run: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored API key",
	Run:   runLogout,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether an API key is configured",
	Run:   runStatus,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(statusCmd)
}

func runLogin(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if manager.Exists(auth.DefaultProvider) {
		ui.PrintWarning("An API key is already stored and will be replaced")
	}

	fmt.Print("xAI API key: ")
	apiKey, err := readPassword()
	if err != nil {
		ui.PrintError("Failed to read API key", err.Error())
		os.Exit(1)
	}
	fmt.Println()

	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		ui.PrintError("API key is required", "")
		os.Exit(1)
	}

	cred := &auth.Credential{
		Provider: auth.DefaultProvider,
		APIKey:   apiKey,
	}

	if err := manager.Store(cred); err != nil {
		ui.PrintError("Failed to store API key", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("API key stored securely")
}

func runLogout(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	if err := manager.Delete(auth.DefaultProvider); err != nil {
		if err == auth.ErrCredentialNotFound {
			ui.PrintWarning("No stored API key found")
			return
		}
		ui.PrintError("Failed to remove API key", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("API key removed")
}

func runStatus(cmd *cobra.Command, args []string) {
	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to initialize credential manager", err.Error())
		os.Exit(1)
	}

	cred, err := manager.Retrieve(auth.DefaultProvider)
	if err != nil {
		ui.PrintWarning("No API key configured")
		fmt.Println("\nRun 'walletscout auth login' to store one, or set XAI_API_KEY.")
		return
	}

	ui.PrintInfo("Provider", cred.Provider)
	ui.PrintInfo("API key", maskKey(cred.APIKey))
	if !cred.LastModified.IsZero() {
		ui.PrintInfo("Last modified", cred.LastModified.Format("2006-01-02 15:04:05"))
	}
}

// maskKey hides all but the edges of the key
func maskKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// readPassword reads a line of input without echoing it
func readPassword() (string, error) {
	data, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

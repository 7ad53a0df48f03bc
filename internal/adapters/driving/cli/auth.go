package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Tabrezhira/sobha-his-forms/internal/core/domain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the backend bearer token",
	Long: `Stores the bearer token used for every backend request.

Copy the token from the portal after signing in, then run 'hisforms auth login'.
The HIS_TOKEN environment variable overrides the stored token.`,
}

var authLoginCmd = &cobra.Command{
	Use:   "login [token]",
	Short: "Store a bearer token",
	Long: `Stores a bearer token. Without an argument the token is read from the
terminal without echo, or from stdin when piped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the stored token",
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	if sessionService == nil {
		return errNotConfigured("session")
	}

	token := ""
	if len(args) == 1 {
		token = args[0]
	} else {
		cmd.Print("Token: ")
		token = readSecret(cmd)
		cmd.Println()
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("%w: token is empty", domain.ErrInvalidInput)
	}

	session, err := sessionService.Login(token)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cmd.Println("Token stored.")
	printSession(cmd, session)
	return nil
}

func runAuthLogout(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errNotConfigured("session")
	}
	if err := sessionService.Logout(); err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	cmd.Println("Token removed.")
	return nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if sessionService == nil {
		return errNotConfigured("session")
	}

	session, err := sessionService.Current()
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		cmd.Println("Not logged in. Run 'hisforms auth login'.")
		return nil
	case errors.Is(err, domain.ErrAuthExpired):
		cmd.Println("Session expired. Run 'hisforms auth login' with a new token.")
		if session != nil {
			printSession(cmd, session)
		}
		return nil
	case err != nil:
		return err
	}

	printSession(cmd, session)
	return nil
}

func printSession(cmd *cobra.Command, s *domain.Session) {
	cmd.Printf("  Token:   %s\n", maskToken(s.Token))
	if s.Name != "" {
		cmd.Printf("  User:    %s\n", s.Name)
	}
	if s.Subject != "" {
		cmd.Printf("  Subject: %s\n", s.Subject)
	}
	if s.Role != "" {
		cmd.Printf("  Role:    %s\n", s.Role)
	}
	if !s.ExpiresAt.IsZero() {
		cmd.Printf("  Expires: %s\n", s.ExpiresAt.Local().Format(time.RFC1123))
	}
}

// readSecret reads without echo from a terminal, else one line from stdin.
//
//nolint:errcheck // CLI helper, error ignored for UX
func readSecret(cmd *cobra.Command) string {
	in := stdin(cmd)
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		secret, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	line, _ := bufio.NewReader(in).ReadString('\n')
	return strings.TrimSpace(line)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in ~/.hisforms/config.toml.

Environment variables HIS_BASE_URL, HIS_CACHE_BACKEND, HIS_REDIS_ADDR and
HIS_SCHEMA_DIR override the stored values.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Changes a single setting. The new settings are validated before they are kept.

Keys:
  his.base_url                 backend API root, e.g. https://his.example.com/api
  his.request_timeout_seconds  per-request timeout (0 disables)
  his.rate_limit_per_second    proactive request rate (0 disables)
  forms.suggest_debounce_ms    typing pause before a suggestion search
  forms.blur_grace_ms          delay before the suggestion menu closes
  forms.suggest_limit          suggestions per search
  forms.preserve_zero          send 0 for numeric fields holding "0"
  forms.schema_dir             directory with form definition overrides
  cache.backend                memory, sqlite or redis
  cache.ttl_minutes            dropdown cache lifetime (0 never expires)
  cache.redis_addr             redis host:port when cache.backend is redis`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Backend]")
	if settings.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.BaseURL)
	} else {
		cmd.Printf("  Base URL: (not set, remote features disabled)\n")
	}
	cmd.Printf("  Request timeout: %s\n", settings.RequestTimeout)
	cmd.Printf("  Rate limit: %.1f/s\n", settings.RateLimit)
	cmd.Println()

	cmd.Println("[Forms]")
	cmd.Printf("  Suggestion debounce: %s\n", settings.SuggestDebounce)
	cmd.Printf("  Blur grace: %s\n", settings.BlurGrace)
	cmd.Printf("  Suggestion limit: %d\n", settings.SuggestLimit)
	cmd.Printf("  Preserve zero: %t\n", settings.PreserveZero)
	if settings.SchemaDir != "" {
		cmd.Printf("  Schema directory: %s\n", settings.SchemaDir)
	}
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Backend: %s\n", settings.CacheBackend.Description())
	cmd.Printf("  TTL: %s\n", settings.CacheTTL)
	if settings.RedisAddr != "" {
		cmd.Printf("  Redis: %s\n", settings.RedisAddr)
	}
	cmd.Println()

	if err := settingsService.Validate(settings); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}
	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])
	return nil
}

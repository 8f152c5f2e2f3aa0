// Package cli provides the docchat command line interface.
package cli

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// defaultUser owns documents and chats created from the command line.
const defaultUser = "local"

// skipBootstrap marks commands that run without application services.
const skipBootstrap = "skip-bootstrap"

// Services holds the application services the commands drive.
type Services struct {
	Documents driving.DocumentService
	Retrieval driving.RetrievalService
	Chats     driving.ChatService
	Identity  driving.IdentityService
	Settings  driving.SettingsService

	// Server configures the HTTP API.
	Server domain.ServerSettings

	// Close releases storage and LLM clients. May be nil.
	Close func() error
}

// Options are the global flags passed to the bootstrap function.
type Options struct {
	// ConfigDir overrides the configuration directory.
	ConfigDir string

	// Verbose enables debug logging.
	Verbose bool
}

// BootstrapFunc builds the services once flags are parsed.
type BootstrapFunc func(ctx context.Context, opts Options) (*Services, error)

var (
	verbose   bool
	configDir string
	userID    string

	bootstrap BootstrapFunc
	active    *Services
)

var rootCmd = &cobra.Command{
	Use:   "docchat",
	Short: "Chat with your documents",
	Long: `docchat indexes PDF, Word and text documents and answers questions about
them with a language model, grounding each answer in the most relevant passages.

Run 'docchat serve' for the HTTP API, or use the document and chat commands
directly from the terminal.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config", "", "Configuration directory (default ~/.docchat)")
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", envOr("DOCCHAT_USER", defaultUser),
		"User that owns documents and chats")
}

// SetBootstrap registers the function that builds the services.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetServices installs services directly, bypassing bootstrap.
func SetServices(s *Services) {
	active = s
}

// Execute runs the root command and releases services afterwards.
// Long-running commands stop when ctx is cancelled.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if active != nil && active.Close != nil {
		if closeErr := active.Close(); closeErr != nil {
			logger.Warn("shutdown: %v", closeErr)
		}
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipBootstrap] == "true" || active != nil || bootstrap == nil {
		return nil
	}

	s, err := bootstrap(cmd.Context(), Options{ConfigDir: configDir, Verbose: verbose})
	if err != nil {
		return err
	}
	active = s
	return nil
}

// owner returns the user the command acts for.
func owner() string {
	if userID == "" {
		return defaultUser
	}
	return userID
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func documentService() (driving.DocumentService, error) {
	if active == nil || active.Documents == nil {
		return nil, errors.New("document service not configured")
	}
	return active.Documents, nil
}

func retrievalService() (driving.RetrievalService, error) {
	if active == nil || active.Retrieval == nil {
		return nil, errors.New("retrieval service not configured")
	}
	return active.Retrieval, nil
}

func chatService() (driving.ChatService, error) {
	if active == nil || active.Chats == nil {
		return nil, errors.New("chat service not configured")
	}
	return active.Chats, nil
}

func settingsService() (driving.SettingsService, error) {
	if active == nil || active.Settings == nil {
		return nil, errors.New("settings service not configured")
	}
	return active.Settings, nil
}

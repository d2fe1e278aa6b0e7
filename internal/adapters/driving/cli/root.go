// Package cli implements the docviewer command line interface with cobra.
package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
	"github.com/custodia-labs/documentviewer/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=v1.2.3".
var version = "dev"

// Services holds the application services wired by the entrypoint.
type Services struct {
	Documents  driving.DocumentService
	Converter  driving.ConverterService
	Settings   driving.SettingsService
	Dispatcher driving.Dispatcher
	Workers    driving.WorkerPool

	// HTTPAddr is the configured listen address of the HTTP API.
	HTTPAddr string

	// InboxDir is the configured inbox directory; empty disables it.
	InboxDir string

	// Close releases stores and queues.
	Close func() error
}

// Bootstrap builds the services for a configuration directory.
// An empty directory selects the default.
type Bootstrap func(configDir string) (*Services, error)

var bootstrap Bootstrap

// SetBootstrap registers the function that wires services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// Services used by commands. Tests assign mocks directly.
var (
	documentService  driving.DocumentService
	converterService driving.ConverterService
	settingsService  driving.SettingsService
	dispatcher       driving.Dispatcher
	workerPool       driving.WorkerPool
	httpAddr         string
	inboxDir         string
	closeServices    func() error
)

var (
	verbose   bool
	configDir string
)

// skipServices marks commands that run without wired services.
const skipServices = "skip-services"

var rootCmd = &cobra.Command{
	Use:   "docviewer",
	Short: "Convert documents into pages for web viewing",
	Long: `docviewer converts PDF and office documents into per-page images,
thumbnails and text, caches the result by content fingerprint and optionally
indexes the page text for search.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setupServices,
	PersistentPostRunE: teardownServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.documentviewer)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipServices] == "true" || documentService != nil {
		return nil
	}
	if bootstrap == nil {
		return errors.New("services not configured")
	}

	svc, err := bootstrap(configDir)
	if err != nil {
		return fmt.Errorf("initialising: %w", err)
	}
	documentService = svc.Documents
	converterService = svc.Converter
	settingsService = svc.Settings
	dispatcher = svc.Dispatcher
	workerPool = svc.Workers
	httpAddr = svc.HTTPAddr
	inboxDir = svc.InboxDir
	closeServices = svc.Close
	return nil
}

func teardownServices(_ *cobra.Command, _ []string) error {
	if closeServices == nil {
		return nil
	}
	err := closeServices()
	closeServices = nil
	return err
}

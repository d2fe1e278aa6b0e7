package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage conversion settings",
	Long: `View and change the global conversion settings, and the per-document
indexation override.

Settings keys:
  storage.type               Blob or File
  storage.location           absolute directory for the File backend
  layout.auto_select         switch converted documents to the viewer layout
  layout.file_types          comma separated groups: pdf,word,excel,ppt,rtf,txt
  indexation.enabled         build a text index for converted documents
  conversion.auto_convert    queue a conversion when a document changes
  conversion.image_format    png or jpeg
  conversion.timeout_seconds bound on a single conversion
  worker.count               background conversion workers
  worker.queue_size          in-memory queue capacity
  worker.rate_per_second     conversions started per second (0 = unlimited)
  queue.backend              memory or redis
  queue.redis_addr           host:port of the Redis queue
  http.addr                  listen address of the HTTP API
  watch.dir                  inbox directory uploaded by serve`,
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
	Long:  `Validates and saves a single setting. Changes apply to conversions queued afterwards.`,
	Args:  cobra.ExactArgs(2),
	RunE:  runSettingsSet,
}

var settingsLocalIndexationCmd = &cobra.Command{
	Use:   "local-indexation [doc-id] [on|off|inherit]",
	Short: "Override indexation for one document",
	Long: `Sets whether one document is indexed regardless of the global setting.
"inherit" removes the override. The change applies from the next conversion.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsLocalIndexation,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsLocalIndexationCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings := settingsService.Global()
	out := cmd.OutOrStdout()

	cmd.Println(heading(out, "Current Settings"))
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Type: %s\n", settings.StorageType.Description())
	if settings.StorageLocation != "" {
		cmd.Printf("  Location: %s\n", settings.StorageLocation)
	}
	cmd.Println()

	cmd.Println("[Layout]")
	cmd.Printf("  Auto select: %s\n", onOff(settings.AutoSelectLayout))
	cmd.Printf("  File types: %s\n", joinFileTypes(settings.AutoLayoutFileTypes))
	cmd.Println()

	cmd.Println("[Conversion]")
	cmd.Printf("  Auto convert: %s\n", onOff(settings.AutoConvert))
	cmd.Printf("  Image format: %s\n", settings.ImageFormat)
	cmd.Printf("  Timeout: %s\n", settings.ConversionTimeout.Round(time.Second))
	cmd.Println()

	cmd.Println("[Indexation]")
	cmd.Printf("  Enabled: %s\n", onOff(settings.EnableIndexation))
	cmd.Println()

	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docviewer settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.SetValue(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	cmd.Printf("%s set to %s\n", key, value)
	return nil
}

func runSettingsLocalIndexation(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	docID := args[0]
	var enabled *bool
	switch strings.ToLower(args[1]) {
	case "on", "true", "yes":
		enabled = domain.BoolPtr(true)
	case "off", "false", "no":
		enabled = domain.BoolPtr(false)
	case "inherit", "default":
	default:
		return fmt.Errorf("invalid value %q: use on, off or inherit", args[1])
	}

	if err := settingsService.SetLocalIndexation(cmd.Context(), docID, enabled); err != nil {
		return fmt.Errorf("failed to set local indexation: %w", err)
	}

	if enabled == nil {
		cmd.Printf("Document %s now inherits the global indexation setting.\n", docID)
	} else {
		cmd.Printf("Indexation %s for document %s.\n", onOff(*enabled), docID)
	}
	cmd.Println("The change applies from the next conversion.")
	return nil
}

func joinFileTypes(types []domain.FileType) string {
	if len(types) == 0 {
		return "(none)"
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}

package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
	"github.com/custodia-labs/documentviewer/internal/core/ports/driving"
)

var (
	uploadWait   bool
	uploadMIME   string
	convertForce bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a document",
	Long: `Stores a document and raises a create event, which queues a conversion
when auto-convert is on. With the memory queue backend the job does not outlive
this command; the next serve queues the document again because it has no
current artifacts.

With --wait the document is converted before the command returns.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var convertCmd = &cobra.Command{
	Use:   "convert [doc-id]",
	Short: "Convert a document now",
	Long: `Converts a document in the foreground. Nothing is done when the stored
artifacts already match the document's content, unless --force is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadWait, "wait", "w", false, "convert before returning")
	uploadCmd.Flags().StringVar(&uploadMIME, "mime-type", "", "declared content type (detected from the extension if empty)")
	convertCmd.Flags().BoolVarP(&convertForce, "force", "f", false, "reconvert even if the artifacts are current")
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(convertCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	path := args[0]
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	ctx := cmd.Context()
	doc, err := documentService.Upload(ctx, filepath.Base(path), uploadMIME, content)
	if err != nil {
		return fmt.Errorf("failed to upload document: %w", err)
	}

	cmd.Printf("Uploaded %s as %s (%s)\n", doc.Filename, doc.ID, doc.FileType().Description())

	if !uploadWait {
		return nil
	}
	return convertDocument(cmd, doc.ID, false)
}

func runConvert(cmd *cobra.Command, args []string) error {
	return convertDocument(cmd, args[0], convertForce)
}

// convertDocument runs a conversion in the foreground and prints the outcome.
func convertDocument(cmd *cobra.Command, docID string, force bool) error {
	if converterService == nil || settingsService == nil {
		return errors.New("converter service not configured")
	}

	cmd.Printf("Converting %s...\n", docID)
	status, err := converterService.Convert(cmd.Context(), docID, settingsService.Global(), driving.ConvertOptions{Force: force})
	if err != nil {
		return fmt.Errorf("failed to convert document: %w", err)
	}
	return printOutcome(cmd, status)
}

func printOutcome(cmd *cobra.Command, status *domain.ConversionStatus) error {
	out := cmd.OutOrStdout()
	if !status.SuccessfullyConverted {
		cmd.Printf("  State:  %s\n", stateLabel(out, domain.StateFailed))
		return fmt.Errorf("conversion failed: %s", status.LastError)
	}
	cmd.Printf("  State:  %s\n", stateLabel(out, domain.StateConverted))
	cmd.Printf("  Pages:  %d\n", status.NumPages)
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

const timeFormat = "2006-01-02 15:04:05"

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage documents",
	Long:  `List, inspect or delete documents and their converted pages.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentStatusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Show conversion status",
	Long:  `Shows the conversion state, the latest outcome and the settings the next conversion would use.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentStatus,
}

var documentPagesCmd = &cobra.Command{
	Use:   "pages [doc-id]",
	Short: "List converted pages",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentPages,
}

var documentTextCmd = &cobra.Command{
	Use:   "text [doc-id] [page]",
	Short: "Print extracted page text",
	Long:  `Prints the text of one page, or of every page when no page is given.`,
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runDocumentText,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Long:  `Removes a document together with its converted pages and conversion record.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

// pagesKind is a flag for the pages command.
var pagesKind string

func init() {
	documentPagesCmd.Flags().StringVarP(&pagesKind, "kind", "k", string(domain.ArtifactNormal),
		"artifact kind: normal, small, large or text")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentStatusCmd)
	documentCmd.AddCommand(documentPagesCmd)
	documentCmd.AddCommand(documentTextCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	out := cmd.OutOrStdout()
	cmd.Println(heading(out, "Documents"))
	cmd.Println()
	for i := range docs {
		state := domain.StateNotConverted
		if st, err := documentService.Status(cmd.Context(), docs[i].ID); err == nil {
			state = st.State
		}
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File:   %s (%s)\n", docs[i].Filename, docs[i].FileType().Description())
		cmd.Printf("    State:  %s\n", stateLabel(out, state))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  Filename:  %s\n", doc.Filename)
	cmd.Printf("  Type:      %s\n", doc.FileType().Description())
	if doc.MIMEType != "" {
		cmd.Printf("  MIME type: %s\n", doc.MIMEType)
	}
	cmd.Printf("  Size:      %d bytes\n", len(doc.Content))
	cmd.Printf("  Layout:    %s\n", doc.Layout)
	cmd.Printf("  Created:   %s\n", doc.CreatedAt.Format(timeFormat))
	cmd.Printf("  Modified:  %s\n", doc.ModifiedAt.Format(timeFormat))
	return nil
}

func runDocumentStatus(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	st, err := documentService.Status(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	out := cmd.OutOrStdout()
	cmd.Printf("Document: %s (%s)\n\n", st.Document.ID, st.Document.Filename)
	cmd.Printf("  State:        %s\n", stateLabel(out, st.State))
	if st.Status != nil {
		cmd.Printf("  Converted:    %t\n", st.Status.SuccessfullyConverted)
		cmd.Printf("  Pages:        %d\n", st.Status.NumPages)
		if !st.Status.ConvertedAt.IsZero() {
			cmd.Printf("  Last update:  %s\n", st.Status.ConvertedAt.Local().Format(timeFormat))
		}
		if st.Status.Fingerprint != "" {
			cmd.Printf("  Fingerprint:  %s\n", st.Status.Fingerprint)
		}
		if st.Status.LastError != "" {
			cmd.Printf("  Last error:   %s\n", st.Status.LastError)
		}
	}
	cmd.Printf("  Indexed:      %t\n", st.Indexed)
	if !st.Storage.IsZero() {
		cmd.Printf("  Storage:      %s %s\n", st.Storage.Type, st.Storage.Path)
	}

	cmd.Println()
	cmd.Println(heading(out, "Effective settings"))
	if st.SettingsError != "" {
		cmd.Printf("  Error: %s\n", st.SettingsError)
		return nil
	}
	local := "inherit"
	if st.LocalOverride.EnableIndexation != nil {
		local = onOff(*st.LocalOverride.EnableIndexation)
	}
	cmd.Printf("  Indexation:   %s (local: %s)\n", onOff(st.Settings.EnableIndexation), local)
	cmd.Printf("  Storage:      %s\n", st.Settings.StorageType.Description())
	cmd.Printf("  Images:       %s\n", st.Settings.ImageFormat)
	cmd.Printf("  Timeout:      %s\n", st.Settings.ConversionTimeout.Round(time.Second))
	return nil
}

func runDocumentPages(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	kind := domain.ArtifactKind(pagesKind)
	if !kind.IsValid() {
		return fmt.Errorf("unknown artifact kind %q", pagesKind)
	}

	names, err := documentService.Pages(cmd.Context(), args[0], kind)
	if err != nil {
		return fmt.Errorf("failed to list pages: %w", err)
	}
	if len(names) == 0 {
		cmd.Println("No converted pages.")
		return nil
	}
	for _, name := range names {
		cmd.Println(name)
	}
	return nil
}

func runDocumentText(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if len(args) == 2 {
		page, err := strconv.Atoi(args[1])
		if err != nil || page < 1 {
			return fmt.Errorf("invalid page %q", args[1])
		}
		text, err := documentService.Page(cmd.Context(), args[0], domain.ArtifactText, page)
		if err != nil {
			return fmt.Errorf("failed to get page text: %w", err)
		}
		cmd.Println(string(text))
		return nil
	}

	pages, err := documentService.Text(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get text: %w", err)
	}
	out := cmd.OutOrStdout()
	for i, text := range pages {
		cmd.Println(heading(out, fmt.Sprintf("Page %d", i+1)))
		cmd.Println(text)
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

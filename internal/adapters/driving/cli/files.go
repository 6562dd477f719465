package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

var filesChannel string

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Browse files known to the configured channels",
}

var filesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List files for a channel",
	RunE:  runFilesList,
}

var filesShowCmd = &cobra.Command{
	Use:   "show [file-id-or-path]",
	Short: "Show a file's current content",
	Long: `Prints a file's current content. Accepted code suggestions are layered
over the channel's copy, so the output reflects the edit history. The
file is looked up by ID, exact path, then basename.`,
	Args: cobra.ExactArgs(1),
	RunE: runFilesShow,
}

var filesEditsCmd = &cobra.Command{
	Use:   "edits",
	Short: "List files changed by accepted suggestions",
	RunE:  runFilesEdits,
}

func init() {
	filesCmd.PersistentFlags().StringVarP(&filesChannel, "channel", "c", "cloud",
		"channel to browse (cloud, local, drive, github)")

	filesCmd.AddCommand(filesListCmd)
	filesCmd.AddCommand(filesShowCmd)
	filesCmd.AddCommand(filesEditsCmd)
	rootCmd.AddCommand(filesCmd)
}

func runFilesList(cmd *cobra.Command, _ []string) error {
	if fileService == nil {
		return errors.New("file service not configured")
	}

	ch := domain.Channel(filesChannel)
	if !ch.IsValid() {
		return fmt.Errorf("unknown channel %q", filesChannel)
	}

	files, err := fileService.List(cmd.Context(), ch)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}

	if len(files) == 0 {
		cmd.Printf("No files known to the %s channel.\n", ch)
		return nil
	}

	cmd.Printf("Files (%s):\n", ch)
	for _, f := range files {
		path := f.Path
		if path == "" {
			path = f.Name
		}
		cmd.Printf("  %s  %s\n", f.ID, path)
	}
	return nil
}

func runFilesShow(cmd *cobra.Command, args []string) error {
	if fileService == nil {
		return errors.New("file service not configured")
	}

	ch := domain.Channel(filesChannel)
	if !ch.IsValid() {
		return fmt.Errorf("unknown channel %q", filesChannel)
	}

	content, err := fileService.Content(cmd.Context(), ch, args[0])
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	cmd.Print(content)
	if len(content) > 0 && content[len(content)-1] != '\n' {
		cmd.Println()
	}
	return nil
}

func runFilesEdits(cmd *cobra.Command, _ []string) error {
	if fileService == nil {
		return errors.New("file service not configured")
	}

	edits, err := fileService.Edits(cmd.Context())
	if err != nil {
		return fmt.Errorf("list edits: %w", err)
	}

	if len(edits) == 0 {
		cmd.Println("No accepted edits yet.")
		return nil
	}

	cmd.Println("Edited files:")
	for _, e := range edits {
		durability := "durable"
		if !e.Durable {
			durability = "local record only"
		}
		cmd.Printf("  %s  %s (%s, %s)\n",
			e.FileID, e.Path, durability, e.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

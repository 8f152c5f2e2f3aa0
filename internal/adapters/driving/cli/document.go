package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/connectors/filesystem"
	"github.com/custodia-labs/docchat/internal/core/domain"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
	"github.com/custodia-labs/docchat/internal/logger"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage uploaded documents",
	Long:  `Upload, list, inspect, delete and query the documents you chat with.`,
}

var documentUploadCmd = &cobra.Command{
	Use:   "upload [file...]",
	Short: "Upload and index documents",
	Long: `Extract text from each file, split it into chunks and index them.

Supported formats: PDF (.pdf), Word (.docx, .doc) and plain text (.txt).
Files whose content was already uploaded are reported and not indexed again.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDocumentUpload,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentContextCmd = &cobra.Command{
	Use:   "context [doc-id] [query...]",
	Short: "Show the passages selected for a query",
	Long: `Rank the document's chunks against the query and print the context that
would be sent to the language model, with each chunk's score.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runDocumentContext,
}

var documentWatchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Index files as they appear in a directory",
	Long: `Watch a directory and upload every new or changed file until interrupted.
Hidden files are ignored. Use --existing to upload the files already present first.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentWatch,
}

var (
	showContent   bool
	watchExisting bool
)

func init() {
	documentGetCmd.Flags().BoolVarP(&showContent, "content", "c", false, "Print the extracted text and chunks")
	documentWatchCmd.Flags().BoolVar(&watchExisting, "existing", false, "Upload files already in the directory")

	documentCmd.AddCommand(documentUploadCmd)
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentContextCmd)
	documentCmd.AddCommand(documentWatchCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentUpload(cmd *cobra.Command, args []string) error {
	svc, err := documentService()
	if err != nil {
		return err
	}

	var failed int
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}

		result, err := svc.Upload(cmd.Context(), &domain.RawDocument{
			OwnerID:  owner(),
			Filename: filepath.Base(path),
			Content:  content,
		})
		if err != nil {
			cmd.PrintErrf("%s: %v\n", path, err)
			failed++
			continue
		}
		printUpload(cmd, result)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d uploads failed", failed, len(args))
	}
	return nil
}

func printUpload(cmd *cobra.Command, result *domain.UploadResult) {
	doc := result.Document
	if result.Duplicate {
		cmd.Printf("Already uploaded: %s (%s)\n", doc.Filename, doc.ID)
		return
	}
	cmd.Printf("Uploaded %s\n", doc.Filename)
	cmd.Printf("  ID:     %s\n", doc.ID)
	cmd.Printf("  Chunks: %d\n", doc.ChunkCount)
	cmd.Printf("  Text:   %d characters\n", utf8.RuneCountInString(doc.Content))
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	svc, err := documentService()
	if err != nil {
		return err
	}

	docs, err := svc.List(cmd.Context(), owner())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents uploaded.")
		return nil
	}

	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File:     %s\n", docs[i].Filename)
		cmd.Printf("    Chunks:   %d\n", docs[i].ChunkCount)
		cmd.Printf("    Uploaded: %s\n", docs[i].UploadedAt.Local().Format("2006-01-02 15:04:05"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	svc, err := documentService()
	if err != nil {
		return err
	}

	doc, err := svc.Get(cmd.Context(), args[0], owner())
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  File:       %s\n", doc.Filename)
	cmd.Printf("  Type:       %s\n", doc.MIMEType)
	cmd.Printf("  Size:       %d bytes\n", doc.Size)
	cmd.Printf("  Characters: %d\n", utf8.RuneCountInString(doc.Content))
	cmd.Printf("  Chunks:     %d\n", doc.ChunkCount)
	cmd.Printf("  Vocabulary: %s\n", strings.Join(doc.Vocabulary, ", "))
	cmd.Printf("  Uploaded:   %s\n", doc.UploadedAt.Local().Format("2006-01-02 15:04:05"))

	if !showContent {
		return nil
	}
	for _, c := range doc.Chunks {
		cmd.Printf("\n--- chunk %d [%d:%d] ---\n%s\n", c.Index, c.StartPos, c.EndPos, c.Text)
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	svc, err := documentService()
	if err != nil {
		return err
	}

	if err := svc.Delete(cmd.Context(), args[0], owner()); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

func runDocumentContext(cmd *cobra.Command, args []string) error {
	svc, err := retrievalService()
	if err != nil {
		return err
	}

	query := strings.Join(args[1:], " ")
	result, err := svc.Retrieve(cmd.Context(), args[0], owner(), query)
	if err != nil {
		return fmt.Errorf("failed to retrieve context: %w", err)
	}

	if result.Fallback {
		cmd.Println("No chunk matched the query; using the opening chunks.")
	}
	for _, sc := range result.Selected {
		cmd.Printf("  chunk %d  score %.4f\n", sc.Chunk.Index, sc.Score)
	}
	cmd.Println()
	cmd.Println(result.Context)
	return nil
}

func runDocumentWatch(cmd *cobra.Command, args []string) error {
	svc, err := documentService()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	watcher := filesystem.New(owner(), args[0])
	defer watcher.Close()

	if watchExisting {
		docs, err := watcher.Scan(ctx)
		if err != nil {
			return err
		}
		for i := range docs {
			uploadWatched(cmd, svc, &docs[i])
		}
	}

	changes, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	for change := range changes {
		switch change.Type {
		case filesystem.ChangeCreated, filesystem.ChangeUpdated:
			uploadWatched(cmd, svc, change.Document)
		case filesystem.ChangeDeleted:
			logger.Info("watch: %s removed; uploaded copies are kept", change.Path)
		}
	}
	return nil
}

// uploadWatched uploads one file and reports the outcome. Failures are
// printed and do not stop the watch.
func uploadWatched(cmd *cobra.Command, svc driving.DocumentService, raw *domain.RawDocument) {
	result, err := svc.Upload(cmd.Context(), raw)
	switch {
	case errors.Is(err, domain.ErrUnsupportedType):
		logger.Debug("watch: skip %s: unsupported type", raw.Filename)
	case err != nil:
		cmd.PrintErrf("%s: %v\n", raw.Filename, err)
	default:
		printUpload(cmd, result)
	}
}

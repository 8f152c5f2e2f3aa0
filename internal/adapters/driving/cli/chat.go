package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docchat/internal/adapters/driving/tui"
	"github.com/custodia-labs/docchat/internal/core/ports/driving"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Manage chats and ask questions",
	Long:  `Create chats, ask questions about a document and review past conversations.`,
}

var chatNewCmd = &cobra.Command{
	Use:   "new [name...]",
	Short: "Start a new chat",
	RunE:  runChatNew,
}

var chatListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your chats",
	Args:  cobra.NoArgs,
	RunE:  runChatList,
}

var chatShowCmd = &cobra.Command{
	Use:   "show [chat-id]",
	Short: "Print a chat's messages",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatShow,
}

var chatAskCmd = &cobra.Command{
	Use:   "ask [chat-id] [prompt...]",
	Short: "Send a prompt and print the reply",
	Long: `Send a prompt to the chat and print the assistant's reply.

With --doc the prompt is answered from the passages of that document most
relevant to the question.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runChatAsk,
}

var chatRenameCmd = &cobra.Command{
	Use:   "rename [chat-id] [name...]",
	Short: "Rename a chat",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runChatRename,
}

var chatDeleteCmd = &cobra.Command{
	Use:   "delete [chat-id]",
	Short: "Delete a chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatDelete,
}

var chatTUICmd = &cobra.Command{
	Use:   "tui [chat-id]",
	Short: "Open a chat in the interactive terminal UI",
	Long: `Open the chat in a full-screen terminal interface.

Controls:
  Enter        - Send
  PgUp/Ctrl+U  - Scroll up
  PgDn/Ctrl+D  - Scroll down
  Esc/Ctrl+C   - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runChatTUI,
}

var (
	askDocumentID string
	tuiDocumentID string
)

func init() {
	chatAskCmd.Flags().StringVarP(&askDocumentID, "doc", "d", "", "Ground the answer in this document")
	chatTUICmd.Flags().StringVarP(&tuiDocumentID, "doc", "d", "", "Ground answers in this document")

	chatCmd.AddCommand(chatNewCmd)
	chatCmd.AddCommand(chatListCmd)
	chatCmd.AddCommand(chatShowCmd)
	chatCmd.AddCommand(chatAskCmd)
	chatCmd.AddCommand(chatRenameCmd)
	chatCmd.AddCommand(chatDeleteCmd)
	chatCmd.AddCommand(chatTUICmd)
	rootCmd.AddCommand(chatCmd)
}

func runChatNew(cmd *cobra.Command, args []string) error {
	svc, err := chatService()
	if err != nil {
		return err
	}

	chat, err := svc.Create(cmd.Context(), owner(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("failed to create chat: %w", err)
	}

	cmd.Printf("Created chat %q\n", chat.Name)
	cmd.Printf("  ID: %s\n", chat.ID)
	return nil
}

func runChatList(cmd *cobra.Command, _ []string) error {
	svc, err := chatService()
	if err != nil {
		return err
	}

	chats, err := svc.List(cmd.Context(), owner())
	if err != nil {
		return fmt.Errorf("failed to list chats: %w", err)
	}

	if len(chats) == 0 {
		cmd.Println("No chats yet. Start one with 'docchat chat new'.")
		return nil
	}

	for i := range chats {
		cmd.Printf("  %s  %s\n", chats[i].ID, chats[i].Name)
		cmd.Printf("    Updated: %s\n", chats[i].UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}

	cmd.Printf("\nTotal: %d chats\n", len(chats))
	return nil
}

func runChatShow(cmd *cobra.Command, args []string) error {
	svc, err := chatService()
	if err != nil {
		return err
	}

	chat, err := svc.Get(cmd.Context(), args[0], owner())
	if err != nil {
		return fmt.Errorf("failed to get chat: %w", err)
	}

	cmd.Printf("%s\n", chat.Name)
	if len(chat.Messages) == 0 {
		cmd.Println("\nNo messages.")
		return nil
	}
	for _, m := range chat.Messages {
		cmd.Printf("\n[%s]\n%s\n", m.Role, m.Content)
	}
	return nil
}

func runChatAsk(cmd *cobra.Command, args []string) error {
	svc, err := chatService()
	if err != nil {
		return err
	}

	result, err := svc.Send(cmd.Context(), driving.SendRequest{
		ChatID:     args[0],
		OwnerID:    owner(),
		Prompt:     strings.Join(args[1:], " "),
		DocumentID: askDocumentID,
	})
	if err != nil {
		return fmt.Errorf("failed to send prompt: %w", err)
	}

	cmd.Println(result.Reply.Content)
	if askDocumentID != "" && !result.Grounded {
		cmd.PrintErrln("note: no document context was found for this question")
	}
	return nil
}

func runChatRename(cmd *cobra.Command, args []string) error {
	svc, err := chatService()
	if err != nil {
		return err
	}

	chat, err := svc.Rename(cmd.Context(), args[0], owner(), strings.Join(args[1:], " "))
	if err != nil {
		return fmt.Errorf("failed to rename chat: %w", err)
	}

	cmd.Printf("Chat %s renamed to %q.\n", chat.ID, chat.Name)
	return nil
}

func runChatDelete(cmd *cobra.Command, args []string) error {
	svc, err := chatService()
	if err != nil {
		return err
	}

	if err := svc.Delete(cmd.Context(), args[0], owner()); err != nil {
		return fmt.Errorf("failed to delete chat: %w", err)
	}

	cmd.Printf("Chat %s deleted.\n", args[0])
	return nil
}

func runChatTUI(cmd *cobra.Command, args []string) error {
	app, err := newChatApp(cmd, args[0])
	if err != nil {
		return err
	}

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// newChatApp builds the TUI for a chat, resolving the document name when
// --doc is set.
func newChatApp(cmd *cobra.Command, chatID string) (*tui.App, error) {
	chats, err := chatService()
	if err != nil {
		return nil, err
	}

	session := tui.Session{
		ChatID:     chatID,
		OwnerID:    owner(),
		DocumentID: tuiDocumentID,
	}
	if tuiDocumentID != "" {
		docs, err := documentService()
		if err != nil {
			return nil, err
		}
		doc, err := docs.Get(cmd.Context(), tuiDocumentID, owner())
		if err != nil {
			return nil, fmt.Errorf("failed to get document: %w", err)
		}
		session.DocumentName = doc.Filename
	}

	app, err := tui.NewApp(&tui.Ports{Chats: chats}, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create TUI: %w", err)
	}
	return app.WithContext(cmd.Context()), nil
}

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docent-labs/docent-cli/internal/core/domain"
)

var (
	newChatChannels []string
	newChatWeb      bool
	newChatMaps     bool
)

var chatsCmd = &cobra.Command{
	Use:   "chats",
	Short: "Manage chat sessions",
	Long: `List, create, switch and delete chat sessions.

Each chat keeps its own conversation history and channel configuration.
The active chat is the one 'docent ask' and 'docent chat' operate on.`,
	RunE: runChatsList,
}

var chatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all chats",
	RunE:  runChatsList,
}

var chatsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new chat and make it active",
	RunE:  runChatsNew,
}

var chatsUseCmd = &cobra.Command{
	Use:   "use [chat-id]",
	Short: "Switch the active chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsUse,
}

var chatsDeleteCmd = &cobra.Command{
	Use:   "delete [chat-id]",
	Short: "Delete a chat",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsDelete,
}

func init() {
	chatsNewCmd.Flags().StringSliceVar(&newChatChannels, "channels", []string{"cloud", "local"},
		"search channels to enable (cloud, local, drive, github)")
	chatsNewCmd.Flags().BoolVar(&newChatWeb, "web", false, "enable web-search grounding")
	chatsNewCmd.Flags().BoolVar(&newChatMaps, "maps", false, "enable maps grounding")

	chatsCmd.AddCommand(chatsListCmd)
	chatsCmd.AddCommand(chatsNewCmd)
	chatsCmd.AddCommand(chatsUseCmd)
	chatsCmd.AddCommand(chatsDeleteCmd)
	rootCmd.AddCommand(chatsCmd)
}

func runChatsList(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	chats, err := chatService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("list chats: %w", err)
	}

	if len(chats) == 0 {
		cmd.Println("No chats yet. Run 'docent chats new' or just 'docent ask'.")
		return nil
	}

	cmd.Println("Chats:")
	for i := range chats {
		c := &chats[i]
		title := c.Title
		if title == "" {
			title = "(empty chat)"
		}
		cmd.Printf("  %s  %s\n", c.ID, title)
		cmd.Printf("      channels: %s  updated: %s\n",
			channelList(c.Channels), c.UpdatedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runChatsNew(cmd *cobra.Command, _ []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	channels := make([]domain.Channel, 0, len(newChatChannels))
	for _, name := range newChatChannels {
		channels = append(channels, domain.Channel(strings.TrimSpace(name)))
	}
	grounding := domain.GroundingOptions{WebSearch: newChatWeb, Maps: newChatMaps}

	chat, err := chatService.Create(cmd.Context(), channels, grounding)
	if err != nil {
		return fmt.Errorf("create chat: %w", err)
	}

	cmd.Printf("Created chat %s (channels: %s)\n", chat.ID, channelList(chat.Channels))
	return nil
}

func runChatsUse(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	if err := chatService.SetActive(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("switch chat: %w", err)
	}
	cmd.Printf("Active chat is now %s\n", args[0])
	return nil
}

func runChatsDelete(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	if err := chatService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	cmd.Printf("Deleted chat %s\n", args[0])
	return nil
}

func channelList(channels []domain.Channel) string {
	if len(channels) == 0 {
		return "none"
	}
	names := make([]string, len(channels))
	for i, ch := range channels {
		names[i] = ch.String()
	}
	return strings.Join(names, ", ")
}

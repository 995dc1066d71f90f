package main

import (
	"context"
	"fmt"

	"github.com/matheus3301/msgarchive/internal/api"
	"github.com/spf13/cobra"
)

func chatsCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "chats",
		Short: "List chats, most recently active first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, s *session) error {
				chats, err := s.client.ListChats(ctx, limit)
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(chats)
				}
				printChats(chats)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Max chats to list")
	return cmd
}

func chatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <id>",
		Short: "Show one chat with its participants",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, s *session) error {
				c, err := s.client.GetChat(ctx, args[0])
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(c)
				}
				printChat(c)
				return nil
			})
		},
	}
}

// messageFlags binds the filters shared by messages and search.
type messageFlags struct {
	chat    string
	contact string
	after   string
	before  string
	fromMe  bool
	toMe    bool
	limit   int
}

func (f *messageFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.chat, "chat", "", "Only messages of this chat id")
	cmd.Flags().StringVar(&f.contact, "contact", "", "Only chats with this contact name")
	cmd.Flags().StringVar(&f.after, "after", "", "Only messages after this time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.before, "before", "", "Only messages before this time (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().BoolVar(&f.fromMe, "from-me", false, "Only messages I sent")
	cmd.Flags().BoolVar(&f.toMe, "to-me", false, "Only messages I received")
	cmd.Flags().IntVarP(&f.limit, "limit", "n", 50, "Max messages to list")
	cmd.MarkFlagsMutuallyExclusive("from-me", "to-me")
}

func (f *messageFlags) query(text string) api.MessageQuery {
	q := api.MessageQuery{
		ChatID:  f.chat,
		Contact: f.contact,
		After:   f.after,
		Before:  f.before,
		Query:   text,
		Limit:   f.limit,
	}
	switch {
	case f.fromMe:
		v := true
		q.FromMe = &v
	case f.toMe:
		v := false
		q.FromMe = &v
	}
	return q
}

func messagesCmd() *cobra.Command {
	var (
		flags messageFlags
		text  string
	)
	cmd := &cobra.Command{
		Use:   "messages",
		Short: "List messages, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, s *session) error {
				msgs, err := s.client.ListMessages(ctx, flags.query(text))
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(msgs)
				}
				printMessages(msgs)
				return nil
			})
		},
	}
	flags.bind(cmd)
	cmd.Flags().StringVarP(&text, "query", "q", "", "Only messages containing this text")
	return cmd
}

func searchCmd() *cobra.Command {
	var flags messageFlags
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search message text (case-insensitive)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, s *session) error {
				msgs, err := s.client.SearchMessages(ctx, flags.query(args[0]))
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(msgs)
				}
				if len(msgs) == 0 {
					fmt.Println("No matches.")
					return nil
				}
				printMessages(msgs)
				return nil
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func messageCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "message <id>",
		Short: "Show one message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, s *session) error {
				m, err := s.client.GetMessage(ctx, args[0])
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(m)
				}
				printMessages([]api.Message{*m})
				return nil
			})
		},
	}
}

func attachmentsCmd() *cobra.Command {
	var q api.AttachmentQuery
	cmd := &cobra.Command{
		Use:   "attachments",
		Short: "List attachments of a message or chat",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, s *session) error {
				atts, err := s.client.ListAttachments(ctx, q)
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(atts)
				}
				printAttachments(atts)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&q.MessageID, "message", "", "Only attachments of this message id")
	cmd.Flags().StringVar(&q.ChatID, "chat", "", "Only attachments of this chat id")
	cmd.Flags().IntVarP(&q.Limit, "limit", "n", 50, "Max attachments to list")
	return cmd
}

func attachmentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "attachment <id>",
		Short: "Show one attachment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(func(ctx context.Context, s *session) error {
				a, err := s.client.GetAttachment(ctx, args[0])
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(a)
				}
				printAttachments([]api.Attachment{*a})
				return nil
			})
		},
	}
}

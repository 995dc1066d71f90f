package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/matheus3301/msgarchive/internal/api"
)

const previewWidth = 60

// chatTitle is the display name, else the participants, else the identifier.
func chatTitle(c api.Chat) string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	if len(c.Participants) > 0 {
		names := make([]string, 0, len(c.Participants))
		for _, p := range c.Participants {
			names = append(names, p.Identifier)
		}
		return strings.Join(names, ", ")
	}
	return c.Identifier
}

// preview flattens text to one line of at most width runes.
func preview(text string, width int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= width {
		return text
	}
	return string(r[:width-1]) + "…"
}

func senderLabel(m api.Message) string {
	switch {
	case m.FromMe:
		return "me"
	case m.Sender != nil:
		return m.Sender.Identifier
	default:
		return "?"
	}
}

func writeChats(w io.Writer, chats []api.Chat) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tTITLE\tLAST\tPREVIEW")
	for _, c := range chats {
		kind := "direct"
		if c.IsGroup {
			kind = "group"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, kind, preview(chatTitle(c), 32), c.LastMessageAt, preview(c.LastMessage, previewWidth))
	}
	_ = tw.Flush()
}

func writeMessages(w io.Writer, msgs []api.Message) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCHAT\tTIME\tFROM\tTEXT")
	for _, m := range msgs {
		text := preview(m.Text, previewWidth)
		if m.HasAttachments {
			text += " [attachment]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.ChatID, m.Timestamp, senderLabel(m), text)
	}
	_ = tw.Flush()
}

func writeAttachments(w io.Writer, atts []api.Attachment) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tMESSAGE\tTYPE\tSIZE\tPATH")
	for _, a := range atts {
		size := "-"
		if a.Size != nil {
			size = fmt.Sprintf("%d", *a.Size)
		}
		mimeType := a.MIMEType
		if mimeType == "" {
			mimeType = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.MessageID, mimeType, size, a.Path)
	}
	_ = tw.Flush()
}

func printChats(chats []api.Chat) {
	if len(chats) == 0 {
		fmt.Println("No chats.")
		return
	}
	writeChats(os.Stdout, chats)
}

func printChat(c *api.Chat) {
	fmt.Printf("Chat %s: %s\n", c.ID, chatTitle(*c))
	fmt.Printf("GUID:  %s\n", c.GUID)
	if c.IsGroup {
		fmt.Println("Kind:  group")
	} else {
		fmt.Println("Kind:  direct")
	}
	for _, p := range c.Participants {
		fmt.Printf("  - %s (%s)\n", p.Identifier, p.Service)
	}
	if c.LastMessageAt != "" {
		fmt.Printf("Last:  %s %s\n", c.LastMessageAt, preview(c.LastMessage, previewWidth))
	}
}

func printMessages(msgs []api.Message) {
	if len(msgs) == 0 {
		fmt.Println("No messages.")
		return
	}
	writeMessages(os.Stdout, msgs)
}

func printAttachments(atts []api.Attachment) {
	if len(atts) == 0 {
		fmt.Println("No attachments.")
		return
	}
	writeAttachments(os.Stdout, atts)
}

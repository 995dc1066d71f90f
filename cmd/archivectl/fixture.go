package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/matheus3301/msgarchive/internal/logging"
	"github.com/matheus3301/msgarchive/internal/store"
	"github.com/matheus3301/msgarchive/internal/store/fixture"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func fixtureCmd() *cobra.Command {
	var empty bool
	cmd := &cobra.Command{
		Use:   "fixture <path>",
		Short: "Create an archive-shaped database for testing",
		Long: `Creates a new database with the message archive schema at <path> and
seeds it with a small demo conversation set, including a message whose text
is only stored in its serialized body. Point archived at it with --archive.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.NewConsole(flagVerbose)
			defer func() { _ = logger.Sync() }()

			path := args[0]
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			} else if !errors.Is(err, fs.ErrNotExist) {
				return err
			}

			a, err := fixture.Create(path)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			if !empty {
				if err := seedDemo(a, time.Now().UTC().Truncate(time.Minute)); err != nil {
					return fmt.Errorf("seed %s: %w", path, err)
				}
			}
			logger.Debug("fixture created", zap.String("path", path), zap.Bool("seeded", !empty))
			fmt.Printf("Created %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&empty, "empty", false, "Create the schema only")
	return cmd
}

// seedDemo adds one direct chat and one group chat ending at now.
func seedDemo(a *fixture.Archive, now time.Time) error {
	at := func(ago time.Duration) int64 { return store.ToArchiveTime(now.Add(-ago)) }

	alice, err := a.AddHandle("+15551234567", fixture.ServiceIMessage)
	if err != nil {
		return err
	}
	bob, err := a.AddHandle("bob@example.com", fixture.ServiceIMessage)
	if err != nil {
		return err
	}
	carol, err := a.AddHandle("+15559876543", fixture.ServiceSMS)
	if err != nil {
		return err
	}

	direct, err := a.AddChat(fixture.ChatSpec{Identifier: "+15551234567", Style: fixture.StyleDirect, Handles: []int64{alice}})
	if err != nil {
		return err
	}
	group, err := a.AddChat(fixture.ChatSpec{
		GUID:        "iMessage;+;chat493720",
		Identifier:  "chat493720",
		DisplayName: "Weekend trip",
		Style:       fixture.StyleGroup,
		Handles:     []int64{bob, carol},
	})
	if err != nil {
		return err
	}

	msgs := []fixture.MessageSpec{
		{ChatID: direct, Text: "Are we still on for coffee?", Date: at(3 * time.Hour), HandleID: alice},
		{ChatID: direct, Body: fixture.AttributedBody("Yes! 10am at the usual place ☕"), Date: at(170 * time.Minute), FromMe: true, HandleID: alice},
		{ChatID: group, Text: "Who is driving on Saturday?", Date: at(90 * time.Minute), HandleID: bob},
		{ChatID: group, Text: "I can, the car fits five", Date: at(80 * time.Minute), HandleID: carol},
		{ChatID: group, Text: "Map of the campsite", Date: at(time.Hour), FromMe: true, HasAttachments: true},
	}
	var last int64
	for _, m := range msgs {
		if last, err = a.AddMessage(m); err != nil {
			return err
		}
	}

	_, err = a.AddAttachment(fixture.AttachmentSpec{
		MessageID:    last,
		Path:         "~/Library/Messages/Attachments/4f/15/campsite.png",
		MIMEType:     "image/png",
		TransferName: "campsite.png",
		TotalBytes:   48213,
	})
	return err
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/msgarchive/internal/client"
	"github.com/matheus3301/msgarchive/internal/profile"
	"github.com/spf13/cobra"
)

// Version is set via ldflags.
var Version = "dev"

var (
	flagProfile string
	flagJSON    bool
	flagTimeout time.Duration
	flagVerbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "archivectl",
		Short: "Query the local message archive",
		Long: `archivectl reads chats, messages and attachments from the message
archive through a running archived daemon.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "Profile name (or MSGARCHIVE_PROFILE env var)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "JSON output for scripting")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 10*time.Second, "Per-command deadline")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Debug output on stderr")

	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(chatsCmd())
	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(messagesCmd())
	rootCmd.AddCommand(messageCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(attachmentsCmd())
	rootCmd.AddCommand(attachmentCmd())
	rootCmd.AddCommand(mcpCmd())
	rootCmd.AddCommand(fixtureCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// session is a connected client for the resolved profile.
type session struct {
	profile *profile.Settings
	client  *client.Client
}

func connect() (*session, error) {
	settings, err := profile.Resolve(flagProfile)
	if err != nil {
		return nil, err
	}
	c, err := client.New(profile.SocketPath(settings.Name))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to daemon for profile %q: %w", settings.Name, err)
	}
	return &session{profile: settings, client: c}, nil
}

// withClient runs fn with a connected client and the command deadline.
func withClient(fn func(ctx context.Context, s *session) error) error {
	s, err := connect()
	if err != nil {
		return err
	}
	defer func() { _ = s.client.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), flagTimeout)
	defer cancel()
	return describe(s.profile.Name, fn(ctx, s))
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

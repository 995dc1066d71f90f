package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/matheus3301/msgarchive/internal/lock"
	"github.com/matheus3301/msgarchive/internal/profile"
	"github.com/spf13/cobra"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon and archive status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := withClient(func(ctx context.Context, s *session) error {
				st, err := s.client.Status(ctx)
				if err != nil {
					return err
				}
				if flagJSON {
					return outputJSON(st)
				}
				fmt.Printf("Profile: %s\n", st.Profile)
				fmt.Printf("State:   %s (since %s)\n", st.State, st.Since)
				if st.Detail != "" {
					fmt.Printf("Detail:  %s\n", st.Detail)
				}
				fmt.Printf("Archive: %s\n", st.ArchivePath)
				if st.LatestMessageID != "" {
					fmt.Printf("Latest:  message %s\n", st.LatestMessageID)
				}
				fmt.Printf("Uptime:  %dms\n", st.UptimeMs)
				return nil
			})
			if errors.Is(err, errNotRunning) {
				// A held lock with no socket means a daemon that is still
				// starting or wedged.
				settings, rErr := profile.Resolve(flagProfile)
				if rErr == nil {
					if pid, held := lock.Holder(profile.Dir(settings.Name)); held {
						return fmt.Errorf("%w (profile lock held by PID %d)", err, pid)
					}
				}
			}
			return err
		},
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/matheus3301/msgarchive/internal/client"
	"github.com/matheus3301/msgarchive/internal/profile"
	"github.com/matheus3301/msgarchive/internal/tui"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	refreshFlag := flag.Duration("refresh", 10*time.Second, "how often to reload chats")
	noStart := flag.Bool("no-start", false, "do not start archived when it is not running")
	flag.Parse()

	settings, err := profile.Resolve(*profileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	socketPath := profile.SocketPath(settings.Name)

	c, err := client.New(socketPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect to daemon: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	if !probeDaemon(c) {
		if *noStart {
			fmt.Fprintf(os.Stderr, "archived is not running for profile %q\n", settings.Name)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "archived not running for profile %q, starting...\n", settings.Name)
		if err := startDaemon(settings.Name); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start archived: %v\n", err)
			os.Exit(1)
		}
		if !waitForDaemon(c, 10*time.Second) {
			fmt.Fprintf(os.Stderr, "archived did not become ready; see %s\n", profile.LogPath(settings.Name))
			os.Exit(1)
		}
	}

	app := tui.NewApp(c, settings.Name, tui.WithRefreshInterval(*refreshFlag))
	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// probeDaemon reports whether archived answers a status call. Any state
// counts; the browser shows ACCESS_DENIED itself.
func probeDaemon(c *client.Client) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := c.Status(ctx)
	return err == nil
}

func startDaemon(profileName string) error {
	executable, err := os.Executable()
	if err != nil {
		return err
	}
	archived := filepath.Join(filepath.Dir(executable), "archived")
	if _, err := os.Stat(archived); err != nil {
		archived = "archived"
	}

	// Console output would draw over the browser; archived also logs to
	// its profile log file.
	cmd := exec.Command(archived, "--profile", profileName)
	return cmd.Start()
}

func waitForDaemon(c *client.Client, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if probeDaemon(c) {
			return true
		}
		time.Sleep(300 * time.Millisecond)
	}
	return false
}

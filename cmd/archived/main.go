package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/matheus3301/msgarchive/internal/daemon"
	"github.com/matheus3301/msgarchive/internal/profile"
	"go.uber.org/fx"
)

func main() {
	profileFlag := flag.String("profile", "", "profile name (overrides config default)")
	archiveFlag := flag.String("archive", "", "message archive path (overrides config)")
	probeFlag := flag.Duration("probe-interval", 30*time.Second, "how often to retry an unreadable archive")
	flag.Parse()

	settings, err := profile.Resolve(*profileFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *archiveFlag != "" {
		settings.Config.ArchivePath = *archiveFlag
	}

	app := fx.New(
		daemon.Module(daemon.Params{
			Profile:       settings.Name,
			Config:        settings.Config,
			ProbeInterval: *probeFlag,
		}),
	)

	app.Run()
}

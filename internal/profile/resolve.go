package profile

import (
	"fmt"

	"github.com/matheus3301/msgarchive/internal/config"
)

const DefaultName = "main"

// Settings is the resolved profile name together with its effective
// configuration.
type Settings struct {
	Name   string
	Config *config.Config
}

// Resolve determines the active profile and loads the configuration.
// The profile name is chosen by precedence:
// 1. flagOverride (--profile flag)
// 2. MSGARCHIVE_PROFILE, from the environment or ~/.msgarchive/.env
// 3. config.toml default_profile
// 4. "main"
func Resolve(flagOverride string) (*Settings, error) {
	cfg, err := config.Resolve(ConfigPath(), EnvPath())
	if err != nil {
		return nil, err
	}
	name := DefaultName
	switch {
	case flagOverride != "":
		name = flagOverride
	case cfg.DefaultProfile != "":
		name = cfg.DefaultProfile
	}
	if err := ValidateName(name); err != nil {
		return nil, fmt.Errorf("resolve profile: %w", err)
	}
	return &Settings{Name: name, Config: cfg}, nil
}

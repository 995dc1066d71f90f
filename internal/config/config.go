package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// DefaultArchivePath is the message archive location relative to the home
// directory.
const DefaultArchivePath = "~/Library/Messages/chat.db"

const (
	defaultTextCacheSize  = 4096
	defaultContactTimeout = 10 * time.Second
)

// Environment variables that override file values.
const (
	EnvProfile         = "MSGARCHIVE_PROFILE"
	EnvArchivePath     = "MSGARCHIVE_ARCHIVE_PATH"
	EnvTextCacheSize   = "MSGARCHIVE_TEXT_CACHE_SIZE"
	EnvContactsCommand = "MSGARCHIVE_CONTACTS_COMMAND"
	EnvContactsTimeout = "MSGARCHIVE_CONTACTS_TIMEOUT"
)

// Config represents ~/.msgarchive/config.toml.
type Config struct {
	DefaultProfile string   `toml:"default_profile"`
	ArchivePath    string   `toml:"archive_path"`
	TextCacheSize  int      `toml:"text_cache_size"`
	Contacts       Contacts `toml:"contacts"`
}

// Contacts configures the external contact lookup helper.
type Contacts struct {
	Command string   `toml:"command"`
	Args    []string `toml:"args"`
	Timeout string   `toml:"timeout"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ArchivePath:   DefaultArchivePath,
		TextCacheSize: defaultTextCacheSize,
		Contacts:      Contacts{Timeout: defaultContactTimeout.String()},
	}
}

// Load decodes the TOML file at path over Default, so keys absent from the
// file keep their default values. A missing file yields an error wrapping
// fs.ErrNotExist.
func Load(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("read config %s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// Save writes cfg to path through a temporary file in the same directory,
// so a reader never sees a partial file. Parent directories are created with
// mode 0700 and the file with mode 0600.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := toml.NewEncoder(tmp).Encode(cfg); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}

// Resolve builds the effective configuration: defaults, then the TOML file
// at path, then the optional dotenv file at envPath, then the process
// environment. Missing files are skipped.
func Resolve(path, envPath string) (*Config, error) {
	cfg := Default()
	if path != "" {
		loaded, err := Load(path)
		switch {
		case err == nil:
			cfg = loaded
		case !errors.Is(err, fs.ErrNotExist):
			return nil, err
		}
	}

	dotenv := map[string]string{}
	if envPath != "" {
		values, err := godotenv.Read(envPath)
		switch {
		case err == nil:
			dotenv = values
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("read env file %s: %w", envPath, err)
		}
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if v, ok := lookup(EnvProfile); ok && v != "" {
		cfg.DefaultProfile = v
	}
	if v, ok := lookup(EnvArchivePath); ok && v != "" {
		cfg.ArchivePath = v
	}
	if v, ok := lookup(EnvTextCacheSize); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%s: invalid cache size %q", EnvTextCacheSize, v)
		}
		cfg.TextCacheSize = n
	}
	if v, ok := lookup(EnvContactsCommand); ok && v != "" {
		cfg.Contacts.Command = v
	}
	if v, ok := lookup(EnvContactsTimeout); ok && v != "" {
		cfg.Contacts.Timeout = v
	}

	if _, err := cfg.ContactTimeout(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ArchiveFile returns ArchivePath with a leading "~/" expanded.
func (c *Config) ArchiveFile() string {
	p := c.ArchivePath
	if p == "" {
		p = DefaultArchivePath
	}
	if rest, ok := strings.CutPrefix(p, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return p
}

// ContactTimeout parses Contacts.Timeout, falling back to the default when
// unset.
func (c *Config) ContactTimeout() (time.Duration, error) {
	if strings.TrimSpace(c.Contacts.Timeout) == "" {
		return defaultContactTimeout, nil
	}
	d, err := time.ParseDuration(c.Contacts.Timeout)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("contacts.timeout: invalid duration %q", c.Contacts.Timeout)
	}
	return d, nil
}

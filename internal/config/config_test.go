package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	cfg := &Config{
		DefaultProfile: "work",
		ArchivePath:    "/tmp/chat.db",
		TextCacheSize:  128,
		Contacts:       Contacts{Command: "/usr/local/bin/contacts-json", Args: []string{"--format", "json"}, Timeout: "3s"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "work")
	}
	if loaded.TextCacheSize != 128 {
		t.Errorf("TextCacheSize = %d, want 128", loaded.TextCacheSize)
	}
	if loaded.Contacts.Command != cfg.Contacts.Command || len(loaded.Contacts.Args) != 2 {
		t.Errorf("Contacts = %+v, want %+v", loaded.Contacts, cfg.Contacts)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load("/nonexistent/config.toml")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("default_profile = \"work\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want work", cfg.DefaultProfile)
	}
	if cfg.ArchivePath != DefaultArchivePath || cfg.TextCacheSize != defaultTextCacheSize {
		t.Errorf("defaults lost: %+v", cfg)
	}
}

func TestUnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("archive_pth = \"/typo/chat.db\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "archive_pth") {
		t.Errorf("Load() error = %v, want unknown key archive_pth", err)
	}
	if _, err := Resolve(path, ""); err == nil {
		t.Error("Resolve() should read the file through Load and reject the unknown key")
	}
}

func TestSaveReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := Save(path, &Config{DefaultProfile: "old", ArchivePath: "/old/chat.db"}); err != nil {
		t.Fatal(err)
	}
	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.DefaultProfile != "" || cfg.ArchivePath != DefaultArchivePath {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("config dir has %d entries, want only config.toml", len(entries))
	}
}

func TestSavePermissions(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.toml")

	if err := Save(path, &Config{DefaultProfile: "main"}); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	perm := info.Mode().Perm()
	if perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestResolveDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Resolve(filepath.Join(dir, "missing.toml"), filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.ArchivePath != DefaultArchivePath {
		t.Errorf("ArchivePath = %q, want default", cfg.ArchivePath)
	}
	if cfg.TextCacheSize != defaultTextCacheSize {
		t.Errorf("TextCacheSize = %d, want %d", cfg.TextCacheSize, defaultTextCacheSize)
	}
	if d, _ := cfg.ContactTimeout(); d != defaultContactTimeout {
		t.Errorf("ContactTimeout = %v, want %v", d, defaultContactTimeout)
	}
}

func TestResolvePrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	envPath := filepath.Join(dir, ".env")

	file := `
default_profile = "file"
archive_path = "/file/chat.db"
text_cache_size = 10

[contacts]
command = "/file/helper"
timeout = "2s"
`
	if err := os.WriteFile(path, []byte(file), 0600); err != nil {
		t.Fatal(err)
	}
	dotenv := "MSGARCHIVE_ARCHIVE_PATH=/dotenv/chat.db\nMSGARCHIVE_TEXT_CACHE_SIZE=20\n"
	if err := os.WriteFile(envPath, []byte(dotenv), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvTextCacheSize, "30")

	cfg, err := Resolve(path, envPath)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.DefaultProfile != "file" {
		t.Errorf("DefaultProfile = %q, want file value", cfg.DefaultProfile)
	}
	if cfg.ArchivePath != "/dotenv/chat.db" {
		t.Errorf("ArchivePath = %q, want dotenv value", cfg.ArchivePath)
	}
	if cfg.TextCacheSize != 30 {
		t.Errorf("TextCacheSize = %d, want environment value", cfg.TextCacheSize)
	}
	if d, _ := cfg.ContactTimeout(); d != 2*time.Second {
		t.Errorf("ContactTimeout = %v, want 2s", d)
	}
	// The dotenv file must not leak into the process environment.
	if _, ok := os.LookupEnv(EnvArchivePath); ok {
		t.Error("dotenv values were exported to the environment")
	}
}

func TestResolveRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"cache size", EnvTextCacheSize, "lots"},
		{"negative cache size", EnvTextCacheSize, "-1"},
		{"timeout", EnvContactsTimeout, "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Resolve(filepath.Join(dir, "none.toml"), ""); err == nil {
				t.Errorf("Resolve() with %s=%q should fail", tt.key, tt.val)
			}
		})
	}
}

func TestResolveMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("archive_path = [unterminated"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Resolve(path, ""); err == nil {
		t.Error("Resolve() expected error for malformed file")
	}
}

func TestArchiveFileExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	cfg := &Config{ArchivePath: "~/Library/Messages/chat.db"}
	got := cfg.ArchiveFile()
	if !strings.HasPrefix(got, home) || strings.Contains(got, "~") {
		t.Errorf("ArchiveFile() = %q, want path under %q", got, home)
	}

	abs := &Config{ArchivePath: "/data/chat.db"}
	if got := abs.ArchiveFile(); got != "/data/chat.db" {
		t.Errorf("ArchiveFile() = %q, want unchanged absolute path", got)
	}
}

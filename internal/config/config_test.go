package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.Timeout != Duration(30*time.Second) {
		t.Errorf("Server.Timeout = %v, want 30s", cfg.Server.Timeout)
	}
	if !cfg.Scripts.MetadataInSubfolder {
		t.Error("Scripts.MetadataInSubfolder should default to true")
	}
	if !cfg.TLS.Verify {
		t.Error("TLS.Verify should default to true")
	}
	if !cfg.TLS.Warn {
		t.Error("TLS.Warn should default to true")
	}
	if cfg.Output.Color != "auto" {
		t.Errorf("Output.Color = %q, want \"auto\"", cfg.Output.Color)
	}
}

func TestRoots(t *testing.T) {
	base := filepath.Join("/", "srv", "work")

	tests := map[string]struct {
		cfg          ScriptsConfig
		wantScripts  string
		wantMetadata string
	}{
		"metadata in subfolder": {
			cfg:          ScriptsConfig{Path: "scripts", MetadataInSubfolder: true},
			wantScripts:  filepath.Join(base, "scripts"),
			wantMetadata: filepath.Join(base, "scripts", "metadata"),
		},
		"metadata alongside": {
			cfg:          ScriptsConfig{Path: "scripts", MetadataInSubfolder: false},
			wantScripts:  filepath.Join(base, "scripts"),
			wantMetadata: filepath.Join(base, "scripts"),
		},
		"absolute path kept": {
			cfg:          ScriptsConfig{Path: "/opt/scripts", MetadataInSubfolder: true},
			wantScripts:  "/opt/scripts",
			wantMetadata: filepath.Join("/opt/scripts", "metadata"),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Scripts = tt.cfg

			roots := cfg.Roots(base)
			if roots.ScriptsDir != tt.wantScripts {
				t.Errorf("ScriptsDir = %q, want %q", roots.ScriptsDir, tt.wantScripts)
			}
			if roots.MetadataDir != tt.wantMetadata {
				t.Errorf("MetadataDir = %q, want %q", roots.MetadataDir, tt.wantMetadata)
			}
		})
	}
}

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := `server:
  url: https://mdm.example.com:8443
  username: admin
  timeout: 10s
scripts:
  path: /opt/scripts
  metadata_in_subfolder: false
tls:
  verify: false
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() unexpected error: %v", err)
	}

	if cfg.Server.URL != "https://mdm.example.com:8443" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Server.Username != "admin" {
		t.Errorf("Server.Username = %q", cfg.Server.Username)
	}
	if cfg.Server.Timeout != Duration(10*time.Second) {
		t.Errorf("Server.Timeout = %v, want 10s", cfg.Server.Timeout)
	}
	if cfg.Scripts.Path != "/opt/scripts" {
		t.Errorf("Scripts.Path = %q", cfg.Scripts.Path)
	}
	if cfg.Scripts.MetadataInSubfolder {
		t.Error("Scripts.MetadataInSubfolder should be false")
	}
	if cfg.TLS.Verify {
		t.Error("TLS.Verify should be false")
	}
	// Unset keys keep their defaults.
	if !cfg.TLS.Warn {
		t.Error("TLS.Warn should keep its default of true")
	}
}

func TestLoadFromPathMissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadFromPath() on missing file expected error, got nil")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("SCRIPTSYNC_SERVER_URL", "https://env.example.com")
	t.Setenv("SCRIPTSYNC_SERVER_USERNAME", "envuser")
	t.Setenv("SCRIPTSYNC_SERVER_TIMEOUT", "5s")
	t.Setenv("SCRIPTSYNC_TLS_VERIFY", "no")
	t.Setenv("SCRIPTSYNC_SCRIPTS_METADATA_IN_SUBFOLDER", "off")

	cfg := Default()
	cfg.applyEnvironment()

	if cfg.Server.URL != "https://env.example.com" {
		t.Errorf("Server.URL = %q", cfg.Server.URL)
	}
	if cfg.Server.Username != "envuser" {
		t.Errorf("Server.Username = %q", cfg.Server.Username)
	}
	if cfg.Server.Timeout != Duration(5*time.Second) {
		t.Errorf("Server.Timeout = %v, want 5s", cfg.Server.Timeout)
	}
	if cfg.TLS.Verify {
		t.Error("TLS.Verify should be overridden to false")
	}
	if cfg.Scripts.MetadataInSubfolder {
		t.Error("Scripts.MetadataInSubfolder should be overridden to false")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.yaml")

	cfg := Default()
	cfg.Server.URL = "https://rt.example.com"
	cfg.Server.Username = "rt"
	cfg.Scripts.Path = "scripts"

	if err := cfg.SaveToPath(path); err != nil {
		t.Fatalf("SaveToPath() unexpected error: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() unexpected error: %v", err)
	}
	if loaded.Server.URL != cfg.Server.URL || loaded.Server.Username != cfg.Server.Username {
		t.Errorf("round trip changed server config: %+v", loaded.Server)
	}
	if loaded.Scripts.Path != cfg.Scripts.Path {
		t.Errorf("Scripts.Path = %q, want %q", loaded.Scripts.Path, cfg.Scripts.Path)
	}
}

func TestParseBool(t *testing.T) {
	truthy := []string{"true", "1", "yes", "on", "TRUE", " Yes "}
	for _, s := range truthy {
		if !parseBool(s) {
			t.Errorf("parseBool(%q) = false, want true", s)
		}
	}
	falsy := []string{"false", "0", "no", "off", "", "maybe"}
	for _, s := range falsy {
		if parseBool(s) {
			t.Errorf("parseBool(%q) = true, want false", s)
		}
	}
}

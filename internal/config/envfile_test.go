package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	data := "N8N_WEBHOOK_URL=https://n8n.example.com/webhook/from-file\nRELAY_TEST_ONLY_KEY=from-file\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	// Existing variables win over the file.
	t.Setenv("N8N_WEBHOOK_URL", "https://n8n.example.com/webhook/from-env")
	t.Setenv("RELAY_TEST_ONLY_KEY", "")
	os.Unsetenv("RELAY_TEST_ONLY_KEY")

	if err := LoadEnvFile(path); err != nil {
		t.Fatalf("LoadEnvFile() error = %v", err)
	}

	if got := os.Getenv("N8N_WEBHOOK_URL"); got != "https://n8n.example.com/webhook/from-env" {
		t.Errorf("N8N_WEBHOOK_URL = %q, want the pre-existing value", got)
	}
	if got := os.Getenv("RELAY_TEST_ONLY_KEY"); got != "from-file" {
		t.Errorf("RELAY_TEST_ONLY_KEY = %q, want %q", got, "from-file")
	}
}

func TestLoadEnvFile_Missing(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Errorf("LoadEnvFile() error = %v, want nil for missing file", err)
	}
	if err := LoadEnvFile(""); err != nil {
		t.Errorf("LoadEnvFile(\"\") error = %v, want nil", err)
	}
}

func TestLoadEnvFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("BAD-KEY=value\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := LoadEnvFile(path); err == nil {
		t.Error("LoadEnvFile() expected error for malformed file, got nil")
	}
}

func TestEnvFilePath(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"default", map[string]string{}, ".env"},
		{"override", map[string]string{"ENV_FILE": "/run/secrets/relay.env"}, "/run/secrets/relay.env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			if got := EnvFilePath(getenv); got != tt.want {
				t.Errorf("EnvFilePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

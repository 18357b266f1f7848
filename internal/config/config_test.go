package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestViperConfigGetString(t *testing.T) {
	v := viper.New()
	v.Set("name", "test")
	cfg := New(v)

	if got := cfg.GetString("name"); got != "test" {
		t.Errorf("GetString('name') = %q, want %q", got, "test")
	}
}

func TestViperConfigGetInt(t *testing.T) {
	v := viper.New()
	v.Set("port", 8080)
	cfg := New(v)

	if got := cfg.GetInt("port"); got != 8080 {
		t.Errorf("GetInt('port') = %d, want %d", got, 8080)
	}
}

func TestViperConfigGetBool(t *testing.T) {
	v := viper.New()
	v.Set("enabled", true)
	cfg := New(v)

	if got := cfg.GetBool("enabled"); !got {
		t.Error("GetBool('enabled') = false, want true")
	}
}

func TestViperConfigGetDuration(t *testing.T) {
	v := viper.New()
	v.Set("timeout", "5s")
	cfg := New(v)

	want := 5 * time.Second
	if got := cfg.GetDuration("timeout"); got != want {
		t.Errorf("GetDuration('timeout') = %v, want %v", got, want)
	}
}

func TestViperConfigIsSet(t *testing.T) {
	v := viper.New()
	v.Set("exists", true)
	cfg := New(v)

	if !cfg.IsSet("exists") {
		t.Error("IsSet('exists') = false, want true")
	}
	if cfg.IsSet("missing") {
		t.Error("IsSet('missing') = true, want false")
	}
}

func TestViperConfigSub(t *testing.T) {
	v := viper.New()
	v.Set("dataset.path", "crops.csv")
	v.Set("dataset.rank_key", "value")
	cfg := New(v)

	sub := cfg.Sub("dataset")
	if sub == nil {
		t.Fatal("Sub('dataset') = nil")
	}
	if got := sub.GetString("path"); got != "crops.csv" {
		t.Errorf("sub.GetString('path') = %q, want %q", got, "crops.csv")
	}
	if got := sub.GetString("rank_key"); got != "value" {
		t.Errorf("sub.GetString('rank_key') = %q, want %q", got, "value")
	}
}

func TestViperConfigSubMissing(t *testing.T) {
	v := viper.New()
	cfg := New(v)

	sub := cfg.Sub("nonexistent")
	if sub == nil {
		t.Fatal("Sub('nonexistent') should return empty Config, not nil")
	}
	// Should return zero values without panic.
	if got := sub.GetString("anything"); got != "" {
		t.Errorf("empty config GetString() = %q, want empty", got)
	}
}

func TestViperConfigUnmarshal(t *testing.T) {
	v := viper.New()
	v.Set("host", "localhost")
	v.Set("port", 9090)
	cfg := New(v)

	var target struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	}
	if err := cfg.Unmarshal(&target); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if target.Host != "localhost" {
		t.Errorf("Host = %q, want %q", target.Host, "localhost")
	}
	if target.Port != 9090 {
		t.Errorf("Port = %d, want %d", target.Port, 9090)
	}
}

func TestNilViper(t *testing.T) {
	cfg := New(nil)
	// Should not panic and return zero values.
	if got := cfg.GetString("key"); got != "" {
		t.Errorf("nil viper GetString() = %q, want empty", got)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s, err := cfg.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}

	if s.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", s.Server.Port)
	}
	if s.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 10s", s.Server.ShutdownTimeout)
	}
	if s.Dataset.RankKey != "" {
		t.Errorf("Dataset.RankKey = %q, want empty", s.Dataset.RankKey)
	}
	if s.Dataset.Path != "" {
		t.Errorf("Dataset.Path = %q, want empty", s.Dataset.Path)
	}
	if s.Selector.MaxCells != 10_000_000 {
		t.Errorf("Selector.MaxCells = %d, want 10000000", s.Selector.MaxCells)
	}
	if s.Fallback.Label != "Recommended crop: cotton" {
		t.Errorf("Fallback.Label = %q", s.Fallback.Label)
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cropadvisor.yaml")
	data := []byte("server:\n  port: 9191\ndataset:\n  path: /data/crops.csv\n  rank_key: value\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	s, err := cfg.Settings()
	if err != nil {
		t.Fatalf("Settings() error = %v", err)
	}
	if s.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191", s.Server.Port)
	}
	if s.Server.Addr() != "0.0.0.0:9191" {
		t.Errorf("Server.Addr() = %q", s.Server.Addr())
	}
	if s.Dataset.Path != "/data/crops.csv" || s.Dataset.RankKey != "value" {
		t.Errorf("Dataset = %+v", s.Dataset)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load() of missing explicit file should fail")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CROPADVISOR_SERVER_PORT", "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := cfg.GetInt("server.port"); got != 7070 {
		t.Errorf("server.port = %d, want 7070", got)
	}
}

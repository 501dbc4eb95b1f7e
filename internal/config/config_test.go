package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "none")

	cfg, _, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != 8080 || cfg.Mode != "release" {
		t.Fatalf("port=%d mode=%s", cfg.Port, cfg.Mode)
	}
	if cfg.PingPeriod != 54*time.Second {
		t.Fatalf("ping_period = %v", cfg.PingPeriod)
	}
	if cfg.Capture.TrackName != "excalidraw" || cfg.Capture.FPS != 30 {
		t.Fatalf("capture = %+v", cfg.Capture)
	}
	if len(cfg.ICE.URLs) != 1 {
		t.Fatalf("ice = %v", cfg.ICE.URLs)
	}
	if cfg.MQTT.Broker != "" || cfg.MQTT.Prefix != "slate" {
		t.Fatalf("mqtt = %+v", cfg.MQTT)
	}
}

func TestLoadFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.Mkdir(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "mode: debug\nport: 7000\ncapture:\n  fps: 15\nboard:\n  background: \"#000000\"\n"
	if err := os.WriteFile(filepath.Join(dir, "config", "config.test.yaml"), []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_ENV", "test")
	t.Setenv("SLATE_CAPTURE_QUALITY", "40")

	fs := Flags()
	if err := fs.Parse([]string{"--port=9090", "--log-level=debug"}); err != nil {
		t.Fatal(err)
	}
	cfg, _, err := Load(fs)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Mode != "debug" || cfg.Capture.FPS != 15 || cfg.Board.Background != "#000000" {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Capture.Quality != 40 {
		t.Fatalf("env override not applied: quality=%d", cfg.Capture.Quality)
	}
	if cfg.Port != 9090 || cfg.LogLevel != "debug" {
		t.Fatalf("flags not applied: port=%d level=%s", cfg.Port, cfg.LogLevel)
	}
}

func TestValidate(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONFIG_ENV", "none")
	t.Setenv("SLATE_CAPTURE_FPS", "0")
	if _, _, err := Load(nil); err == nil {
		t.Fatal("zero fps accepted")
	}
}

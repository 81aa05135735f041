package config

import (
	"testing"
	"time"

	"github.com/jpalmerr/linkmonitor"
)

func TestBuildOptions_Defaults(t *testing.T) {
	cfg := Default()
	cfg.DataDir = t.TempDir()

	m, err := linkmonitor.New(BuildOptions(&cfg)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if m.Interval() != 10*time.Minute {
		t.Errorf("Interval() = %v, want 10m", m.Interval())
	}
	if m.Port() != 8080 {
		t.Errorf("Port() = %d, want 8080", m.Port())
	}
	if m.Mode() != linkmonitor.ModeLoop {
		t.Errorf("Mode() = %q, want loop", m.Mode())
	}
	if m.DataDir() != cfg.DataDir {
		t.Errorf("DataDir() = %q, want %q", m.DataDir(), cfg.DataDir)
	}
}

func TestBuildOptions_FromYAML(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Parse([]byte(`
title: Ops Links
port: 9292
data_dir: ` + dir + `
mode: trigger
interval_minutes: 30
proxy: proxy.example.com:3128
politeness_delay: 0s
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	m, err := linkmonitor.New(BuildOptions(cfg)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if m.Interval() != 30*time.Minute {
		t.Errorf("Interval() = %v, want 30m", m.Interval())
	}
	if m.Port() != 9292 {
		t.Errorf("Port() = %d, want 9292", m.Port())
	}
	if m.Mode() != linkmonitor.ModeTrigger {
		t.Errorf("Mode() = %q, want trigger", m.Mode())
	}
}

func TestBuildOptions_OmitsEmptyOptionals(t *testing.T) {
	cfg := Default()
	opts := BuildOptions(&cfg)

	cfg.Title = "x"
	cfg.Proxy = "proxy.example.com:3128"
	withOptionals := BuildOptions(&cfg)

	if len(withOptionals) != len(opts)+2 {
		t.Errorf("len = %d, want %d", len(withOptionals), len(opts)+2)
	}
}

func TestBuildOptions_InvalidValuesRejectedByNew(t *testing.T) {
	cfg := Default()
	cfg.IntervalMinutes = 0 // bypasses Validate

	if _, err := linkmonitor.New(BuildOptions(&cfg)...); err == nil {
		t.Error("New() expected error for zero interval")
	}
}

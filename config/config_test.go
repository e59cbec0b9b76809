package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_MinimalConfig(t *testing.T) {
	yaml := `
endpoint: https://records.example.com/api/courses
courses_file: courses.json
history_file: history.json
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// defaults applied
	if cfg.PollInterval.Duration() != 120*time.Second {
		t.Errorf("PollInterval = %v, want 120s", cfg.PollInterval.Duration())
	}
	if cfg.RetryAttempts != 10 {
		t.Errorf("RetryAttempts = %d, want 10", cfg.RetryAttempts)
	}
	if cfg.RetryWait.Duration() != 20*time.Second {
		t.Errorf("RetryWait = %v, want 20s", cfg.RetryWait.Duration())
	}
	if cfg.RequestTimeout.Duration() != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout.Duration())
	}
	if cfg.MetricsAddr != "" {
		t.Errorf("MetricsAddr = %q, want empty", cfg.MetricsAddr)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
endpoint: http://localhost:8080/api/courses
courses_file: /etc/wrtrack/courses.json
history_file: /var/lib/wrtrack/history.json
poll_interval: 2m
retry_attempts: 5
retry_wait: 10s
request_timeout: 15s
metrics_addr: ":9090"
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Endpoint != "http://localhost:8080/api/courses" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
	if cfg.CoursesFile != "/etc/wrtrack/courses.json" {
		t.Errorf("CoursesFile = %q", cfg.CoursesFile)
	}
	if cfg.HistoryFile != "/var/lib/wrtrack/history.json" {
		t.Errorf("HistoryFile = %q", cfg.HistoryFile)
	}
	if cfg.PollInterval.Duration() != 2*time.Minute {
		t.Errorf("PollInterval = %v, want 2m", cfg.PollInterval.Duration())
	}
	if cfg.RetryAttempts != 5 {
		t.Errorf("RetryAttempts = %d, want 5", cfg.RetryAttempts)
	}
	if cfg.RetryWait.Duration() != 10*time.Second {
		t.Errorf("RetryWait = %v, want 10s", cfg.RetryWait.Duration())
	}
	if cfg.RequestTimeout.Duration() != 15*time.Second {
		t.Errorf("RequestTimeout = %v, want 15s", cfg.RequestTimeout.Duration())
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("MetricsAddr = %q, want :9090", cfg.MetricsAddr)
	}
}

func TestParse_InvalidConfigs(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name: "missing endpoint",
			yaml: `
courses_file: courses.json
history_file: history.json
`,
			wantErr: "endpoint is required",
		},
		{
			name: "bad endpoint scheme",
			yaml: `
endpoint: ftp://records.example.com/api
courses_file: courses.json
history_file: history.json
`,
			wantErr: "scheme must be http or https",
		},
		{
			name: "missing courses_file",
			yaml: `
endpoint: https://records.example.com/api
history_file: history.json
`,
			wantErr: "courses_file is required",
		},
		{
			name: "missing history_file",
			yaml: `
endpoint: https://records.example.com/api
courses_file: courses.json
`,
			wantErr: "history_file is required",
		},
		{
			name: "poll interval too short",
			yaml: `
endpoint: https://records.example.com/api
courses_file: courses.json
history_file: history.json
poll_interval: 500ms
`,
			wantErr: "poll_interval must be at least",
		},
		{
			name: "negative retry attempts",
			yaml: `
endpoint: https://records.example.com/api
courses_file: courses.json
history_file: history.json
retry_attempts: -1
`,
			wantErr: "retry_attempts must be at least 1",
		},
		{
			name: "request timeout too short",
			yaml: `
endpoint: https://records.example.com/api
courses_file: courses.json
history_file: history.json
request_timeout: 100ms
`,
			wantErr: "request_timeout must be at least 1s",
		},
		{
			name: "malformed duration",
			yaml: `
endpoint: https://records.example.com/api
courses_file: courses.json
history_file: history.json
poll_interval: two minutes
`,
			wantErr: "invalid duration",
		},
		{
			name:    "not yaml",
			yaml:    `{{{`,
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file, got nil")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("error = %q", err)
	}
}

func TestLoad_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
endpoint: https://records.example.com/api/courses
courses_file: courses.json
history_file: history.json
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Endpoint != "https://records.example.com/api/courses" {
		t.Errorf("Endpoint = %q", cfg.Endpoint)
	}
}

func TestLoadCourses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	if err := os.WriteFile(path, []byte(`["7n1-mvb-wkf", "ABC123DEF"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := LoadCourses(path)
	if err != nil {
		t.Fatalf("LoadCourses() error = %v", err)
	}
	if len(got) != 2 || got[0] != "7n1-mvb-wkf" || got[1] != "ABC123DEF" {
		t.Errorf("LoadCourses() = %v", got)
	}
}

func TestLoadCourses_MissingFile(t *testing.T) {
	_, err := LoadCourses(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("LoadCourses() expected error for missing file, got nil")
	}
}

func TestLoadCourses_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "courses.json")
	if err := os.WriteFile(path, []byte(`{"not": "an array"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadCourses(path)
	if err == nil {
		t.Fatal("LoadCourses() expected error for malformed file, got nil")
	}
	if !strings.Contains(err.Error(), "parse courses file") {
		t.Errorf("error = %q", err)
	}
}

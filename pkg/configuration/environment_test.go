package configuration

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEnv_LoadsExistingFiles(t *testing.T) {
	tmp := t.TempDir()
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "PLOTLINE_TEST_ENV_LOAD=ok\n")

	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	_ = os.Unsetenv("PLOTLINE_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("PLOTLINE_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded, got %q", got)
	}
}

func TestRateLimitOptions_Validate(t *testing.T) {
	cases := []struct {
		name    string
		opts    RateLimitOptions
		wantErr bool
	}{
		{"defaults", RateLimitOptions{GlobalRPS: 1000, Storage: "memory", GracePercent: 10}, false},
		{"negative rps", RateLimitOptions{GlobalRPS: -1, Storage: "memory", GracePercent: 10}, true},
		{"bad storage", RateLimitOptions{GlobalRPS: 10, Storage: "etcd", GracePercent: 10}, true},
		{"redis without url", RateLimitOptions{GlobalRPS: 10, Storage: "redis", GracePercent: 10}, true},
		{"grace percent out of range", RateLimitOptions{GlobalRPS: 10, Storage: "memory", GracePercent: 0}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfiguration_ValidateRLS(t *testing.T) {
	c := &Configuration{RLSEnforce: "ENFORCE"}
	c.Database.User = "plotline_app"
	if err := c.validateRLS(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.RLSEnforce != "enforce" {
		t.Fatalf("expected normalized mode, got %q", c.RLSEnforce)
	}

	c = &Configuration{RLSEnforce: "enforce"}
	c.Database.User = "postgres"
	if err := c.validateRLS(); err == nil {
		t.Fatal("expected error for superuser with RLS enforced")
	}

	c = &Configuration{RLSEnforce: "sometimes"}
	if err := c.validateRLS(); err == nil {
		t.Fatal("expected error for invalid mode")
	}
}

func TestConfiguration_PublicPathList(t *testing.T) {
	c := &Configuration{PublicPaths: "/login, /logout,,/billing "}
	got := c.PublicPathList()
	want := []string{"/login", "/logout", "/billing"}
	if len(got) != len(want) {
		t.Fatalf("expected %d paths, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("path %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

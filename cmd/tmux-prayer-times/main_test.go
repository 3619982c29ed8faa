package main

import (
	"bytes"
	"os/exec"
	"regexp"
	"strings"
	"testing"
)

func runMain(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("NO_COLOR", "1")

	var out, errOut bytes.Buffer
	err := run(args, &out, &errOut)
	return out.String(), err
}

// TestVersionFlag verifies that --version prints the version string.
func TestVersionFlag(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	// Build the binary with a known version.
	binPath := t.TempDir() + "/tmux-prayer-times"
	cmd := exec.Command("go", "build", "-ldflags", "-X main.version=v1.2.3-test", "-o", binPath, ".")
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}

	out, err := exec.Command(binPath, "--version").Output()
	if err != nil {
		t.Fatalf("--version failed: %v", err)
	}

	got := strings.TrimSpace(string(out))
	want := "tmux-prayer-times v1.2.3-test"
	if got != want {
		t.Errorf("--version = %q, want %q", got, want)
	}
}

// TestVersionFlag_Dev verifies the default "dev" version when no ldflags.
func TestVersionFlag_Dev(t *testing.T) {
	out, err := runMain(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if out != "tmux-prayer-times dev\n" {
		t.Errorf("--version output unexpected: %q", out)
	}
}

// TestListMethodsFlag verifies that --list-methods prints calculation methods.
func TestListMethodsFlag(t *testing.T) {
	out, err := runMain(t, "--list-methods")
	if err != nil {
		t.Fatalf("--list-methods failed: %v", err)
	}

	for _, m := range []string{
		"ISNA",
		"Muslim World League",
		"Umm Al-Qura",
		"Jafari",
		"Ministry of Awqaf, Jordan",
	} {
		if !strings.Contains(out, m) {
			t.Errorf("--list-methods output missing %q", m)
		}
	}
}

func TestStatusLine(t *testing.T) {
	out, err := runMain(t,
		"--latitude", "51.5074", "--longitude", "-0.1278", "--timezone", "Europe/London",
		"--method", "mwl", "--format", "short-name-and-time", "--offline")
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^[FSDAMI] \d{2}:\d{2}$`).MatchString(out) {
		t.Errorf("status line = %q", out)
	}
}

func TestStatusLine_Template(t *testing.T) {
	out, err := runMain(t,
		"--latitude", "21.4225", "--longitude", "39.8262", "--timezone", "Asia/Riyadh",
		"--prayers", "Fajr", "--time-format", "12h", "--format", "{{.Name}} {{.Time}}", "--offline")
	if err != nil {
		t.Fatal(err)
	}
	if !regexp.MustCompile(`^Fajr \d{1,2}:\d{2} AM$`).MatchString(out) {
		t.Errorf("status line = %q", out)
	}
}

func TestOfflineWithoutLocation(t *testing.T) {
	if _, err := runMain(t, "--offline"); err == nil {
		t.Error("expected an error without a location")
	}
}

func TestInvalidFlags(t *testing.T) {
	for _, args := range [][]string{
		{"--bogus"},
		{"--latitude", "north"},
		{"--latitude", "21.4", "--longitude", "39.8", "--method", "99", "--offline"},
	} {
		if _, err := runMain(t, args...); err == nil {
			t.Errorf("%v should fail", args)
		}
	}
}

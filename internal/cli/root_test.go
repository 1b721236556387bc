package cli

import (
	"testing"
)

func TestMainWithArgsSetup(t *testing.T) {
	srv, _ := newFakeDaemon(t)
	if code := MainWithArgs([]string{"--server", srv.URL, "setup", "m1"}); code != 0 {
		t.Fatalf("exit=%d", code)
	}
}

func TestMainWithArgsUnknownModelFails(t *testing.T) {
	srv, _ := newFakeDaemon(t)
	if code := MainWithArgs([]string{"--server", srv.URL, "setup", "ghost"}); code != 1 {
		t.Fatalf("exit=%d", code)
	}
}

func TestMainWithArgsSetupRequiresName(t *testing.T) {
	srv, _ := newFakeDaemon(t)
	if code := MainWithArgs([]string{"--server", srv.URL, "setup"}); code != 1 {
		t.Fatalf("exit=%d", code)
	}
}

func TestMainWithArgsStatusAndList(t *testing.T) {
	srv, _ := newFakeDaemon(t)
	for _, cmd := range []string{"status", "list", "registry", "health"} {
		code := MainWithArgs([]string{"--server", srv.URL, cmd})
		want := 0
		if cmd == "health" {
			// fake daemon reports unhealthy
			want = 1
		}
		if code != want {
			t.Fatalf("%s exit=%d want %d", cmd, code, want)
		}
	}
}

func TestMainWithArgsGenerate(t *testing.T) {
	srv, _ := newFakeDaemon(t)
	if code := MainWithArgs([]string{"--server", srv.URL, "generate", "tell", "me", "a", "story", "--max-tokens", "16"}); code != 0 {
		t.Fatalf("exit=%d", code)
	}
}

func TestMainWithArgsSearch(t *testing.T) {
	srv, _ := newFakeDaemon(t)
	if code := MainWithArgs([]string{"--server", srv.URL, "search", "m1"}); code != 0 {
		t.Fatalf("exit=%d", code)
	}
}

func TestMainWithArgsRemove(t *testing.T) {
	srv, _ := newFakeDaemon(t)
	if code := MainWithArgs([]string{"--server", srv.URL, "rm", "m1"}); code != 0 {
		t.Fatalf("exit=%d", code)
	}
}

package config

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"
)

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeConfig(t, "controller:\n  url: https://10.0.0.1\n  token: old\n")

	var mu sync.Mutex
	var got *Config
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		Watch(ctx, path, func(cfg *Config) {
			mu.Lock()
			got = cfg
			mu.Unlock()
		})
	}()

	// Give the watcher a moment to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte("controller:\n  url: https://10.0.0.1\n  token: new\n"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		mu.Lock()
		reloaded := got
		mu.Unlock()
		if reloaded != nil {
			if reloaded.Controller.Token != "new" {
				t.Errorf("reloaded token = %q, want new", reloaded.Controller.Token)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("config change never triggered a reload")
		}
		time.Sleep(10 * time.Millisecond)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatchSkipsBrokenReload(t *testing.T) {
	path := writeConfig(t, "controller:\n  url: https://10.0.0.1\n")

	reloads := make(chan *Config, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go Watch(ctx, path, func(cfg *Config) { reloads <- cfg })

	time.Sleep(100 * time.Millisecond)
	// The rewrite drops controller.url, so validation rejects it.
	if err := os.WriteFile(path, []byte("server:\n  addr: ':9090'\n"), 0644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-reloads:
		t.Errorf("invalid config delivered: %+v", cfg)
	case <-time.After(time.Second):
	}
}

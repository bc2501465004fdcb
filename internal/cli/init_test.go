package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"plenio/internal/log"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("PLENIO_CLI_TEST=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	wd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(wd)
		_ = os.Unsetenv("PLENIO_CLI_TEST")
	})

	LoadEnvFile()
	if got := os.Getenv("PLENIO_CLI_TEST"); got != "from-dotenv" {
		t.Errorf("PLENIO_CLI_TEST = %q", got)
	}
}

func TestSetupLoggerInstallsDefault(t *testing.T) {
	logger := SetupLogger("debug", "json")
	if !logger.Enabled(context.Background(), -4) {
		t.Error("debug level should be enabled")
	}
	if logger.Component() != log.ComponentApp {
		t.Errorf("component = %q", logger.Component())
	}
}

func TestGracefulShutdownRunsOnSignal(t *testing.T) {
	logger := log.New(log.Config{Output: io.Discard})
	called := make(chan struct{})
	ctx, done := GracefulShutdown(logger, time.Second, func(ctx context.Context) {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("shutdown context should carry the timeout")
		}
		close(called)
	})

	if err := syscall.Kill(os.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatal(err)
	}

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	select {
	case <-called:
	default:
		t.Fatal("shutdown func not called")
	}
	if ctx.Err() == nil {
		t.Error("context should be cancelled")
	}
	WaitForShutdown(ctx, done)
}

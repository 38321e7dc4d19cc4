package selfupdate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/uinstall/uinstall/internal/logger"
)

const (
	// markerFilename marks that an update is running right now to avoid
	// parallel execution.
	markerFilename = "uinstall-update-marker.bin"

	// markerLifetime is the period after which a stale marker is ignored.
	markerLifetime = 30 * time.Second
)

// markerPath returns the marker location in the system temporary directory,
// shared by all invocations of the current user.
func markerPath() string {
	return filepath.Join(os.TempDir(), markerFilename)
}

// isUpdateRunningNow checks presence of the marker file and attempts
// recovery if it looks stale.
func isUpdateRunningNow(ctx context.Context) bool {
	fileInfo, err := os.Stat(markerPath())
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The update marker is too old, attempting cleanup")

		executable, execErr := os.Executable()
		if execErr != nil {
			return true
		}

		if err = terminateProcessByName(filepath.Base(executable)); err != nil {
			return true
		}

		if err = os.Remove(markerPath()); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read update marker: %v", err)

	return false
}

// terminateProcessByName tries to kill other processes with the provided
// executable name.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}

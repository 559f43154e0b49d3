// Copyright (c) 2026 BVK Chaitanya

package subcmds

import (
	"log/slog"
	"testing"

	"github.com/visvasity/sglog"
)

func TestBackgroundLogBackend(t *testing.T) {
	backend := sglog.NewBackend(&sglog.Options{LogDirs: []string{t.TempDir()}})
	slog.New(backend.Handler()).Info("log backend check")
	backend.Close()
}

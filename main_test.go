package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"visir-watcher/config"
	"visir-watcher/storage"
	"visir-watcher/utils"
)

// dyingRenderer fails on the first page read, standing in for a browser
// session that dies mid-walk.
type dyingRenderer struct {
	closed bool
}

func (d *dyingRenderer) Navigate(ctx context.Context, url string) error { return nil }

func (d *dyingRenderer) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	return nil
}

func (d *dyingRenderer) Click(ctx context.Context, selector string) error { return nil }

func (d *dyingRenderer) HTML(ctx context.Context) (string, error) {
	return "", errors.New("browser went away")
}

func (d *dyingRenderer) Close() error {
	d.closed = true
	return nil
}

func pipelineConfig() *config.Config {
	return &config.Config{
		User: "test",
		Criteria: config.FilterCriteria{
			MinPrice: 50000000, MaxPrice: 90000000,
			MinBedrooms: 2, MaxBedrooms: 4,
			ZipCodes: "101",
		},
		MaxPages:        5,
		RenderTimeoutMs: 50,
	}
}

// A mid-walk browser failure must surface as an error return, so the
// caller's deferred session and store teardown still runs before the
// process decides to exit.
func TestRunPipelineReturnsFatalWalkError(t *testing.T) {
	catalogPath := filepath.Join(t.TempDir(), "catalog.json")
	store := storage.NewFileStore(catalogPath)

	err := runPipeline(pipelineConfig(), utils.NewLogger(), store, &dyingRenderer{})
	if err == nil {
		t.Fatal("fatal walk error must propagate out of the pipeline")
	}

	// Nothing was walked, so nothing may have been persisted either.
	if _, statErr := os.Stat(catalogPath); !os.IsNotExist(statErr) {
		t.Errorf("catalog written despite fatal walk error: %v", statErr)
	}
}

package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lgdlong/ttt/internal/logger"
)

const (
	transcriptField = "transcript"
	startTimeField  = "start_time"

	// startTimeStepMS is the interval between consecutive transcript
	// entries after renumbering.
	startTimeStepMS = 1000
)

// FixStartTimes renumbers the start_time field of every entry in the
// transcript array of each .json file under dir: first entry 0, each
// following one +1000ms. Files without a transcript array are skipped,
// and one bad file never stops the others.
func FixStartTimes(ctx context.Context, dir string, log logger.Logger) (updated, skipped int, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read output dir: %w", err)
	}

	found := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), OutputExt) {
			continue
		}
		found++

		path := filepath.Join(dir, e.Name())
		if fixFileStartTimes(ctx, path, log) {
			updated++
		} else {
			skipped++
		}
	}

	if found == 0 {
		log.Warn(ctx, "No %s files found in %s", OutputExt, dir)
	}
	return updated, skipped, nil
}

// fixFileStartTimes rewrites one output file in place. Returns false
// when the file was left untouched.
func fixFileStartTimes(ctx context.Context, path string, log logger.Logger) bool {
	name := filepath.Base(path)

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Error(ctx, "Error reading %s: %v", name, err)
		return false
	}

	var data map[string]interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Error(ctx, "Error parsing %s: %v", name, err)
		return false
	}

	list, ok := data[transcriptField].([]interface{})
	if !ok {
		log.Debug(ctx, "No %q array in %s, skipping", transcriptField, name)
		return false
	}

	for i, item := range list {
		entry, ok := item.(map[string]interface{})
		if !ok {
			log.Warn(ctx, "%s: %s[%d] is not an object, leaving it as-is", name, transcriptField, i)
			continue
		}
		entry[startTimeField] = i * startTimeStepMS
	}

	if err := writeJSON(path, data); err != nil {
		log.Error(ctx, "Error writing %s: %v", name, err)
		return false
	}

	log.Info(ctx, "Updated start times: %s", name)
	return true
}

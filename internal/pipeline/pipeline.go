package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lgdlong/ttt/internal/llm"
	"github.com/lgdlong/ttt/internal/telemetry"
	"github.com/lgdlong/ttt/pkg/optimizer"
)

// Run scans the input directory, filters out files whose output already
// exists, and processes the rest through a bounded worker pool. One
// failing file never aborts its siblings; the registry is shut down
// when all work has settled.
func (p *implPipeline) Run(ctx context.Context, providerName string) (*Summary, error) {
	// Fail fast on a bad provider name before any file is touched.
	if _, err := p.registry.Resolve(providerName); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ctx = telemetry.WithRunID(ctx, runID)
	start := time.Now()

	work, skipped, err := p.scan()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:   runID,
		Found:   len(work) + skipped,
		Skipped: skipped,
	}

	if len(work) == 0 {
		if skipped == 0 {
			p.logger.Warn(ctx, "No %s files found in %s", InputExt, p.cfg.Paths.Input)
		} else {
			p.logger.Info(ctx, "All %d file(s) already processed. Nothing new.", skipped)
		}
		summary.WallTime = time.Since(start)
		return summary, nil
	}

	if err := os.MkdirAll(p.cfg.Paths.Output, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	p.logger.Info(ctx, "Found %d file(s), processing %d new (skipped %d)",
		summary.Found, len(work), skipped)
	p.logger.Info(ctx, "Run %s: %d worker(s), provider: %s",
		runID, p.cfg.Performance.MaxWorkers, p.resolvedName(providerName))

	sem := newSemaphore(p.cfg.Performance.MaxWorkers)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []Result
	)

	started := 0
	for _, item := range work {
		if err := sem.acquire(ctx); err != nil {
			// Interrupted: stop launching, let in-flight workers finish.
			// Workers append to results concurrently, so count what was
			// launched instead of reading results here.
			p.logger.Warn(ctx, "Run interrupted, %d file(s) not started", len(work)-started)
			break
		}
		started++
		wg.Add(1)
		go func(item workItem) {
			defer wg.Done()
			defer sem.release()

			res := p.processItem(ctx, item, providerName)

			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(item)
	}

	wg.Wait()
	p.registry.Shutdown(ctx)

	summary.Results = results
	summary.Processed = len(results)
	for _, r := range results {
		if r.Status == StatusSuccess {
			summary.Success++
		} else {
			summary.Errors++
		}
		summary.APITime += r.Duration
	}
	summary.WallTime = time.Since(start)

	return summary, nil
}

// ProcessFile handles one transcript by path. Used by watch mode, where
// files arrive one at a time instead of via a directory scan.
func (p *implPipeline) ProcessFile(ctx context.Context, inputPath, providerName string) Result {
	item := p.deriveItem(inputPath)

	if _, err := os.Stat(item.outputPath); err == nil {
		p.logger.Debug(ctx, "Output exists, skipping: %s", filepath.Base(inputPath))
		return Result{File: filepath.Base(inputPath), Status: StatusSkipped}
	}

	if err := os.MkdirAll(p.cfg.Paths.Output, 0755); err != nil {
		return Result{
			File:    filepath.Base(inputPath),
			Status:  StatusError,
			Message: fmt.Sprintf("create output dir: %v", err),
		}
	}

	return p.processItem(ctx, item, providerName)
}

// processItem does the per-file work: read, truncate, generate, salvage
// JSON, persist. Every failure is converted to an error Result here and
// never propagates to the pool.
func (p *implPipeline) processItem(ctx context.Context, item workItem, providerName string) Result {
	start := time.Now()
	name := filepath.Base(item.inputPath)

	p.logger.Info(ctx, "Processing: %s", name)

	fail := func(format string, args ...interface{}) Result {
		msg := fmt.Sprintf(format, args...)
		p.logger.Error(ctx, "Error processing %s: %s", name, msg)
		return Result{File: name, Status: StatusError, Message: msg, Duration: time.Since(start)}
	}

	raw, err := os.ReadFile(item.inputPath)
	if err != nil {
		return fail("read input: %v", err)
	}

	content := optimizer.Compact(string(raw), p.cfg.LLM.MaxInputChars)
	if len(raw) > p.cfg.LLM.MaxInputChars {
		p.logger.Debug(ctx, "Truncated %s: %d -> %d chars", name, len(raw), len(content))
	}

	provider, err := p.registry.Resolve(providerName)
	if err != nil {
		return fail("%v", err)
	}

	callCtx := ctx
	if p.cfg.LLM.CallTimeoutSeconds > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, time.Duration(p.cfg.LLM.CallTimeoutSeconds)*time.Second)
		defer cancel()
	}

	p.logger.Debug(ctx, "Calling %s (%s) for %s", provider.Name(), provider.ModelName(), name)
	text, err := provider.Generate(callCtx, llm.Request{
		Prompt:            content,
		SystemInstruction: p.systemPrompt,
		Temperature:       *p.cfg.LLM.Temperature,
		MaxTokens:         p.cfg.LLM.MaxOutputTokens,
	})
	if err != nil {
		return fail("%v", err)
	}

	data := optimizer.ParseJSON(text)
	if data == nil {
		// Keep the raw text on disk so the bad output can be inspected.
		if werr := os.WriteFile(item.errorPath, []byte(text), 0644); werr != nil {
			p.logger.Warn(ctx, "Failed to write error artifact for %s: %v", name, werr)
		}
		return fail("invalid JSON output, raw response saved to %s", item.errorPath)
	}

	if err := writeJSON(item.outputPath, data); err != nil {
		return fail("write output: %v", err)
	}

	duration := time.Since(start)
	p.logger.Info(ctx, "Completed: %s (%.2fs)", name, duration.Seconds())

	return Result{
		File:     name,
		Status:   StatusSuccess,
		Output:   item.outputPath,
		Duration: duration,
	}
}

// scan enumerates eligible input files and drops the ones whose output
// already exists, making a rerun after partial failure pick up only
// missing work.
func (p *implPipeline) scan() ([]workItem, int, error) {
	entries, err := os.ReadDir(p.cfg.Paths.Input)
	if err != nil {
		return nil, 0, fmt.Errorf("read input dir: %w", err)
	}

	var work []workItem
	skipped := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), InputExt) {
			continue
		}

		item := p.deriveItem(filepath.Join(p.cfg.Paths.Input, e.Name()))
		if _, err := os.Stat(item.outputPath); err == nil {
			skipped++
			continue
		}
		work = append(work, item)
	}

	sort.Slice(work, func(i, j int) bool { return work[i].inputPath < work[j].inputPath })
	return work, skipped, nil
}

func (p *implPipeline) deriveItem(inputPath string) workItem {
	name := filepath.Base(inputPath)
	outName := strings.TrimSuffix(name, InputExt) + OutputExt
	return workItem{
		inputPath:  inputPath,
		outputPath: filepath.Join(p.cfg.Paths.Output, outName),
		errorPath:  filepath.Join(p.cfg.Paths.Output, name+ErrorSuffix),
	}
}

func (p *implPipeline) resolvedName(providerName string) string {
	if providerName != "" {
		return providerName
	}
	return p.registry.DefaultName()
}

// writeJSON pretty-prints with 2-space indent and HTML escaping off so
// non-ASCII output stays readable on disk.
func writeJSON(path string, data map[string]interface{}) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

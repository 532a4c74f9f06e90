package app

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/vk/usdcheck/internal/ctxlog"
	"github.com/vk/usdcheck/internal/engine"
	"github.com/vk/usdcheck/internal/fsutil"
)

// Run executes the batch validation and returns the process exit code:
// 0 iff every input passed, 1 otherwise.
func (a *App) Run(ctx context.Context) (int, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	files, err := expandInputs(a.config.Paths)
	if err != nil {
		return 1, err
	}
	if len(files) == 0 {
		return 1, fmt.Errorf("no scene files found under the given paths")
	}
	a.logger.Debug("Inputs resolved.", "file_count", len(files))

	driver := engine.NewDriver(a.registry, a.checker, a.config.Verbose, a.config.Workers, a.diagW)
	report, code := driver.Run(ctx, files)

	for _, fr := range report.Files {
		verdict := "[Fail]"
		if fr.Success() {
			verdict = "[Pass]"
		}
		fmt.Fprintf(a.outW, "%s: %s %s\n", ToolName, verdict, fr.File)
	}

	if a.config.ReportPath != "" {
		if err := writeReport(a.config.ReportPath, report); err != nil {
			return 1, fmt.Errorf("failed to write report: %w", err)
		}
		a.logger.Debug("Batch report written.", "path", a.config.ReportPath)
	}

	a.logger.Debug("App.Run method finished.", "exit_code", code)
	return code, nil
}

// expandInputs resolves directories to the scene files beneath them.
// Nonexistent paths pass through untouched so the driver reports them as
// per-file open failures instead of aborting the batch.
func expandInputs(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			files = append(files, path)
			continue
		}
		found, err := fsutil.FindSceneFiles(path)
		if err != nil {
			return nil, fmt.Errorf("error scanning directory %s: %w", path, err)
		}
		files = append(files, found...)
	}
	return files, nil
}

// writeReport serializes the batch report as indented JSON.
func writeReport(path string, report engine.BatchReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

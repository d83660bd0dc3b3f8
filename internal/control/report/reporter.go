package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/akishore/ComplyAPI/internal/config"
	"github.com/akishore/ComplyAPI/internal/domain/commonModels"
	"github.com/akishore/ComplyAPI/pkg/logger_i"
)

const separator = "--------------------"

// Reporter writes the per-document report artifact. Every run that makes
// it past intake produces a file, failed runs included, so an operator
// can always answer "what happened to this document".
type Reporter struct {
	dir    string
	now    func() time.Time
	logger *logger_i.Logger
}

func New(cfg config.Pipeline) *Reporter {
	return &Reporter{
		dir:    cfg.ReportsDir,
		now:    time.Now,
		logger: logger_i.NewLogger("Reporter"),
	}
}

// Write renders the consolidated report and returns its path.
func (r *Reporter) Write(docPath string, entries []commonModels.ConsolidatedEntry, summary commonModels.Summary) (string, error) {
	var b strings.Builder
	r.writeHeader(&b, docPath)

	b.WriteString("\n--- Summary ---\n")
	fmt.Fprintf(&b, "Tests Passed: %d out of %d\n", summary.Passed, summary.Total)

	b.WriteString("\n--- Control Results (Consolidated) ---\n\n")
	if len(entries) == 0 {
		b.WriteString("No control results were generated.\n")
	}
	for _, e := range entries {
		verdict := "FAIL"
		if e.Passed {
			verdict = "PASS"
		}
		fmt.Fprintf(&b, "Control ID: %s (Global Risk Score: %d/10) [%s]\n", e.ControlID, e.Worst.Score, verdict)
		if e.Worst.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", e.Worst.Description)
		}
		fmt.Fprintf(&b, "Result: %s\n", e.Worst.ResultText)
		b.WriteString(separator + "\n")
	}

	b.WriteString("\n--- End of Report ---\n")
	return r.save(docPath, "report", b.String())
}

// WriteFailure renders a failure report for a run that died before
// producing consolidated results.
func (r *Reporter) WriteFailure(docPath string, cause string) (string, error) {
	var b strings.Builder
	r.writeHeader(&b, docPath)

	b.WriteString("\n--- Control Results ---\n\n")
	b.WriteString("Process failed before controls could be run.\n")
	fmt.Fprintf(&b, "Details: %s\n", cause)
	b.WriteString("\n--- End of Report ---\n")
	return r.save(docPath, "FAILURE_report", b.String())
}

func (r *Reporter) writeHeader(b *strings.Builder, docPath string) {
	b.WriteString("--- Control Automation Report ---\n\n")
	fmt.Fprintf(b, "Original Document: %s\n", docPath)
	fmt.Fprintf(b, "Report Generated: %s\n", r.now().Format("2006-01-02 15:04:05"))
}

func (r *Reporter) save(docPath string, prefix string, content string) (string, error) {
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create report directory: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	if base == "" || base == "." {
		base = "document"
	}
	name := fmt.Sprintf("%s_%s_%s.txt", prefix, base, r.now().Format("20060102_150405"))
	path := filepath.Join(r.dir, name)

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("cannot write report %s: %w", path, err)
	}
	r.logger.Info("Report saved", "path", path)
	return path, nil
}

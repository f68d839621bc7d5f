package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"github.com/John-Robertt/toplist/internal/config"
	"github.com/John-Robertt/toplist/internal/domain"
	"github.com/John-Robertt/toplist/internal/infra/fsx"
)

const reportFileName = "report.json"

// emitReport 遵守 stdout 契约：
// - stdout 是终端：打印摘要表（失败明细走 stderr）
// - 否则 stdout 必须且仅输出一个 RunReport JSON，摘要走 stderr
func emitReport(stdout, stderr io.Writer, rr domain.RunReport) {
	if isTTY(stdout) {
		renderScopes(stdout, rr)
		fmt.Fprintln(stdout, summaryLine(rr))
		for _, it := range rr.Scopes {
			if it.Status != domain.StatusFailed {
				continue
			}
			key := it.Scope
			if key == "" {
				key = "<run>"
			}
			fmt.Fprintf(stderr, "%s %s: %s\n", key, it.ErrorCode, it.ErrorMsg)
		}
		return
	}

	_ = json.NewEncoder(stdout).Encode(rr)
	fmt.Fprintln(stderr, summaryLine(rr))
}

func summaryLine(rr domain.RunReport) string {
	s := rr.Summary
	return fmt.Sprintf("完成：ok=%d empty=%d skipped=%d failed=%d records=%d", s.OK, s.Empty, s.Skipped, s.Failed, s.Records)
}

func renderScopes(w io.Writer, rr domain.RunReport) {
	if len(rr.Scopes) == 0 {
		return
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Scope", "Status", "Records", "Missing", "Detail"})
	for _, it := range rr.Scopes {
		detail := filepath.Base(it.File)
		switch {
		case it.ErrorCode != "":
			detail = it.ErrorCode + ": " + truncate(it.ErrorMsg, 70)
		case it.File == "":
			detail = ""
		case it.Replaced:
			detail += " (replaced)"
		}
		t.AppendRow(table.Row{it.Scope, statusLabel(it.Status), it.Records, it.Missing, detail})
	}
	t.Render()
}

func statusLabel(status string) string {
	switch status {
	case domain.StatusOK:
		return "OK"
	case domain.StatusEmpty:
		return "EMPTY"
	case domain.StatusSkipped:
		return "SKIP"
	case domain.StatusFailed:
		return "FAIL"
	default:
		return strings.ToUpper(status)
	}
}

func reportForConfigError(cli config.CLIArgs, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		Site:       strings.ToLower(strings.TrimSpace(cli.Site)),
		Out:        cli.Out,
		Format:     cli.Format,
		DryRun:     cli.DryRunSet && cli.DryRun,
		StartedAt:  now,
		FinishedAt: now,
		Scopes: []domain.ScopeResult{{
			Status:    domain.StatusFailed,
			ErrorCode: config.Code(err),
			ErrorMsg:  err.Error(),
		}},
	}
	rr.Finalize()
	return rr
}

func writeReportFile(out string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomicReplace(out, reportFileName, b)
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func pickProgressWriter(stdout, stderr io.Writer) (io.Writer, bool) {
	// 进度输出只在交互终端启用；默认走 stderr（不污染 stdout JSON）。
	if isTTY(stderr) {
		return stderr, true
	}
	// 仅重定向了 stderr 时 stdout 仍是终端：退化输出到 stdout。
	if isTTY(stdout) {
		return stdout, true
	}
	return nil, false
}

func emitLocations(w io.Writer, eff config.EffectiveConfig) {
	if w == nil {
		return
	}
	if !eff.DryRun {
		fmt.Fprintf(w, "report: %s\n", filepath.Join(eff.Out, reportFileName))
	}
	fmt.Fprintf(w, "out: %s\n", eff.Out)
}

// truncate 按 rune 截断，避免切坏中文。
func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if n <= 0 || len(r) <= n {
		return string(r)
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

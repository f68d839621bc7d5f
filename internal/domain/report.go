package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusOK      = "ok"
	StatusEmpty   = "empty"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

const (
	ErrCodeFetchFailed   = "fetch_failed"
	ErrCodeParseFailed   = "parse_failed"
	ErrCodeIOFailed      = "io_failed"
	ErrCodeFutureYear    = "future_year"
	ErrCodeConfigInvalid = "config_invalid"
	ErrCodeUnknownSite   = "unknown_site"
	ErrCodeCanceled      = "canceled"
)

// RunReport 是对外稳定输出（stdout JSON / <out>/report.json）的结构。
type RunReport struct {
	Site   string `json:"site"`
	Out    string `json:"out"`
	Format string `json:"format"`
	DryRun bool   `json:"dry_run"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ReportSummary `json:"summary"`
	Scopes  []ScopeResult `json:"scopes"`
}

type ReportSummary struct {
	OK      int `json:"ok"`
	Empty   int `json:"empty"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
	Records int `json:"records"`
}

// ScopeResult 是单个 Scope 的处理结果。失败只影响本条，不中断其他 Scope。
type ScopeResult struct {
	Scope   string `json:"scope"`
	Year    int    `json:"year,omitempty"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	Records int    `json:"records"`
	Missing int    `json:"missing_fields"`
	File    string `json:"file"`

	// Replaced 表示写入前同名文件已存在（dry-run 下表示“将会替换”）。
	Replaced bool `json:"replaced"`

	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC
// 2) scopes 稳定排序：有年份的按年份升序；无年份（合成/current）排在最后
// 3) summary 由 scopes 计算得出
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Scopes, func(i, j int) bool {
		a, b := r.Scopes[i].Year, r.Scopes[j].Year
		if a == 0 || b == 0 {
			return a != 0 && b == 0
		}
		return a < b
	})

	var s ReportSummary
	for _, it := range r.Scopes {
		switch it.Status {
		case StatusOK:
			s.OK++
		case StatusEmpty:
			s.Empty++
		case StatusSkipped:
			s.Skipped++
		case StatusFailed:
			s.Failed++
		}
		s.Records += it.Records
	}
	r.Summary = s
}

// MarshalJSON 保证 scopes 为空时输出 [] 而不是 null。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	a := Alias(r)
	if a.Scopes == nil {
		a.Scopes = []ScopeResult{}
	}
	return json.Marshal(a)
}

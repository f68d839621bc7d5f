package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/John-Robertt/toplist/internal/config"
	"github.com/John-Robertt/toplist/internal/domain"
)

func TestProgressUI_Lines(t *testing.T) {
	var buf bytes.Buffer
	ui := newProgressUI(&buf)
	ui.keepaliveThreshold = time.Hour
	defer ui.Close()

	eff := config.EffectiveConfig{Out: "/tmp/DataSets", DryRun: true, ProxyURL: "http://user:pw@127.0.0.1:7890", Timeout: 30 * time.Second}
	ui.OnStart(eff, "feature", 3)

	p := domain.ScopePlan{Scope: domain.Scope{Year: 2019}}
	ui.OnScopeStart(1, 3, p)
	ui.OnScopeDone(1, 3, domain.ScopeResult{Scope: "2019", Status: domain.StatusOK, Records: 50, Missing: 2}, 1500*time.Millisecond)
	ui.OnScopeDone(2, 3, domain.ScopeResult{Scope: "2020", Status: domain.StatusFailed, ErrorCode: domain.ErrCodeFetchFailed, ErrorMsg: "feature 返回 HTTP 503。"}, time.Second)
	ui.OnScopeDone(3, 3, domain.ScopeResult{Scope: "2031", Status: domain.StatusSkipped, ErrorMsg: "No movies recorded for 2031 yet!"}, 0)

	got := buf.String()
	for _, want := range []string{
		"mode: dry-run",
		"proxy: on (http://127.0.0.1:7890, auth=on)",
		"[1/3] 2019 OK records=50 missing=2 (1.5s)",
		"[2/3] 2020 FAIL fetch_failed: feature 返回 HTTP 503。 (1.0s)",
		"[3/3] 2031 SKIP No movies recorded for 2031 yet!",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("输出缺少 %q：\n%s", want, got)
		}
	}
	if strings.Contains(got, "pw") {
		t.Fatalf("不应回显代理密码：\n%s", got)
	}
	if ui.tickerStarted {
		t.Fatalf("最后一个 scope 完成后应停止 ticker")
	}
}

func TestTruncate_RuneSafe(t *testing.T) {
	if got := truncate("抓取失败：连接超时", 6); got != "抓取失..." {
		t.Fatalf("truncate=%q", got)
	}
	if got := truncate(" ok ", 10); got != "ok" {
		t.Fatalf("truncate=%q", got)
	}
}

func TestFormatElapsed(t *testing.T) {
	if got := formatElapsed(3723 * time.Second); got != "01:02:03" {
		t.Fatalf("formatElapsed=%q", got)
	}
}

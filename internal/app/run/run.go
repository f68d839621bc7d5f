package run

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/John-Robertt/toplist/internal/app/planner"
	"github.com/John-Robertt/toplist/internal/config"
	"github.com/John-Robertt/toplist/internal/domain"
	"github.com/John-Robertt/toplist/internal/extract"
	"github.com/John-Robertt/toplist/internal/infra/cache"
	"github.com/John-Robertt/toplist/internal/infra/fsx"
	"github.com/John-Robertt/toplist/internal/infra/httpx"
	"github.com/John-Robertt/toplist/internal/output"
	"github.com/John-Robertt/toplist/internal/site"
)

// nowFunc 决定“当前年份”；测试中替换。
var nowFunc = time.Now

// Execute 执行一次 run，并返回对外稳定的 RunReport。
// 单个 scope 的失败只记录在它自己的结果里，不影响其他 scope。
func Execute(ctx context.Context, eff config.EffectiveConfig, reg site.Registry) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, reg, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 输出进度（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, reg site.Registry, obs Observer) domain.RunReport {
	log := zerolog.Ctx(ctx)

	rr := domain.RunReport{
		Site:      eff.Site,
		Out:       eff.Out,
		Format:    eff.Format,
		DryRun:    eff.DryRun,
		StartedAt: time.Now().UTC(),
		Scopes:    make([]domain.ScopeResult, 0, 16),
	}
	fail := func(code, msg string) domain.RunReport {
		rr.Scopes = append(rr.Scopes, syntheticFailed(code, msg))
		rr.FinishedAt = time.Now().UTC()
		rr.Finalize()
		return rr
	}

	if eff.RulesPath != "" {
		tables, err := extract.LoadTablesFile(eff.RulesPath)
		if err != nil {
			return fail(domain.ErrCodeConfigInvalid, fmt.Sprintf("读取规则文件失败（%s）：%v", eff.RulesPath, err))
		}
		reg, err = reg.WithTables(tables)
		if err != nil {
			return fail(domain.ErrCodeConfigInvalid, fmt.Sprintf("规则文件无效（%s）：%v", eff.RulesPath, err))
		}
	}

	s, ok := reg.Get(eff.Site)
	if !ok {
		return fail(domain.ErrCodeUnknownSite, fmt.Sprintf("未知站点 %q；可用站点：%s", eff.Site, strings.Join(reg.Names(), ", ")))
	}
	rr.Site = s.Name()

	plans, err := planner.Plan(eff, s, nowFunc())
	if err != nil {
		return fail(domain.ErrCodeConfigInvalid, err.Error())
	}
	if len(plans) > 0 {
		rr.Format = plans[0].Format
	}

	var layout output.TextLayout
	if l, ok := site.Underlying(s).(output.TextLayout); ok {
		layout = l
	}
	enc, err := output.New(rr.Format, layout)
	if err != nil {
		return fail(domain.ErrCodeConfigInvalid, err.Error())
	}

	cacheOn := eff.Cache && !eff.DryRun && !eff.Offline
	store := cache.New(eff.Out, !cacheOn)

	var fetcher site.Fetcher
	if eff.Offline {
		fetcher = newFetcher(true, store, nil)
	} else {
		client, err := httpx.NewClient(httpx.Options{ProxyURL: eff.ProxyURL, Timeout: eff.Timeout, Headers: eff.Headers})
		if err != nil {
			return fail(domain.ErrCodeConfigInvalid, fmt.Sprintf("proxy.url 无效：%v", err))
		}
		fetcher = newFetcher(false, store, site.HTTPFetcher{Client: client})
	}

	if obs != nil {
		obs.OnStart(eff, s.Name(), len(plans))
	}
	log.Info().Str("site", s.Name()).Int("scopes", len(plans)).Bool("dry_run", eff.DryRun).Bool("offline", eff.Offline).Msg("run 开始")

	for i, p := range plans {
		idx := i + 1
		if obs != nil {
			obs.OnScopeStart(idx, len(plans), p)
		}
		started := time.Now()

		var res domain.ScopeResult
		if ctx.Err() != nil {
			res = skippedResult(p, domain.ErrCodeCanceled, "运行已取消，该 scope 未执行")
		} else {
			res = execOne(ctx, eff, s, p, fetcher, store, cacheOn, enc)
		}
		dur := time.Since(started)

		ev := log.Info()
		if res.Status == domain.StatusFailed {
			ev = log.Warn().Str("error_code", res.ErrorCode).Str("error_msg", res.ErrorMsg)
		}
		ev.Str("scope", res.Scope).Str("status", res.Status).Int("records", res.Records).Dur("took", dur).Msg("scope 完成")

		rr.Scopes = append(rr.Scopes, res)
		if obs != nil {
			obs.OnScopeDone(idx, len(plans), res, dur)
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

func baseResult(p domain.ScopePlan) domain.ScopeResult {
	return domain.ScopeResult{
		Scope:    p.Scope.Label(),
		Year:     p.Scope.Year,
		URL:      p.URL,
		File:     p.File,
		Replaced: p.Exists,
	}
}

func skippedResult(p domain.ScopePlan, code, msg string) domain.ScopeResult {
	res := baseResult(p)
	res.Status = domain.StatusSkipped
	res.Replaced = false
	res.ErrorCode = code
	res.ErrorMsg = msg
	return res
}

func syntheticFailed(code, msg string) domain.ScopeResult {
	return domain.ScopeResult{
		Status:    domain.StatusFailed,
		ErrorCode: code,
		ErrorMsg:  msg,
	}
}

func execOne(ctx context.Context, eff config.EffectiveConfig, s site.Site, p domain.ScopePlan, f site.Fetcher, store cache.Store, cacheOn bool, enc output.Encoder) domain.ScopeResult {
	if p.Skipped() {
		return skippedResult(p, p.SkipCode, p.SkipReason)
	}
	res := baseResult(p)

	ds, html, err := site.FetchParse(ctx, s, p.Scope, f)
	if err != nil {
		fillSiteError(&res, s.Name(), err)
		return res
	}

	// 页面缓存只是副产物：写失败不影响本 scope 的结果。
	if cacheOn {
		if err := store.WritePage(s.Name(), p.Scope, html); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("scope", res.Scope).Msg("写入页面缓存失败")
		}
	}

	res.Records = len(ds.Records)
	for _, r := range ds.Records {
		res.Missing += r.Missing()
	}
	res.Status = domain.StatusOK
	if ds.Empty() {
		res.Status = domain.StatusEmpty
	}

	b, err := enc.Encode(ds)
	if err != nil {
		return ioFailed(res, fmt.Sprintf("编码 %s 失败：%v", p.Format, err))
	}
	if eff.DryRun {
		return res
	}
	if err := fsx.WriteFileAtomicReplace(filepath.Dir(p.File), filepath.Base(p.File), b); err != nil {
		if fsx.IsPathTypeConflict(err) {
			return ioFailed(res, fmt.Sprintf("目标路径不是普通文件，请手动处理：%v", err))
		}
		return ioFailed(res, fmt.Sprintf("写入失败：%v", err))
	}
	return res
}

func ioFailed(res domain.ScopeResult, msg string) domain.ScopeResult {
	res.Status = domain.StatusFailed
	res.Records = 0
	res.Missing = 0
	res.Replaced = false
	res.ErrorCode = domain.ErrCodeIOFailed
	res.ErrorMsg = msg
	return res
}

func fillSiteError(res *domain.ScopeResult, siteName string, err error) {
	res.Status = domain.StatusFailed
	res.Replaced = false

	var se *site.Error
	if errors.As(err, &se) {
		switch se.Stage {
		case site.StageParse:
			res.ErrorCode = domain.ErrCodeParseFailed
			res.ErrorMsg = humanizeParseError(siteName, se.Err)
		default:
			res.ErrorCode = domain.ErrCodeFetchFailed
			res.ErrorMsg = humanizeFetchError(siteName, se.Err)
		}
		return
	}

	res.ErrorCode = domain.ErrCodeFetchFailed
	res.ErrorMsg = err.Error()
}

func humanizeFetchError(siteName string, err error) string {
	if err == nil {
		return siteName + " 抓取失败"
	}

	if errors.Is(err, errCacheMiss) {
		return fmt.Sprintf("离线模式下没有该页面的缓存（%v）。先在联网时以 cache: true 运行一次。", err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Sprintf("%s 抓取被取消。", siteName)
	}

	var be *site.BlockedError
	if errors.As(err, &be) {
		return fmt.Sprintf("%s 被站点防护拦截（%s）。当前不支持绕过；建议稍后重试或配置 proxy.url。", siteName, be.Reason)
	}

	var hs *site.HTTPStatusError
	if errors.As(err, &hs) {
		loc := strings.TrimSpace(hs.Location)
		switch hs.StatusCode {
		case 403, 429:
			return fmt.Sprintf("%s 返回 HTTP %d（可能触发反爬/限流）。建议稍后重试或配置 proxy.url。", siteName, hs.StatusCode)
		case 404:
			return fmt.Sprintf("%s 返回 HTTP 404（榜单地址可能已变化）。", siteName)
		default:
			if loc != "" {
				return fmt.Sprintf("%s 返回 HTTP %d（重定向）：%s", siteName, hs.StatusCode, loc)
			}
			return fmt.Sprintf("%s 返回 HTTP %d。", siteName, hs.StatusCode)
		}
	}

	low := strings.ToLower(err.Error())
	if errors.Is(err, context.DeadlineExceeded) || strings.Contains(low, "timeout") {
		return fmt.Sprintf("%s 抓取超时。建议检查网络/代理，或调大 timeout。", siteName)
	}
	if strings.Contains(low, "tls") || strings.Contains(low, "handshake") || strings.Contains(low, "ssl") {
		return fmt.Sprintf("%s 连接失败（TLS/SSL）。建议配置 proxy.url 或稍后重试。", siteName)
	}
	return fmt.Sprintf("%s 抓取失败：%v", siteName, err)
}

func humanizeParseError(siteName string, err error) string {
	if err == nil {
		return siteName + " 解析失败"
	}
	return fmt.Sprintf("%s 解析失败（返回了非榜单页面或空内容）：%v", siteName, err)
}

package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/John-Robertt/toplist/internal/config"
	"github.com/John-Robertt/toplist/internal/domain"
	"github.com/John-Robertt/toplist/internal/output"
	"github.com/John-Robertt/toplist/internal/site"
)

// Plan 为一次 run 生成有序的 scope 计划。
//
// 规则：
// - 有年份站点：from..to 升序，每年一个 scope；晚于 now 所在年份的年份规划为 skipped
// - from/to 未指定时取站点默认区间（YearRanger），否则为当年
// - 只指定一端时，另一端向默认区间扩展，保证 from <= to
// - 无年份站点：只有 domain.Current 一个 scope，忽略 from/to
func Plan(eff config.EffectiveConfig, s site.Site, now time.Time) ([]domain.ScopePlan, error) {
	if s == nil {
		return nil, fmt.Errorf("site 不能为空")
	}

	format := eff.Format
	if format == "" {
		format = s.DefaultFormat()
	}
	enc, err := output.New(format, nil)
	if err != nil {
		return nil, err
	}

	if !s.Dated() {
		p, err := planScope(eff.Out, s, domain.Current, format, enc.Ext())
		if err != nil {
			return nil, err
		}
		return []domain.ScopePlan{p}, nil
	}

	from, to, err := Years(eff, s, now)
	if err != nil {
		return nil, err
	}

	plans := make([]domain.ScopePlan, 0, to-from+1)
	for y := from; y <= to; y++ {
		p, err := planScope(eff.Out, s, domain.Scope{Year: y}, format, enc.Ext())
		if err != nil {
			return nil, err
		}
		if y > now.Year() {
			p.SkipCode = domain.ErrCodeFutureYear
			p.SkipReason = fmt.Sprintf("No movies recorded for %d yet!", y)
		}
		plans = append(plans, p)
	}
	return plans, nil
}

// Years 返回有年份站点实际使用的闭区间。
func Years(eff config.EffectiveConfig, s site.Site, now time.Time) (int, int, error) {
	defFrom, defTo := now.Year(), now.Year()
	if yr, ok := site.Underlying(s).(site.YearRanger); ok {
		defFrom, defTo = yr.DefaultYears(now)
	}

	from, to := eff.From, eff.To
	switch {
	case from == 0 && to == 0:
		from, to = defFrom, defTo
	case to == 0:
		to = max(defTo, from)
	case from == 0:
		from = min(defFrom, to)
	}
	if from > to {
		return 0, 0, &config.Error{Code: config.ErrCodeInvalid, Err: fmt.Errorf("from(%d) 不能大于 to(%d)", from, to)}
	}
	return from, to, nil
}

func planScope(out string, s site.Site, scope domain.Scope, format, ext string) (domain.ScopePlan, error) {
	base := s.FileBase(scope)
	if base == "" || base != filepath.Base(base) {
		return domain.ScopePlan{}, fmt.Errorf("site %q 的文件名非法：%q", s.Name(), base)
	}
	file := filepath.Join(out, base+ext)

	exists := false
	if fi, err := os.Stat(file); err == nil && fi.Mode().IsRegular() {
		exists = true
	}
	return domain.ScopePlan{
		Scope:  scope,
		URL:    s.URL(scope),
		Format: format,
		File:   file,
		Exists: exists,
	}, nil
}

package site

import (
	"fmt"
	"sort"
	"strings"

	"github.com/John-Robertt/toplist/internal/domain"
	"github.com/John-Robertt/toplist/internal/extract"
)

// Registry 是站点的只读注册表（按 name 索引）。
type Registry struct {
	byName map[string]Site
}

func NewRegistry(sites ...Site) (Registry, error) {
	byName := make(map[string]Site, len(sites))
	for _, s := range sites {
		if s == nil {
			return Registry{}, fmt.Errorf("site 不能为空")
		}
		name := normName(s.Name())
		if name == "" {
			return Registry{}, fmt.Errorf("site.Name 不能为空")
		}
		if _, ok := byName[name]; ok {
			return Registry{}, fmt.Errorf("重复的 site：%q", name)
		}
		byName[name] = s
	}
	return Registry{byName: byName}, nil
}

func (r Registry) Get(name string) (Site, bool) {
	if r.byName == nil {
		return nil, false
	}
	s, ok := r.byName[normName(name)]
	return s, ok
}

// Names 按字典序返回已注册的站点名。
func (r Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for n := range r.byName {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// WithTables 返回一个新注册表：tables 中列出的站点使用覆盖后的规则表。
// 覆盖未注册的站点视为错误（多半是规则文件里的拼写错误）。
func (r Registry) WithTables(tables map[string]extract.Table) (Registry, error) {
	out := make(map[string]Site, len(r.byName))
	for n, s := range r.byName {
		out[n] = s
	}
	for name, t := range tables {
		n := normName(name)
		s, ok := out[n]
		if !ok {
			return Registry{}, fmt.Errorf("规则文件引用了未注册的 site：%q", name)
		}
		if err := t.Validate(); err != nil {
			return Registry{}, fmt.Errorf("site %q 的规则表无效：%w", name, err)
		}
		out[n] = overridden{Site: s, table: t}
	}
	return Registry{byName: out}, nil
}

func normName(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// overridden 用外部规则表替换内置规则表。
// 内置规则里的常量字段（例如 year）按 scope 重新套用到覆盖表上。
type overridden struct {
	Site
	table extract.Table
}

func (o overridden) Table(scope domain.Scope) extract.Table {
	t := o.table
	for _, f := range o.Site.Table(scope).Fields {
		if len(f.Candidates) == 1 && f.Candidates[0].Literal != "" {
			t = t.WithLiteral(f.Name, f.Candidates[0].Literal)
		}
	}
	return t
}

func (o overridden) Unwrap() Site { return o.Site }

// Underlying 剥掉规则覆盖等包装，返回原始站点；用于查询 YearRanger 等可选接口。
func Underlying(s Site) Site {
	for {
		u, ok := s.(interface{ Unwrap() Site })
		if !ok {
			return s
		}
		s = u.Unwrap()
	}
}

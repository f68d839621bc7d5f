package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
)

// Normalizer 决定命中文本在 trim 之后的额外清洗方式。
type Normalizer string

const (
	NormalizePlain  Normalizer = "plain"
	NormalizeTitle  Normalizer = "title"
	NormalizeRating Normalizer = "rating"
)

func (n Normalizer) valid() bool {
	switch n {
	case "", NormalizePlain, NormalizeTitle, NormalizeRating:
		return true
	default:
		return false
	}
}

// Strategy 是一个候选抽取策略。
//
// 语义（按顺序）：
// - Literal 非空：直接产出该常量（用于 year 这类来自 Scope 的字段）
// - Find：在片段的后代中查找；Children 非空时，取 Find 的首个命中节点，再在其直接子节点中按 Children 过滤
// - Index：在命中集合中取第 Index 个（0 起）
// - Attr 非空：读属性而不是文本
type Strategy struct {
	Find     string `yaml:"find,omitempty"`
	Children string `yaml:"children,omitempty"`
	Index    int    `yaml:"index,omitempty"`
	Attr     string `yaml:"attr,omitempty"`
	Literal  string `yaml:"literal,omitempty"`
}

// FieldRule 把一个输出字段绑定到一组有序的候选策略。
type FieldRule struct {
	Name       string     `yaml:"name"`
	Normalize  Normalizer `yaml:"normalize,omitempty"`
	Candidates []Strategy `yaml:"candidates"`
}

// Table 是一个站点布局的完整描述：行选择器 + 字段规则。
// 布局漂移时只改这张表，不改代码。
type Table struct {
	Rows   string      `yaml:"rows"`
	Fields []FieldRule `yaml:"fields"`
}

// FieldNames 返回字段声明顺序。
func (t Table) FieldNames() []string {
	out := make([]string, 0, len(t.Fields))
	for _, f := range t.Fields {
		out = append(out, f.Name)
	}
	return out
}

// WithLiteral 返回一份副本：字段 name 的候选被替换为单个常量策略。
// 字段不存在时原样返回副本。
func (t Table) WithLiteral(name, value string) Table {
	out := t.clone()
	for i := range out.Fields {
		if out.Fields[i].Name == name {
			out.Fields[i].Candidates = []Strategy{{Literal: value}}
		}
	}
	return out
}

func (t Table) clone() Table {
	out := Table{Rows: t.Rows, Fields: make([]FieldRule, len(t.Fields))}
	for i, f := range t.Fields {
		f.Candidates = append([]Strategy(nil), f.Candidates...)
		out.Fields[i] = f
	}
	return out
}

// Validate 校验规则表；选择器必须能被 cascadia 编译。
func (t Table) Validate() error {
	var errs []error
	if strings.TrimSpace(t.Rows) == "" {
		errs = append(errs, errors.New("rows 不能为空"))
	} else if _, err := cascadia.Compile(t.Rows); err != nil {
		errs = append(errs, fmt.Errorf("rows 选择器无效 %q：%w", t.Rows, err))
	}
	if len(t.Fields) == 0 {
		errs = append(errs, errors.New("fields 不能为空"))
	}

	seen := make(map[string]struct{}, len(t.Fields))
	for i, f := range t.Fields {
		name := strings.TrimSpace(f.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("fields[%d].name 不能为空", i))
			continue
		}
		if _, ok := seen[name]; ok {
			errs = append(errs, fmt.Errorf("重复的字段：%q", name))
		}
		seen[name] = struct{}{}
		if !f.Normalize.valid() {
			errs = append(errs, fmt.Errorf("字段 %q 的 normalize 未知：%q", name, f.Normalize))
		}
		if len(f.Candidates) == 0 {
			errs = append(errs, fmt.Errorf("字段 %q 没有任何候选策略", name))
		}
		for j, s := range f.Candidates {
			if err := s.validate(); err != nil {
				errs = append(errs, fmt.Errorf("字段 %q 候选[%d]：%w", name, j, err))
			}
		}
	}
	return errors.Join(errs...)
}

func (s Strategy) validate() error {
	if s.Literal != "" {
		return nil
	}
	if strings.TrimSpace(s.Find) == "" {
		return errors.New("find 与 literal 至少需要一个")
	}
	if _, err := cascadia.Compile(s.Find); err != nil {
		return fmt.Errorf("find 选择器无效 %q：%w", s.Find, err)
	}
	if s.Children != "" {
		if _, err := cascadia.Compile(s.Children); err != nil {
			return fmt.Errorf("children 选择器无效 %q：%w", s.Children, err)
		}
	}
	if s.Index < 0 {
		return fmt.Errorf("index 不能为负：%d", s.Index)
	}
	return nil
}

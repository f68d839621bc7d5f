package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// ErrCodeNotFound 表示 --config 显式指定的文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

const (
	// FileName 是默认在 cwd 下查找的配置文件名（可选）。
	FileName = "toplist.yaml"

	DefaultSite    = "feature"
	DefaultOut     = "DataSets"
	DefaultTimeout = 30 * time.Second
)

// Formats 是支持的输出格式。
var Formats = []string{"json", "text", "xlsx"}

// CLIArgs 是 CLI 暴露的参数，以及“是否显式指定”。
// 例如 --dry-run=false 必须能覆盖配置文件中的 dry_run: true。
type CLIArgs struct {
	ConfigPath string

	Site    string
	SiteSet bool

	From    int
	FromSet bool
	To      int
	ToSet   bool

	Out    string
	OutSet bool

	Format    string
	FormatSet bool

	DryRun    bool
	DryRunSet bool

	Offline    bool
	OfflineSet bool

	Rules    string
	RulesSet bool
}

// FileConfig 对应 toplist.yaml。未知字段直接报错。
type FileConfig struct {
	Site    string            `yaml:"site"`
	From    int               `yaml:"from"`
	To      int               `yaml:"to"`
	Out     string            `yaml:"out"`
	Format  string            `yaml:"format"`
	DryRun  *bool             `yaml:"dry_run"`
	Timeout string            `yaml:"timeout"`
	Proxy   *ProxyConfig      `yaml:"proxy"`
	Headers map[string]string `yaml:"headers"`
	Cache   *bool             `yaml:"cache"`
	Offline *bool             `yaml:"offline"`
	Rules   string            `yaml:"rules"`
}

type ProxyConfig struct {
	URL string `yaml:"url"`
}

// EffectiveConfig 是合并后的最终配置。
//
// From/To/Format 为零值表示“由 site 决定默认值”（planner 负责），其余字段已填好默认值。
type EffectiveConfig struct {
	// ConfigFile 是实际读取到的配置文件；未读取时为空。
	ConfigFile string

	Site   string
	From   int
	To     int
	Out    string
	Format string

	DryRun  bool
	Cache   bool
	Offline bool

	Timeout  time.Duration
	ProxyURL string
	Headers  map[string]string

	// RulesPath 为规则覆盖文件的绝对路径；为空表示使用内置规则。
	RulesPath string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Path == "" {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEffective 发现并读取配置文件，再与 CLI 参数合并。
//
// 发现规则：
// 1) --config 给出路径：文件必须存在
// 2) 否则尝试 <cwd>/toplist.yaml（可选，不存在不报错）
//
// 覆盖优先级：CLI > 配置文件 > 默认值。
// 相对路径：CLI 给出的以 cwd 为基准；配置文件给出的以配置文件所在目录为基准。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	required := false
	if strings.TrimSpace(cli.ConfigPath) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.ConfigPath)
		required = true
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists {
		if required {
			return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
		}
		cfgPath = ""
	}

	eff, err := merge(cwdAbs, cli, fc, cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	return eff, nil
}

func merge(cwd string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	cfgDir := cwd
	if cfgPath != "" {
		cfgDir = filepath.Dir(cfgPath)
	}

	eff := EffectiveConfig{
		ConfigFile: cfgPath,
		Site:       DefaultSite,
		Out:        filepath.Join(cwd, DefaultOut),
		Timeout:    DefaultTimeout,
	}

	switch {
	case cli.SiteSet:
		eff.Site = cli.Site
	case strings.TrimSpace(fc.Site) != "":
		eff.Site = fc.Site
	}
	eff.Site = strings.ToLower(strings.TrimSpace(eff.Site))
	if err := validateSite(eff.Site); err != nil {
		return EffectiveConfig{}, err
	}

	eff.From, eff.To = fc.From, fc.To
	if cli.FromSet {
		eff.From = cli.From
	}
	if cli.ToSet {
		eff.To = cli.To
	}
	if err := validateYears(eff.From, eff.To); err != nil {
		return EffectiveConfig{}, err
	}

	switch {
	case cli.OutSet && strings.TrimSpace(cli.Out) != "":
		eff.Out = absCleanFrom(cwd, cli.Out)
	case strings.TrimSpace(fc.Out) != "":
		eff.Out = absCleanFrom(cfgDir, fc.Out)
	}

	switch {
	case cli.FormatSet:
		eff.Format = cli.Format
	default:
		eff.Format = fc.Format
	}
	eff.Format = strings.ToLower(strings.TrimSpace(eff.Format))
	if err := validateFormat(eff.Format); err != nil {
		return EffectiveConfig{}, err
	}

	eff.DryRun = pick(cli.DryRunSet, cli.DryRun, fc.DryRun)
	eff.Offline = pick(cli.OfflineSet, cli.Offline, fc.Offline)
	if fc.Cache != nil {
		eff.Cache = *fc.Cache
	}

	if s := strings.TrimSpace(fc.Timeout); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return EffectiveConfig{}, fmt.Errorf("timeout 无效：%w", err)
		}
		if d <= 0 {
			return EffectiveConfig{}, fmt.Errorf("timeout 必须为正：%q", s)
		}
		eff.Timeout = d
	}

	if fc.Proxy != nil {
		eff.ProxyURL = strings.TrimSpace(fc.Proxy.URL)
	}
	if eff.ProxyURL != "" {
		u, err := url.Parse(eff.ProxyURL)
		if err != nil {
			return EffectiveConfig{}, fmt.Errorf("proxy.url 无效：%w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return EffectiveConfig{}, fmt.Errorf("proxy.url 必须包含 scheme 与 host：%q", eff.ProxyURL)
		}
	}

	if len(fc.Headers) > 0 {
		eff.Headers = make(map[string]string, len(fc.Headers))
		for k, v := range fc.Headers {
			if strings.TrimSpace(k) == "" {
				return EffectiveConfig{}, errors.New("headers 的键不能为空")
			}
			eff.Headers[k] = v
		}
	}

	switch {
	case cli.RulesSet && strings.TrimSpace(cli.Rules) != "":
		eff.RulesPath = absCleanFrom(cwd, cli.Rules)
	case strings.TrimSpace(fc.Rules) != "":
		eff.RulesPath = absCleanFrom(cfgDir, fc.Rules)
	}

	return eff, nil
}

func pick(set, cliValue bool, fileValue *bool) bool {
	if set {
		return cliValue
	}
	if fileValue != nil {
		return *fileValue
	}
	return false
}

var siteNameRE = regexp.MustCompile(`^[a-z0-9_]+$`)

// validateSite 只校验形状；是否已注册由 run 对照注册表判断。
func validateSite(s string) error {
	if s == "" {
		return errors.New("site 不能为空")
	}
	if !siteNameRE.MatchString(s) {
		return fmt.Errorf("site 名称非法：%q", s)
	}
	return nil
}

func validateYears(from, to int) error {
	for _, y := range []int{from, to} {
		if y != 0 && (y < 1000 || y > 9999) {
			return fmt.Errorf("年份必须是四位数字，实际是 %d", y)
		}
	}
	if from != 0 && to != 0 && from > to {
		return fmt.Errorf("from(%d) 不能大于 to(%d)", from, to)
	}
	return nil
}

func validateFormat(f string) error {
	if f == "" {
		return nil
	}
	for _, ok := range Formats {
		if f == ok {
			return nil
		}
	}
	return fmt.Errorf("format 只能是 %s，实际是 %q", strings.Join(Formats, "/"), f)
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// readFileConfig 读取并解析 YAML 配置文件。exists=false 表示文件不存在（不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if errors.Is(err, io.EOF) {
			return FileConfig{}, true, nil
		}
		return FileConfig{}, true, err
	}
	return fc, true, nil
}

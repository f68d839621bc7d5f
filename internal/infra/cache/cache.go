package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/John-Robertt/toplist/internal/domain"
	"github.com/John-Robertt/toplist/internal/infra/fsx"
)

// Store 把抓取到的原始页面保存在 <root>/cache/<site>/<scope>.html，供离线重新解析。
//
// ReadOnly=true 时只读（dry-run / offline）。
type Store struct {
	Root     string
	ReadOnly bool
}

var ErrReadOnly = errors.New("cache: read-only")

func New(root string, readOnly bool) Store {
	return Store{
		Root:     filepath.Clean(strings.TrimSpace(root)),
		ReadOnly: readOnly,
	}
}

// PagePath 返回某个 site/scope 的页面缓存路径。
func (s Store) PagePath(site string, scope domain.Scope) (string, error) {
	name, err := cleanSite(site)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.Root, "cache", name, scope.Label()+".html"), nil
}

// ReadPage 读取缓存页面；不存在时 ok=false 且 err=nil。
func (s Store) ReadPage(site string, scope domain.Scope) ([]byte, bool, error) {
	path, err := s.PagePath(site, scope)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s Store) WritePage(site string, scope domain.Scope, html []byte) error {
	if s.ReadOnly {
		return ErrReadOnly
	}
	path, err := s.PagePath(site, scope)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomicReplace(filepath.Dir(path), filepath.Base(path), html)
}

var siteNameRE = regexp.MustCompile(`^[a-z0-9_]+$`)

func cleanSite(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "", fmt.Errorf("site 不能为空")
	}
	// 只防路径穿越；site 名本身来自注册表。
	if !siteNameRE.MatchString(name) {
		return "", fmt.Errorf("非法 site：%q", name)
	}
	return name, nil
}

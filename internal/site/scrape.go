package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/toplist/internal/domain"
	"github.com/John-Robertt/toplist/internal/extract"
)

// maxBodyBytes 限制单页大小；榜单页通常在 1–3 MiB。
const maxBodyBytes = 16 << 20

// Fetcher 负责取回某个 site/scope 的页面 HTML。
// 不做重试；缓存/离线由调用方组合实现。
type Fetcher interface {
	Fetch(ctx context.Context, siteName string, scope domain.Scope, pageURL string) ([]byte, error)
}

// FetcherFunc 让普通函数满足 Fetcher。
type FetcherFunc func(ctx context.Context, siteName string, scope domain.Scope, pageURL string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, siteName string, scope domain.Scope, pageURL string) ([]byte, error) {
	return f(ctx, siteName, scope, pageURL)
}

// HTTPFetcher 用给定的 client 发起单次 GET。
type HTTPFetcher struct {
	Client *http.Client
}

func (f HTTPFetcher) Fetch(ctx context.Context, _ string, _ domain.Scope, pageURL string) ([]byte, error) {
	if f.Client == nil {
		return nil, errors.New("http client 不能为空")
	}
	return fetchURL(ctx, f.Client, pageURL)
}

func fetchURL(ctx context.Context, c *http.Client, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxBodyBytes {
		return nil, fmt.Errorf("响应体超过 %d 字节", maxBodyBytes)
	}

	// IMDb 前置的 AWS WAF 在挑战时返回 202 + 空壳页面。
	if action := strings.TrimSpace(resp.Header.Get("X-Amzn-Waf-Action")); action != "" {
		return nil, &BlockedError{URL: u, Reason: "waf-" + strings.ToLower(action)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPStatusError{URL: u, StatusCode: resp.StatusCode, Location: resp.Header.Get("Location")}
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, errors.New("empty response body")
	}
	return b, nil
}

// Parse 把页面 HTML 解析为某个 scope 的 Dataset。
//
// 行选择器一个都没命中不是错误：返回空 Dataset（由写出层落为“no data found”）。
func Parse(s Site, scope domain.Scope, html []byte) (domain.Dataset, error) {
	if len(bytes.TrimSpace(html)) == 0 {
		return domain.Dataset{}, errors.New("html 为空")
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return domain.Dataset{}, err
	}
	t := s.Table(scope)
	return domain.Dataset{
		Scope:   scope,
		Fields:  t.FieldNames(),
		Records: extract.ExtractAll(extract.Rows(doc, t), t),
	}, nil
}

// FetchParse 抓取并解析一个 scope。
//
// 返回值：
// - ds：解析结果
// - html：抓取到的原始页面（用于 cache）；fetch 失败时为 nil
// - err：*Error，Stage 为 fetch 或 parse
func FetchParse(ctx context.Context, s Site, scope domain.Scope, f Fetcher) (ds domain.Dataset, html []byte, err error) {
	if s == nil {
		return domain.Dataset{}, nil, errors.New("site 不能为空")
	}
	if f == nil {
		return domain.Dataset{}, nil, errors.New("fetcher 不能为空")
	}
	name := s.Name()
	if s.Dated() != scope.Dated() {
		return domain.Dataset{}, nil, &Error{Site: name, Scope: scope.Label(), Stage: StageFetch, Err: fmt.Errorf("scope %s 与站点类型不匹配", scope.Label())}
	}

	pageURL := s.URL(scope)
	html, err = f.Fetch(ctx, name, scope, pageURL)
	if err != nil {
		return domain.Dataset{}, nil, &Error{Site: name, Scope: scope.Label(), Stage: StageFetch, Err: err}
	}
	ds, err = Parse(s, scope, html)
	if err != nil {
		return domain.Dataset{}, html, &Error{Site: name, Scope: scope.Label(), Stage: StageParse, Err: err}
	}
	return ds, html, nil
}

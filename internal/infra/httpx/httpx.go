package httpx

import (
	"errors"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout 是单次请求（含读 body）的总超时。
const DefaultTimeout = 30 * time.Second

// DefaultHeaders 在调用方未设置同名 header 时附加到每个请求。
var DefaultHeaders = map[string]string{
	"Accept-Language": "en-US,en;q=0.9",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
}

// Options 描述页面抓取 client 的网络策略。零值可用。
type Options struct {
	// ProxyURL 非空时所有请求走该代理，并禁用 keep-alive。
	ProxyURL string
	// Timeout<=0 时使用 DefaultTimeout。
	Timeout time.Duration
	// Headers 覆盖 DefaultHeaders；键按 http.CanonicalHeaderKey 归一。
	// 设置 "User-Agent" 会固定 UA，不再从 UA 池随机。
	Headers map[string]string
}

// Transport 给每个请求补齐 UA 与默认 header，然后交给 Base。只发一次，不重试。
type Transport struct {
	Base *http.Transport

	ua      *uaPool
	headers http.Header

	// DisableKeepAlives 为 true 时对每个请求设置 Close=true。
	DisableKeepAlives bool
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// RoundTripper 不应修改调用方的 request。
	r := req.Clone(req.Context())
	for k, vs := range t.headers {
		if r.Header.Get(k) == "" && len(vs) > 0 {
			r.Header.Set(k, vs[0])
		}
	}
	if r.Header.Get("User-Agent") == "" && t.ua != nil {
		r.Header.Set("User-Agent", t.ua.random())
	}
	if t.DisableKeepAlives {
		r.Close = true
	}
	return t.Base.RoundTrip(r)
}

// Header 返回该 Transport 会补齐的 header（副本）。
func (t *Transport) Header() http.Header {
	return t.headers.Clone()
}

// NewClient 构造页面抓取用的 HTTP client。
func NewClient(opts Options) (*http.Client, error) {
	base := &http.Transport{
		Proxy:                 nil,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
	}

	disableKeepAlives := false
	if p := strings.TrimSpace(opts.ProxyURL); p != "" {
		u, err := url.Parse(p)
		if err != nil {
			return nil, err
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, errors.New("proxy.url 必须包含 scheme 与 host")
		}
		base.Proxy = http.ProxyURL(u)
		// 代理池按连接轮换出口，需要每请求新连接。
		base.DisableKeepAlives = true
		disableKeepAlives = true
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Transport: &Transport{
			Base:              base,
			ua:                globalUA,
			headers:           mergeHeaders(DefaultHeaders, opts.Headers),
			DisableKeepAlives: disableKeepAlives,
		},
		Timeout: timeout,
	}, nil
}

func mergeHeaders(layers ...map[string]string) http.Header {
	h := http.Header{}
	for _, m := range layers {
		for k, v := range m {
			k = strings.TrimSpace(k)
			v = strings.TrimSpace(v)
			if k == "" {
				continue
			}
			if v == "" {
				h.Del(k)
				continue
			}
			h.Set(k, v)
		}
	}
	return h
}

type uaPool struct {
	mu  sync.Mutex
	rnd *rand.Rand
	uas []string
}

func (p *uaPool) random() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.uas[p.rnd.Intn(len(p.uas))]
}

var globalUA = newUAPool()

func newUAPool() *uaPool {
	uas := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	}
	return &uaPool{
		rnd: rand.New(rand.NewSource(time.Now().UnixNano())),
		uas: uas,
	}
}

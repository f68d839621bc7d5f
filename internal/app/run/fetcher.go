package run

import (
	"context"
	"errors"
	"fmt"

	"github.com/John-Robertt/toplist/internal/domain"
	"github.com/John-Robertt/toplist/internal/infra/cache"
	"github.com/John-Robertt/toplist/internal/site"
)

var errCacheMiss = errors.New("cache miss")

// offlineFetcher 只从页面缓存读取；未命中即 fetch 失败。
type offlineFetcher struct {
	store cache.Store
}

func (f offlineFetcher) Fetch(_ context.Context, siteName string, scope domain.Scope, _ string) ([]byte, error) {
	b, ok, err := f.store.ReadPage(siteName, scope)
	if err != nil {
		return nil, err
	}
	if !ok {
		path, _ := f.store.PagePath(siteName, scope)
		return nil, fmt.Errorf("%w：%s", errCacheMiss, path)
	}
	return b, nil
}

func newFetcher(offline bool, store cache.Store, httpFetcher site.Fetcher) site.Fetcher {
	if offline {
		return offlineFetcher{store: store}
	}
	return httpFetcher
}

package run

import (
	"time"

	"github.com/John-Robertt/toplist/internal/config"
	"github.com/John-Robertt/toplist/internal/domain"
)

// Observer 把运行进度从执行流程中解耦出来。
//
// 约束：
// - run 包只发事件，不做任何输出（stdout 只属于 RunReport JSON）
// - 事件都在调用 ExecuteWithObserver 的 goroutine 上按顺序发出
type Observer interface {
	// OnStart 在规划完成后调用；total 为 scope 数（含被跳过的）。
	OnStart(eff config.EffectiveConfig, siteName string, total int)
	// OnScopeStart 在某个 scope 开始处理前调用（idx 从 1 开始）。
	OnScopeStart(idx, total int, p domain.ScopePlan)
	// OnScopeDone 在某个 scope 处理完成时调用。
	OnScopeDone(idx, total int, res domain.ScopeResult, dur time.Duration)
}

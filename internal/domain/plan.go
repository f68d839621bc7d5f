package domain

// ScopePlan 是某个 scope 的确定性执行计划（规划阶段不做任何网络/写入）。
type ScopePlan struct {
	Scope  Scope
	URL    string
	Format string

	// File 是输出文件的绝对路径。
	File string
	// Exists 表示规划时目标文件已存在（本次会被整体替换）。
	Exists bool

	// SkipCode 非空表示该 scope 不执行（例如未来年份），内容是面向用户的说明。
	SkipCode   string
	SkipReason string
}

// Skipped 报告该 scope 是否在规划阶段就被跳过。
func (p ScopePlan) Skipped() bool { return p.SkipCode != "" }

package logx

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New 构造 run 使用的 logger。
//
// console=true 时输出人类可读格式（TTY）；否则输出 JSON 行，便于与 stdout 的 report 分流后再处理。
// level 为空时为 info。
func New(w io.Writer, level string, console bool) (zerolog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if console {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// ParseLevel 接受 debug/info/warn/error/disabled（大小写不敏感）。
func ParseLevel(s string) (zerolog.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return zerolog.InfoLevel, nil
	case "debug", "info", "warn", "error", "disabled":
		return zerolog.ParseLevel(s)
	default:
		return zerolog.NoLevel, fmt.Errorf("未知日志级别：%q", s)
	}
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

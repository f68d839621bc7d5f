package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/John-Robertt/toplist/internal/app/run"
	"github.com/John-Robertt/toplist/internal/config"
	"github.com/John-Robertt/toplist/internal/infra/logx"
	"github.com/John-Robertt/toplist/internal/site"
	"github.com/John-Robertt/toplist/internal/site/imdb"
	"github.com/John-Robertt/toplist/internal/site/rottentomatoes"
)

type runFlags struct {
	configPath string
	site       string
	from       int
	to         int
	out        string
	format     string
	dryRun     bool
	offline    bool
	rules      string
	logLevel   string
}

func (f runFlags) cliArgs(fs *pflag.FlagSet) config.CLIArgs {
	return config.CLIArgs{
		ConfigPath: f.configPath,
		Site:       f.site,
		SiteSet:    fs.Changed("site"),
		From:       f.from,
		FromSet:    fs.Changed("from"),
		To:         f.to,
		ToSet:      fs.Changed("to"),
		Out:        f.out,
		OutSet:     fs.Changed("out"),
		Format:     f.format,
		FormatSet:  fs.Changed("format"),
		DryRun:     f.dryRun,
		DryRunSet:  fs.Changed("dry-run"),
		Offline:    f.offline,
		OfflineSet: fs.Changed("offline"),
		Rules:      f.rules,
		RulesSet:   fs.Changed("rules"),
	}
}

func newRunCmd(stdout, stderr io.Writer) *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "按年份区间抓取榜单并写出数据文件",
		Long: `按年份区间抓取榜单并写出数据文件。

每个 scope（年份，或无年份站点的 current）独立处理：单个失败不影响其他。
stdout 为终端时输出摘要表；否则 stdout 只输出一个 RunReport JSON。`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			code := runCmd(cmd.Context(), f, cmd.Flags(), stdout, stderr)
			if code != 0 {
				return exitCode(code)
			}
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "配置文件路径（默认读取 cwd 下的 "+config.FileName+"，不存在则忽略）")
	fs.StringVar(&f.site, "site", config.DefaultSite, "站点：feature|tv|rt（见 toplist sites）")
	fs.IntVar(&f.from, "from", 0, "起始年份（含）；默认取站点的默认区间")
	fs.IntVar(&f.to, "to", 0, "结束年份（含）；默认取站点的默认区间")
	fs.StringVar(&f.out, "out", config.DefaultOut, "输出目录")
	fs.StringVar(&f.format, "format", "", "输出格式：json|text|xlsx（默认由站点决定）")
	fs.BoolVar(&f.dryRun, "dry-run", false, "只抓取与解析，不写任何文件；支持 --dry-run=false 覆盖配置")
	fs.BoolVar(&f.offline, "offline", false, "只从页面缓存读取，不发网络请求")
	fs.StringVar(&f.rules, "rules", "", "规则覆盖文件（YAML），用于站点布局变化时替换选择器")
	fs.StringVar(&f.logLevel, "log-level", "info", "日志级别：debug|info|warn|error|disabled（交互终端下默认 warn）")
	return cmd
}

func runCmd(ctx context.Context, f runFlags, fs *pflag.FlagSet, stdout, stderr io.Writer) int {
	level := f.logLevel
	progressW, interactive := pickProgressWriter(stdout, stderr)
	if interactive && !fs.Changed("log-level") {
		// 交互终端下进度由 progressUI 展示，日志只保留告警。
		level = "warn"
	}
	logger, err := logx.New(stderr, level, isTTY(stderr))
	if err != nil {
		fmt.Fprintf(stderr, "参数错误：%v\n", err)
		return 2
	}
	ctx = logger.WithContext(ctx)

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "读取当前目录失败：%v\n", err)
		return 1
	}

	cli := f.cliArgs(fs)
	eff, err := config.LoadEffective(cwd, cli)
	if err != nil {
		emitReport(stdout, stderr, reportForConfigError(cli, err))
		return 1
	}
	logger.Debug().Str("config", eff.ConfigFile).Str("site", eff.Site).Str("out", eff.Out).Msg("配置已加载")

	reg, err := newRegistry()
	if err != nil {
		fmt.Fprintf(stderr, "初始化 site registry 失败：%v\n", err)
		return 1
	}

	var obs run.Observer
	if interactive {
		ui := newProgressUI(progressW)
		defer ui.Close()
		obs = ui
	}

	rr := run.ExecuteWithObserver(ctx, eff, reg, obs)

	// 非 dry-run：report.json 与数据文件放在同一目录；dry-run 禁止落盘。
	if !eff.DryRun {
		if err := writeReportFile(eff.Out, rr); err != nil {
			fmt.Fprintf(stderr, "写入 report.json 失败：%v\n", err)
			emitReport(stdout, stderr, rr)
			return 1
		}
	}

	emitReport(stdout, stderr, rr)
	if interactive {
		emitLocations(progressW, eff)
	}
	if rr.Summary.Failed == 0 {
		return 0
	}
	return 1
}

func newRegistry() (site.Registry, error) {
	return site.NewRegistry(
		imdb.Feature{},
		imdb.TV{},
		rottentomatoes.Popular{},
	)
}

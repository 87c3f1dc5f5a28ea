// xcoordctl 装配 xcoord 的协调原语并驱动一条合成摄入链路，用于演示和压测。
//
// 用法:
//
//	xcoordctl run   --config <file> [--rate 100] [--report 10s] [--keys 500]
//	xcoordctl check --config <file>
//
// run 从配置构建日志、计数器、调度器、分发器、溢出缓存和共享缓存，
// 按 --rate 生成事件，每 --report 记录一次健康状态。配置文件变更后
// 热更新日志级别和分发器告警阈值。收到 SIGINT/SIGTERM 后排空分发器再退出。
//
// check 校验配置并以 JSON 打印生效的配置。
//
// 退出码:
//
//	0: 成功（包括信号退出）
//	1: 运行失败
//	2: 参数或配置错误
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

// 版本信息，可通过 -ldflags 注入。
var (
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(context.Background(), os.Args))
}

func createApp() *cli.Command {
	return &cli.Command{
		Name:     "xcoordctl",
		Usage:    "xcoord 协调原语演示与压测工具",
		Version:  fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		Commands: []*cli.Command{runCommand(), checkCommand()},
		ExitErrHandler: func(_ context.Context, _ *cli.Command, err error) {
			if _, ok := err.(cli.ExitCoder); ok {
				fmt.Fprintln(os.Stderr, err)
			}
		},
	}
}

func run(ctx context.Context, args []string) int {
	if err := createApp().Run(ctx, args); err != nil {
		var usage *usageError
		if errors.As(err, &usage) {
			fmt.Fprintf(os.Stderr, "参数错误: %v\n", usage)
			return 2
		}
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		return 1
	}
	return 0
}

// usageError 表示参数或配置错误，对应退出码 2。
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }

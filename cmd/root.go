// Package cmd 命令行入口
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"budget/config"
)

var (
	cfgFile string
	version = "1.0.0"
	rootCmd = &cobra.Command{
		Use:     "budget",
		Short:   "预算账本与余额预测",
		Version: version,
		Long: `budget 管理多级收支类别、账户流水和月度预算，
并按年生成 13 个点的余额预测（实际 / 计划 / 预测）。`,
		SilenceUsage: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "外部配置文件路径（可选）")

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(forecastCmd())
	rootCmd.AddCommand(tokenCmd())
}

// Execute 运行根命令，收到中断信号时取消上下文
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	return cfg, nil
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"budget/report"
)

func forecastCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "输出某年的余额预测",
		Long: `按当前配置读取账本，输出指定年份的 13 个点（期初 + 12 个月末）。

示例:
  budget forecast --workspace 1 --year 2024
  budget forecast --workspace 1 --year 2024 --xlsx forecast.xlsx`,
		RunE: runForecast,
	}
	cmd.Flags().Uint("workspace", 0, "工作区 ID")
	cmd.Flags().Int("year", time.Now().Year(), "预测年份")
	cmd.Flags().String("xlsx", "", "写入 Excel 文件而不是打印")
	_ = cmd.MarkFlagRequired("workspace")
	return cmd
}

func runForecast(cmd *cobra.Command, _ []string) error {
	workspace, _ := cmd.Flags().GetUint("workspace")
	year, _ := cmd.Flags().GetInt("year")
	xlsx, _ := cmd.Flags().GetString("xlsx")
	if workspace == 0 {
		return errors.New("--workspace 必须大于 0")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	ctx := cmd.Context()
	fc, err := a.ledger.Forecast(ctx, workspace, year)
	if err != nil {
		return err
	}

	if xlsx != "" {
		cats, err := a.ledger.ListCategories(ctx, workspace)
		if err != nil {
			return err
		}
		budgets, err := a.ledger.ListBudgets(ctx, workspace, year)
		if err != nil {
			return err
		}
		f, err := os.Create(xlsx)
		if err != nil {
			return fmt.Errorf("创建文件失败: %w", err)
		}
		if err := report.Write(f, fc, cats, budgets); err != nil {
			_ = f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "已写入 %s\n", xlsx)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "月份\t实际\t计划\t预测\t")
	for _, p := range fc.Points {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", p.Label, cell(p.Actual), cell(p.Plan), cell(p.Forecast))
	}
	return w.Flush()
}

func cell(v *decimal.Decimal) string {
	if v == nil {
		return "-"
	}
	return v.StringFixed(2)
}

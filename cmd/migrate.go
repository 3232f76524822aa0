package cmd

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"budget/models"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "迁移数据库表结构",
		Long: `按当前配置连接数据库并执行自动迁移。

指定 --seed-workspace 时，为该工作区写入默认类别树（已有类别的工作区跳过）。`,
		RunE: runMigrate,
	}
	cmd.Flags().Uint("seed-workspace", 0, "写入默认类别的工作区 ID")
	cmd.Flags().String("valid-from", "", "默认类别的生效月份 YYYY-MM（默认当月）")
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Database.Driver == "memory" {
		return errors.New("内存存储无需迁移")
	}

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()
	log.Println("数据库迁移完成")

	workspace, _ := cmd.Flags().GetUint("seed-workspace")
	if workspace == 0 {
		return nil
	}
	from, _ := cmd.Flags().GetString("valid-from")
	month := models.MonthOf(time.Now())
	if from != "" {
		if month, err = models.ParseMonth(from); err != nil {
			return err
		}
	}
	n, err := a.ledger.SeedDefaults(cmd.Context(), workspace, month)
	if err != nil {
		return fmt.Errorf("写入默认类别失败: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "工作区 %d 写入默认类别 %d 个\n", workspace, n)
	return nil
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"budget/middleware"
)

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发开发用的访问令牌",
		RunE:  runToken,
	}
	cmd.Flags().Uint("workspace", 0, "工作区 ID")
	cmd.Flags().String("actor", "cli", "操作者标识，写入事件记录")
	_ = cmd.MarkFlagRequired("workspace")
	return cmd
}

func runToken(cmd *cobra.Command, _ []string) error {
	workspace, _ := cmd.Flags().GetUint("workspace")
	actor, _ := cmd.Flags().GetString("actor")
	if workspace == 0 {
		return errors.New("--workspace 必须大于 0")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	middleware.InitJWT(cfg)
	token, err := middleware.GenerateToken(workspace, actor, cfg.JWT.ExpireTime)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}

package cmd

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"budget/config"
	"budget/middleware"
	"budget/router"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE:  runServe,
	}
	cmd.Flags().StringP("port", "p", "", "监听端口，如: 8080 或 :8080")
	return cmd
}

// listenAddr 端口自动补冒号前缀
func listenAddr(port string) string {
	if port == "" || strings.Contains(port, ":") {
		return port
	}
	return ":" + port
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Server.Port = port
		log.Printf("命令行指定端口: %s", port)
	}
	cfg.Server.Port = listenAddr(cfg.Server.Port)

	config.PrintConfig()

	a, err := openApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	middleware.InitJWT(cfg)
	r := router.SetupRouter(cfg, a.ledger)

	log.Printf("==========================================")
	log.Printf("  💰 预算账本已启动")
	log.Printf("==========================================")
	log.Printf("  Swagger:  http://localhost%s/swagger/index.html", cfg.Server.Port)
	log.Printf("  API接口:  http://localhost%s/api/v1/", cfg.Server.Port)
	log.Printf("==========================================")

	srv := &http.Server{Addr: cfg.Server.Port, Handler: r}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
		log.Println("收到退出信号，正在关闭服务...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}

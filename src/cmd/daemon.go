package cmd

import (
	"context"
	"fmt"
	"net/http"
	_ "net/http/pprof" // 引入 pprof 用于性能分析
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zeromicro/go-zero/core/threading"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapListing/src/api/router"
	"github.com/ProjectsTask/EasySwapListing/src/app"
	"github.com/ProjectsTask/EasySwapListing/src/common/xzap"
	"github.com/ProjectsTask/EasySwapListing/src/config"
	"github.com/ProjectsTask/EasySwapListing/src/service/svc"
)

// DaemonCmd 定义了 "daemon" 子命令
var DaemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "serve the listing detail page.",
	Long:  "serve the listing detail page and its json api.",
	Run: func(cmd *cobra.Command, args []string) {
		// 使用 WaitGroup 等待所有 goroutine 完成
		wg := &sync.WaitGroup{}
		wg.Add(1)

		// 创建一个带有取消功能的 Context，用于优雅退出
		ctx, cancel := context.WithCancel(context.Background())

		// 退出信号通知chan，用于接收服务启动或运行过程中的错误
		onServerExit := make(chan error, 1)

		go func() {
			defer wg.Done()

			// 1. 读取和解析配置文件
			cfg, err := config.UnmarshalCmdConfig()
			if err != nil {
				xzap.WithContext(ctx).Error("Failed to unmarshal config", zap.Error(err))
				onServerExit <- err
				return
			}

			// 2. 初始化服务上下文 (日志, Redis, DB, 钱包会话, 合约)
			serverCtx, err := svc.NewServiceContext(ctx, cfg)
			if err != nil {
				xzap.WithContext(ctx).Error("Failed to create service context", zap.Error(err))
				onServerExit <- err
				return
			}
			xzap.WithContext(ctx).Info("listing server start", zap.Any("config", cfg))

			// 3. 如果配置开启了 Pprof，启动 HTTP 服务进行性能监控
			if cfg.Monitor.PprofEnable {
				threading.GoSafe(func() {
					_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", cfg.Monitor.PprofPort), nil)
				})
			}

			// 4. 启动 HTTP 服务, ctx 取消后优雅退出
			platform, err := app.NewPlatform(cfg, router.NewRouter(serverCtx), serverCtx)
			if err != nil {
				onServerExit <- err
				return
			}
			if err := platform.Start(ctx); err != nil {
				xzap.WithContext(ctx).Error("Failed to serve", zap.Error(err))
				onServerExit <- err
			}
		}()

		// 监听 SIGINT (Ctrl+C) 和 SIGTERM (kill) 信号，实现优雅退出
		onSignal := make(chan os.Signal, 1)
		signal.Notify(onSignal, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-onSignal:
			cancel()
			xzap.WithContext(ctx).Info("Exit by signal", zap.String("signal", sig.String()))
		case err := <-onServerExit:
			cancel()
			xzap.WithContext(ctx).Error("Exit by error", zap.Error(err))
		}

		wg.Wait()
	},
}

func init() {
	rootCmd.AddCommand(DaemonCmd)
}

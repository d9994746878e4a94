package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd 代表基础命令，没有子命令时直接调用
var rootCmd = &cobra.Command{
	Use:   "confirm-cli",
	Short: "签名确认服务命令行工具",
	Long: `签名确认服务的调试工具。
支持编码/解码交易信封、生成 Sign-In 消息，以及向 confirm-server 提交签名请求。`,
}

// Execute 将所有子命令添加到根命令并设置标志
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("server", "http://localhost:8080", "confirm-server 地址")
}

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"wallet-confirm/internal/model"
)

var requestCmd = &cobra.Command{
	Use:   "request",
	Short: "提交签名请求到 confirm-server",
	Long:  `读取签名请求 JSON 文件，提交给 confirm-server，阻塞直到用户在确认框中做出决定。`,
	Run: func(cmd *cobra.Command, args []string) {
		inputFile, _ := cmd.Flags().GetString("input")
		serverURL, _ := cmd.Flags().GetString("server")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		// 1. 读取请求
		data, err := os.ReadFile(inputFile)
		if err != nil {
			fmt.Printf("读取文件失败: %v\n", err)
			os.Exit(1)
		}

		var req model.Request
		if err := json.Unmarshal(data, &req); err != nil {
			fmt.Printf("解析请求失败: %v\n", err)
			os.Exit(1)
		}
		body, _ := json.Marshal(req)

		// 2. 提交
		fmt.Printf("正在提交请求 %s (%s) ...\n", req.ID, req.Method)
		client := &http.Client{Timeout: timeout}
		resp, err := client.Post(strings.TrimRight(serverURL, "/")+"/api/v1/requests", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Printf("❌ 提交失败: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		// 3. 输出结果
		out, _ := io.ReadAll(resp.Body)
		var pretty bytes.Buffer
		if json.Indent(&pretty, out, "", "  ") == nil {
			out = pretty.Bytes()
		}
		fmt.Printf("HTTP %d\n%s\n", resp.StatusCode, out)
		if resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(requestCmd)
	requestCmd.Flags().StringP("input", "i", "request.json", "签名请求 JSON 文件")
	requestCmd.Flags().Duration("timeout", 10*time.Minute, "等待用户决定的最长时间")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wallet-confirm/internal/model"
)

var signInCmd = &cobra.Command{
	Use:   "signin-message",
	Short: "生成 Sign-In 消息文本",
	Long:  `按确认框展示的格式生成 Sign-In 消息，便于核对 dapp 传来的参数。`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		domain, _ := flags.GetString("domain")
		address, _ := flags.GetString("address")
		if domain == "" || address == "" {
			fmt.Println("--domain 和 --address 必填")
			os.Exit(1)
		}

		p := model.SignInParams{Domain: domain}
		p.Statement, _ = flags.GetString("statement")
		p.URI, _ = flags.GetString("uri")
		p.Version, _ = flags.GetString("version")
		p.ChainID, _ = flags.GetString("chain-id")
		p.Nonce, _ = flags.GetString("nonce")
		p.IssuedAt, _ = flags.GetString("issued-at")
		p.ExpirationTime, _ = flags.GetString("expiration-time")
		p.Resources, _ = flags.GetStringSlice("resource")

		fmt.Println(model.FormatSignInMessage(p, address))
	},
}

func init() {
	rootCmd.AddCommand(signInCmd)
	flags := signInCmd.Flags()
	flags.String("domain", "", "请求登录的域名")
	flags.String("address", "", "账户地址")
	flags.String("statement", "", "说明文字")
	flags.String("uri", "", "URI")
	flags.String("version", "1", "消息版本")
	flags.String("chain-id", "", "链 ID")
	flags.String("nonce", "", "随机数")
	flags.String("issued-at", "", "签发时间 (ISO 8601)")
	flags.String("expiration-time", "", "过期时间 (ISO 8601)")
	flags.StringSlice("resource", nil, "资源 URI，可重复")
}

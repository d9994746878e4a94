package cmd

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wallet-confirm/internal/enrich"
	"wallet-confirm/internal/model"
)

var decodeCmd = &cobra.Command{
	Use:   "decode [payload]",
	Short: "解码交易信封 (base64)",
	Long:  `把 base64 编码的交易 payload 解码成指令列表，输出和确认框 advanced 区域一致。`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		payload, err := base64.StdEncoding.DecodeString(strings.TrimSpace(args[0]))
		if err != nil {
			fmt.Printf("base64 解码失败: %v\n", err)
			os.Exit(1)
		}

		instructions, err := enrich.NewRLPDecoder().Decode(payload)
		if err != nil {
			fmt.Printf("解码失败: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("共 %d 条指令\n", len(instructions))
		for i, ix := range instructions {
			fmt.Printf("\n[%d] Program: %s\n", i, ix.ProgramID)
			for _, acc := range ix.Accounts {
				fmt.Printf("    Account: %s\n", acc)
			}
			fmt.Printf("    Data:    0x%s\n", hex.EncodeToString(ix.Data))
		}
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "把指令 JSON 文件编码成交易信封",
	Run: func(cmd *cobra.Command, args []string) {
		inputFile, _ := cmd.Flags().GetString("input")

		data, err := os.ReadFile(inputFile)
		if err != nil {
			fmt.Printf("读取文件失败: %v\n", err)
			os.Exit(1)
		}

		var instructions []model.Instruction
		if err := json.Unmarshal(data, &instructions); err != nil {
			fmt.Printf("解析指令失败: %v\n", err)
			os.Exit(1)
		}

		payload, err := enrich.EncodeEnvelope(instructions)
		if err != nil {
			fmt.Printf("编码失败: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(base64.StdEncoding.EncodeToString(payload))
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringP("input", "i", "instructions.json", "指令列表 JSON 文件")
}

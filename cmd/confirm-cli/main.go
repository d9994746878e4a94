package main

import "wallet-confirm/cmd/confirm-cli/cmd"

func main() {
	cmd.Execute()
}

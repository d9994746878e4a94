package model

// Network 已知的网络 (CAIP-2 scope)
type Network struct {
	Scope       string
	Name        string
	NativeAsset string // CAIP-19
	Symbol      string
	Decimals    int32
}

const (
	ScopeMainnet  = "solana:5eykt4UsFv8P8NJdTREpY1vzqKqZKvdp"
	ScopeDevnet   = "solana:EtWTRABZaYq6iMfeYKouRu166VU2xqa1"
	ScopeTestnet  = "solana:4uhcVJyU9pJkvQyS88uRDiswHXSCkY3z"
	ScopeLocalnet = "solana:123456789abcdefghijkmnopqrstuvwxyz"
)

var networks = map[string]Network{
	ScopeMainnet:  {Scope: ScopeMainnet, Name: "Solana Mainnet", NativeAsset: ScopeMainnet + "/slip44:501", Symbol: "SOL", Decimals: 9},
	ScopeDevnet:   {Scope: ScopeDevnet, Name: "Solana Devnet", NativeAsset: ScopeDevnet + "/slip44:501", Symbol: "SOL", Decimals: 9},
	ScopeTestnet:  {Scope: ScopeTestnet, Name: "Solana Testnet", NativeAsset: ScopeTestnet + "/slip44:501", Symbol: "SOL", Decimals: 9},
	ScopeLocalnet: {Scope: ScopeLocalnet, Name: "Solana Localnet", NativeAsset: ScopeLocalnet + "/slip44:501", Symbol: "SOL", Decimals: 9},
}

// LookupNetwork 按 scope 查网络
func LookupNetwork(scope string) (Network, bool) {
	n, ok := networks[scope]
	return n, ok
}

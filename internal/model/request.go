package model

import (
	"strings"
)

// Request 进入 Dispatcher 的签名请求
type Request struct {
	ID     string        `json:"id" validate:"required"`
	Origin string        `json:"origin"`
	Method string        `json:"method" validate:"required"`
	Params RequestParams `json:"params"`
}

type RequestParams struct {
	Scope   string   `json:"scope" validate:"required"`
	Account *Account `json:"account" validate:"required"`
	// Transaction base64 编码的交易 (transfer 族)
	Transaction string `json:"transaction,omitempty"`
	// Message base64 编码的消息 (message 族)
	Message string        `json:"message,omitempty"`
	SignIn  *SignInParams `json:"signIn,omitempty"`
}

// SignInParams Sign-In With Solana 输入
type SignInParams struct {
	Domain         string   `json:"domain" validate:"required"`
	Address        string   `json:"address,omitempty"`
	Statement      string   `json:"statement,omitempty"`
	URI            string   `json:"uri,omitempty"`
	Version        string   `json:"version,omitempty"`
	ChainID        string   `json:"chainId,omitempty"`
	Nonce          string   `json:"nonce,omitempty"`
	IssuedAt       string   `json:"issuedAt,omitempty"`
	ExpirationTime string   `json:"expirationTime,omitempty"`
	NotBefore      string   `json:"notBefore,omitempty"`
	RequestID      string   `json:"requestId,omitempty"`
	Resources      []string `json:"resources,omitempty"`
}

// FormatSignInMessage 生成 Sign-In With Solana 的文本消息
func FormatSignInMessage(p SignInParams, address string) string {
	if p.Address != "" {
		address = p.Address
	}

	var b strings.Builder
	b.WriteString(p.Domain)
	b.WriteString(" wants you to sign in with your Solana account:\n")
	b.WriteString(address)

	if p.Statement != "" {
		b.WriteString("\n\n")
		b.WriteString(p.Statement)
	}

	var fields []string
	add := func(label, value string) {
		if value != "" {
			fields = append(fields, label+": "+value)
		}
	}
	add("URI", p.URI)
	add("Version", p.Version)
	add("Chain ID", p.ChainID)
	add("Nonce", p.Nonce)
	add("Issued At", p.IssuedAt)
	add("Expiration Time", p.ExpirationTime)
	add("Not Before", p.NotBefore)
	add("Request ID", p.RequestID)
	if len(p.Resources) > 0 {
		res := "Resources:"
		for _, r := range p.Resources {
			res += "\n- " + r
		}
		fields = append(fields, res)
	}

	if len(fields) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(fields, "\n"))
	}
	return b.String()
}

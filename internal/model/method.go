package model

import (
	"wallet-confirm/pkg/errno"
)

// Family 签名方法族
type Family string

const (
	FamilyTransfer Family = "transfer"
	FamilyMessage  Family = "message"
	FamilySignIn   Family = "signIn"
)

// Method 签名方法 (封闭的 sum type，只有本包内的三个变体)
type Method interface {
	Name() string
	Family() Family
	isMethod()
}

// TransferKind 交易类方法名
type TransferKind string

const (
	SignTransaction           TransferKind = "signTransaction"
	SignAndSendTransaction    TransferKind = "signAndSendTransaction"
	SignAllTransactions       TransferKind = "signAllTransactions"
	SendAndConfirmTransaction TransferKind = "sendAndConfirmTransaction"
)

// TransferMethod 转账 / 交易签名
type TransferMethod struct {
	Kind TransferKind
}

func (m TransferMethod) Name() string   { return string(m.Kind) }
func (m TransferMethod) Family() Family { return FamilyTransfer }
func (TransferMethod) isMethod()        {}

// MessageMethod 消息签名
type MessageMethod struct{}

func (MessageMethod) Name() string   { return "signMessage" }
func (MessageMethod) Family() Family { return FamilyMessage }
func (MessageMethod) isMethod()      {}

// SignInMethod Sign-In With Solana
type SignInMethod struct{}

func (SignInMethod) Name() string   { return "signIn" }
func (SignInMethod) Family() Family { return FamilySignIn }
func (SignInMethod) isMethod()      {}

// ParseMethod 把请求中的方法名解析成 Method，不认识的方法返回 *errno.UnsupportedMethodError
func ParseMethod(name string) (Method, error) {
	switch name {
	case string(SignTransaction), string(SignAndSendTransaction),
		string(SignAllTransactions), string(SendAndConfirmTransaction):
		return TransferMethod{Kind: TransferKind(name)}, nil
	case MessageMethod{}.Name():
		return MessageMethod{}, nil
	case SignInMethod{}.Name():
		return SignInMethod{}, nil
	}
	return nil, &errno.UnsupportedMethodError{Method: name}
}

// MatchMethod 对 Method 做穷举分派：三个分支都必须提供，新增变体时所有调用点编译失败
func MatchMethod[T any](
	m Method,
	onTransfer func(TransferMethod) T,
	onMessage func(MessageMethod) T,
	onSignIn func(SignInMethod) T,
) T {
	switch v := m.(type) {
	case TransferMethod:
		return onTransfer(v)
	case MessageMethod:
		return onMessage(v)
	case SignInMethod:
		return onSignIn(v)
	}
	// Method 是封闭接口，走不到这里
	panic("model: unknown method variant")
}

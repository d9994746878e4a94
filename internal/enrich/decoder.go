package enrich

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"wallet-confirm/internal/model"
)

// 交易 payload 的信封格式：RLP 编码的 [version, [instruction...]]
const envelopeVersion uint = 1

type rlpInstruction struct {
	ProgramID string
	Accounts  []string
	Data      []byte
}

type envelope struct {
	Version      uint
	Instructions []rlpInstruction
}

// RLPDecoder 解码交易信封中的指令
type RLPDecoder struct{}

func NewRLPDecoder() *RLPDecoder {
	return &RLPDecoder{}
}

func (RLPDecoder) Decode(payload []byte) ([]model.Instruction, error) {
	if len(payload) == 0 {
		return nil, errors.New("decode: empty payload")
	}
	var env envelope
	if err := rlp.DecodeBytes(payload, &env); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if env.Version != envelopeVersion {
		return nil, fmt.Errorf("decode: unsupported envelope version %d", env.Version)
	}

	out := make([]model.Instruction, len(env.Instructions))
	for i, ix := range env.Instructions {
		out[i] = model.Instruction{
			ProgramID: ix.ProgramID,
			Accounts:  ix.Accounts,
			Data:      ix.Data,
		}
	}
	return out, nil
}

// EncodeEnvelope 生成 Decode 能识别的 payload (CLI / 测试使用)
func EncodeEnvelope(instructions []model.Instruction) ([]byte, error) {
	env := envelope{Version: envelopeVersion, Instructions: make([]rlpInstruction, len(instructions))}
	for i, ix := range instructions {
		accounts := ix.Accounts
		if accounts == nil {
			accounts = []string{}
		}
		data := ix.Data
		if data == nil {
			data = []byte{}
		}
		env.Instructions[i] = rlpInstruction{ProgramID: ix.ProgramID, Accounts: accounts, Data: data}
	}
	return rlp.EncodeToBytes(env)
}

package compute_budget

import (
	"crypto/ed25519"

	"github.com/pkg/errors"

	"github.com/code-payments/compressed-token-sdk/pkg/solana"
	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

// ComputeBudget111111111111111111111111111111
var ProgramKey = ed25519.PublicKey{3, 6, 70, 111, 229, 33, 23, 50, 255, 236, 173, 186, 114, 195, 155, 231, 188, 140, 229, 187, 197, 247, 18, 107, 44, 67, 155, 58, 64, 0, 0, 0}

const (
	commandRequestUnits uint8 = iota
	commandRequestHeapFrame
	commandSetComputeUnitLimit
	commandSetComputeUnitPrice
)

var ErrInvalidInstructionData = errors.New("invalid compute budget instruction data")

func SetComputeUnitLimit(computeUnitLimit uint32) solana.Instruction {
	data := make([]byte, 1+4)

	var offset int
	binary.PutUint8(data, commandSetComputeUnitLimit, &offset)
	binary.PutUint32(data, computeUnitLimit, &offset)

	return solana.NewInstruction(
		ProgramKey,
		data,
	)
}

func SetComputeUnitPrice(microLamports uint64) solana.Instruction {
	data := make([]byte, 1+8)

	var offset int
	binary.PutUint8(data, commandSetComputeUnitPrice, &offset)
	binary.PutUint64(data, microLamports, &offset)

	return solana.NewInstruction(
		ProgramKey,
		data,
	)
}

func ParseSetComputeUnitLimitIxnData(data []byte) (uint32, error) {
	if len(data) != 5 || data[0] != commandSetComputeUnitLimit {
		return 0, ErrInvalidInstructionData
	}

	var limit uint32
	offset := 1
	if err := binary.GetUint32(data, &limit, &offset); err != nil {
		return 0, errors.Wrap(ErrInvalidInstructionData, err.Error())
	}
	return limit, nil
}

func ParseSetComputeUnitPriceIxnData(data []byte) (uint64, error) {
	if len(data) != 9 || data[0] != commandSetComputeUnitPrice {
		return 0, ErrInvalidInstructionData
	}

	var price uint64
	offset := 1
	if err := binary.GetUint64(data, &price, &offset); err != nil {
		return 0, errors.Wrap(ErrInvalidInstructionData, err.Error())
	}
	return price, nil
}

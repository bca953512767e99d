package compressedtoken

import (
	"fmt"

	"github.com/code-payments/compressed-token-sdk/pkg/solana/binary"
)

const CompressedCpiContextSize = (1 + // set_context
	1 + // first_set_context
	1) // cpi_context_account_index

type CompressedCpiContext struct {
	SetContext             bool
	FirstSetContext        bool
	CpiContextAccountIndex uint8
}

func (obj CompressedCpiContext) String() string {
	return fmt.Sprintf(
		"CompressedCpiContext{set_context=%v,first_set_context=%v,cpi_context_account_index=%d}",
		obj.SetContext,
		obj.FirstSetContext,
		obj.CpiContextAccountIndex,
	)
}

func putCompressedCpiContext(dst []byte, v CompressedCpiContext, offset *int) {
	binary.PutBool(dst, v.SetContext, offset)
	binary.PutBool(dst, v.FirstSetContext, offset)
	binary.PutUint8(dst, v.CpiContextAccountIndex, offset)
}
func getCompressedCpiContext(src []byte, dst *CompressedCpiContext, offset *int) error {
	if err := binary.GetBool(src, &dst.SetContext, offset); err != nil {
		return err
	}
	if err := binary.GetBool(src, &dst.FirstSetContext, offset); err != nil {
		return err
	}
	return binary.GetUint8(src, &dst.CpiContextAccountIndex, offset)
}

func sizeOfOptionalCpiContext(v *CompressedCpiContext) int {
	return binary.SizeOfOption(v, binary.FixedSize[CompressedCpiContext](CompressedCpiContextSize))
}

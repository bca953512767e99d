package compressedtoken

import (
	"bytes"
)

type InstructionType uint8

const (
	Unknown InstructionType = iota

	InstructionTypeCreateTokenPool
	InstructionTypeAddTokenPool

	InstructionTypeMintTo
	InstructionTypeBatchCompress
	InstructionTypeCompressSplTokenAccount
	InstructionTypeTransfer

	InstructionTypeApprove
	InstructionTypeRevoke

	InstructionTypeFreeze
	InstructionTypeThaw

	InstructionTypeBurn
)

// Anchor discriminators: sha256("global:<instruction name>")[:8]
var (
	createTokenPoolDiscriminator         = []byte{0x17, 0xa9, 0x1b, 0x7a, 0x93, 0xa9, 0xd1, 0x98}
	addTokenPoolDiscriminator            = []byte{0x72, 0x8f, 0xd2, 0x49, 0x60, 0x73, 0x01, 0xe4}
	mintToDiscriminator                  = []byte{0xf1, 0x22, 0x30, 0xba, 0x25, 0xb3, 0x7b, 0xc0}
	batchCompressDiscriminator           = []byte{0x41, 0xce, 0x65, 0x25, 0x93, 0x2a, 0xdd, 0x90}
	compressSplTokenAccountDiscriminator = []byte{0x70, 0xe6, 0x69, 0x65, 0x91, 0xca, 0x9d, 0x61}
	transferDiscriminator                = []byte{0xa3, 0x34, 0xc8, 0xe7, 0x8c, 0x03, 0x45, 0xba}
	approveDiscriminator                 = []byte{0x45, 0x4a, 0xd9, 0x24, 0x73, 0x75, 0x61, 0x4c}
	revokeDiscriminator                  = []byte{0xaa, 0x17, 0x1f, 0x22, 0x85, 0xad, 0x5d, 0xf2}
	freezeDiscriminator                  = []byte{0xff, 0x5b, 0xcf, 0x54, 0xfb, 0xc2, 0xfe, 0x3f}
	thawDiscriminator                    = []byte{0xe2, 0xf9, 0x22, 0x39, 0xbd, 0x15, 0xb1, 0x65}
	burnDiscriminator                    = []byte{0x74, 0x6e, 0x1d, 0x38, 0x6b, 0xdb, 0x2a, 0x5d}
)

var discriminatorsByInstructionType = map[InstructionType][]byte{
	InstructionTypeCreateTokenPool:         createTokenPoolDiscriminator,
	InstructionTypeAddTokenPool:            addTokenPoolDiscriminator,
	InstructionTypeMintTo:                  mintToDiscriminator,
	InstructionTypeBatchCompress:           batchCompressDiscriminator,
	InstructionTypeCompressSplTokenAccount: compressSplTokenAccountDiscriminator,
	InstructionTypeTransfer:                transferDiscriminator,
	InstructionTypeApprove:                 approveDiscriminator,
	InstructionTypeRevoke:                  revokeDiscriminator,
	InstructionTypeFreeze:                  freezeDiscriminator,
	InstructionTypeThaw:                    thawDiscriminator,
	InstructionTypeBurn:                    burnDiscriminator,
}

// GetInstructionType identifies instruction data by its discriminator.
func GetInstructionType(data []byte) InstructionType {
	if len(data) < DiscriminatorSize {
		return Unknown
	}

	for instructionType, discriminator := range discriminatorsByInstructionType {
		if bytes.Equal(data[:DiscriminatorSize], discriminator) {
			return instructionType
		}
	}
	return Unknown
}

// Discriminator returns the 8 byte prefix of the instruction's data, or nil
// for Unknown.
func (t InstructionType) Discriminator() []byte {
	discriminator, ok := discriminatorsByInstructionType[t]
	if !ok {
		return nil
	}
	res := make([]byte, DiscriminatorSize)
	copy(res, discriminator)
	return res
}

func (t InstructionType) String() string {
	switch t {
	case InstructionTypeCreateTokenPool:
		return "create_token_pool"
	case InstructionTypeAddTokenPool:
		return "add_token_pool"
	case InstructionTypeMintTo:
		return "mint_to"
	case InstructionTypeBatchCompress:
		return "batch_compress"
	case InstructionTypeCompressSplTokenAccount:
		return "compress_spl_token_account"
	case InstructionTypeTransfer:
		return "transfer"
	case InstructionTypeApprove:
		return "approve"
	case InstructionTypeRevoke:
		return "revoke"
	case InstructionTypeFreeze:
		return "freeze"
	case InstructionTypeThaw:
		return "thaw"
	case InstructionTypeBurn:
		return "burn"
	}
	return "unknown"
}

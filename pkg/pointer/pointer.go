package pointer

import "crypto/ed25519"

// Uint8 returns a pointer to the provided uint8 value
func Uint8(value uint8) *uint8 {
	return &value
}

// Uint8OrDefault returns the pointer if not nil, otherwise the default value
func Uint8OrDefault(value *uint8, defaultValue uint8) *uint8 {
	if value != nil {
		return value
	}
	return &defaultValue
}

// Uint8Copy returns a pointer that's a copy of the provided value
func Uint8Copy(value *uint8) *uint8 {
	if value == nil {
		return nil
	}

	return Uint8(*value)
}

// Uint64 returns a pointer to the provided uint64 value
func Uint64(value uint64) *uint64 {
	return &value
}

// Uint64IfValid returns a pointer to the value if it's valid, otherwise nil
func Uint64IfValid(valid bool, value uint64) *uint64 {
	if valid {
		return &value
	}
	return nil
}

// Uint64IfNonZero returns nil for zero, which is how optional amounts and
// lamports are written on the wire.
func Uint64IfNonZero(value uint64) *uint64 {
	return Uint64IfValid(value != 0, value)
}

// Uint64OrZero dereferences value, treating nil as zero
func Uint64OrZero(value *uint64) uint64 {
	if value == nil {
		return 0
	}
	return *value
}

// Uint64Copy returns a pointer that's a copy of the provided value
func Uint64Copy(value *uint64) *uint64 {
	if value == nil {
		return nil
	}

	return Uint64(*value)
}

// PublicKey returns a pointer to the provided key
func PublicKey(value ed25519.PublicKey) *ed25519.PublicKey {
	return &value
}

// PublicKeyIfValid returns a pointer to the key if it's valid, otherwise nil
func PublicKeyIfValid(valid bool, value ed25519.PublicKey) *ed25519.PublicKey {
	if valid {
		return &value
	}
	return nil
}

// PublicKeyCopy returns a pointer to a deep copy of the provided key
func PublicKeyCopy(value *ed25519.PublicKey) *ed25519.PublicKey {
	if value == nil {
		return nil
	}

	copied := make(ed25519.PublicKey, len(*value))
	copy(copied, *value)
	return &copied
}

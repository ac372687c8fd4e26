/* framecase - Declarative Binary Frames
 *
 * Copyright (C) 2026 The framecase Authors.
 *
 * This file is licensed under the terms of the MIT License, as found in LICENSE.md.
 */

package frame

// PayloadKind is a raw byte payload. With a provider reference it consumes
// exactly the provided byte count; without one it is greedy and consumes
// everything remaining in the enclosing region up to the fixed suffix.
type PayloadKind struct {
	provider string
}

// Payload declares a payload bounded by the named length provider. The
// reference may name a LengthKind slot or a bit record sub-slot
// ("record.sub").
func Payload(provider string) *PayloadKind {
	return &PayloadKind{provider: provider}
}

// GreedyPayload declares a payload consuming the remainder of the enclosing
// region. A greedy payload must contain at least one byte.
func GreedyPayload() *PayloadKind {
	return &PayloadKind{}
}

// Extent returns Bounded when a provider is declared, Greedy otherwise.
func (k *PayloadKind) Extent() Extent {
	if k.provider == "" {
		return GreedyExtent
	}
	return BoundedExtent
}

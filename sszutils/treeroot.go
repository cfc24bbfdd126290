// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-ssz library.

package sszutils

// CalculateLimit converts an element-count capacity (an ssz-max tag, or a
// StableContainer's theoretical N) into the chunk-count limit Merkleize
// needs to pad a List/Bitlist/StableContainer's tree to its fixed depth,
// independent of how many elements are actually present.
func CalculateLimit(maxCapacity, numItems, size uint64) uint64 {
	limit := (maxCapacity*size + 31) / 32
	if limit != 0 {
		return limit
	}
	if numItems == 0 {
		return 1
	}
	return numItems
}

// Copyright (c) 2025 pk910
// SPDX-License-Identifier: Apache-2.0
// This file is part of the dynamic-ssz library.

package reflection

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/kael-ssz/ssz/hasher"
	"github.com/kael-ssz/ssz/ssztypes"
	"github.com/kael-ssz/ssz/sszutils"
)

// buildRootFromType is the core recursive function for computing hash tree roots of Go values.
//
// It dispatches on the TypeDescriptor's metadata the same way marshalType/unmarshalType do,
// preferring a FastSSZ or Dynamic hash-root capability implementation before falling back to
// reflection-driven Merkleization.
func (ctx *ReflectionCtx) buildRootFromType(sourceType *ssztypes.TypeDescriptor, sourceValue reflect.Value, hh sszutils.HashWalker, pack bool, idt int) error {
	hashIndex := hh.Index()

	if sourceType.GoTypeFlags&ssztypes.GoTypeFlagIsPointer != 0 {
		if sourceValue.IsNil() {
			sourceValue = reflect.New(sourceType.Type.Elem()).Elem()
		} else {
			sourceValue = sourceValue.Elem()
		}
	}

	isFastsszHasher := sourceType.SszCompatFlags&ssztypes.SszCompatFlagFastSSZHasher != 0
	useDynamicHashRoot := sourceType.SszCompatFlags&ssztypes.SszCompatFlagDynamicHashRoot != 0
	hasDynamicSize := sourceType.SszTypeFlags&ssztypes.SszTypeFlagHasDynamicSize != 0
	hasDynamicMax := sourceType.SszTypeFlags&ssztypes.SszTypeFlagHasDynamicMax != 0
	useFastSsz := !ctx.noFastSsz && isFastsszHasher && !hasDynamicSize && !hasDynamicMax
	if !useFastSsz && sourceType.SszType == ssztypes.SszCustomType {
		useFastSsz = true
	}

	if ctx.verbose {
		ctx.logCb("%stype: %s\t kind: %v\t fastssz: %v\t index: %v\n", strings.Repeat(" ", idt), sourceType.Type.Name(), sourceType.Kind, useFastSsz, hashIndex)
	}

	if useFastSsz {
		if sourceType.SszCompatFlags&ssztypes.SszCompatFlagHashTreeRootWith != 0 && sourceType.HashTreeRootWithMethod != nil {
			value := sourceValue.Addr()
			results := sourceType.HashTreeRootWithMethod.Func.Call([]reflect.Value{value, reflect.ValueOf(hh)})
			if len(results) > 0 && !results[0].IsNil() {
				return fmt.Errorf("failed HashTreeRootWith: %v", results[0].Interface())
			}
		} else if hasher, ok := sourceValue.Addr().Interface().(sszutils.FastsszHashRoot); ok {
			hashBytes, err := hasher.HashTreeRoot()
			if err != nil {
				return fmt.Errorf("failed HashTreeRoot: %w", err)
			}
			hh.PutBytes(hashBytes[:])
		} else {
			useFastSsz = false
		}
	}

	if !useFastSsz && useDynamicHashRoot {
		if hasher, ok := sourceValue.Addr().Interface().(sszutils.DynamicHashRoot); ok {
			if err := hasher.HashTreeRootWithDyn(ctx.ds, hh); err != nil {
				return fmt.Errorf("failed HashTreeRootDyn: %w", err)
			}
		} else {
			useDynamicHashRoot = false
		}
	}

	if !useFastSsz && !useDynamicHashRoot {
		switch sourceType.SszType {
		case ssztypes.SszTypeWrapperType:
			if err := ctx.buildRootFromTypeWrapper(sourceType, sourceValue, hh, pack, idt); err != nil {
				return err
			}
		case ssztypes.SszContainerType:
			if err := ctx.buildRootFromContainer(sourceType, sourceValue, hh, idt); err != nil {
				return err
			}
		case ssztypes.SszProgressiveContainerType:
			if err := ctx.buildRootFromProgressiveContainer(sourceType, sourceValue, hh, idt); err != nil {
				return err
			}
		case ssztypes.SszStableContainerType:
			if err := ctx.buildRootFromStableContainer(sourceType, sourceValue, hh, idt); err != nil {
				return err
			}
		case ssztypes.SszVectorType, ssztypes.SszBitvectorType:
			if err := ctx.buildRootFromVector(sourceType, sourceValue, hh, idt); err != nil {
				return err
			}
		case ssztypes.SszListType, ssztypes.SszProgressiveListType:
			if err := ctx.buildRootFromList(sourceType, sourceValue, hh, idt); err != nil {
				return err
			}
		case ssztypes.SszBitlistType, ssztypes.SszProgressiveBitlistType:
			if err := ctx.buildRootFromBitlist(sourceType, sourceValue, hh, idt); err != nil {
				return err
			}
		case ssztypes.SszCompatibleUnionType:
			if err := ctx.buildRootFromCompatibleUnion(sourceType, sourceValue, hh, idt); err != nil {
				return err
			}
		case ssztypes.SszOptionalType:
			if err := ctx.buildRootFromOptional(sourceType, sourceValue, hh, idt); err != nil {
				return err
			}

		case ssztypes.SszBoolType:
			if pack {
				hh.AppendBool(sourceValue.Bool())
			} else {
				hh.PutBool(sourceValue.Bool())
			}
		case ssztypes.SszUint8Type:
			if pack {
				hh.AppendUint8(uint8(sourceValue.Uint()))
			} else {
				hh.PutUint8(uint8(sourceValue.Uint()))
			}
		case ssztypes.SszUint16Type:
			if pack {
				hh.AppendUint16(uint16(sourceValue.Uint()))
			} else {
				hh.PutUint16(uint16(sourceValue.Uint()))
			}
		case ssztypes.SszUint32Type:
			if pack {
				hh.AppendUint32(uint32(sourceValue.Uint()))
			} else {
				hh.PutUint32(uint32(sourceValue.Uint()))
			}
		case ssztypes.SszUint64Type:
			var uintVal uint64
			if sourceType.GoTypeFlags&ssztypes.GoTypeFlagIsTime != 0 {
				timeVal, isTime := sourceValue.Interface().(time.Time)
				if !isTime {
					return fmt.Errorf("time.Time type expected, got %v", sourceType.Type.Name())
				}
				uintVal = uint64(timeVal.Unix())
			} else {
				uintVal = sourceValue.Uint()
			}
			if pack {
				hh.AppendUint64(uintVal)
			} else {
				hh.PutUint64(uintVal)
			}
		case ssztypes.SszUint128Type, ssztypes.SszUint256Type:
			if err := ctx.buildRootFromLargeUint(sourceType, sourceValue, hh, pack, idt); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown type: %v", sourceType)
		}
	}

	if ctx.verbose {
		ctx.logCb("%shash: 0x%x\n", strings.Repeat(" ", idt), hh.Hash())
	}

	return nil
}

func (ctx *ReflectionCtx) buildRootFromTypeWrapper(sourceType *ssztypes.TypeDescriptor, sourceValue reflect.Value, hh sszutils.HashWalker, pack bool, idt int) error {
	dataField := sourceValue.Field(0)
	if !dataField.IsValid() {
		return fmt.Errorf("TypeWrapper missing 'Data' field")
	}
	return ctx.buildRootFromType(sourceType.ElemDesc, dataField, hh, pack, idt+2)
}

func (ctx *ReflectionCtx) buildRootFromLargeUint(sourceType *ssztypes.TypeDescriptor, sourceValue reflect.Value, hh sszutils.HashWalker, pack bool, idt int) error {
	if !sourceValue.CanAddr() && sourceValue.Kind() == reflect.Array {
		sourceValPtr := reflect.New(sourceValue.Type())
		sourceValPtr.Elem().Set(sourceValue)
		sourceValue = sourceValPtr.Elem()
	}

	sourceLen := uint32(sourceValue.Len())
	if sourceLen != sourceType.Size/sourceType.ElemDesc.Size {
		return fmt.Errorf("large uint type does not have expected data length (%d != %d)", sourceLen, sourceType.Size/sourceType.ElemDesc.Size)
	}

	if sourceType.ElemDesc.Kind == reflect.Uint64 {
		for i := 0; i < int(sourceType.Size/8); i++ {
			hh.AppendUint64(sourceValue.Index(i).Uint())
		}
	} else {
		hh.Append(sourceValue.Bytes())
	}
	if !pack {
		hh.FillUpTo32()
	}

	return nil
}

func (ctx *ReflectionCtx) buildRootFromContainer(sourceType *ssztypes.TypeDescriptor, sourceValue reflect.Value, hh sszutils.HashWalker, idt int) error {
	hashIndex := hh.Index()

	for i := 0; i < len(sourceType.ContainerDesc.Fields); i++ {
		field := sourceType.ContainerDesc.Fields[i]
		fieldValue := sourceValue.Field(int(field.FieldIndex))

		if ctx.verbose {
			ctx.logCb("%sfield %v\n", strings.Repeat(" ", idt), field.Name)
		}

		if err := ctx.buildRootFromType(field.Type, fieldValue, hh, false, idt+2); err != nil {
			return err
		}
	}

	hh.Merkleize(hashIndex)
	return nil
}

func (ctx *ReflectionCtx) getActiveFields(sourceType *ssztypes.TypeDescriptor) []byte {
	maxIndex := uint16(0)
	for _, field := range sourceType.ContainerDesc.Fields {
		if field.SszIndex > maxIndex {
			maxIndex = field.SszIndex
		}
	}

	bytesNeeded := (int(maxIndex) + 8) / 8
	activeFields := make([]byte, bytesNeeded)

	i := uint8(1 << (maxIndex % 8))
	activeFields[maxIndex/8] |= i

	for _, field := range sourceType.ContainerDesc.Fields {
		byteIndex := field.SszIndex / 8
		bitIndex := field.SszIndex % 8
		if int(byteIndex) < len(activeFields) {
			activeFields[byteIndex] |= (1 << bitIndex)
		}
	}

	return activeFields
}

func (ctx *ReflectionCtx) buildRootFromProgressiveContainer(sourceType *ssztypes.TypeDescriptor, sourceValue reflect.Value, hh sszutils.HashWalker, idt int) error {
	hashIndex := hh.Index()
	lastActiveField := -1

	for i := 0; i < len(sourceType.ContainerDesc.Fields); i++ {
		field := sourceType.ContainerDesc.Fields[i]

		if int(field.SszIndex) > lastActiveField+1 {
			for j := lastActiveField + 1; j < int(field.SszIndex); j++ {
				hh.PutUint8(0)
			}
		}
		lastActiveField = int(field.SszIndex)

		fieldValue := sourceValue.Field(int(field.FieldIndex))
		if err := ctx.buildRootFromType(field.Type, fieldValue, hh, false, idt+2); err != nil {
			return err
		}
	}

	activeFields := ctx.getActiveFields(sourceType)
	hh.MerkleizeProgressiveWithActiveFields(hashIndex, activeFields)
	return nil
}

// buildRootFromStableContainer computes the hash tree root of an EIP-7495 StableContainer(N).
//
// The value is merkleized as a theoretical N-slot struct where absent Optional fields
// contribute a zero leaf, and the root of the presence bitmap (a fixed Bitlist(N)) is
// mixed in at the end, binding the tree shape to the declared capacity rather than to
// however many fields happen to be present.
func (ctx *ReflectionCtx) buildRootFromStableContainer(sourceType *ssztypes.TypeDescriptor, sourceValue reflect.Value, hh sszutils.HashWalker, idt int) error {
	capacity := sourceType.StableCapacity
	sourceValue = sourceValue.Field(0)

	hashIndex := hh.Index()
	for i := 0; i < len(sourceType.ContainerDesc.Fields); i++ {
		field := sourceType.ContainerDesc.Fields[i]
		fieldValue := sourceValue.Field(int(field.FieldIndex))

		if ctx.verbose {
			ctx.logCb("%sfield %v\n", strings.Repeat(" ", idt), field.Name)
		}

		if field.Type.SszType == ssztypes.SszOptionalType {
			// Presence is already carried by the bitmap merkleized below, so the
			// field's leaf is the bare hash_tree_root(T) or a zero chunk, never a
			// selector-mixed root as buildRootFromOptional would produce for a
			// standalone Optional(T).
			if optionalIsPresent(fieldValue) {
				innerValue := optionalInnerValue(fieldValue)
				if err := ctx.buildRootFromType(field.Type.ElemDesc, innerValue, hh, false, idt+2); err != nil {
					return err
				}
			} else {
				var zero [32]byte
				hh.PutBytes(zero[:])
			}
			continue
		}

		if err := ctx.buildRootFromType(field.Type, fieldValue, hh, false, idt+2); err != nil {
			return err
		}
	}
	hh.Merkleize(hashIndex)

	// Presence bitmap: a fixed BitVector(capacity), same bit layout as the wire
	// encoding (no sentinel bit, since the capacity is already fixed by the type).
	raw := make([]byte, (capacity+7)/8)
	for i := 0; i < len(sourceType.ContainerDesc.Fields); i++ {
		field := sourceType.ContainerDesc.Fields[i]
		fieldValue := sourceValue.Field(int(field.FieldIndex))
		if optionalIsPresent(fieldValue) {
			raw[i/8] |= 1 << uint(i%8)
		}
	}

	bitmapIndex := hh.Index()
	hh.AppendBytes32(raw)
	hh.Merkleize(bitmapIndex)

	// Combine the struct root and the bitmap root into the final mixed root.
	hh.Merkleize(hashIndex)
	return nil
}

func (ctx *ReflectionCtx) buildRootFromCompatibleUnion(sourceType *ssztypes.TypeDescriptor, sourceValue reflect.Value, hh sszutils.HashWalker, idt int) error {
	variant := uint8(sourceValue.Field(0).Uint())
	dataField := sourceValue.Field(1)

	variantDesc, ok := sourceType.UnionVariants[variant]
	if !ok {
		return sszutils.ErrInvalidUnionVariant
	}

	if dataField.Kind() == reflect.Interface {
		if dataField.IsNil() {
			return sszutils.ErrUntaggedUnion
		}
		dataField = dataField.Elem()
	}

	hashIndex := hh.Index()
	if err := ctx.buildRootFromType(variantDesc, dataField, hh, false, idt+2); err != nil {
		return fmt.Errorf("failed to hash union variant %d: %w", variant, err)
	}

	hh.PutUint8(variant)
	hh.Merkleize(hashIndex)
	return nil
}

// buildRootFromOptional computes the hash tree root of an Optional(T).
//
// hash_tree_root(None) is the zero root mixed with selector 0; hash_tree_root(Some(v))
// is hash_tree_root(v) mixed with selector 1 (mirroring how CompatibleUnion mixes in
// its selector, but over a single possible type rather than several).
func (ctx *ReflectionCtx) buildRootFromOptional(sourceType *ssztypes.TypeDescriptor, sourceValue reflect.Value, hh sszutils.HashWalker, idt int) error {
	present := optionalIsPresent(sourceValue)

	hashIndex := hh.Index()
	selector := uint8(0)
	if present {
		selector = 1
		innerValue := optionalInnerValue(sourceValue)
		if err := ctx.buildRootFromType(sourceType.ElemDesc, innerValue, hh, false, idt+2); err != nil {
			return err
		}
	} else {
		var zero [32]byte
		hh.PutBytes(zero[:])
	}

	hh.PutUint8(selector)
	hh.Merkleize(hashIndex)
	return nil
}

func (ctx *ReflectionCtx) buildRootFromVector(sourceType *ssztypes.TypeDescriptor, sourceValue reflect.Value, hh sszutils.HashWalker, idt int) error {
	hashIndex := hh.Index()

	sliceLen := sourceValue.Len()
	if uint32(sliceLen) > sourceType.Len {
		if sourceType.Kind == reflect.Array {
			sliceLen = int(sourceType.Len)
		} else {
			return sszutils.ErrListTooBig
		}
	}

	appendZero := 0
	if uint32(sliceLen) < sourceType.Len {
		appendZero = int(sourceType.Len) - sliceLen
	}

	if sourceType.GoTypeFlags&ssztypes.GoTypeFlagIsByteArray != 0 {
		if !sourceValue.CanAddr() {
			sourceValPtr := reflect.New(sourceType.Type)
			sourceValPtr.Elem().Set(sourceValue)
			sourceValue = sourceValPtr.Elem()
		}

		var bytes []byte
		if sourceType.GoTypeFlags&ssztypes.GoTypeFlagIsString != 0 {
			bytes = []byte(sourceValue.String())[:sliceLen]
		} else {
			bytes = sourceValue.Bytes()[:sliceLen]
		}

		if appendZero > 0 {
			bytes = append(bytes, make([]byte, appendZero)...)
		}

		hh.AppendBytes32(bytes)
	} else {
		for i := 0; i < sliceLen; i++ {
			if err := ctx.buildRootFromType(sourceType.ElemDesc, sourceValue.Index(i), hh, true, idt+2); err != nil {
				return err
			}
		}

		if appendZero > 0 {
			var zeroVal reflect.Value
			if sourceType.ElemDesc.GoTypeFlags&ssztypes.GoTypeFlagIsPointer != 0 {
				zeroVal = reflect.New(sourceType.ElemDesc.Type.Elem())
			} else {
				zeroVal = reflect.New(sourceType.ElemDesc.Type).Elem()
			}

			index := hh.Index()
			if err := ctx.buildRootFromType(sourceType.ElemDesc, zeroVal, hh, true, idt+2); err != nil {
				return err
			}

			zeroLen := hh.Index() - index
			zeroBytes := hh.Hash()
			if len(zeroBytes) > zeroLen {
				zeroBytes = zeroBytes[len(zeroBytes)-zeroLen:]
			}

			for i := 1; i < appendZero; i++ {
				hh.Append(zeroBytes)
			}
		}

		hh.FillUpTo32()
	}

	hh.Merkleize(hashIndex)
	return nil
}

func (ctx *ReflectionCtx) buildRootFromList(sourceType *ssztypes.TypeDescriptor, sourceValue reflect.Value, hh sszutils.HashWalker, idt int) error {
	hashIndex := hh.Index()
	sliceLen := sourceValue.Len()

	if sourceType.GoTypeFlags&ssztypes.GoTypeFlagIsByteArray != 0 {
		if !sourceValue.CanAddr() {
			sourceValPtr := reflect.New(sourceType.Type)
			sourceValPtr.Elem().Set(sourceValue)
			sourceValue = sourceValPtr.Elem()
		}

		var bytes []byte
		if sourceType.GoTypeFlags&ssztypes.GoTypeFlagIsString != 0 {
			bytes = []byte(sourceValue.String())
		} else {
			bytes = sourceValue.Bytes()
		}

		hh.AppendBytes32(bytes)
	} else {
		for i := 0; i < sliceLen; i++ {
			if err := ctx.buildRootFromType(sourceType.ElemDesc, sourceValue.Index(i), hh, true, idt+2); err != nil {
				return err
			}
		}
		hh.FillUpTo32()
	}

	if sourceType.SszType == ssztypes.SszProgressiveListType {
		hh.MerkleizeProgressiveWithMixin(hashIndex, uint64(sliceLen))
		return nil
	}

	if sourceType.SszTypeFlags&ssztypes.SszTypeFlagHasLimit != 0 {
		var itemSize uint64
		switch sourceType.ElemDesc.SszType {
		case ssztypes.SszBoolType, ssztypes.SszUint8Type:
			itemSize = 1
		case ssztypes.SszUint16Type:
			itemSize = 2
		case ssztypes.SszUint32Type:
			itemSize = 4
		case ssztypes.SszUint64Type:
			itemSize = 8
		case ssztypes.SszUint128Type:
			itemSize = 16
		case ssztypes.SszUint256Type:
			itemSize = 32
		}

		var limit uint64
		if itemSize > 0 {
			limit = sszutils.CalculateLimit(sourceType.Limit, uint64(sliceLen), itemSize)
		} else {
			limit = sourceType.Limit
		}

		inputLen := hh.Index() - hashIndex
		if (uint64(inputLen)+31)/32 > limit {
			return fmt.Errorf("%w: %d chunks > limit of %d", sszutils.ErrChunkLimitExceeded, (uint64(inputLen)+31)/32, limit)
		}
		hh.MerkleizeWithMixin(hashIndex, uint64(sliceLen), limit)
	} else {
		hh.Merkleize(hashIndex)
	}

	return nil
}

func (ctx *ReflectionCtx) buildRootFromBitlist(sourceType *ssztypes.TypeDescriptor, sourceValue reflect.Value, hh sszutils.HashWalker, idt int) error {
	var maxSize uint64
	bytes := sourceValue.Bytes()

	if sourceType.SszTypeFlags&ssztypes.SszTypeFlagHasLimit != 0 {
		maxSize = sourceType.Limit
	} else {
		maxSize = uint64(len(bytes) * 8)
	}

	var size uint64
	var bitlist []byte
	hh.WithTemp(func(tmp []byte) []byte {
		tmp, size = hasher.ParseBitlist(tmp[:0], bytes)
		bitlist = tmp
		return tmp
	})

	if size > maxSize {
		return fmt.Errorf("bitlist too big: %d > %d", size, maxSize)
	}

	indx := hh.Index()
	hh.AppendBytes32(bitlist)
	if sourceType.SszType == ssztypes.SszProgressiveBitlistType {
		hh.MerkleizeProgressiveWithMixin(indx, size)
	} else {
		hh.MerkleizeWithMixin(indx, size, (maxSize+255)/256)
	}

	return nil
}

// optionalIsPresent reports whether a containers.Optional[T] value holds Some(v).
func optionalIsPresent(v reflect.Value) bool {
	present := v.FieldByName("Present")
	if !present.IsValid() {
		return false
	}
	return present.Bool()
}

func optionalInnerValue(v reflect.Value) reflect.Value {
	return v.FieldByName("Value")
}

func optionalSetPresent(v reflect.Value, present bool) {
	v.FieldByName("Present").SetBool(present)
}

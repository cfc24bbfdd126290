// Package ssz provides SSZ (Simple Serialize) encoding, decoding, and
// Merkleization with runtime support for dynamic field sizes.
package ssz

import (
	"fmt"
	"io"
	"reflect"

	"github.com/kael-ssz/ssz/hasher"
	"github.com/kael-ssz/ssz/reflection"
	"github.com/kael-ssz/ssz/ssztypes"
	"github.com/kael-ssz/ssz/sszutils"
)

// Codec is an SSZ encoder/decoder that uses runtime reflection to handle
// types whose sizes depend on runtime specification values (e.g. Ethereum
// presets such as mainnet/minimal). It maintains a cache of computed type
// descriptors and resolved spec values, so reusing one Codec instance
// across many calls avoids repeated reflection work.
//
// A Codec is safe for concurrent use.
//
// Example:
//
//	specs := map[string]any{"SYNC_COMMITTEE_SIZE": uint64(512)}
//	codec := ssz.NewCodec(specs)
//
//	data, err := codec.Marshal(&myStruct)
//	err = codec.Unmarshal(&myStruct, data)
//	root, err := codec.HashTreeRoot(&myStruct)
type Codec struct {
	typeCache      *ssztypes.TypeCache
	specValues     map[string]any
	specValueCache map[string]*cachedSpecValue
	options        *options
}

// NewCodec creates a Codec configured with the given spec values and options.
//
// specs maps specification names (as referenced by `ssz-size`/`ssz-max`
// struct tags, plain names or arithmetic expressions) to their runtime
// values. Pass nil for no dynamic specs (all sizes must then come from
// static tags).
func NewCodec(specs map[string]any, opts ...Option) *Codec {
	if specs == nil {
		specs = map[string]any{}
	}

	o := &options{
		logFn: func(format string, args ...any) {
			fmt.Printf(format, args...)
		},
	}
	for _, opt := range opts {
		opt(o)
	}

	c := &Codec{
		specValues:     specs,
		specValueCache: map[string]*cachedSpecValue{},
		options:        o,
	}
	c.typeCache = ssztypes.NewTypeCache(c)

	return c
}

// GetTypeCache returns the codec's type descriptor cache, mainly useful for
// debugging and introspection.
func (c *Codec) GetTypeCache() *ssztypes.TypeCache {
	return c.typeCache
}

func (c *Codec) newReflectionCtx() *reflection.ReflectionCtx {
	return reflection.NewReflectionCtxWithOptions(c, c.options.logFn, c.options.verbose, c.options.noFastSsz, c.options.borrowBytes)
}

func (c *Codec) descriptorFor(t reflect.Type) (*ssztypes.TypeDescriptor, error) {
	return c.typeCache.GetTypeDescriptorWithSchema(t, t, nil, nil, nil)
}

// Marshal serializes source into its SSZ representation, returning a newly
// allocated byte slice sized to fit exactly.
func (c *Codec) Marshal(source any) ([]byte, error) {
	sourceType := reflect.TypeOf(source)
	sourceValue := reflect.ValueOf(source)

	desc, err := c.descriptorFor(sourceType)
	if err != nil {
		return nil, err
	}

	ctx := c.newReflectionCtx()

	size, err := ctx.SizeSSZ(desc, sourceValue)
	if err != nil {
		return nil, err
	}

	encoder := sszutils.NewBufferEncoder(make([]byte, 0, size))
	if err := ctx.MarshalSSZ(desc, sourceValue, encoder); err != nil {
		return nil, err
	}

	buf := encoder.GetBuffer()
	if uint32(len(buf)) != size {
		return nil, fmt.Errorf("ssz length does not match expected length (expected: %v, got: %v)", size, len(buf))
	}

	return buf, nil
}

// MarshalTo serializes source and appends the result to buf, returning the
// extended slice. Useful for concatenating several encodings without extra
// allocations.
func (c *Codec) MarshalTo(source any, buf []byte) ([]byte, error) {
	sourceType := reflect.TypeOf(source)
	sourceValue := reflect.ValueOf(source)

	desc, err := c.descriptorFor(sourceType)
	if err != nil {
		return nil, err
	}

	ctx := c.newReflectionCtx()

	encoder := sszutils.NewBufferEncoder(buf)
	if err := ctx.MarshalSSZ(desc, sourceValue, encoder); err != nil {
		return nil, err
	}

	return encoder.GetBuffer(), nil
}

// MarshalSSZWriter serializes source directly to w, buffering internally
// where the teacher's stream encoder does, without holding the whole
// encoding in memory at once.
func (c *Codec) MarshalSSZWriter(source any, w io.Writer) error {
	sourceType := reflect.TypeOf(source)
	sourceValue := reflect.ValueOf(source)

	desc, err := c.descriptorFor(sourceType)
	if err != nil {
		return err
	}

	ctx := c.newReflectionCtx()

	encoder := sszutils.NewStreamEncoder(w)
	if err := ctx.MarshalSSZ(desc, sourceValue, encoder); err != nil {
		return err
	}

	return encoder.GetWriteError()
}

// SizeSSZ returns the exact number of bytes Marshal would produce for source,
// without actually encoding it.
func (c *Codec) SizeSSZ(source any) (int, error) {
	sourceType := reflect.TypeOf(source)
	sourceValue := reflect.ValueOf(source)

	desc, err := c.descriptorFor(sourceType)
	if err != nil {
		return 0, err
	}

	ctx := c.newReflectionCtx()

	size, err := ctx.SizeSSZ(desc, sourceValue)
	if err != nil {
		return 0, err
	}

	return int(size), nil
}

// Unmarshal decodes ssz into target, which must be a non-nil pointer. All
// bytes in ssz must be consumed; leftover bytes are reported as an error.
func (c *Codec) Unmarshal(target any, ssz []byte) error {
	targetType := reflect.TypeOf(target)
	targetValue := reflect.ValueOf(target)

	desc, err := c.descriptorFor(targetType)
	if err != nil {
		return err
	}

	if desc.GoTypeFlags&ssztypes.GoTypeFlagIsPointer == 0 {
		return fmt.Errorf("target must be a pointer")
	}
	if targetValue.IsNil() {
		return fmt.Errorf("target pointer must not be nil")
	}

	ctx := c.newReflectionCtx()

	decoder := sszutils.NewBufferDecoder(ssz)
	decoder.PushLimit(len(ssz))

	if err := ctx.UnmarshalSSZ(desc, targetValue, decoder); err != nil {
		return err
	}

	if diff := decoder.PopLimit(); diff != 0 {
		return fmt.Errorf("did not consume full ssz range (diff: %v, ssz size: %v)", diff, len(ssz))
	}

	return nil
}

// UnmarshalSSZReader decodes SSZ data of the given size read from r directly
// into target, without requiring the whole encoding to be buffered upfront.
// Pass size -1 if the length is not known ahead of time.
func (c *Codec) UnmarshalSSZReader(target any, r io.Reader, size int) error {
	targetType := reflect.TypeOf(target)
	targetValue := reflect.ValueOf(target)

	desc, err := c.descriptorFor(targetType)
	if err != nil {
		return err
	}

	if desc.GoTypeFlags&ssztypes.GoTypeFlagIsPointer == 0 {
		return fmt.Errorf("target must be a pointer")
	}
	if targetValue.IsNil() {
		return fmt.Errorf("target pointer must not be nil")
	}

	ctx := c.newReflectionCtx()

	decoder := sszutils.NewStreamDecoder(r, size)
	decoder.PushLimit(size)

	if err := ctx.UnmarshalSSZ(desc, targetValue, decoder); err != nil {
		return err
	}

	if diff := decoder.PopLimit(); diff != 0 {
		return fmt.Errorf("did not consume full ssz range (diff: %v, size: %v)", diff, size)
	}

	return nil
}

// HashTreeRoot computes the SSZ hash tree root of source.
func (c *Codec) HashTreeRoot(source any) ([32]byte, error) {
	var pool *hasher.HasherPool
	if c.options.noFastHash {
		pool = &hasher.DefaultHasherPool
	} else {
		pool = &hasher.FastHasherPool
	}

	hh := pool.Get()
	defer pool.Put(hh)

	if err := c.HashTreeRootWith(source, hh); err != nil {
		return [32]byte{}, err
	}

	return hh.HashRoot()
}

// HashTreeRootWith computes the hash tree root of source using the supplied
// HashWalker, allowing callers to reuse a hasher across many calls.
func (c *Codec) HashTreeRootWith(source any, hh sszutils.HashWalker) error {
	sourceType := reflect.TypeOf(source)
	sourceValue := reflect.ValueOf(source)

	desc, err := c.descriptorFor(sourceType)
	if err != nil {
		return err
	}

	ctx := c.newReflectionCtx()

	return ctx.HashTreeRoot(desc, sourceValue, hh)
}

// ValidateType reports whether t is compatible with SSZ encoding/decoding,
// without requiring an instance of it. Useful for catching schema mistakes
// (missing ssz-max tags on slices, unsupported field kinds, ...) ahead of
// time.
func (c *Codec) ValidateType(t reflect.Type) error {
	if _, err := c.descriptorFor(t); err != nil {
		return fmt.Errorf("type validation failed: %w", err)
	}
	return nil
}

package ssz

import (
	"fmt"

	"github.com/casbin/govaluate"
)

// cachedSpecValue memoizes the outcome of resolving a single spec expression,
// including the case where the expression could not be resolved against the
// configured spec values.
type cachedSpecValue struct {
	resolved bool
	value    uint64
}

// ResolveSpecValue evaluates name as an arithmetic expression over the
// Codec's configured spec values, satisfying sszutils.DynamicSpecs. Struct
// tags such as `ssz-size:"?SYNC_COMMITTEE_SIZE/8"` are evaluated this way,
// with the spec values substituted as expression variables.
//
// Results are cached per expression string for the lifetime of the Codec.
func (c *Codec) ResolveSpecValue(name string) (bool, uint64, error) {
	if cached := c.specValueCache[name]; cached != nil {
		return cached.resolved, cached.value, nil
	}

	cached := &cachedSpecValue{}

	expression, err := govaluate.NewEvaluableExpression(name)
	if err != nil {
		return false, 0, fmt.Errorf("error parsing dynamic spec expression %q: %w", name, err)
	}

	result, err := expression.Evaluate(c.specValues)
	if err == nil {
		if value, ok := result.(float64); ok {
			cached.resolved = true
			cached.value = uint64(value)
			if float64(cached.value) < value {
				// round up fractional results (e.g. SYNC_COMMITTEE_SIZE/8)
				cached.value++
			}
		}
	}

	c.specValueCache[name] = cached

	return cached.resolved, cached.value, nil
}

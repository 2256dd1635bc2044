package meshshade

import "errors"

// Error categories of a fill. Errors returned by FillCoons and FillTensor
// wrap one of these; test with errors.Is.
var (
	// ErrAllocation reports that the per-fill structures could not be
	// created.
	ErrAllocation = errors.New("meshshade: allocation failure")

	// ErrColorConversion reports a failing color space or function call.
	ErrColorConversion = errors.New("meshshade: color conversion failure")

	// ErrDeviceFill reports a failing device fill primitive.
	ErrDeviceFill = errors.New("meshshade: device fill failure")

	// ErrInternal reports a broken internal invariant: wedge arena
	// exhaustion, malformed wedge linkage or an unbalanced color stack.
	ErrInternal = errors.New("meshshade: internal consistency error")

	// ErrInvalidConfig reports an unusable Config or Shading.
	ErrInvalidConfig = errors.New("meshshade: invalid configuration")

	// ErrInvalidPatch reports a malformed patch record.
	ErrInvalidPatch = errors.New("meshshade: invalid patch")
)

//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package tm

import "errors"

// all errors returned by this package wrap one of these; test with errors.Is()
var (
	ErrDimensionMismatch = errors.New("embedding dimensionality mismatch")
	ErrNotFitted         = errors.New("model has not been fitted")
	ErrUnsupported       = errors.New("operation not supported by this strategy")
	ErrEmptyBatch        = errors.New("empty batch")
	ErrInvalidTopicCount = errors.New("invalid topic count")
)

// Package codec provides typed conversions on top of the goseal wire protocol:
// a Codec for one entity type, and strategies for values that travel as
// strings, such as RFC3339 timestamps.
package codec

import "context"

// Codec performs bidirectional transformation between the wire representation
// A and the domain representation B.
type Codec[A, B any] interface {
	Decode(ctx context.Context, a A) (B, error) // wire -> domain
	Encode(ctx context.Context, b B) (A, error) // domain -> wire
}

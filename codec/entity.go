package codec

import (
	"context"
	"fmt"

	"github.com/reoring/goseal"
)

// Entity returns a Codec between serialized documents and entities of type T.
// Encode renders in format f; Decode accepts either syntax. Decoding a
// document whose root is absent, null or of another type is an error.
func Entity[T goseal.Entity](f goseal.Format, opts ...goseal.Options) Codec[string, T] {
	var o goseal.Options
	if len(opts) > 0 {
		o = opts[len(opts)-1]
	}
	return &entityCodec[T]{format: f, opts: o}
}

type entityCodec[T goseal.Entity] struct {
	format goseal.Format
	opts   goseal.Options
}

func (c *entityCodec[T]) Decode(ctx context.Context, a string) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	e, err := goseal.Deserialize(a, c.opts)
	if err != nil {
		return zero, err
	}
	t, ok := e.(T)
	if !ok {
		return zero, goseal.Issues{{Path: "/", Code: goseal.CodeInvalidType, Message: fmt.Sprintf("expected %T, got %T", zero, e)}}
	}
	return t, nil
}

func (c *entityCodec[T]) Encode(ctx context.Context, b T) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !b.IsComplete() {
		return "", goseal.Issues{{Path: "/", Code: goseal.CodeBusinessRule, Message: "entity " + b.TypeName().Value() + " is not complete"}}
	}
	return goseal.Serialize(c.format, b, c.opts)
}

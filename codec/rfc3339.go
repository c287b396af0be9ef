package codec

import (
	"context"
	"time"

	"github.com/reoring/goseal"
)

// TimeRFC3339 returns a Codec that converts between RFC3339 strings and time.Time.
func TimeRFC3339() Codec[string, time.Time] { return timeCodec }

type rfc3339Codec struct{}

var timeCodec Codec[string, time.Time] = rfc3339Codec{}

func (rfc3339Codec) Decode(ctx context.Context, a string) (time.Time, error) {
	if err := ctx.Err(); err != nil {
		return time.Time{}, err
	}
	t, err := parseRFC3339(a)
	if err != nil {
		return time.Time{}, goseal.Issues{{Path: "/", Code: goseal.CodeInvalidFormat, Message: "invalid RFC3339 time", Cause: err}}
	}
	return t, nil
}

func (rfc3339Codec) Encode(ctx context.Context, b time.Time) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return formatRFC3339Canonical(b), nil
}

// WriteTime writes a time.Time as a canonical RFC3339 string primitive.
var WriteTime goseal.WriteAs[time.Time] = func(w *goseal.ObjectWriter, name goseal.FieldName, v time.Time) {
	s, err := timeCodec.Encode(context.Background(), v)
	if err != nil {
		w.Fail(err)
		return
	}
	w.WriteString(name, s)
}

// ReadTime reads a time.Time written by WriteTime. Malformed timestamps are
// reported as invalid_format issues and skipped.
var ReadTime goseal.ReadAs[time.Time] = func(r *goseal.ObjectReader, n *goseal.ReadTree) (time.Time, bool) {
	s, ok := goseal.ReadAsString(r, n)
	if !ok {
		return time.Time{}, false
	}
	t, err := timeCodec.Decode(context.Background(), s)
	if err != nil {
		r.Report(n, goseal.CodeInvalidFormat, "invalid RFC3339 time")
		return time.Time{}, false
	}
	return t, true
}

// ReadTimeField reads the field name with ReadTime, falling back to def.
func ReadTimeField(r *goseal.ObjectReader, name goseal.FieldName, def time.Time) time.Time {
	return goseal.ReadField(r, name, def, ReadTime)
}

// ---- helpers ----

func parseRFC3339(s string) (time.Time, error) {
	// Accept RFC3339Nano (trailing zeros optional)
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		if t2, err2 := time.Parse(time.RFC3339, s); err2 == nil {
			return t2, nil
		}
		return time.Time{}, err
	}
	return t, nil
}

func formatRFC3339Canonical(t time.Time) string {
	// Normalize to UTC and format using RFC3339Nano (Go trims trailing zeros)
	return t.UTC().Format(time.RFC3339Nano)
}

package deck_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/reoring/goseal"
	"github.com/reoring/goseal/deck"
)

func TestListDeck_RoundTrip(t *testing.T) {
	reg := goseal.NewRegistry()
	tags := deck.MustListKind(goseal.MustTypeName("app.Tags"), reg, goseal.WriteAsString, goseal.ReadAsString)
	d, err := tags.Of("b", "a", "b")
	if err != nil {
		t.Fatal(err)
	}
	if !d.IsComplete() || !d.Items().IsFrozen() {
		t.Fatalf("Of should return a completed, frozen deck")
	}
	if err := d.Items().Add("c"); !errors.Is(err, goseal.ErrImmutable) {
		t.Fatalf("Add on a completed deck = %v", err)
	}

	opts := goseal.Options{Registry: reg}
	text, err := goseal.Serialize(goseal.FormatJSON, d, opts)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"type_hint":"app.Tags","items":[` +
		`{"type_hint":"string","primitive_value":"b"},` +
		`{"type_hint":"string","primitive_value":"a"},` +
		`{"type_hint":"string","primitive_value":"b"}]}`
	if text != want {
		t.Fatalf("unexpected document:\n%s\nwant\n%s", text, want)
	}
	got, err := goseal.DeserializeAs[*deck.ListDeck[string]](text, nil, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !goseal.Equal(got, d) || goseal.Hash(got) != goseal.Hash(d) {
		t.Fatalf("decoded deck differs: %v", got.Items())
	}
}

func TestSetDeck_OrderInsensitiveEquality(t *testing.T) {
	reg := goseal.NewRegistry()
	ids := deck.MustSetKind(goseal.MustTypeName("app.Ids"), reg, goseal.WriteAsInt64, goseal.ReadAsInt64)
	a, _ := ids.Of(3, 1, 2, 3)
	b, _ := ids.Of(1, 2, 3)
	if a.Items().Len() != 3 {
		t.Fatalf("duplicates should collapse: %v", a.Items())
	}
	if !goseal.Equal(a, b) || goseal.Hash(a) != goseal.Hash(b) {
		t.Fatalf("set decks are order-insensitive")
	}

	opts := goseal.Options{Registry: reg}
	for _, f := range []goseal.Format{goseal.FormatJSON, goseal.FormatXML} {
		text, err := goseal.Serialize(f, a, opts)
		if err != nil {
			t.Fatal(err)
		}
		got, err := goseal.DeserializeAs[*deck.SetDeck[int64]](text, nil, opts)
		if err != nil {
			t.Fatalf("%v: %v", f, err)
		}
		if !slices.Equal(got.Items().Values(), []int64{3, 1, 2}) {
			t.Fatalf("%v: insertion order lost: %v", f, got.Items().Values())
		}
	}
}

func TestMapDeck_RoundTrip(t *testing.T) {
	reg := goseal.NewRegistry()
	scores := deck.MustMapKind(goseal.MustTypeName("app.Scores"), reg, deck.MapCodec[string, float64]{
		WriteKey:   goseal.WriteAsString,
		WriteValue: goseal.WriteAsFloat64,
		ReadKey:    goseal.ReadAsString,
		ReadValue:  goseal.ReadAsFloat64,
	})
	d, err := scores.Of(
		goseal.Entry[string, float64]{Key: "alice", Value: 9.5},
		goseal.Entry[string, float64]{Key: "bob", Value: -1},
	)
	if err != nil {
		t.Fatal(err)
	}
	opts := goseal.Options{Registry: reg}
	for _, f := range []goseal.Format{goseal.FormatJSONPretty, goseal.FormatXMLPretty} {
		text, err := goseal.Serialize(f, d, opts)
		if err != nil {
			t.Fatal(err)
		}
		got, err := goseal.DeserializeAs[*deck.MapDeck[string, float64]](text, nil, opts)
		if err != nil {
			t.Fatalf("%v: %v", f, err)
		}
		if !goseal.Equal(got, d) {
			t.Fatalf("%v: decoded deck differs: %v", f, got.Entries())
		}
		if !slices.Equal(got.Entries().Keys(), []string{"alice", "bob"}) {
			t.Fatalf("%v: key order lost: %v", f, got.Entries().Keys())
		}
	}
}

func TestDeck_BuilderAndKindsAreDistinct(t *testing.T) {
	reg := goseal.NewRegistry()
	a := deck.MustListKind(goseal.MustTypeName("app.A"), reg, goseal.WriteAsString, goseal.ReadAsString)
	b := deck.MustListKind(goseal.MustTypeName("app.B"), reg, goseal.WriteAsString, goseal.ReadAsString)

	bld := a.Builder()
	if err := bld.Edit(func(d *deck.ListDeck[string]) error { return d.Items().Add("x") }); err != nil {
		t.Fatal(err)
	}
	da, err := bld.Create()
	if err != nil {
		t.Fatal(err)
	}
	if bld.Under().Items().Len() != 0 {
		t.Fatalf("Create should leave a fresh deck behind")
	}
	db, _ := b.Of("x")
	if goseal.Equal(da, db) {
		t.Fatalf("decks of different kinds must not be equal")
	}
	if da.TypeName() != a.TypeName() {
		t.Fatalf("TypeName = %s", da.TypeName())
	}
}

func TestDeck_RegistrationErrors(t *testing.T) {
	if _, err := deck.NewListKind(goseal.HintString, goseal.NewRegistry(), goseal.WriteAsString, goseal.ReadAsString); err == nil {
		t.Fatalf("primitive hints cannot name a deck")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("MustSetKind should panic")
		}
	}()
	deck.MustSetKind(goseal.HintInt, goseal.NewRegistry(), goseal.WriteAsInt32, goseal.ReadAsInt32)
}

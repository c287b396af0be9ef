// Package testentity holds registered sample entities shared by the test
// suites and the CLI bench command.
package testentity

import (
	"strings"
	"sync"
	"time"

	"github.com/reoring/goseal"
	"github.com/reoring/goseal/codec"
	"github.com/reoring/goseal/field"
)

// Type names.
var (
	BookType      = goseal.MustTypeName("goseal.test.Book")
	PublisherType = goseal.MustTypeName("goseal.test.Publisher")
	MemoType      = goseal.MustTypeName("goseal.test.Memo")
	// OrphanType is never registered.
	OrphanType = goseal.MustTypeName("goseal.test.Orphan")
)

// Field names.
var (
	FieldTitle     = goseal.MustFieldName("title")
	FieldPages     = goseal.MustFieldName("pages")
	FieldISBN      = goseal.MustFieldName("isbn")
	FieldEdition   = goseal.MustFieldName("edition")
	FieldFlags     = goseal.MustFieldName("flags")
	FieldGrade     = goseal.MustFieldName("grade")
	FieldRating    = goseal.MustFieldName("rating")
	FieldPrice     = goseal.MustFieldName("price")
	FieldInPrint   = goseal.MustFieldName("in_print")
	FieldPublished = goseal.MustFieldName("published")
	FieldTags      = goseal.MustFieldName("tags")
	FieldGenres    = goseal.MustFieldName("genres")
	FieldRatings   = goseal.MustFieldName("ratings")
	FieldPublisher = goseal.MustFieldName("publisher")
	FieldNote      = goseal.MustFieldName("note")
	FieldExtras    = goseal.MustFieldName("extras")
	FieldName      = goseal.MustFieldName("name")
	FieldCity      = goseal.MustFieldName("city")
	FieldText      = goseal.MustFieldName("text")
	FieldAuthors   = goseal.MustFieldName("authors")
)

var registerOnce sync.Once

// Register adds the sample types to the process-wide registry. OrphanType is
// left out on purpose.
func Register() {
	registerOnce.Do(func() {
		RegisterInto(goseal.DefaultRegistry())
	})
}

// RegisterInto adds the sample types to reg.
func RegisterInto(reg *goseal.Registry) {
	must(goseal.RegisterType(reg, BookType, readBook))
	must(goseal.RegisterType(reg, PublisherType, readPublisher))
	must(goseal.RegisterType(reg, MemoType, readMemo))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Book exercises every primitive, each field collection kind, a nested entity
// and a polymorphic field.
type Book struct {
	goseal.Completion

	title     string
	pages     int32
	isbn      int64
	edition   int16
	flags     uint8
	grade     goseal.Char
	rating    float32
	price     float64
	inPrint   bool
	published time.Time
	tags      *field.List[string]
	genres    *field.Set[string]
	ratings   *field.Map[string, int32]
	publisher *Publisher
	note      any
	extras    *field.List[any]
}

func newBook() *Book {
	b := &Book{}
	b.tags = field.NewList[string](field.WithOwner(b))
	b.genres = field.NewSet[string](field.WithOwner(b))
	b.ratings = field.NewMap[string, int32](field.WithOwner(b))
	b.extras = field.NewList[any](field.WithOwner(b))
	return b
}

func (b *Book) TypeName() goseal.TypeName { return BookType }

func (b *Book) Title() string                      { return b.title }
func (b *Book) Pages() int32                       { return b.pages }
func (b *Book) ISBN() int64                        { return b.isbn }
func (b *Book) Edition() int16                     { return b.edition }
func (b *Book) Flags() uint8                       { return b.flags }
func (b *Book) Grade() goseal.Char                 { return b.grade }
func (b *Book) Rating() float32                    { return b.rating }
func (b *Book) Price() float64                     { return b.price }
func (b *Book) InPrint() bool                      { return b.inPrint }
func (b *Book) Published() time.Time               { return b.published }
func (b *Book) Tags() *field.List[string]          { return b.tags }
func (b *Book) Genres() *field.Set[string]         { return b.genres }
func (b *Book) Ratings() *field.Map[string, int32] { return b.ratings }
func (b *Book) Publisher() *Publisher              { return b.publisher }
func (b *Book) Note() any                          { return b.note }
func (b *Book) Extras() *field.List[any]           { return b.extras }

// SetTitle changes the title while the book is mutable.
func (b *Book) SetTitle(t string) error {
	if err := b.CheckMutable("book set title"); err != nil {
		return err
	}
	b.title = t
	return nil
}

func (b *Book) Write(w *goseal.ObjectWriter) error {
	w.WriteString(FieldTitle, b.title)
	w.WriteInt32(FieldPages, b.pages)
	w.WriteInt64(FieldISBN, b.isbn)
	w.WriteInt16(FieldEdition, b.edition)
	w.WriteUint8(FieldFlags, b.flags)
	w.WriteChar(FieldGrade, b.grade)
	w.WriteFloat32(FieldRating, b.rating)
	w.WriteFloat64(FieldPrice, b.price)
	w.WriteBool(FieldInPrint, b.inPrint)
	if !b.published.IsZero() {
		codec.WriteTime(w, FieldPublished, b.published)
	}
	goseal.WriteSlice(w, FieldTags, b.tags.Values(), goseal.WriteAsString)
	goseal.WriteSet(w, FieldGenres, b.genres.All(), goseal.WriteAsString)
	goseal.WriteMap(w, FieldRatings, b.ratings.All(), goseal.WriteAsString, goseal.WriteAsInt32)
	w.WriteEntity(FieldPublisher, b.publisher)
	w.WriteObject(FieldNote, b.note)
	goseal.WriteSlice(w, FieldExtras, b.extras.Values(), goseal.WriteAsAny)
	return w.Err()
}

func readBook(r *goseal.ObjectReader) (*Book, error) {
	b := newBook()
	b.title = r.ReadString(FieldTitle, "")
	b.pages = r.ReadInt32(FieldPages, 0)
	b.isbn = r.ReadInt64(FieldISBN, 0)
	b.edition = r.ReadInt16(FieldEdition, 0)
	b.flags = r.ReadUint8(FieldFlags, 0)
	b.grade = r.ReadChar(FieldGrade, 0)
	b.rating = r.ReadFloat32(FieldRating, 0)
	b.price = r.ReadFloat64(FieldPrice, 0)
	b.inPrint = r.ReadBool(FieldInPrint, false)
	b.published = codec.ReadTimeField(r, FieldPublished, time.Time{})
	if err := b.tags.AddAll(goseal.ReadSlice(r, FieldTags, goseal.ReadAsString)...); err != nil {
		return nil, err
	}
	for _, g := range goseal.ReadSlice(r, FieldGenres, goseal.ReadAsString) {
		if _, err := b.genres.Add(g); err != nil {
			return nil, err
		}
	}
	for _, e := range goseal.ReadMap(r, FieldRatings, goseal.ReadAsString, goseal.ReadAsInt32) {
		if _, _, err := b.ratings.Put(e.Key, e.Value); err != nil {
			return nil, err
		}
	}
	b.publisher = goseal.ReadEntity[*Publisher](r, FieldPublisher, nil)
	b.note = r.ReadObject(FieldNote, nil)
	if err := b.extras.AddAll(goseal.ReadSlice(r, FieldExtras, goseal.ReadAsAny)...); err != nil {
		return nil, err
	}
	return b, r.Err()
}

func (b *Book) Normalize() {
	b.title = strings.TrimSpace(b.title)
	if !b.published.IsZero() {
		b.published = b.published.UTC()
	}
}

func (b *Book) Validate() error {
	var v goseal.Validator
	v.Require(FieldTitle, b.title != "")
	v.Check(FieldPages, b.pages >= 0, goseal.CodeTooSmall, "page count must not be negative")
	v.RequireComplete(FieldPublisher, b.publisher)
	if e, ok := b.note.(goseal.Entity); ok {
		v.RequireComplete(FieldNote, e)
	}
	return v.Err()
}

// Freeze cascades to every owned collection in declaration order.
func (b *Book) Freeze() {
	goseal.FreezeAll(b.tags, b.genres, b.ratings, b.extras)
}

// BookBuilder populates a Book before completing it.
type BookBuilder struct {
	b *goseal.Builder[*Book]
}

// NewBookBuilder starts from an empty book.
func NewBookBuilder() *BookBuilder {
	return &BookBuilder{b: goseal.NewBuilder(newBook)}
}

// NewBookBuilderFrom starts from a mutable copy of start.
func NewBookBuilderFrom(start *Book) (*BookBuilder, error) {
	b, err := goseal.NewBuilderFrom(newBook, start)
	if err != nil {
		return nil, err
	}
	return &BookBuilder{b: b}, nil
}

func (bb *BookBuilder) edit(fn func(b *Book) error) *BookBuilder {
	if err := bb.b.Edit(fn); err != nil {
		panic(err)
	}
	return bb
}

func (bb *BookBuilder) Title(t string) *BookBuilder {
	return bb.edit(func(b *Book) error { b.title = t; return nil })
}

func (bb *BookBuilder) Pages(n int32) *BookBuilder {
	return bb.edit(func(b *Book) error { b.pages = n; return nil })
}

func (bb *BookBuilder) ISBN(n int64) *BookBuilder {
	return bb.edit(func(b *Book) error { b.isbn = n; return nil })
}

func (bb *BookBuilder) Edition(n int16) *BookBuilder {
	return bb.edit(func(b *Book) error { b.edition = n; return nil })
}

func (bb *BookBuilder) Flags(n uint8) *BookBuilder {
	return bb.edit(func(b *Book) error { b.flags = n; return nil })
}

func (bb *BookBuilder) Grade(c goseal.Char) *BookBuilder {
	return bb.edit(func(b *Book) error { b.grade = c; return nil })
}

func (bb *BookBuilder) Rating(f float32) *BookBuilder {
	return bb.edit(func(b *Book) error { b.rating = f; return nil })
}

func (bb *BookBuilder) Price(f float64) *BookBuilder {
	return bb.edit(func(b *Book) error { b.price = f; return nil })
}

func (bb *BookBuilder) InPrint(v bool) *BookBuilder {
	return bb.edit(func(b *Book) error { b.inPrint = v; return nil })
}

func (bb *BookBuilder) Published(t time.Time) *BookBuilder {
	return bb.edit(func(b *Book) error { b.published = t; return nil })
}

func (bb *BookBuilder) Tags(ts ...string) *BookBuilder {
	return bb.edit(func(b *Book) error { return b.tags.AddAll(ts...) })
}

func (bb *BookBuilder) Genres(gs ...string) *BookBuilder {
	return bb.edit(func(b *Book) error {
		for _, g := range gs {
			if _, err := b.genres.Add(g); err != nil {
				return err
			}
		}
		return nil
	})
}

func (bb *BookBuilder) Rate(source string, stars int32) *BookBuilder {
	return bb.edit(func(b *Book) error {
		_, _, err := b.ratings.Put(source, stars)
		return err
	})
}

func (bb *BookBuilder) Publisher(p *Publisher) *BookBuilder {
	return bb.edit(func(b *Book) error { b.publisher = p; return nil })
}

func (bb *BookBuilder) Note(v any) *BookBuilder {
	return bb.edit(func(b *Book) error { b.note = v; return nil })
}

func (bb *BookBuilder) Extras(vs ...any) *BookBuilder {
	return bb.edit(func(b *Book) error { return b.extras.AddAll(vs...) })
}

// Under exposes the book being built.
func (bb *BookBuilder) Under() *Book { return bb.b.Under() }

// Create completes the book.
func (bb *BookBuilder) Create() (*Book, error) { return bb.b.Create() }

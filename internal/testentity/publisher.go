package testentity

import (
	"strings"

	"github.com/reoring/goseal"
	"github.com/reoring/goseal/field"
)

// Publisher is a small immutable entity nested inside Book.
type Publisher struct {
	goseal.Completion

	name    string
	city    string
	authors *field.List[string]
}

func newPublisher() *Publisher {
	p := &Publisher{}
	p.authors = field.NewList[string](field.WithOwner(p))
	return p
}

// NewPublisher returns a completed publisher.
func NewPublisher(name, city string, authors ...string) (*Publisher, error) {
	p := newPublisher()
	p.name, p.city = name, city
	if err := p.authors.AddAll(authors...); err != nil {
		return nil, err
	}
	if err := goseal.Complete(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Publisher) TypeName() goseal.TypeName    { return PublisherType }
func (p *Publisher) Name() string                 { return p.name }
func (p *Publisher) City() string                 { return p.city }
func (p *Publisher) Authors() *field.List[string] { return p.authors }

func (p *Publisher) Write(w *goseal.ObjectWriter) error {
	w.WriteString(FieldName, p.name)
	w.WriteString(FieldCity, p.city)
	goseal.WriteSlice(w, FieldAuthors, p.authors.Values(), goseal.WriteAsString)
	return w.Err()
}

func readPublisher(r *goseal.ObjectReader) (*Publisher, error) {
	p := newPublisher()
	p.name = r.ReadString(FieldName, "")
	p.city = r.ReadString(FieldCity, "")
	if err := p.authors.AddAll(goseal.ReadSlice(r, FieldAuthors, goseal.ReadAsString)...); err != nil {
		return nil, err
	}
	return p, r.Err()
}

func (p *Publisher) Normalize() {
	p.name = strings.TrimSpace(p.name)
	p.city = strings.TrimSpace(p.city)
}

func (p *Publisher) Validate() error {
	var v goseal.Validator
	v.Require(FieldName, p.name != "")
	return v.Err()
}

func (p *Publisher) Freeze() { p.authors.Freeze() }

// Equal compares publishers by name and city; the author list is ordered.
func (p *Publisher) Equal(other goseal.Entity) bool {
	o, ok := other.(*Publisher)
	if !ok {
		return false
	}
	return p.name == o.name && p.city == o.city && p.authors.Equal(o.authors)
}

// Hash is consistent with Equal.
func (p *Publisher) Hash() uint64 {
	h := goseal.HashValue(p.name)*31 + goseal.HashValue(p.city)
	return h*31 + p.authors.Hash()
}

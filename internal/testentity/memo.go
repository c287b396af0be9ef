package testentity

import "github.com/reoring/goseal"

// Memo is a mutable entity: completing it validates but never freezes it.
type Memo struct {
	goseal.Completion
	text string
}

// NewMemo returns a completed memo.
func NewMemo(text string) (*Memo, error) {
	m := &Memo{text: text}
	if err := goseal.Complete(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Memo) TypeName() goseal.TypeName { return MemoType }
func (m *Memo) Text() string              { return m.text }

// SetText changes the text; memos stay mutable after completion.
func (m *Memo) SetText(s string) error {
	if err := m.CheckMutable("memo set text"); err != nil {
		return err
	}
	m.text = s
	return nil
}

func (m *Memo) Write(w *goseal.ObjectWriter) error {
	w.WriteString(FieldText, m.text)
	return w.Err()
}

func readMemo(r *goseal.ObjectReader) (*Memo, error) {
	return &Memo{text: r.ReadString(FieldText, "")}, r.Err()
}

func (m *Memo) Normalize()      {}
func (m *Memo) Validate() error { return nil }

// Orphan is an entity whose type is never registered. Writing it logs a
// warning; reading it falls back to the caller's default.
type Orphan struct {
	goseal.Completion
	Text string
}

// NewOrphan returns a completed orphan.
func NewOrphan(text string) *Orphan {
	o := &Orphan{Text: text}
	if err := goseal.Complete(o); err != nil {
		panic(err)
	}
	return o
}

func (o *Orphan) TypeName() goseal.TypeName { return OrphanType }

func (o *Orphan) Write(w *goseal.ObjectWriter) error {
	w.WriteString(FieldText, o.Text)
	return w.Err()
}

func (o *Orphan) Normalize()      {}
func (o *Orphan) Validate() error { return nil }

package goseal_test

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/reoring/goseal"
	"github.com/reoring/goseal/internal/testentity"
)

// draft is a mutable entity defined outside the sample package; it can be left
// uncompleted on purpose.
type draft struct {
	goseal.Completion
	text string
}

var draftType = goseal.MustTypeName("goseal.test.Draft")

func (d *draft) TypeName() goseal.TypeName { return draftType }
func (d *draft) Normalize()                { d.text = strings.ToLower(d.text) }

func (d *draft) Validate() error {
	if d.text == "invalid" {
		return errors.New("draft text is invalid")
	}
	return nil
}

func (d *draft) Write(w *goseal.ObjectWriter) error {
	w.WriteString(testentity.FieldText, d.text)
	return w.Err()
}

func newBook(t *testing.T) *testentity.Book {
	t.Helper()
	testentity.Register()
	pub, err := testentity.NewPublisher("Acme", "Kyoto", "Sei")
	if err != nil {
		t.Fatalf("NewPublisher: %v", err)
	}
	b, err := testentity.NewBookBuilder().
		Title("  Pillow Book  ").
		Pages(320).
		Tags("classic", "essay").
		Genres("diary").
		Rate("critics", 5).
		Publisher(pub).
		Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return b
}

func TestComplete_NormalizesValidatesAndFreezes(t *testing.T) {
	b := newBook(t)
	if !b.IsComplete() || !b.IsFrozen() {
		t.Fatalf("created book should be complete and frozen")
	}
	if b.Title() != "Pillow Book" {
		t.Fatalf("Normalize should trim the title, got %q", b.Title())
	}
	if !b.Tags().IsFrozen() || !b.Genres().IsFrozen() || !b.Ratings().IsFrozen() {
		t.Fatalf("owned collections should be frozen")
	}
}

func TestComplete_OnlyOnce(t *testing.T) {
	b := newBook(t)
	err := goseal.Complete(b)
	if !errors.Is(err, goseal.ErrAlreadyComplete) {
		t.Fatalf("second Complete: got %v, want ErrAlreadyComplete", err)
	}
}

func TestComplete_ConcurrentCallersSucceedOnce(t *testing.T) {
	d := &draft{text: "x"}
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if goseal.Complete(d) == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if ok != 1 {
		t.Fatalf("exactly one Complete should succeed, got %d", ok)
	}
}

func TestComplete_ValidationFailure(t *testing.T) {
	testentity.Register()
	_, err := testentity.NewBookBuilder().Pages(-1).Create()
	var ve *goseal.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Type != testentity.BookType {
		t.Errorf("Type = %v, want %v", ve.Type, testentity.BookType)
	}
	codes := map[string]string{}
	for _, is := range ve.Issues {
		codes[is.Path] = is.Code
	}
	if codes["/title"] != goseal.CodeRequired {
		t.Errorf("missing title should be required, got %v", ve.Issues)
	}
	if codes["/pages"] != goseal.CodeTooSmall {
		t.Errorf("negative pages should be too_small, got %v", ve.Issues)
	}
}

func TestComplete_PlainErrorBecomesBusinessRule(t *testing.T) {
	d := &draft{text: "INVALID"}
	err := goseal.Complete(d)
	var ve *goseal.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Issues[0].Code != goseal.CodeBusinessRule {
		t.Fatalf("code = %s, want business_rule", ve.Issues[0].Code)
	}
	if d.IsComplete() {
		t.Fatalf("failed entity must not be complete")
	}
	if !errors.Is(goseal.Complete(d), goseal.ErrAlreadyComplete) {
		t.Fatalf("a failed entity cannot be completed again")
	}
}

func TestFreeze_FieldSetterFails(t *testing.T) {
	b := newBook(t)
	err := b.SetTitle("other")
	if !errors.Is(err, goseal.ErrImmutable) {
		t.Fatalf("SetTitle on frozen book: got %v, want ErrImmutable", err)
	}
	var ie *goseal.ImmutableError
	if !errors.As(err, &ie) || ie.Op == "" {
		t.Fatalf("expected ImmutableError with op, got %v", err)
	}
}

func TestFreeze_CollectionsRejectMutation(t *testing.T) {
	b := newBook(t)
	checks := map[string]error{
		"list add":    b.Tags().Add("x"),
		"list clear":  b.Tags().Clear(),
		"map delete":  func() error { _, _, err := b.Ratings().Delete("critics"); return err }(),
		"map put":     func() error { _, _, err := b.Ratings().Put("k", 1); return err }(),
		"set add":     func() error { _, err := b.Genres().Add("y"); return err }(),
		"set remove":  func() error { _, err := b.Genres().Remove("diary"); return err }(),
		"extras add":  b.Extras().Add(1),
		"authors add": b.Publisher().Authors().Add("z"),
	}
	for name, err := range checks {
		if !errors.Is(err, goseal.ErrImmutable) {
			t.Errorf("%s: got %v, want ErrImmutable", name, err)
		}
	}
	if b.Tags().Len() != 2 || b.Ratings().Len() != 1 || b.Genres().Len() != 1 {
		t.Fatalf("frozen collections changed")
	}
}

func TestFreeze_PreCapturedViewsAndIterators(t *testing.T) {
	testentity.Register()
	bb := testentity.NewBookBuilder().Title("t").Tags("a", "b").Rate("k", 1).Genres("g")
	under := bb.Under()

	tagIt := under.Tags().Iterator()
	keys := under.Ratings().KeySet()
	values := under.Ratings().ValueView()
	entries := under.Ratings().EntrySet()
	genreIt := under.Genres().Iterator()
	sub, err := under.Tags().SubList(0, 2)
	if err != nil {
		t.Fatalf("SubList: %v", err)
	}

	if _, err := bb.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if !tagIt.Next() {
		t.Fatalf("iterator should still read")
	}
	if err := tagIt.Remove(); !errors.Is(err, goseal.ErrImmutable) {
		t.Errorf("iterator Remove: got %v", err)
	}
	if err := tagIt.Set("z"); !errors.Is(err, goseal.ErrImmutable) {
		t.Errorf("iterator Set: got %v", err)
	}
	if _, err := keys.Remove("k"); !errors.Is(err, goseal.ErrImmutable) {
		t.Errorf("KeySet Remove: got %v", err)
	}
	if err := keys.Clear(); !errors.Is(err, goseal.ErrImmutable) {
		t.Errorf("KeySet Clear: got %v", err)
	}
	if _, err := values.Remove(1); !errors.Is(err, goseal.ErrImmutable) {
		t.Errorf("ValueView Remove: got %v", err)
	}
	for e := range entries.All() {
		if _, err := e.SetValue(9); !errors.Is(err, goseal.ErrImmutable) {
			t.Errorf("entry SetValue: got %v", err)
		}
	}
	genreIt.Next()
	if err := genreIt.Remove(); !errors.Is(err, goseal.ErrImmutable) {
		t.Errorf("set iterator Remove: got %v", err)
	}
	if _, err := sub.Set(0, "q"); !errors.Is(err, goseal.ErrImmutable) {
		t.Errorf("SubList Set: got %v", err)
	}
	if got := under.Tags().Values(); len(got) != 2 || got[0] != "a" {
		t.Fatalf("tags changed through a view: %v", got)
	}
	if v, _ := under.Ratings().Get("k"); v != 1 {
		t.Fatalf("rating changed through a view: %d", v)
	}
}

func TestBuilder_CreateSwapsInFreshInstance(t *testing.T) {
	testentity.Register()
	bb := testentity.NewBookBuilder().Title("first").Tags("a")
	first, err := bb.Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if bb.Under() == first {
		t.Fatalf("builder should hold a fresh instance after Create")
	}
	second, err := bb.Title("second").Tags("b").Create()
	if err != nil {
		t.Fatalf("second Create: %v", err)
	}
	if first.Title() != "first" || first.Tags().Len() != 1 || first.Tags().At(0) != "a" {
		t.Fatalf("first book changed: %q %v", first.Title(), first.Tags().Values())
	}
	if second.Tags().Len() != 1 || second.Tags().At(0) != "b" {
		t.Fatalf("second book shares state with the first: %v", second.Tags().Values())
	}
}

func TestBuilder_FailedCreateLeavesBuilderUsable(t *testing.T) {
	testentity.Register()
	bb := testentity.NewBookBuilder().Pages(3)
	if _, err := bb.Create(); err == nil {
		t.Fatalf("expected validation error")
	}
	b, err := bb.Title("ok").Create()
	if err != nil {
		t.Fatalf("builder should be reusable: %v", err)
	}
	if b.Pages() != 0 {
		t.Fatalf("fresh instance should not inherit failed edits, pages = %d", b.Pages())
	}
}

func TestBuilder_FromExistingIsIsolated(t *testing.T) {
	orig := newBook(t)
	bb, err := testentity.NewBookBuilderFrom(orig)
	if err != nil {
		t.Fatalf("NewBookBuilderFrom: %v", err)
	}
	edited, err := bb.Title("Edited").Tags("more").Create()
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if orig.Title() != "Pillow Book" || orig.Tags().Len() != 2 {
		t.Fatalf("original changed: %q %v", orig.Title(), orig.Tags().Values())
	}
	if edited.Title() != "Edited" || edited.Tags().Len() != 3 {
		t.Fatalf("edit lost: %q %v", edited.Title(), edited.Tags().Values())
	}
	if edited.Publisher() == orig.Publisher() {
		t.Fatalf("nested entity should be a deep copy")
	}
	if !goseal.Equal(edited.Publisher(), orig.Publisher()) {
		t.Fatalf("copied publisher should equal the original")
	}
}

func TestBuilder_EditOnCompletedUnderFails(t *testing.T) {
	pub, _ := testentity.NewPublisher("P", "C")
	pb := goseal.NewBuilder(func() *testentity.Publisher { return pub })
	err := pb.Edit(func(*testentity.Publisher) error { return nil })
	if !errors.Is(err, goseal.ErrImmutable) {
		t.Fatalf("Edit on a completed instance: got %v", err)
	}
}

func TestMutableEntity_StaysMutable(t *testing.T) {
	testentity.Register()
	m, err := testentity.NewMemo("hello")
	if err != nil {
		t.Fatalf("NewMemo: %v", err)
	}
	if !m.IsComplete() || m.IsFrozen() {
		t.Fatalf("memo should be complete but not frozen")
	}
	if err := m.SetText("changed"); err != nil {
		t.Fatalf("SetText: %v", err)
	}
	if m.Text() != "changed" {
		t.Fatalf("Text = %q", m.Text())
	}
}

func TestRequireComplete_RejectsOpenNestedEntity(t *testing.T) {
	testentity.Register()
	_, err := testentity.NewBookBuilder().Title("t").Note(&draft{text: "open"}).Create()
	var ve *goseal.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Issues[0].Path != "/note" {
		t.Fatalf("issue path = %s, want /note", ve.Issues[0].Path)
	}
}

func TestEqualAndHash(t *testing.T) {
	a := newBook(t)
	b := newBook(t)
	if a == b {
		t.Fatalf("expected distinct instances")
	}
	if !goseal.Equal(a, b) {
		t.Fatalf("structurally equal books should be Equal")
	}
	if goseal.Hash(a) != goseal.Hash(b) {
		t.Fatalf("equal books should hash equally")
	}
	c, err := testentity.NewBookBuilderFrom(a)
	if err != nil {
		t.Fatal(err)
	}
	other, err := c.Pages(1).Create()
	if err != nil {
		t.Fatal(err)
	}
	if goseal.Equal(a, other) {
		t.Fatalf("books with different pages should differ")
	}
	if !goseal.Equal(nil, nil) || goseal.Equal(a, nil) {
		t.Fatalf("nil handling")
	}
	var nilBook *testentity.Book
	if !goseal.Equal(nilBook, nil) {
		t.Fatalf("a typed nil entity should equal nil")
	}
}

func TestEqualAndHash_IgnoreSetAndMapOrder(t *testing.T) {
	testentity.Register()
	a, err := testentity.NewBookBuilder().Title("t").
		Genres("x", "y").Rate("a", 1).Rate("b", 2).Create()
	if err != nil {
		t.Fatal(err)
	}
	b, err := testentity.NewBookBuilder().Title("t").
		Genres("y", "x").Rate("b", 2).Rate("a", 1).Create()
	if err != nil {
		t.Fatal(err)
	}
	if !a.Genres().Equal(b.Genres()) || !a.Ratings().Equal(b.Ratings()) {
		t.Fatalf("field collections should ignore order")
	}
	if !goseal.Equal(a, b) || goseal.Hash(a) != goseal.Hash(b) {
		t.Fatalf("entities with reordered sets and maps should be equal")
	}

	// wire order is still insertion order
	text, err := goseal.Serialize(goseal.FormatJSON, b)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Index(text, `"y"`) > strings.Index(text, `"x"`) {
		t.Fatalf("serialization should keep insertion order:\n%s", text)
	}

	c, err := testentity.NewBookBuilder().Title("t").
		Genres("x", "z").Rate("a", 1).Rate("b", 2).Create()
	if err != nil {
		t.Fatal(err)
	}
	if goseal.Equal(a, c) {
		t.Fatalf("books with different genres should differ")
	}
	d, err := testentity.NewBookBuilder().Title("t").
		Genres("x", "y").Rate("a", 2).Rate("b", 1).Create()
	if err != nil {
		t.Fatal(err)
	}
	if goseal.Equal(a, d) {
		t.Fatalf("books whose ratings swap values should differ")
	}
}

func TestValuesEqual(t *testing.T) {
	p1, _ := testentity.NewPublisher("A", "B")
	p2, _ := testentity.NewPublisher("A", "B")
	if !goseal.ValuesEqual(p1, p2) {
		t.Fatalf("entities compare structurally")
	}
	if !goseal.ValuesEqual(int32(1), int32(1)) || goseal.ValuesEqual(int32(1), int64(1)) {
		t.Fatalf("primitives compare by type and value")
	}
	if goseal.HashValue(p1) != goseal.HashValue(p2) {
		t.Fatalf("HashValue should agree with ValuesEqual")
	}

	type pair struct {
		Name string
		N    *int
	}
	one, other := 1, 1
	x, y := &pair{"a", &one}, &pair{"a", &other}
	if !goseal.ValuesEqual(x, y) || goseal.HashValue(x) != goseal.HashValue(y) {
		t.Fatalf("deeply equal pointers should be equal and hash alike")
	}
	m1 := map[string][]int{"a": {1}, "b": {2}}
	m2 := map[string][]int{"b": {2}, "a": {1}}
	if goseal.HashValue(m1) != goseal.HashValue(m2) {
		t.Fatalf("map hashes should not depend on iteration order")
	}
	if goseal.HashValue(int32(1)) == goseal.HashValue(int64(1)) {
		t.Fatalf("values of different types should hash apart")
	}
}

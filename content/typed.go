package content

// TypedPage is embedded by typed content views. The page it points to is the
// record the view was activated from.
type TypedPage struct {
	*Page `msgpack:"-"`
}

// Typed is implemented by any struct embedding TypedPage.
type Typed interface {
	Record
	typedPage() *TypedPage
}

func (t *TypedPage) typedPage() *TypedPage { return t }

// Attach points the typed view at page. It is used by activators after the
// view has been populated.
func (t *TypedPage) Attach(page *Page) {
	t.Page = page
}

// IsTyped reports whether rec is already a typed view.
func IsTyped(rec Record) bool {
	_, ok := rec.(Typed)
	return ok
}

// TypedPageOf returns the embedded TypedPage of a typed view.
func TypedPageOf(t Typed) *TypedPage {
	return t.typedPage()
}

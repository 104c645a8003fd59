package content

import (
	"errors"
	"strconv"
	"strings"
)

// ErrEmptyReference is returned when an operation needs a reference that
// points to an item.
var ErrEmptyReference = errors.New("content: empty reference")

// Reference identifies a content item inside a provider.
type Reference struct {
	ID           int64
	WorkID       int64
	ProviderName string
}

// IsEmpty reports whether the reference points to nothing.
func (r Reference) IsEmpty() bool {
	return r.ID == 0 && r.ProviderName == ""
}

// Published returns the reference without its work (draft) version.
func (r Reference) Published() Reference {
	r.WorkID = 0
	return r
}

// String returns the canonical identity of the referenced item. The work id is
// not part of it so that every version of an item shares one identity.
func (r Reference) String() string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(r.ID, 10))
	if r.ProviderName != "" {
		b.WriteString("__")
		b.WriteString(r.ProviderName)
	}
	return b.String()
}

// ParseReference parses the output of Reference.String.
func ParseReference(s string) (Reference, error) {
	idPart, provider, _ := strings.Cut(s, "__")
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return Reference{}, err
	}
	return Reference{ID: id, ProviderName: provider}, nil
}

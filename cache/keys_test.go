package cache

import (
	"fmt"
	"strings"
	"testing"

	"github.com/goliatone/go-typed-content/content"
	"github.com/sebdah/goldie/v2"
)

func TestKeyDerivationGolden(t *testing.T) {
	refs := []content.Reference{
		{ID: 17},
		{ID: 17, WorkID: 3},
		{ID: 8, ProviderName: "catalog"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "master\t%s\n", MasterKey)
	fmt.Fprintf(&b, "provider\t%s\n", ProviderKey(""))
	fmt.Fprintf(&b, "provider\t%s\n", ProviderKey("catalog"))
	for _, ref := range refs {
		fmt.Fprintf(&b, "common\t%s\n", CommonKey(ref))
		fmt.Fprintf(&b, "language\t%s\n", LanguageKey(ref, "en"))
		fmt.Fprintf(&b, "language\t%s\n", LanguageKey(ref, "sv-SE"))
		fmt.Fprintf(&b, "master_language\t%s\n", MasterLanguageKey(ref))
	}

	g := goldie.New(t)
	g.Assert(t, "keys", []byte(b.String()))
}

func TestKeysIgnoreWorkVersion(t *testing.T) {
	published := content.Reference{ID: 5}
	draft := content.Reference{ID: 5, WorkID: 2}

	if CommonKey(published) != CommonKey(draft) {
		t.Error("common key must not depend on the work version")
	}
	if LanguageKey(published, "en") != LanguageKey(draft, "en") {
		t.Error("language key must not depend on the work version")
	}
}

func TestLanguageKeysAreDistinct(t *testing.T) {
	ref := content.Reference{ID: 5}
	seen := map[string]bool{
		CommonKey(ref):         true,
		MasterLanguageKey(ref): true,
	}
	for _, lang := range []string{"en", "sv", ""} {
		key := LanguageKey(ref, lang)
		if seen[key] {
			t.Fatalf("duplicate key %q", key)
		}
		seen[key] = true
	}
}

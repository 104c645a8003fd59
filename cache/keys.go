package cache

import (
	"fmt"

	"github.com/goliatone/go-typed-content/content"
)

// KeySerializer builds a cache key from a prefix and arbitrary args.
// It is responsible for producing stable keys across calls.
type KeySerializer interface {
	SerializeKey(prefix string, args ...any) string
}

// MasterKey is the dependency every typed content entry shares. Removing it
// evicts all of them.
const MasterKey = "DataFactoryCache.MasterKey"

const (
	commonKeyPrefix         = "DataFactoryCache.PageCommon"
	languageKeyPrefix       = "DataFactoryCache.PageLanguage"
	masterLanguageKeyPrefix = "DataFactoryCache.PageMasterLanguage"
	providerKeyPrefix       = "DataFactoryCache.Provider"

	defaultProviderName = "default"
)

var keys = NewDefaultKeySerializer()

// CommonKey is the language independent key of a content item. It holds a
// CommonMarker that every language entry of the item depends on.
func CommonKey(ref content.Reference) string {
	return keys.SerializeKey(commonKeyPrefix, ref.Published())
}

// LanguageKey is the key of a content item in one language branch.
func LanguageKey(ref content.Reference, languageBranch string) string {
	return keys.SerializeKey(languageKeyPrefix, ref.Published(), languageBranch)
}

// MasterLanguageKey is the key of a content item in its master language branch.
func MasterLanguageKey(ref content.Reference) string {
	return keys.SerializeKey(masterLanguageKeyPrefix, ref.Published())
}

// ProviderKey is the key every entry loaded from one content provider
// depends on.
func ProviderKey(providerName string) string {
	if providerName == "" {
		providerName = defaultProviderName
	}
	return keys.SerializeKey(providerKeyPrefix, providerName)
}

// CommonMarker is the value stored under CommonKey. It carries no content, it
// only anchors invalidation of the item's language entries.
type CommonMarker struct {
	Ticks int64
}

// String implements fmt.Stringer.
func (m CommonMarker) String() string {
	return fmt.Sprintf("marker(%d)", m.Ticks)
}

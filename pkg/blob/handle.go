package blob

import (
	"fmt"

	"github.com/google/uuid"
)

// HandleProvider mints and revokes access handles for cached payloads.
// A handle is an opaque, revocable URI valid only while its entry stays
// resident; the cache guarantees Revoke is called exactly once per
// minted handle.
//
// Implementations back handles with whatever the host platform offers:
// object URLs, temporary files, pre-signed links. The default provider
// mints in-memory mem:// URIs.
type HandleProvider interface {
	// Create mints a new handle URI for the payload stored under key.
	Create(key string, b Blob) (string, error)

	// Revoke invalidates a previously minted handle URI.
	Revoke(uri string) error
}

// memProvider is the default provider: handles are unique mem:// URIs
// with no backing resource, so revocation is a no-op.
type memProvider struct{}

func (memProvider) Create(_ string, _ Blob) (string, error) {
	return fmt.Sprintf("mem://%s", uuid.NewString()), nil
}

func (memProvider) Revoke(string) error {
	return nil
}

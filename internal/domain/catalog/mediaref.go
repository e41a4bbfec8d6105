package catalog

import (
	"encoding/json"
	"strings"
)

// LocalScheme is the reserved prefix that distinguishes ephemeral local
// preview handles from real remote URLs. It never appears in persisted or
// submitted data.
const LocalScheme = "staged://"

// RefKind tags which variant a MediaRef holds.
type RefKind int

const (
	// RefEmpty means no reference has been set
	RefEmpty RefKind = iota
	// RefRemote means a durable URL returned by the upload collaborator
	RefRemote
	// RefLocal means an ephemeral preview handle owned by the staging layer
	RefLocal
)

// MediaRef is a tagged union over the three states a media slot can be in:
// a remote URL, an ephemeral local handle, or empty. Exactly one holds at a
// time; the zero value is the empty ref.
type MediaRef struct {
	kind  RefKind
	value string
}

// EmptyRef returns the empty reference.
func EmptyRef() MediaRef {
	return MediaRef{}
}

// RemoteRef wraps a durable remote URL.
func RemoteRef(url string) MediaRef {
	if url == "" {
		return MediaRef{}
	}
	return MediaRef{kind: RefRemote, value: url}
}

// LocalRef wraps an ephemeral local preview handle.
func LocalRef(handle string) MediaRef {
	if handle == "" {
		return MediaRef{}
	}
	return MediaRef{kind: RefLocal, value: handle}
}

// ClassifyRef builds a MediaRef from a raw string, using the reserved scheme
// to tell local handles apart from remote URLs.
func ClassifyRef(s string) MediaRef {
	switch {
	case s == "":
		return MediaRef{}
	case strings.HasPrefix(s, LocalScheme):
		return MediaRef{kind: RefLocal, value: s}
	default:
		return MediaRef{kind: RefRemote, value: s}
	}
}

// Kind returns which variant this ref holds.
func (r MediaRef) Kind() RefKind { return r.kind }

// IsEmpty reports whether no reference is set.
func (r MediaRef) IsEmpty() bool { return r.kind == RefEmpty }

// IsRemote reports whether this is a durable remote URL.
func (r MediaRef) IsRemote() bool { return r.kind == RefRemote }

// IsLocal reports whether this is an ephemeral local handle.
func (r MediaRef) IsLocal() bool { return r.kind == RefLocal }

// URL returns the remote URL, or "" if the ref is not remote.
func (r MediaRef) URL() string {
	if r.kind != RefRemote {
		return ""
	}
	return r.value
}

// Handle returns the local handle, or "" if the ref is not local.
func (r MediaRef) Handle() string {
	if r.kind != RefLocal {
		return ""
	}
	return r.value
}

// String returns the raw underlying value ("" for empty).
func (r MediaRef) String() string {
	return r.value
}

// MarshalJSON serializes the ref as its raw string form.
func (r MediaRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.value)
}

// UnmarshalJSON restores a ref from its raw string form, reclassifying by
// scheme. Non-string input decodes as empty rather than failing, in keeping
// with the tolerant-load contract of the draft store.
func (r *MediaRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*r = MediaRef{}
		return nil
	}
	*r = ClassifyRef(s)
	return nil
}

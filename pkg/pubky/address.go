package pubky

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pubky/pubky-ffi-go/pkg/pubky/keys"
)

const (
	pubkyScheme    = "pubky://"
	pubkyHostLabel = "_pubky."
	publicRoot     = "/pub/"
	maxPathLen     = 1024

	// Characters that would end or re-encode the path of the transport URL.
	reservedPathChars = "?#%"
)

// Address names a public object: owner key plus absolute path.
type Address struct {
	Owner keys.PublicKey
	Path  string
}

// ParseAddress accepts "pubky<z32>/path", "pubky://<z32>/path" and "<z32>/path".
func ParseAddress(s string) (Address, error) {
	rest := strings.TrimPrefix(s, pubkyScheme)
	keyPart, path, _ := strings.Cut(rest, "/")
	owner, err := keys.ParsePublicKeyLoose(keyPart)
	if err != nil {
		return Address{}, fmt.Errorf("%w: address %q: %v", ErrInvalidPath, s, err)
	}
	p, err := normalizePath("/" + path)
	if err != nil {
		return Address{}, err
	}
	return Address{Owner: owner, Path: p}, nil
}

func (a Address) String() string { return pubkyScheme + a.Owner.String() + a.Path }

// TransportURL is the https URL the client resolves for this address.
func (a Address) TransportURL() string {
	return "https://" + pubkyHostLabel + a.Owner.String() + a.Path
}

// IsDir reports whether the address names a directory.
func (a Address) IsDir() bool { return strings.HasSuffix(a.Path, "/") }

// ResolveAddress maps any accepted address form to its transport URL.
func ResolveAddress(s string) (string, error) {
	a, err := ParseAddress(s)
	if err != nil {
		return "", newError(KindParse, "resolve_address", err)
	}
	return a.TransportURL(), nil
}

// normalizePath validates a storage path. Relative paths are rooted at "/".
// Every stored object lives below /pub/.
func normalizePath(p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidPath)
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > maxPathLen {
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidPath, maxPathLen)
	}
	if !strings.HasPrefix(p, publicRoot) {
		return "", fmt.Errorf("%w: %q is not below %s", ErrInvalidPath, p, publicRoot)
	}
	segs := strings.Split(strings.TrimSuffix(p[1:], "/"), "/")
	for _, seg := range segs {
		switch seg {
		case "":
			return "", fmt.Errorf("%w: %q has an empty segment", ErrInvalidPath, p)
		case ".", "..":
			return "", fmt.Errorf("%w: %q has a relative segment", ErrInvalidPath, p)
		}
		if strings.IndexFunc(seg, unicode.IsControl) >= 0 {
			return "", fmt.Errorf("%w: %q contains control characters", ErrInvalidPath, p)
		}
		if strings.ContainsAny(seg, reservedPathChars) {
			return "", fmt.Errorf("%w: %q contains one of %q", ErrInvalidPath, p, reservedPathChars)
		}
	}
	return p, nil
}

// Package transport implements the repository-fetching side of the
// "transport implementations are external collaborators" boundary
// spec.md draws around the porcelain façade (see spec.md's Transport
// interface: open/fetch/push against a URI or remote name).
//
// Only local transports are implemented: plain filesystem paths and
// file:// URLs. Network transports (git://, http(s)://, ssh://) are a
// Non-goal (see DESIGN.md) -- remote.go consumes this package only
// through Endpoint and Open, so a networked implementation can be added
// later without touching the façade.
package transport

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedScheme is returned by NewEndpoint when the URL uses a
// scheme this package doesn't implement.
var ErrUnsupportedScheme = errors.New("transport: unsupported scheme")

// ErrAuthorizationRequired reports that an endpoint demands credentials this
// package cannot supply. The local transport in this package never returns it.
var ErrAuthorizationRequired = errors.New("transport: authorization required")

// AuthMethod is a marker interface for transport credentials. No
// concrete implementation exists yet since only local transports are
// supported; it is kept so the façade's option structs (CloneOptions,
// FetchOptions, PushOptions) have a stable field type to grow into.
type AuthMethod interface {
	Name() string
	String() string
}

// Endpoint represents a parsed remote repository location.
type Endpoint struct {
	// Protocol is "file" for anything resolved on the local filesystem.
	Protocol string
	// Path is the filesystem path to the repository, either its working
	// directory or its bare/.git directory.
	Path string
}

func (e *Endpoint) String() string {
	return e.Path
}

// NewEndpoint parses a URL-like string into an Endpoint. It accepts
// plain filesystem paths ("/path/to/repo", "../repo") and "file://" URLs;
// any other scheme ("http://", "ssh://", "git://", ...) returns
// ErrUnsupportedScheme.
func NewEndpoint(url string) (*Endpoint, error) {
	if url == "" {
		return nil, fmt.Errorf("transport: empty endpoint")
	}

	if strings.Contains(url, "://") {
		if !strings.HasPrefix(url, "file://") {
			return nil, ErrUnsupportedScheme
		}

		return &Endpoint{Protocol: "file", Path: strings.TrimPrefix(url, "file://")}, nil
	}

	return &Endpoint{Protocol: "file", Path: url}, nil
}

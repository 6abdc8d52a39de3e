// Package urlnorm canonicalises absolute URLs into a fixed four-part
// structure and resolves relative hrefs against a base URL.
//
// A NormalURL is the identity value used everywhere else in the engine:
// the crawl frontier, the index's page and link-graph keys, and the
// fetcher all key off it. Two URLs that differ only in protocol/host
// case or a trailing host slash normalise to the same value.
package urlnorm

import (
	"fmt"
	"strings"
)

// NormalURL is a canonicalised URL: protocol and host lower-cased, path
// split at its last slash into base_path (always starts and ends with
// "/") and file (never contains "/", may be empty).
//
// NormalURL is comparable and safe to use as a map key directly — no
// separate handle or arena indirection is needed, since all of its
// fields are plain strings.
type NormalURL struct {
	Protocol string // "http://" or "https://", lower-cased
	Host     string // lower-cased, no trailing slash
	BasePath string // always begins and ends with "/"
	File     string // no "/"; may be empty
}

// String reconstructs the canonical URL text.
func (u NormalURL) String() string {
	return u.Protocol + u.Host + u.BasePath + u.File
}

// MalformedURLError reports a string that does not parse as an absolute
// http(s) URL.
type MalformedURLError struct {
	Input string
}

func (e *MalformedURLError) Error() string {
	return fmt.Sprintf("urlnorm: malformed url %q", e.Input)
}

// Parse canonicalises an absolute URL string. The protocol must be
// exactly "http://" or "https://" (case-insensitive); anything else is a
// MalformedURLError.
func Parse(s string) (NormalURL, error) {
	var protocol, rest string
	switch {
	case hasPrefixFold(s, "http://"):
		protocol = "http://"
		rest = s[len("http://"):]
	case hasPrefixFold(s, "https://"):
		protocol = "https://"
		rest = s[len("https://"):]
	default:
		return NormalURL{}, &MalformedURLError{Input: s}
	}

	if rest == "" {
		return NormalURL{}, &MalformedURLError{Input: s}
	}

	slash := strings.IndexByte(rest, '/')
	var host, path string
	if slash < 0 {
		host = rest
		path = ""
	} else {
		host = rest[:slash]
		path = rest[slash:]
	}

	host = strings.ToLower(strings.TrimSuffix(host, "/"))
	if host == "" {
		return NormalURL{}, &MalformedURLError{Input: s}
	}

	basePath, file := splitPath(path)

	return NormalURL{
		Protocol: protocol,
		Host:     host,
		BasePath: basePath,
		File:     file,
	}, nil
}

// splitPath implements spec.md 4.A: split the path at the last "/";
// everything up to and including that slash becomes base_path, the
// remainder becomes file. An empty original path yields ("/", "").
func splitPath(path string) (basePath, file string) {
	if path == "" {
		return "/", ""
	}
	idx := strings.LastIndexByte(path, '/')
	if idx < 0 {
		// No slash at all in a non-empty path; treat the whole thing as
		// the file under base path "/" (unreachable from Parse, which
		// only ever passes a path starting with "/").
		return "/", path
	}
	return path[:idx+1], path[idx+1:]
}

// ResolveAgainst resolves href against the receiver as a base URL,
// following the three recognised prefix shapes in spec.md 4.A. An href
// matching none of those shapes (mailto:, protocol-relative //host/x,
// bare relative names like "foo.html") returns the base URL unchanged —
// this mirrors the source behaviour and is a documented Open Question,
// not a bug to fix.
func (base NormalURL) ResolveAgainst(href string) (NormalURL, error) {
	switch {
	case hasPrefixFold(href, "http://"), hasPrefixFold(href, "https://"):
		return Parse(href)
	case strings.HasPrefix(href, "./"):
		return Parse(base.Protocol + base.Host + base.BasePath + href[2:])
	case strings.HasPrefix(href, "//"):
		return base, nil
	case strings.HasPrefix(href, "/"):
		return Parse(base.Protocol + base.Host + href)
	default:
		return base, nil
	}
}

func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	return strings.EqualFold(s[:len(prefix)], prefix)
}

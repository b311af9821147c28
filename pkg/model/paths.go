package model

import (
	"strings"
)

const (
	// PathSeparator separates the segments of an entity or package path
	PathSeparator = "::"

	// MetaPrefix is the reserved prefix for classifier paths
	MetaPrefix = "meta" + PathSeparator
)

func isValidSegment(segment string, allowDollar bool) bool {
	if segment == "" {
		return false
	}
	for _, c := range segment {
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '_':
		case c == '$' && allowDollar:
		default:
			return false
		}
	}
	return true
}

// IsValidPathSegment checks a single package path segment
func IsValidPathSegment(segment string) bool {
	return isValidSegment(segment, false)
}

// IsValidPackagePath checks the grammar of a package path.
//
// A package path is made of one or more "::"-separated segments of
// letters, digits and underscores.
func IsValidPackagePath(pth string) bool {
	if pth == "" {
		return false
	}
	for _, segment := range strings.Split(pth, PathSeparator) {
		if !isValidSegment(segment, false) {
			return false
		}
	}
	return true
}

// IsValidEntityPath checks the grammar of an entity path.
//
// An entity path has at least one package segment followed by exactly
// one name segment ("$" is allowed in the name segment only), and must
// not start with the reserved "meta::" prefix.
func IsValidEntityPath(pth string) bool {
	if pth == "" || strings.HasPrefix(pth, MetaPrefix) {
		return false
	}
	segments := strings.Split(pth, PathSeparator)
	if len(segments) < 2 {
		return false
	}
	for _, segment := range segments[:len(segments)-1] {
		if !isValidSegment(segment, false) {
			return false
		}
	}
	return isValidSegment(segments[len(segments)-1], true)
}

// IsValidClassifierPath checks the grammar of a classifier path.
//
// A classifier path names a known artifact type and always starts with
// the reserved "meta::" prefix.
func IsValidClassifierPath(pth string) bool {
	if !strings.HasPrefix(pth, MetaPrefix) {
		return false
	}
	segments := strings.Split(pth, PathSeparator)
	if len(segments) < 2 {
		return false
	}
	for _, segment := range segments[:len(segments)-1] {
		if !isValidSegment(segment, false) {
			return false
		}
	}
	return isValidSegment(segments[len(segments)-1], true)
}

// SplitEntityPath yields the package path and name segment of a valid
// entity path. The second return value is false when the path does not
// pass IsValidEntityPath.
func SplitEntityPath(pth string) (string, string, bool) {
	if !IsValidEntityPath(pth) {
		return "", "", false
	}
	idx := strings.LastIndex(pth, PathSeparator)
	return pth[:idx], pth[idx+len(PathSeparator):], true
}

package http

import (
	"path"
	"strings"
)

// pathFilter decides which request paths are gated.
type pathFilter []string

func newPathFilter(patterns []string) pathFilter {
	for _, p := range patterns {
		if p == "*" {
			return nil
		}
	}
	return pathFilter(patterns)
}

// Match reports whether requestPath must be paid for. An empty filter matches everything.
func (f pathFilter) Match(requestPath string) bool {
	if len(f) == 0 {
		return true
	}
	for _, pattern := range f {
		if matchPath(requestPath, pattern) {
			return true
		}
	}
	return false
}

// matchPath supports exact paths, "/prefix/*" subtrees and path.Match globs.
func matchPath(requestPath, pattern string) bool {
	if requestPath == pattern {
		return true
	}

	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		return strings.HasPrefix(requestPath, prefix+"/") || requestPath == prefix
	}

	matched, _ := path.Match(pattern, requestPath)
	return matched
}

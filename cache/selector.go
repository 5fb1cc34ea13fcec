package cache

import "strings"

// SelectorMatch evaluates a topic selector against a topic path.
//
// It implements the path-selector subset the cache needs for Remove:
//
//   - a plain path matches exactly itself: "a/b" matches "a/b";
//   - "*" in a path part matches any single part: "a/*" matches "a/b" but
//     not "a/b/c";
//   - a ">" prefix or a "//" suffix qualifies the selector to also match
//     every descendant: ">a/b" matches "a/b", "a/b/c", "a/b/c/d".
//
// Leading slashes on either argument are ignored, so "/a/b" and "a/b" name
// the same topic.
func SelectorMatch(selector, path string) bool {
	descendant := false
	if strings.HasPrefix(selector, ">") {
		descendant = true
		selector = selector[1:]
	}
	if strings.HasSuffix(selector, "//") {
		descendant = true
		selector = strings.TrimSuffix(selector, "//")
	}

	selector = strings.TrimPrefix(selector, "/")
	path = strings.TrimPrefix(path, "/")

	if selector == "" {
		return descendant || path == ""
	}

	selParts := strings.Split(selector, "/")
	pathParts := strings.Split(path, "/")

	if len(pathParts) < len(selParts) {
		return false
	}
	if len(pathParts) > len(selParts) && !descendant {
		return false
	}

	for i, part := range selParts {
		if part == "*" {
			continue
		}
		if part != pathParts[i] {
			return false
		}
	}

	return true
}

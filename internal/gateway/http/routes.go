package http

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

var ErrInvalidRoute = errors.New("invalid gateway route")

// Route forwards every path under Prefix to Target. The prefix is replaced by
// the target path, so "/api/auth" -> "http://auth:8080/auth" maps
// "/api/auth/login" to "http://auth:8080/auth/login".
type Route struct {
	Prefix string
	Target *url.URL
}

// ParseRoutes reads "prefix=url" items and orders them longest prefix first.
func ParseRoutes(items []string) ([]Route, error) {
	routes := make([]Route, 0, len(items))
	seen := make(map[string]bool, len(items))

	for _, item := range items {
		prefix, target, ok := strings.Cut(item, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q is not prefix=url", ErrInvalidRoute, item)
		}

		prefix = "/" + strings.Trim(strings.TrimSpace(prefix), "/")
		u, err := url.Parse(strings.TrimSpace(target))
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("%w: bad target in %q", ErrInvalidRoute, item)
		}
		if seen[prefix] {
			return nil, fmt.Errorf("%w: duplicate prefix %q", ErrInvalidRoute, prefix)
		}
		seen[prefix] = true

		u.Path = strings.TrimSuffix(u.Path, "/")
		routes = append(routes, Route{Prefix: prefix, Target: u})
	}

	sort.SliceStable(routes, func(i, j int) bool {
		return len(routes[i].Prefix) > len(routes[j].Prefix)
	})
	return routes, nil
}

// matches reports whether path falls under prefix on a segment boundary.
func matches(prefix, path string) bool {
	if prefix == "/" {
		return true
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// publicPaths decides which requests skip token verification. An entry
// ending in "/" covers everything beneath it, others match exactly.
type publicPaths []string

func (p publicPaths) allows(path string) bool {
	for _, pub := range p {
		if strings.HasSuffix(pub, "/") {
			if strings.HasPrefix(path, pub) {
				return true
			}
			continue
		}
		if path == pub {
			return true
		}
	}
	return false
}

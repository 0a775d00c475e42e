package ports

import (
	"fmt"
	"net/http"
	"strings"
)

type DomainSuffixes struct {
	suffixes []string
}

func NewDomainSuffixes(suffixes ...string) (*DomainSuffixes, error) {
	for _, suffix := range suffixes {
		if strings.HasPrefix(suffix, ".") {
			return nil, fmt.Errorf("domain suffix %s should not start with a dot", suffix)
		}
		if strings.Contains(suffix, "://") {
			return nil, fmt.Errorf("domain suffix %s should not contain a scheme", suffix)
		}
	}
	return &DomainSuffixes{
		suffixes: suffixes,
	}, nil
}

func (suffixes *DomainSuffixes) AnyMatch(origin string) bool {
	for _, suffix := range suffixes.suffixes {
		if originMatchesSuffix(origin, suffix) {
			return true
		}
	}
	return false
}

func originMatchesSuffix(origin string, suffix string) bool {
	// Literal match of the suffix (https://example.com)
	if origin == fmt.Sprintf("https://%s", suffix) {
		return true
	}

	// Only accept origins with https scheme
	if !strings.HasPrefix(origin, "https://") {
		return false
	}

	// Match any subdomain (https://*.example.com)
	if strings.HasSuffix(origin, fmt.Sprintf(".%s", suffix)) {
		return true
	}

	return false
}

// BuildCORSMiddleware lets allowed origins read responses from the api handlers.
// Preflight requests are answered by BuildCORSHandler on the route's OPTIONS pattern.
func BuildCORSMiddleware(allowedSuffixes *DomainSuffixes) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			allowOrigin(w, r, allowedSuffixes)
			next(w, r)
		}
	}
}

// BuildCORSHandler answers preflight requests for a route served with the given methods
func BuildCORSHandler(allowedSuffixes *DomainSuffixes, methods ...string) http.HandlerFunc {
	allowMethods := strings.Join(methods, ",")
	return func(w http.ResponseWriter, r *http.Request) {
		if allowOrigin(w, r, allowedSuffixes) && r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", allowMethods)
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Access-Control-Max-Age", "600")
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func allowOrigin(w http.ResponseWriter, r *http.Request, allowedSuffixes *DomainSuffixes) bool {
	origin := r.Header.Get("Origin")
	w.Header().Add("Vary", "Origin")

	if !allowedSuffixes.AnyMatch(origin) {
		return false
	}

	w.Header().Set("Access-Control-Allow-Origin", origin)
	// Lets the web client back off after a 429
	w.Header().Set("Access-Control-Expose-Headers", "Retry-After")
	return true
}

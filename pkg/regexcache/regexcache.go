// Package regexcache provides a thread-safe cache of compiled regular
// expressions so detector patterns are compiled at most once.
package regexcache

import (
	"regexp"
	"sync"
)

var cache sync.Map // map[string]*regexp.Regexp

// Get returns a compiled regexp for pattern, compiling and caching it on
// first use.
func Get(pattern string) (*regexp.Regexp, error) {
	if cached, ok := cache.Load(pattern); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	actual, _ := cache.LoadOrStore(pattern, re)
	return actual.(*regexp.Regexp), nil
}

// MustGet is Get but panics on an invalid pattern. Intended for package-level
// pattern tables where the pattern is a literal.
func MustGet(pattern string) *regexp.Regexp {
	re, err := Get(pattern)
	if err != nil {
		panic(err)
	}
	return re
}

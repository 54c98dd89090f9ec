package format

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// compiled holds programs keyed by notation. Field parsers look programs up
// on every call, so entries never expire.
var compiled = cache.New(cache.NoExpiration, 10*time.Minute)

// Lookup returns the compiled program for spec, compiling it on first use.
func Lookup(spec string) (*Program, error) {
	if p, ok := compiled.Get(spec); ok {
		return p.(*Program), nil
	}
	p, err := Compile(spec)
	if err != nil {
		return nil, err
	}
	compiled.SetDefault(spec, p)
	return p, nil
}

// MustLookup is like Lookup but panics on a malformed notation. It is meant
// for the built-in field table, whose notations are constants.
func MustLookup(spec string) *Program {
	p, err := Lookup(spec)
	if err != nil {
		panic(err)
	}
	return p
}

// CachedPrograms returns the number of compiled programs held.
func CachedPrograms() int {
	return compiled.ItemCount()
}

// Package idgen provides the identity strategies used for sessions and pages.
//
// Session IDs must be unguessable: they are the only credential a client
// presents. Page IDs only need to be unique inside their session, so a plain
// counter is enough.
package idgen

import (
	"crypto/rand"
	"io"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Generator produces unique string identifiers.
type Generator func() string

const alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Bytes at or above this bound are discarded so every character is equally likely.
const unbiased = 256 - 256%len(alphabet)

// NanoID returns a Generator that produces base-36 IDs of the given length
// from crypto/rand.
func NanoID(length int) Generator {
	return func() string {
		id, err := nanoID(rand.Reader, length)
		if err != nil {
			panic("idgen: crypto/rand failed: " + err.Error())
		}
		return id
	}
}

func nanoID(r io.Reader, length int) (string, error) {
	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		n, err := io.ReadFull(r, buf[:length-len(out)])
		if err != nil {
			return "", err
		}
		for _, b := range buf[:n] {
			if int(b) < unbiased {
				out = append(out, alphabet[int(b)%len(alphabet)])
			}
		}
	}
	return string(out), nil
}

// UUID returns a Generator that produces random (version 4) UUID strings.
func UUID() Generator {
	return func() string {
		return uuid.NewString()
	}
}

// Prefixed wraps a Generator and prepends a fixed prefix to every ID.
func Prefixed(prefix string, gen Generator) Generator {
	return func() string {
		return prefix + gen()
	}
}

// Sequence returns a Generator counting up from start. Safe for concurrent use.
func Sequence(start int64) Generator {
	var next atomic.Int64
	next.Store(start)
	return func() string {
		return strconv.FormatInt(next.Add(1)-1, 10)
	}
}

// Session is the default session ID strategy.
var Session Generator = UUID()

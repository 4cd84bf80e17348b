package game

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"
)

// Token is the opaque bearer credential identifying one player. Wire
// form: 32 lowercase hex characters.
type Token string

const tokenLength = 32

// ParseToken validates the wire form of a bearer token.
func ParseToken(s string) (Token, bool) {
	if len(s) != tokenLength {
		return "", false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", false
		}
	}
	return Token(s), true
}

// tokenGenerator produces 128-bit tokens by concatenating the output of
// two independently seeded 64-bit generators. It is not safe for
// concurrent use; the registry only calls it from the API strand.
type tokenGenerator struct {
	hi *rand.Rand
	lo *rand.Rand
}

func newTokenGenerator() *tokenGenerator {
	return &tokenGenerator{
		hi: rand.New(rand.NewSource(tokenSeed())),
		lo: rand.New(rand.NewSource(tokenSeed())),
	}
}

// tokenSeed draws entropy from the OS, falling back to the clock when
// the platform source is unavailable.
func tokenSeed() int64 {
	var b [8]byte
	if _, err := cryptorand.Read(b[:]); err == nil {
		return int64(binary.LittleEndian.Uint64(b[:]))
	}
	return time.Now().UnixNano()
}

func (g *tokenGenerator) Next() Token {
	return Token(fmt.Sprintf("%016x%016x", g.hi.Uint64(), g.lo.Uint64()))
}

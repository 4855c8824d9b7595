// Package apr1 implements the Apache variant of the MD5-crypt password
// hashing algorithm, as produced by `htpasswd -m` and recognised by the
// `$apr1$` prefix.
//
// # Algorithm
//
// APR1 is Poul-Henning Kamp's MD5-crypt with the magic constant "$apr1$"
// in place of "$1$": a seeded MD5 context mixed with an auxiliary digest
// of password‖salt‖password, followed by 1000 stretching rounds whose
// input schedule depends on the round number, finished with a permuted
// base64 encoding over the crypt alphabet ("./0-9A-Za-z"). The scheme is
// deliberately slow and salted; it is not a general-purpose MD5 wrapper.
//
// # Usage
//
//	digest := apr1.Encode("password", "RandSalt")
//	hash := apr1.Format(digest, "RandSalt") // "$apr1$RandSalt$PgCXHRrkpSt4cbyC2C6bm/"
//
//	ok, err := apr1.Verify(hash, "password") // true, nil
//
// Verify returns (false, nil) for a wrong password and a non-nil error only
// when the stored hash string itself is structurally invalid.
//
// # Security
//
// APR1 predates modern memory-hard schemes; prefer bcrypt or Argon2 for new
// systems. This package exists to verify (and, where unavoidable, produce)
// hashes in existing htpasswd files. Digest comparison in [Verify] is
// constant-time.
package apr1

import (
	"crypto/md5"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
)

const (
	// MagicPrefix identifies an APR1 hash string.
	MagicPrefix = "$apr1$"

	// SaltLenMax is the salt length used in htpasswd files. Longer salts
	// are truncated; the full format always carries exactly eight bytes.
	SaltLenMax = 8

	// Rounds is the fixed stretching round count. Unlike SHA-crypt, the
	// MD5-crypt family has no rounds= parameter.
	Rounds = 1000

	// EncodedLen is the length of the encoded digest: 16 bytes rendered
	// as 22 crypt-base64 symbols.
	EncodedLen = 22
)

// ErrMalformedHash is returned by [Verify] when the stored hash string is too
// short to contain the "$apr1$" marker, an 8-byte salt, and the "$" separator.
//
// Use [errors.Is] for comparisons.
var ErrMalformedHash = errors.New("apr1: malformed hash string")

// alphabet is the crypt base64 alphabet: '.' = 0, '/' = 1, '0'-'9' = 2-11,
// 'A'-'Z' = 12-37, 'a'-'z' = 38-63. Note it differs from RFC 4648 in both
// symbol set and ordering.
const alphabet = "./0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Encode computes the APR1 digest of password under salt and returns the
// 22-character crypt-base64 encoding. Salts longer than [SaltLenMax] bytes
// are truncated, matching htpasswd behaviour.
//
// Encode is a pure function: equal inputs always produce equal output. Use
// [Format] to assemble the full "$apr1$salt$digest" string and
// [GenerateSalt] to obtain a fresh random salt.
func Encode(password, salt string) string {
	if len(salt) > SaltLenMax {
		salt = salt[:SaltLenMax]
	}
	key := []byte(password)
	sb := []byte(salt)

	h := md5.New()
	h.Write(key)
	h.Write([]byte(MagicPrefix))
	h.Write(sb)

	alt := md5.New()
	alt.Write(key)
	alt.Write(sb)
	alt.Write(key)
	altSum := alt.Sum(nil)

	for i := len(key); i > 0; i -= 16 {
		if i > 16 {
			h.Write(altSum)
		} else {
			h.Write(altSum[:i])
		}
	}

	// One bit per length bit: null byte for 1, first password byte for 0.
	for i := len(key); i > 0; i >>= 1 {
		if i&1 == 1 {
			h.Write([]byte{0})
		} else {
			h.Write(key[:1])
		}
	}
	sum := h.Sum(nil)

	for round := 0; round < Rounds; round++ {
		r := md5.New()
		if round&1 == 1 {
			r.Write(key)
		} else {
			r.Write(sum)
		}
		if round%3 != 0 {
			r.Write(sb)
		}
		if round%7 != 0 {
			r.Write(key)
		}
		if round&1 == 1 {
			r.Write(sum)
		} else {
			r.Write(key)
		}
		sum = r.Sum(sum[:0])
	}

	return encode24Bit(sum)
}

// Format assembles the full modular-crypt string "$apr1$" + salt + "$" +
// digest from a digest previously produced by [Encode] and the salt it was
// produced with.
func Format(digest, salt string) string {
	return MagicPrefix + salt + "$" + digest
}

// Verify checks password against a full "$apr1$salt$digest" hash string.
//
// It returns (false, nil) on mismatch and [ErrMalformedHash] when hash is
// too short to carry the marker, an 8-byte salt, and the '$' separator.
// The digest comparison is constant-time.
func Verify(hash, password string) (bool, error) {
	salt, digest, err := splitHash(hash)
	if err != nil {
		return false, err
	}
	computed := Encode(password, salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1, nil
}

// GenerateSalt returns a fresh 8-character random salt drawn from the crypt
// alphabet, suitable for [Encode].
func GenerateSalt() (string, error) {
	raw := make([]byte, SaltLenMax)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("apr1: failed to read random salt: %w", err)
	}
	for i, b := range raw {
		raw[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(raw), nil
}

// Generate hashes password with a fresh random salt and returns the full
// "$apr1$salt$digest" string. Two calls with the same password produce
// different output.
func Generate(password string) (string, error) {
	salt, err := GenerateSalt()
	if err != nil {
		return "", err
	}
	return Format(Encode(password, salt), salt), nil
}

// splitHash slices a "$apr1$salt$digest" string into salt and digest.
// The salt is exactly the eight bytes after the marker.
func splitHash(hash string) (salt, digest string, err error) {
	if !strings.HasPrefix(hash, MagicPrefix) {
		return "", "", fmt.Errorf("%w: missing %q prefix", ErrMalformedHash, MagicPrefix)
	}
	rest := hash[len(MagicPrefix):]
	if len(rest) < SaltLenMax+1 || rest[SaltLenMax] != '$' {
		return "", "", fmt.Errorf("%w: want %q followed by an 8-byte salt and '$'",
			ErrMalformedHash, MagicPrefix)
	}
	return rest[:SaltLenMax], rest[SaltLenMax+1:], nil
}

// encode24Bit renders a 16-byte digest as 22 crypt-base64 symbols. Bytes are
// consumed in the fixed permuted order (0,6,12) (1,7,13) (2,8,14) (3,9,15)
// (4,10,5), each triple packed into a 24-bit value emitted low six bits
// first; byte 11 is packed alone and emitted as two symbols.
func encode24Bit(sum []byte) string {
	triples := [5][3]int{{0, 6, 12}, {1, 7, 13}, {2, 8, 14}, {3, 9, 15}, {4, 10, 5}}

	out := make([]byte, 0, EncodedLen)
	for _, t := range triples {
		v := uint(sum[t[0]])<<16 | uint(sum[t[1]])<<8 | uint(sum[t[2]])
		for i := 0; i < 4; i++ {
			out = append(out, alphabet[v&0x3f])
			v >>= 6
		}
	}
	v := uint(sum[11])
	out = append(out, alphabet[v&0x3f], alphabet[(v>>6)&0x3f])
	return string(out)
}

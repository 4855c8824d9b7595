package htpasswd

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	descrypt "github.com/digitive/crypt"
	"golang.org/x/crypto/bcrypt"

	"github.com/hasbyte1/go-htpasswd/apr1"
)

// Scheme identifies the hashing scheme of one credential entry.
// Using a named string type prevents accidental confusion with plain strings.
type Scheme string

const (
	// SchemeAPR1 selects Apache MD5-crypt ("$apr1$...").
	SchemeAPR1 Scheme = "apr1"
	// SchemeBcrypt selects bcrypt ("$2a$", "$2b$", or "$2y$").
	SchemeBcrypt Scheme = "bcrypt"
	// SchemeSHA1 selects unsalted SHA-1 ("{SHA}...").
	SchemeSHA1 Scheme = "sha1"
	// SchemeCrypt selects traditional Unix DES crypt(3), the fallback
	// for any hash string with no recognised prefix.
	SchemeCrypt Scheme = "crypt"
)

const sha1Prefix = "{SHA}"

// cryptSaltLen is the embedded salt length of a crypt(3) string.
const cryptSaltLen = 2

// Hash is one parsed credential entry: a scheme tag plus the scheme-specific
// fields sliced out of the original hash string. The set of schemes is
// closed; there is exactly one comparison routine per scheme.
//
// The zero Hash matches nothing.
type Hash struct {
	scheme Scheme

	// salt is set for SchemeAPR1 only: the 8 bytes after the marker.
	salt string

	// payload is scheme-specific: the trailing encoded digest for
	// SchemeAPR1, the base64 text after "{SHA}" for SchemeSHA1, and the
	// full stored string for SchemeBcrypt and SchemeCrypt.
	payload string
}

// ParseHash classifies a raw hash string into a [Hash] by literal prefix
// match, in priority order: "$apr1$", the bcrypt markers, "{SHA}", then the
// crypt(3) fallback consuming the whole remainder.
//
// Only the APR1 form is validated structurally; a too-short "$apr1$" string
// returns [ErrMalformedHash]. Everything else parses — an unrecognised
// string becomes a crypt entry that will simply fail to verify.
func ParseHash(s string) (Hash, error) {
	switch {
	case strings.HasPrefix(s, apr1.MagicPrefix):
		rest := s[len(apr1.MagicPrefix):]
		if len(rest) < apr1.SaltLenMax+1 || rest[apr1.SaltLenMax] != '$' {
			return Hash{}, fmt.Errorf("%w: %q is too short for an 8-byte salt and '$'",
				ErrMalformedHash, apr1.MagicPrefix)
		}
		return Hash{
			scheme:  SchemeAPR1,
			salt:    rest[:apr1.SaltLenMax],
			payload: rest[apr1.SaltLenMax+1:],
		}, nil

	// bcrypt hashes start with $2a$, $2b$, or $2y$
	case strings.HasPrefix(s, "$2a$"),
		strings.HasPrefix(s, "$2b$"),
		strings.HasPrefix(s, "$2y$"):
		return Hash{scheme: SchemeBcrypt, payload: s}, nil

	case strings.HasPrefix(s, sha1Prefix):
		return Hash{scheme: SchemeSHA1, payload: s[len(sha1Prefix):]}, nil

	default:
		// No reserved prefix: assume crypt(3), salt in the first two bytes.
		return Hash{scheme: SchemeCrypt, payload: s}, nil
	}
}

// Scheme returns the scheme tag this entry was classified under.
func (h Hash) Scheme() Scheme { return h.scheme }

// Check verifies password against this entry.
//
// It returns (false, nil) on mismatch and [ErrVerification] when the stored
// hash cannot be evaluated. APR1 and SHA-1 comparisons are constant-time;
// bcrypt performs its own constant-time comparison internally.
func (h Hash) Check(password string) (bool, error) {
	switch h.scheme {
	case SchemeAPR1:
		computed := apr1.Encode(password, h.salt)
		return subtle.ConstantTimeCompare([]byte(computed), []byte(h.payload)) == 1, nil

	case SchemeBcrypt:
		err := bcrypt.CompareHashAndPassword([]byte(h.payload), []byte(password))
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("%w: bcrypt: %v", ErrVerification, err)
		}
		return true, nil

	case SchemeSHA1:
		stored, err := base64.StdEncoding.DecodeString(h.payload)
		if err != nil {
			return false, fmt.Errorf("%w: undecodable {SHA} digest: %v", ErrVerification, err)
		}
		sum := sha1.Sum([]byte(password))
		return subtle.ConstantTimeCompare(sum[:], stored) == 1, nil

	case SchemeCrypt:
		if len(h.payload) < cryptSaltLen {
			return false, nil
		}
		computed, err := descrypt.Crypt(password, h.payload[:cryptSaltLen])
		if err != nil {
			return false, fmt.Errorf("%w: crypt: %v", ErrVerification, err)
		}
		return subtle.ConstantTimeCompare([]byte(computed), []byte(h.payload)) == 1, nil

	default:
		// Zero value; nothing to compare against.
		return false, nil
	}
}

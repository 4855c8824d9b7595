package htpasswd

import "errors"

// Sentinel errors returned by loading and verification.
//
// Use [errors.Is] for comparisons:
//
//	ok, err := file.Check(user, password)
//	if errors.Is(err, htpasswd.ErrVerification) {
//	    // stored hash is bad data, not a wrong password
//	}
var (
	// ErrMalformedHash is returned by [ParseHash] and [Load] when an
	// "$apr1$" hash string is too short to carry its 8-byte salt and the
	// '$' separator. Other schemes are never rejected at parse time.
	ErrMalformedHash = errors.New("htpasswd: malformed hash string")

	// ErrVerification is returned by Check when a stored hash cannot be
	// evaluated — a bcrypt string with a broken payload, undecodable
	// {SHA} base64, or a crypt(3) failure. It is an operational fault,
	// distinct from a password mismatch.
	ErrVerification = errors.New("htpasswd: hash could not be verified")
)

// Package htpasswd verifies username/password pairs against Apache
// htpasswd-style credential files without touching the network or a
// database.
//
// # Supported schemes
//
// Each entry's hash string is classified by its prefix, in priority order:
//
//   - [SchemeAPR1] — "$apr1$" MD5-crypt, computed by the sibling apr1 package
//   - [SchemeBcrypt] — "$2a$" / "$2b$" / "$2y$", delegated to golang.org/x/crypto/bcrypt
//   - [SchemeSHA1] — "{SHA}" followed by standard base64 of a SHA-1 digest
//   - [SchemeCrypt] — anything else, treated as traditional Unix DES crypt(3)
//
// The crypt fallback is deliberately permissive: a hash string that matches
// no known prefix is not rejected at load time, it simply never verifies.
//
// # Quick start
//
//	file, err := htpasswd.Load("user:$apr1$lZL6V/ci$eIMz/iKDkbtys/uU7LEK00")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ok, err := file.Check("user", "password") // true, nil
//
// [LoadFile] and [LoadReader] are conveniences over [Load]; [Watcher] keeps a
// file-backed store current as the file changes on disk.
//
// # Mismatch vs. fault
//
// Check returns (false, nil) both for a wrong password and for an unknown
// username — the two are deliberately indistinguishable. A non-nil error
// means the stored hash could not be evaluated at all (see [ErrVerification]
// and [ErrMalformedHash]); callers must not treat it as a failed login.
package htpasswd

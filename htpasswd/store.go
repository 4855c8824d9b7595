package htpasswd

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// File is an immutable credential store mapping usernames to parsed hash
// entries. Build one with [Load], [LoadReader], or [LoadFile]; once built it
// is never mutated, so it is safe for unlimited concurrent lookups without
// locking.
type File struct {
	users map[string]Hash
}

// Load parses htpasswd-formatted text into a [File].
//
// Each line is "username:hashstring". Blank lines, '#' comment lines, and
// lines without a ':' are silently skipped, matching the permissive
// conventions of htpasswd files. When the same username appears more than
// once, the last entry wins.
//
// The only fatal condition is a structurally invalid "$apr1$" hash string,
// reported as [ErrMalformedHash].
func Load(data string) (*File, error) {
	users := make(map[string]Hash)
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if t := strings.TrimSpace(line); t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		username, hashstr, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		h, err := ParseHash(hashstr)
		if err != nil {
			return nil, fmt.Errorf("htpasswd: entry for %q: %w", username, err)
		}
		users[username] = h
	}
	return &File{users: users}, nil
}

// LoadReader reads all of r and parses it with [Load].
func LoadReader(r io.Reader) (*File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("htpasswd: failed to read credentials: %w", err)
	}
	return Load(string(data))
}

// LoadFile reads and parses the htpasswd file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("htpasswd: failed to read %s: %w", path, err)
	}
	return Load(string(data))
}

// Check verifies username/password against the store.
//
// An unknown username returns (false, nil), indistinguishable from a wrong
// password — no user-enumeration signal. A non-nil error means the stored
// hash for an existing user could not be evaluated (see [ErrVerification]).
func (f *File) Check(username, password string) (bool, error) {
	h, ok := f.users[username]
	if !ok {
		return false, nil
	}
	return h.Check(password)
}

// HasUser reports whether an entry exists for username.
func (f *File) HasUser(username string) bool {
	_, ok := f.users[username]
	return ok
}

// Len returns the number of entries in the store.
func (f *File) Len() int { return len(f.users) }

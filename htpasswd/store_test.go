package htpasswd_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hasbyte1/go-htpasswd/htpasswd"
)

// fixture holds one entry per supported scheme. All passwords are "password"
// except user2 (zaq1@WSX).
const fixture = `user2:$apr1$7/CTEZag$omWmIgXPJYoxB3joyuq4S/
user:$apr1$lZL6V/ci$eIMz/iKDkbtys/uU7LEK00
bcrypt_test:$2y$05$nC6nErr9XZJuMJ57WyCob.EuZEjylDt2KaHfbfOtyb.EgL1I2jCVa
sha1_test:{SHA}W6ph5Mm5Pz8GgiULbPgzG37mj9g=
crypt_test:bGVh02xkuGli2`

func loadFixture(t *testing.T) *htpasswd.File {
	t.Helper()
	f, err := htpasswd.Load(fixture)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return f
}

// ──────────────────────────────────────────────────────────────────────────────
// Load
// ──────────────────────────────────────────────────────────────────────────────

func TestLoad_AllSchemes(t *testing.T) {
	f := loadFixture(t)
	if f.Len() != 5 {
		t.Fatalf("Len: got %d, want 5", f.Len())
	}
	for _, user := range []string{"user", "user2", "bcrypt_test", "sha1_test", "crypt_test"} {
		if !f.HasUser(user) {
			t.Errorf("HasUser(%q) = false", user)
		}
	}
}

func TestLoad_SkipsUnparseableLines(t *testing.T) {
	f, err := htpasswd.Load("\n\nnot a credential line\n# a comment\n   \nuser:$apr1$lZL6V/ci$eIMz/iKDkbtys/uU7LEK00\n")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Len() != 1 {
		t.Errorf("Len: got %d, want 1 (blank, comment, and colon-less lines skipped)", f.Len())
	}
}

func TestLoad_CRLFLines(t *testing.T) {
	f, err := htpasswd.Load("sha1_test:{SHA}W6ph5Mm5Pz8GgiULbPgzG37mj9g=\r\ncrypt_test:bGVh02xkuGli2\r\n")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ok, err := f.Check("sha1_test", "password")
	if err != nil || !ok {
		t.Errorf("Check after CRLF load: ok=%v err=%v", ok, err)
	}
}

func TestLoad_DuplicateUsernameLastWins(t *testing.T) {
	f, err := htpasswd.Load(
		"user:$apr1$lZL6V/ci$eIMz/iKDkbtys/uU7LEK00\n" + // "password"
			"user:$apr1$7/CTEZag$omWmIgXPJYoxB3joyuq4S/") // "zaq1@WSX"
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if f.Len() != 1 {
		t.Fatalf("Len: got %d, want 1", f.Len())
	}
	ok, _ := f.Check("user", "zaq1@WSX")
	if !ok {
		t.Error("later duplicate entry must win")
	}
	ok, _ = f.Check("user", "password")
	if ok {
		t.Error("earlier duplicate entry must be overwritten")
	}
}

func TestLoad_MalformedAPR1IsFatal(t *testing.T) {
	_, err := htpasswd.Load("user:$apr1$tooshort")
	if !errors.Is(err, htpasswd.ErrMalformedHash) {
		t.Errorf("expected ErrMalformedHash, got %v", err)
	}
}

func TestLoadReader(t *testing.T) {
	f, err := htpasswd.LoadReader(strings.NewReader(fixture))
	if err != nil {
		t.Fatalf("LoadReader: %v", err)
	}
	ok, err := f.Check("user", "password")
	if err != nil || !ok {
		t.Errorf("Check: ok=%v err=%v", ok, err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".htpasswd")
	if err := os.WriteFile(path, []byte(fixture), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := htpasswd.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if f.Len() != 5 {
		t.Errorf("Len: got %d, want 5", f.Len())
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := htpasswd.LoadFile(filepath.Join(t.TempDir(), "no-such-file"))
	if err == nil {
		t.Error("expected error for missing file")
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Check
// ──────────────────────────────────────────────────────────────────────────────

func TestCheck_CorrectAndWrongPerScheme(t *testing.T) {
	f := loadFixture(t)
	cases := []struct {
		user, password string
	}{
		{"user", "password"},
		{"user2", "zaq1@WSX"},
		{"bcrypt_test", "password"},
		{"sha1_test", "password"},
		{"crypt_test", "password"},
	}
	for _, c := range cases {
		ok, err := f.Check(c.user, c.password)
		if err != nil {
			t.Fatalf("Check(%q): %v", c.user, err)
		}
		if !ok {
			t.Errorf("Check(%q, correct password) = false", c.user)
		}
		ok, err = f.Check(c.user, "not-the-password")
		if err != nil {
			t.Fatalf("Check(%q, wrong): %v", c.user, err)
		}
		if ok {
			t.Errorf("Check(%q, wrong password) = true", c.user)
		}
	}
}

func TestCheck_CaseSensitivePassword(t *testing.T) {
	f := loadFixture(t)
	ok, err := f.Check("user2", "ZAQ1@WSX")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if ok {
		t.Error("password comparison must be case-sensitive")
	}
}

func TestCheck_UnknownUser(t *testing.T) {
	f := loadFixture(t)
	ok, err := f.Check("user_does_not_exist", "password")
	if err != nil {
		t.Fatalf("unknown user must not be an error, got %v", err)
	}
	if ok {
		t.Error("Check returned true for unknown user")
	}
}

// Flipping any single digest character must flip the verdict — no scheme may
// accidentally collide.
func TestCheck_StoredDigestSensitivity(t *testing.T) {
	entries := []struct {
		name, line, password string
	}{
		{"apr1", "u:$apr1$lZL6V/ci$eIMz/iKDkbtys/uU7LEK00", "password"},
		{"sha1", "u:{SHA}W6ph5Mm5Pz8GgiULbPgzG37mj9g=", "password"},
		{"crypt", "u:bGVh02xkuGli2", "password"},
	}
	for _, e := range entries {
		t.Run(e.name, func(t *testing.T) {
			i := len(e.line) - 3 // inside the digest for every scheme
			mutated := []byte(e.line)
			if mutated[i] == 'k' {
				mutated[i] = 'm'
			} else {
				mutated[i] = 'k'
			}
			f, err := htpasswd.Load(string(mutated))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			ok, err := f.Check("u", e.password)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if ok {
				t.Errorf("corrupted entry %q still verifies", mutated)
			}
		})
	}
}

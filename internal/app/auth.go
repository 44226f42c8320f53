package app

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	DefaultAuthFile = "auth.secret"
	AuthFileEnv     = "AUTH_FILE"
	AuthRealm       = "Civic Registry Edit Mode"
	AuthFileMode    = 0400
)

// Argon2id parameters (OWASP recommended)
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// ErrAborted is returned by CreateAuthFile when overwriting was declined
var ErrAborted = errors.New("aborted")

// Credentials is the single edit-mode account
type Credentials struct {
	User string
	Hash string
}

// editCredentials is nil when no auth file exists (dev mode)
var editCredentials *Credentials

// AuthFilePath returns $AUTH_FILE or auth.secret next to the binary
func AuthFilePath() (string, error) {
	if path := os.Getenv(AuthFileEnv); path != "" {
		return path, nil
	}
	execPath, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %w", err)
	}
	return filepath.Join(filepath.Dir(execPath), DefaultAuthFile), nil
}

// ParseCredentials parses a "username:hash" line
func ParseCredentials(line string) (*Credentials, error) {
	user, hash, ok := strings.Cut(strings.TrimSpace(line), ":")
	if !ok || user == "" || hash == "" {
		return nil, fmt.Errorf("invalid auth file format (expected: username:hash)")
	}
	return &Credentials{User: user, Hash: hash}, nil
}

// LoadAuthCredentials loads the edit-mode account. A missing file leaves the
// edit endpoints unprotected.
func LoadAuthCredentials() error {
	editCredentials = nil

	path, err := AuthFilePath()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("⚠️  No auth file at %s: edit endpoints are UNPROTECTED (local development only)", path)
			log.Printf("⚠️  Create one with: civic-registry hash-password")
			return nil
		}
		return fmt.Errorf("failed to read auth file: %w", err)
	}

	creds, err := ParseCredentials(string(data))
	if err != nil {
		return err
	}
	editCredentials = creds

	log.Printf("✅ Basic Auth enabled for edit mode (user: %s, file: %s)", creds.User, path)
	return nil
}

// HashPassword creates an Argon2id hash of the password
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	// $argon2id$v=19$m=65536,t=1,p=4$salt$hash
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// VerifyPassword verifies a password against an Argon2id hash
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return false, fmt.Errorf("invalid hash format")
	}
	if parts[1] != "argon2id" {
		return false, fmt.Errorf("not an argon2id hash")
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, fmt.Errorf("failed to parse hash parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// Verify checks a username and password in constant time for the username
func (c *Credentials) Verify(user, password string) bool {
	if subtle.ConstantTimeCompare([]byte(user), []byte(c.User)) != 1 {
		return false
	}
	ok, err := VerifyPassword(password, c.Hash)
	if err != nil {
		log.Printf("Error verifying password: %v", err)
		return false
	}
	return ok
}

// RequireAuth is a middleware that enforces Basic Auth with Argon2id
func RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := editCredentials
		if creds == nil {
			next(w, r)
			return
		}

		user, pass, ok := r.BasicAuth()
		if !ok || !creds.Verify(user, pass) {
			w.Header().Set("WWW-Authenticate", `Basic realm="`+AuthRealm+`"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			log.Printf("⚠️  Failed auth attempt from %s (user: %s)", r.RemoteAddr, user)
			return
		}

		next(w, r)
	}
}

// CreateAuthFile writes username and hashed password to the auth file.
// When the file exists and overwrite is false, confirm decides whether to
// replace it; a nil confirm declines.
func CreateAuthFile(username, password string, overwrite bool, confirm func(path string) bool) (string, error) {
	path, err := AuthFilePath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		if !overwrite && (confirm == nil || !confirm(path)) {
			return "", ErrAborted
		}
		// The file is read-only, so it has to be removed first
		if err := os.Remove(path); err != nil {
			return "", fmt.Errorf("failed to remove existing auth file: %w", err)
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	content := fmt.Sprintf("%s:%s\n", username, hash)
	if err := os.WriteFile(path, []byte(content), AuthFileMode); err != nil {
		return "", fmt.Errorf("failed to write auth file: %w", err)
	}
	return path, nil
}

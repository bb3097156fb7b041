package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPasswordMismatch = errors.New("password does not match")
	ErrUnsupportedHash  = errors.New("unsupported password hash")
)

const argon2Prefix = "$argon2id$"

// HashPassword generates a PHC-format Argon2id hash string including salt and parameters.
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	hash := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		iterations,
		memory,
		parallelism,
		keyLength,
	)

	return fmt.Sprintf(
		"$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memory,
		iterations,
		parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash),
	), nil
}

// VerifyPassword checks password against a stored hash. Argon2id PHC strings
// and the bcrypt hashes inherited from the previous CRM database are both
// accepted. A wrong password always yields ErrPasswordMismatch.
func VerifyPassword(password, encodedHash string) error {
	switch {
	case strings.HasPrefix(encodedHash, argon2Prefix):
		err := verifyArgon2(password, encodedHash)
		burnBcrypt(password)
		return err
	case isBcrypt(encodedHash):
		err := bcrypt.CompareHashAndPassword([]byte(encodedHash), []byte(password))
		if legacyDummy.Load() != nil {
			burnArgon2(password)
		}
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrPasswordMismatch
		}
		return err
	default:
		return ErrUnsupportedHash
	}
}

// NeedsRehash reports whether the hash should be replaced with a fresh
// Argon2id hash the next time the plaintext is known.
func NeedsRehash(encodedHash string) bool {
	return !strings.HasPrefix(encodedHash, argon2Prefix)
}

var (
	dummyOnce sync.Once
	dummyHash string

	// legacyDummy is a bcrypt hash at the cost of the stored legacy hashes,
	// nil once none remain.
	legacyDummy atomic.Pointer[[]byte]
)

// SetLegacyHash tells the package that bcrypt hashes as strong as hash are
// still stored. While set, every verification spends one Argon2id and one
// bcrypt comparison whichever kind of hash it checks, so unknown, migrated
// and legacy accounts all take the same time. An empty hash clears it.
func SetLegacyHash(hash string) error {
	if hash == "" {
		legacyDummy.Store(nil)
		return nil
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return fmt.Errorf("legacy hash: %w", err)
	}
	dummy, err := bcrypt.GenerateFromPassword([]byte("crm-dummy-password"), cost)
	if err != nil {
		return fmt.Errorf("legacy hash: %w", err)
	}
	legacyDummy.Store(&dummy)
	return nil
}

// LegacyCost reports the bcrypt cost dummy work is matched to, or 0.
func LegacyCost() int {
	h := legacyDummy.Load()
	if h == nil {
		return 0
	}
	cost, _ := bcrypt.Cost(*h)
	return cost
}

// DummyVerify burns the same time as a real verification. Call it when there
// is no account to check against so response timing does not reveal whether
// a username exists.
func DummyVerify(password string) {
	burnArgon2(password)
	burnBcrypt(password)
}

func burnArgon2(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = HashPassword("crm-dummy-password")
	})
	_ = verifyArgon2(password, dummyHash)
}

func burnBcrypt(password string) {
	if h := legacyDummy.Load(); h != nil {
		_ = bcrypt.CompareHashAndPassword(*h, []byte(password))
	}
}

func isBcrypt(h string) bool {
	return strings.HasPrefix(h, "$2a$") || strings.HasPrefix(h, "$2b$") || strings.HasPrefix(h, "$2y$")
}

func verifyArgon2(password, encodedHash string) error {
	// ["", "argon2id", "v=19", "m=X,t=Y,p=Z", "salt", "hash"]
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return errors.New("invalid hash format: expected 6 parts")
	}
	if parts[2] != "v=19" {
		return errors.New("invalid hash format: wrong version")
	}

	var mem, iters uint32
	var par uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &mem, &iters, &par); err != nil {
		return fmt.Errorf("invalid hash format: failed to parse parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode salt: %w", err)
	}
	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return fmt.Errorf("invalid hash format: failed to decode hash: %w", err)
	}

	computed := argon2.IDKey(
		[]byte(password+GetPepper()),
		salt,
		iters,
		mem,
		par,
		uint32(len(expectedHash)), // #nosec G115 - If this overflows we have bigger problems
	)

	if subtle.ConstantTimeCompare(computed, expectedHash) == 1 {
		return nil
	}
	return ErrPasswordMismatch
}

// GeneratePassword returns a random 12 character alphanumeric password, used
// for seeded accounts when no password was configured.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 12
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}

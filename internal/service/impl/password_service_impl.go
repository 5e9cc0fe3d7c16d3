package impl

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

type Argon2Params struct {
	Time    uint32 // iterations
	Memory  uint32 // KiB (e.g., 64*1024 = 64MB)
	Threads uint8  // parallelism
	KeyLen  uint32 // bytes
	SaltLen uint32 // bytes
}

const argon2idName = "argon2id"

// PasswordServiceImpl stores hashes in the PHC string format:
// $argon2id$v=19$m=65536,t=3,p=1$<salt>$<hash>
type PasswordServiceImpl struct {
	cur Argon2Params // current policy used for new hashes
}

func DefaultArgon2Params() Argon2Params {
	return Argon2Params{
		Time:    3,
		Memory:  64 * 1024, // 64 MiB
		Threads: 1,
		KeyLen:  32,
		SaltLen: 16,
	}
}

func NewPasswordServiceArgon2id() *PasswordServiceImpl {
	return &PasswordServiceImpl{cur: DefaultArgon2Params()}
}

func NewPasswordServiceWithParams(p Argon2Params) *PasswordServiceImpl {
	return &PasswordServiceImpl{cur: p}
}

func (p *PasswordServiceImpl) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	salt := make([]byte, p.cur.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	key := argon2.IDKey([]byte(password), salt, p.cur.Time, p.cur.Memory, p.cur.Threads, p.cur.KeyLen)
	return encodeArgon2id(p.cur, salt, key), nil
}

func (p *PasswordServiceImpl) Verify(password, encoded string) (ok bool, rehashNeeded bool) {
	stored, salt, key, err := decodeArgon2id(encoded)
	if err != nil {
		return false, false
	}
	calculated := argon2.IDKey([]byte(password), salt, stored.Time, stored.Memory, stored.Threads, stored.KeyLen)
	ok = subtle.ConstantTimeCompare(calculated, key) == 1

	// Rehash if policy changed
	rehashNeeded = ok && (stored.Time != p.cur.Time ||
		stored.Memory != p.cur.Memory ||
		stored.Threads != p.cur.Threads ||
		stored.KeyLen != p.cur.KeyLen ||
		stored.SaltLen != p.cur.SaltLen)

	return ok, rehashNeeded
}

func encodeArgon2id(p Argon2Params, salt, key []byte) string {
	return fmt.Sprintf("$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idName, argon2.Version, p.Memory, p.Time, p.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

func decodeArgon2id(encoded string) (Argon2Params, []byte, []byte, error) {
	var p Argon2Params
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != argon2idName {
		return p, nil, nil, ErrMalformedHash
	}
	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	if version != argon2.Version {
		return p, nil, nil, ErrIncompatibleVer
	}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Time, &p.Threads); err != nil {
		return p, nil, nil, ErrMalformedHash
	}
	if p.Time == 0 || p.Memory == 0 || p.Threads == 0 {
		return p, nil, nil, ErrMalformedHash
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return p, nil, nil, ErrMalformedHash
	}
	p.SaltLen = uint32(len(salt))
	p.KeyLen = uint32(len(key))
	return p, salt, key, nil
}

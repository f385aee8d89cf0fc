// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/sha256"
	"errors"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltDomain    = "bookmark-sync/v1/salt"
	authDomain    = "auth"
	encryptDomain = "encrypt"
)

// ErrEmptyCredentials is returned when login or password is blank.
var ErrEmptyCredentials = errors.New("login and password must not be empty")

// keyChainService is the private implementation of [KeyChainService].
type keyChainService struct {
	// Argon2id tuning parameters.
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
	argonKeyLen  uint32
}

// NewKeyChainService constructs a [KeyChainService] with the Argon2id
// parameters recommended by OWASP:
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
//   - key length:  32 bytes (256 bits)
func NewKeyChainService() KeyChainService {
	return &keyChainService{
		argonTime:    1,
		argonMemory:  64 * 1024, // 64 MiB
		argonThreads: 4,
		argonKeyLen:  32,
	}
}

// DeriveKeys implements [KeyChainService]. The login is case-folded before
// salting so "Alice" and "alice" derive the same keys.
func (k *keyChainService) DeriveKeys(login, password string) (Keys, error) {
	login = strings.ToLower(strings.TrimSpace(login))
	if login == "" || password == "" {
		return Keys{}, ErrEmptyCredentials
	}

	master := argon2.IDKey([]byte(password), k.salt(login), k.argonTime, k.argonMemory, k.argonThreads, k.argonKeyLen)

	return Keys{
		PrimaryKey: subKey(master, authDomain),
		SecretKey:  subKey(master, encryptDomain),
	}, nil
}

// NewCrypter implements [KeyChainService].
func (k *keyChainService) NewCrypter(secretKey []byte) (Crypter, error) {
	return NewAESCrypter(secretKey)
}

func (k *keyChainService) salt(login string) []byte {
	h := sha256.New()
	h.Write([]byte(saltDomain))
	h.Write([]byte(login))
	return h.Sum(nil)[:16]
}

func subKey(master []byte, domain string) []byte {
	h := sha256.New()
	h.Write(master)
	h.Write([]byte(domain)) // domain-separates the two keys
	return h.Sum(nil)
}

package crypto

//go:generate mockgen -source=interfaces.go -destination=../mock/crypto_mock.go -package=mock

// Crypter encrypts and decrypts the text fields of a bookmark record.
// Ciphertext is opaque to the relay server.
type Crypter interface {
	// Encrypt returns the base64 ciphertext of plaintext.
	Encrypt(plaintext string) (string, error)

	// Decrypt reverses Encrypt. It fails when the ciphertext was produced
	// with another key or was tampered with.
	Decrypt(ciphertext string) (string, error)
}

// KeyChainService derives the account keys on the client.
//
// Both keys are derived deterministically from login and password, so every
// device of the account arrives at the same pair:
//
//	salt       = SHA-256(domain ‖ login)[:16]
//	master     = Argon2id(password, salt)
//	PrimaryKey = SHA-256(master ‖ "auth")    sent to the server as credential
//	SecretKey  = SHA-256(master ‖ "encrypt") never leaves the device
type KeyChainService interface {
	// DeriveKeys derives the primary and secret key of an account.
	DeriveKeys(login, password string) (Keys, error)

	// NewCrypter builds the record crypter for a secret key.
	NewCrypter(secretKey []byte) (Crypter, error)
}

// Keys is the derived key pair of an account.
type Keys struct {
	PrimaryKey []byte
	SecretKey  []byte
}

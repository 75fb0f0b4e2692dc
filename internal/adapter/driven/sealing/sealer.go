// Package sealing encrypts the backend cookies kept alongside a session so a
// leaked session store does not hand out live backend sessions.
package sealing

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/ericfisherdev/bestcars/internal/domain/model"
)

// KeySize is the required key length for AES-256-GCM.
const KeySize = 32

// ErrInvalidKey is returned by NewSealer when the key is not KeySize bytes.
var ErrInvalidKey = errors.New("sealing key must be 32 bytes")

// Sealer encrypts values with AES-256-GCM. Sealed values are base64 strings
// holding nonce || ciphertext || tag.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer creates a Sealer for the given 32-byte key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKey
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("cipher.NewGCM: %w", err)
	}

	return &Sealer{aead: gcm}, nil
}

// Seal encrypts plaintext with a fresh random nonce.
func (s *Sealer) Seal(plaintext []byte) (string, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Open decrypts a value produced by Seal.
func (s *Sealer) Open(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}

	nonceSize := s.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("gcm.Open: %w", err)
	}
	return plaintext, nil
}

type cookieRecord struct {
	Name  string `json:"n"`
	Value string `json:"v"`
}

// SealAuth seals the name/value pairs of the backend cookies. Attributes such
// as Path and Expires are dropped: the cookies are only ever replayed to the
// backend by this server. No cookies seal to "".
func (s *Sealer) SealAuth(auth model.BackendAuth) (string, error) {
	if len(auth.Cookies) == 0 {
		return "", nil
	}

	records := make([]cookieRecord, 0, len(auth.Cookies))
	for _, c := range auth.Cookies {
		records = append(records, cookieRecord{Name: c.Name, Value: c.Value})
	}

	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("encode backend cookies: %w", err)
	}
	return s.Seal(data)
}

// OpenAuth reverses SealAuth.
func (s *Sealer) OpenAuth(sealed string) (model.BackendAuth, error) {
	if sealed == "" {
		return model.BackendAuth{}, nil
	}

	data, err := s.Open(sealed)
	if err != nil {
		return model.BackendAuth{}, err
	}

	var records []cookieRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return model.BackendAuth{}, fmt.Errorf("decode backend cookies: %w", err)
	}

	cookies := make([]*http.Cookie, 0, len(records))
	for _, r := range records {
		cookies = append(cookies, &http.Cookie{Name: r.Name, Value: r.Value})
	}
	return model.BackendAuth{Cookies: cookies}, nil
}

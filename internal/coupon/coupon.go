// Package coupon generates and seals coupon codes. A coupon is a pair of
// random tokens: the coupon code handed to the rewardee and the secret code
// that unlocks it. Only the sealed combination of the two is persisted, so
// neither token alone identifies a reward in storage.
package coupon

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const tokenBytes = 8

// GenerateTokens returns a fresh (couponCode, secretCode) pair, each an
// independent 16-character hex token.
func GenerateTokens() (couponCode, secretCode string, err error) {
	couponCode, err = token()
	if err != nil {
		return "", "", err
	}
	secretCode, err = token()
	if err != nil {
		return "", "", err
	}
	return couponCode, secretCode, nil
}

func token() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Seal encrypts couponCode under secretCode and returns the hex ciphertext.
// The key and nonce are both derived from the secret, making the output
// deterministic: issuing and redeeming compute the same sealed value, which
// is what lets redemption look the coupon up by ciphertext. Each secret is
// used for exactly one message, so the fixed nonce does not repeat across
// keys.
func Seal(couponCode, secretCode string) (string, error) {
	key := sha256.Sum256([]byte(secretCode))
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonceSrc := sha256.Sum256([]byte(secretCode + ":nonce"))
	nonce := nonceSrc[:gcm.NonceSize()]
	sealed := gcm.Seal(nil, nonce, []byte(couponCode), nil)
	return hex.EncodeToString(sealed), nil
}

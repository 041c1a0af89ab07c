package wire

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/rawblock/nostrdizer/internal/errs"
)

// sharedSecret derives the NIP-04 ECDH shared secret: the raw x-coordinate
// of senderPriv * recipientPub, used directly as the AES-256 key (NIP-04
// does not hash it), matching the spec's AES-256-CBC-under-ECDH(secp256k1)
// construction.
func sharedSecret(senderPriv *btcec.PrivateKey, recipientPub *btcec.PublicKey) [32]byte {
	var point btcec.JacobianPoint
	var pub btcec.JacobianPoint
	recipientPub.AsJacobian(&pub)
	btcec.ScalarMultNonConst(&senderPriv.Key, &pub, &point)
	point.ToAffine()
	xBytes := point.X.Bytes()
	var key [32]byte
	copy(key[:], xBytes[:])
	return key
}

// Encrypt implements the NIP-04-compatible scheme: AES-256-CBC of the JSON
// payload under the ECDH shared secret, random IV, serialized as
// "<b64(ciphertext)>?iv=<b64(iv)>".
func Encrypt(senderPriv *btcec.PrivateKey, recipientPub *btcec.PublicKey, plaintext []byte) (string, error) {
	key := sharedSecret(senderPriv, recipientPub)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return "", fmt.Errorf("%w: new cipher: %v", errs.ErrCrypto, err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("%w: random iv: %v", errs.ErrCrypto, err)
	}

	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return fmt.Sprintf("%s?iv=%s",
		base64.StdEncoding.EncodeToString(ciphertext),
		base64.StdEncoding.EncodeToString(iv)), nil
}

// Decrypt inverts Encrypt given the recipient's private key and the
// sender's public key.
func Decrypt(recipientPriv *btcec.PrivateKey, senderPub *btcec.PublicKey, encoded string) ([]byte, error) {
	ctB64, ivB64, ok := strings.Cut(encoded, "?iv=")
	if !ok {
		return nil, fmt.Errorf("%w: malformed encrypted content", errs.ErrDecode)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(ctB64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode ciphertext: %v", errs.ErrDecode, err)
	}
	iv, err := base64.StdEncoding.DecodeString(ivB64)
	if err != nil {
		return nil, fmt.Errorf("%w: decode iv: %v", errs.ErrDecode, err)
	}
	if len(iv) != aes.BlockSize {
		return nil, fmt.Errorf("%w: invalid iv length", errs.ErrCrypto)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: invalid ciphertext length", errs.ErrCrypto)
	}

	key := sharedSecret(recipientPriv, senderPub)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("%w: new cipher: %v", errs.ErrCrypto, err)
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ciphertext)

	return pkcs7Unpad(padded)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	padding := make([]byte, padLen)
	for i := range padding {
		padding[i] = byte(padLen)
	}
	return append(append([]byte{}, data...), padding...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", errs.ErrCrypto)
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > aes.BlockSize || padLen > len(data) {
		return nil, fmt.Errorf("%w: invalid padding", errs.ErrCrypto)
	}
	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, fmt.Errorf("%w: invalid padding", errs.ErrCrypto)
		}
	}
	return data[:len(data)-padLen], nil
}

package client

import (
	"crypto/ed25519"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mr-tron/base58"
)

// Payload is the exact byte string a request signature covers
func Payload(method string, p *SignedParams) []byte {
	return []byte(fmt.Sprintf("%s|%s|%d|%s|%d|%s", method, p.Signer, p.Amount, p.Target, p.Timestamp, p.Nonce))
}

type Signer struct {
	privKey ed25519.PrivateKey
}

// NewSigner accepts a 32 byte seed or a 64 byte ed25519 private key
func NewSigner(privKey []byte) (*Signer, error) {
	switch len(privKey) {
	case ed25519.SeedSize:
		return &Signer{privKey: ed25519.NewKeyFromSeed(privKey)}, nil
	case ed25519.PrivateKeySize:
		return &Signer{privKey: ed25519.PrivateKey(privKey)}, nil
	default:
		return nil, ErrUnsupportedKey
	}
}

// PublicKey returns the base58 address of the signer
func (s *Signer) PublicKey() string {
	return base58.Encode(s.privKey.Public().(ed25519.PublicKey))
}

// Sign stamps p with the signer, the current time and a fresh nonce where unset, and the signature
func (s *Signer) Sign(method string, p *SignedParams) {
	p.Signer = s.PublicKey()
	if p.Timestamp == 0 {
		p.Timestamp = time.Now().Unix()
	}
	if p.Nonce == "" {
		p.Nonce = uuid.NewString()
	}
	p.Signature = base58.Encode(ed25519.Sign(s.privKey, Payload(method, p)))
}

func Verify(method string, p *SignedParams) bool {
	pub, err := base58.Decode(p.Signer)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}
	sig, err := base58.Decode(p.Signature)
	if err != nil {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pub), Payload(method, p), sig)
}

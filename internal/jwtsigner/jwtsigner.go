package jwtsigner

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnsupportedAlgorithm = errors.New("unsupported jwt algorithm")

// Signer signs and verifies compact JWTs with either a shared HMAC secret
// (HS256/HS384/HS512) or an Ed25519 keypair (EdDSA).
type Signer struct {
	method  jwt.SigningMethod
	signKey any
	verKey  any
	public  ed25519.PublicKey
	KeyID   string
	Issuer  string
}

type Config struct {
	Algorithm  string // HS256, HS384, HS512 or EdDSA
	Secret     string // HMAC secret
	PrivateKey string // base64 ed25519 private key; empty generates an ephemeral key
	KeyID      string
	Issuer     string
}

func New(cfg Config) (*Signer, error) {
	s := &Signer{KeyID: cfg.KeyID, Issuer: cfg.Issuer}
	switch cfg.Algorithm {
	case "", "HS256", "HS384", "HS512":
		alg := cfg.Algorithm
		if alg == "" {
			alg = "HS256"
		}
		if cfg.Secret == "" {
			return nil, errors.New("hmac secret is required")
		}
		s.method = jwt.GetSigningMethod(alg)
		s.signKey = []byte(cfg.Secret)
		s.verKey = []byte(cfg.Secret)
	case "EdDSA":
		priv, err := ed25519Key(cfg.PrivateKey)
		if err != nil {
			return nil, err
		}
		s.method = jwt.SigningMethodEdDSA
		s.public = priv.Public().(ed25519.PublicKey)
		s.signKey = priv
		s.verKey = s.public
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, cfg.Algorithm)
	}
	return s, nil
}

// ed25519Key decodes base64 private key bytes. If privB64 is empty it
// generates an ephemeral key (good for local dev).
func ed25519Key(privB64 string) (ed25519.PrivateKey, error) {
	if privB64 == "" {
		_, priv, err := ed25519.GenerateKey(rand.Reader)
		return priv, err
	}
	raw, err := base64.StdEncoding.DecodeString(privB64)
	if err != nil {
		return nil, err
	}
	if len(raw) != ed25519.PrivateKeySize {
		return nil, errors.New("invalid ed25519 private key size")
	}
	return ed25519.PrivateKey(raw), nil
}

func (s *Signer) Algorithm() string { return s.method.Alg() }

// Sign issues a token for the given claims with the configured kid header.
func (s *Signer) Sign(claims jwt.Claims) (string, error) {
	t := jwt.NewWithClaims(s.method, claims)
	if s.KeyID != "" {
		t.Header["kid"] = s.KeyID
	}
	return t.SignedString(s.signKey)
}

// Parse verifies signature, algorithm, expiry and (when set) issuer, filling claims.
func (s *Signer) Parse(token string, claims jwt.Claims) error {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	}
	if s.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.Issuer))
	}
	tok, err := jwt.NewParser(opts...).ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.verKey, nil
	})
	if err != nil {
		return err
	}
	if !tok.Valid {
		return errors.New("invalid token")
	}
	return nil
}

// PublicJWK renders the public part as JWK for the JWKS endpoint. It is nil
// for HMAC signers, which have no public half.
func (s *Signer) PublicJWK() map[string]any {
	if s.public == nil {
		return nil
	}
	return map[string]any{
		"kty": "OKP",
		"crv": "Ed25519",
		"alg": "EdDSA",
		"use": "sig",
		"kid": s.KeyID,
		"x":   base64.RawURLEncoding.EncodeToString(s.public),
	}
}

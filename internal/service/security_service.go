package service

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/darisadam/cardbrand/internal/pkg/crypto"
	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"go.uber.org/zap"
)

type SecurityService interface {
	GetPublicKeyPEM() string
	Decrypt(encryptedBase64 string) (string, error)
}

type securityService struct {
	privateKey   *rsa.PrivateKey
	publicKey    *rsa.PublicKey
	publicKeyPEM string
}

// NewSecurityService loads the BIN decryption key from keyFile, or generates
// an ephemeral 2048-bit pair when keyFile is empty. Clients holding the old
// public key must refetch it after a restart with an ephemeral key.
func NewSecurityService(keyFile string) (SecurityService, error) {
	if keyFile == "" {
		logger.Info("Generating ephemeral RSA key pair")
		key, err := crypto.GenerateKeyPair(2048)
		if err != nil {
			return nil, err
		}
		return NewSecurityServiceWithKey(key)
	}

	data, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}

	key, err := crypto.ParsePrivateKeyPEM(data)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded RSA private key", zap.String("path", keyFile), zap.Int("bits", key.N.BitLen()))
	return NewSecurityServiceWithKey(key)
}

func NewSecurityServiceWithKey(key *rsa.PrivateKey) (SecurityService, error) {
	pubPEM, err := crypto.EncodePublicKeyPEM(&key.PublicKey)
	if err != nil {
		return nil, err
	}

	return &securityService{
		privateKey:   key,
		publicKey:    &key.PublicKey,
		publicKeyPEM: pubPEM,
	}, nil
}

func (s *securityService) GetPublicKeyPEM() string {
	return s.publicKeyPEM
}

func (s *securityService) Decrypt(encryptedBase64 string) (string, error) {
	return crypto.DecryptOAEP(s.privateKey, encryptedBase64)
}

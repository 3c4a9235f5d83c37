package client

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/darisadam/cardbrand/internal/domain/binlookup"
	"github.com/darisadam/cardbrand/internal/domain/brand"
	"github.com/darisadam/cardbrand/internal/pkg/crypto"
	"github.com/google/uuid"
)

type publicKeyRequest struct{}

func (publicKeyRequest) Method() string { return http.MethodGet }
func (publicKeyRequest) Path() string   { return "/api/v1/security/public-key" }
func (publicKeyRequest) Body() any      { return nil }

type lookupRequest struct {
	payload binlookup.LookupRequest
}

func (lookupRequest) Method() string { return http.MethodPost }
func (lookupRequest) Path() string   { return "/api/v1/bin/lookup" }
func (r lookupRequest) Body() any    { return r.payload }

// BinLookupService classifies BINs through the remote lookup endpoint.
// BINs are encrypted with the service's public key before they leave the device.
type BinLookupService struct {
	api APIClient

	mu        sync.Mutex
	publicKey *rsa.PublicKey
}

func NewBinLookupService(api APIClient) *BinLookupService {
	return &BinLookupService{api: api}
}

// PublicKey fetches the service key once and reuses it afterwards.
func (s *BinLookupService) PublicKey(ctx context.Context) (*rsa.PublicKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.publicKey != nil {
		return s.publicKey, nil
	}

	var pemData string
	if err := s.api.Perform(ctx, publicKeyRequest{}, &pemData); err != nil {
		return nil, fmt.Errorf("fetch public key: %w", err)
	}

	key, err := crypto.ParsePublicKeyPEM(pemData)
	if err != nil {
		return nil, err
	}

	s.publicKey = key
	return key, nil
}

func (s *BinLookupService) forgetKey(key *rsa.PublicKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.publicKey == key {
		s.publicKey = nil
	}
}

// LookupBrands returns the brands the service resolves for bin. Identifiers
// this client does not know are dropped.
func (s *BinLookupService) LookupBrands(ctx context.Context, bin string, supported []brand.Brand) ([]brand.Brand, error) {
	key, err := s.PublicKey(ctx)
	if err != nil {
		return nil, err
	}

	encrypted, err := crypto.EncryptOAEP(key, bin)
	if err != nil {
		return nil, fmt.Errorf("encrypt bin: %w", err)
	}

	ids := make([]string, len(supported))
	for i, b := range supported {
		ids[i] = string(b)
	}

	req := lookupRequest{payload: binlookup.LookupRequest{
		RequestID:       uuid.New().String(),
		EncryptedBIN:    encrypted,
		SupportedBrands: ids,
	}}

	var resp binlookup.LookupResponse
	if err := s.api.Perform(ctx, req, &resp); err != nil {
		// The service rotated its key; fetch the new one on the next call.
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusBadRequest {
			s.forgetKey(key)
		}
		return nil, fmt.Errorf("bin lookup: %w", err)
	}

	return brand.ParseList(resp.Brands), nil
}

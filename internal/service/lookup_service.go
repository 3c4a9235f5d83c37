package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/darisadam/cardbrand/internal/domain/binlookup"
	"github.com/darisadam/cardbrand/internal/domain/brand"
	"github.com/darisadam/cardbrand/internal/pkg/bincache"
	"github.com/darisadam/cardbrand/internal/pkg/bintable"
	"github.com/darisadam/cardbrand/internal/pkg/crypto"
	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/pkg/metrics"
	"github.com/darisadam/cardbrand/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrInvalidBIN = errors.New("bin must be 6 to 11 digits")
	ErrDecryptBIN = errors.New("failed to decrypt bin")
	ErrBINScan    = errors.New("too many distinct bins looked up")
)

const (
	SourceCache    = "cache"
	SourceDatabase = "database"
	SourceLocal    = "local"
)

type LookupService interface {
	Lookup(ctx context.Context, req *binlookup.LookupRequest) (*binlookup.LookupResponse, error)
}

// ScanDetector counts distinct BINs per client.
type ScanDetector interface {
	Track(ctx context.Context, clientID, bin string) (bool, error)
}

type LookupOption func(*lookupService)

// WithScanDetector rejects lookups from clients the detector flags.
func WithScanDetector(d ScanDetector) LookupOption {
	return func(s *lookupService) {
		s.scans = d
	}
}

type lookupService struct {
	repo     repository.BinRangeRepository
	cache    *bincache.Cache
	security SecurityService
	table    *bintable.Table
	scans    ScanDetector
}

// NewLookupService wires the lookup pipeline. cache may be nil.
func NewLookupService(
	repo repository.BinRangeRepository,
	cache *bincache.Cache,
	security SecurityService,
	table *bintable.Table,
	opts ...LookupOption,
) LookupService {
	if table == nil {
		table = bintable.Default()
	}
	s := &lookupService{
		repo:     repo,
		cache:    cache,
		security: security,
		table:    table,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *lookupService) Lookup(ctx context.Context, req *binlookup.LookupRequest) (*binlookup.LookupResponse, error) {
	start := time.Now()

	bin, err := s.resolveBIN(req)
	if err != nil {
		return nil, err
	}

	if err := s.checkScan(ctx, req.ClientID, bin); err != nil {
		return nil, err
	}

	entry := s.fromCache(ctx, bin)
	if entry == nil {
		var cacheable bool
		entry, cacheable = s.resolve(ctx, bin)
		if cacheable {
			s.toCache(ctx, bin, entry)
		}
	}

	brands := entry.Brands
	if len(req.SupportedBrands) > 0 {
		brands = brands.Intersect(brand.ParseList(req.SupportedBrands))
	}

	ids := make([]string, 0, brands.Len())
	for _, b := range brands.Sorted() {
		ids = append(ids, string(b))
	}

	metrics.RecordLookup(entry.Source, len(ids), time.Since(start).Seconds())

	logger.Debug("BIN lookup resolved",
		zap.String("request_id", req.RequestID),
		zap.String("bin", crypto.MaskBIN(bin)),
		zap.String("source", entry.Source),
		zap.Strings("brands", ids),
	)

	return &binlookup.LookupResponse{
		RequestID:          req.RequestID,
		Brands:             ids,
		IssuingCountryCode: entry.IssuingCountryCode,
	}, nil
}

func (s *lookupService) resolveBIN(req *binlookup.LookupRequest) (string, error) {
	bin := req.BIN
	if req.EncryptedBIN != "" {
		plain, err := s.security.Decrypt(req.EncryptedBIN)
		if err != nil {
			metrics.RecordLookupError("decrypt", "decryption_failed")
			return "", fmt.Errorf("%w: %v", ErrDecryptBIN, err)
		}
		bin = plain
	}

	if !validBIN(bin) {
		metrics.RecordLookupError("validate", "invalid_bin")
		return "", ErrInvalidBIN
	}
	return bin, nil
}

// checkScan fails open when the detector cannot be reached.
func (s *lookupService) checkScan(ctx context.Context, clientID, bin string) error {
	if s.scans == nil || clientID == "" {
		return nil
	}

	flagged, err := s.scans.Track(ctx, clientID, bin)
	if err != nil {
		logger.Warn("BIN scan check failed", zap.Error(err))
		return nil
	}
	if flagged {
		metrics.RecordLookupError("scan", "enumeration_detected")
		logger.Warn("Rejected lookup from scanning client",
			zap.String("client_id", clientID),
			zap.String("bin", crypto.MaskBIN(bin)),
		)
		return ErrBINScan
	}
	return nil
}

func validBIN(bin string) bool {
	if len(bin) < binlookup.MinBINLength || len(bin) > binlookup.MaxBINLength {
		return false
	}
	for i := 0; i < len(bin); i++ {
		if bin[i] < '0' || bin[i] > '9' {
			return false
		}
	}
	return true
}

// resolve consults the range store and falls back to the built-in table when
// the store has nothing for bin or cannot be reached. Answers produced while
// the store is down are not cacheable.
func (s *lookupService) resolve(ctx context.Context, bin string) (*bincache.Entry, bool) {
	ranges, err := s.repo.FindByBIN(ctx, bin)
	if err != nil {
		metrics.RecordLookupError("repository", "query_failed")
		logger.Warn("BIN range query failed, using local table",
			zap.String("bin", crypto.MaskBIN(bin)),
			zap.Error(err),
		)
	}

	entry := &bincache.Entry{Brands: brand.NewSet(), Source: SourceDatabase}
	for _, r := range ranges {
		b, err := brand.Parse(r.Brand)
		if err != nil {
			continue
		}
		entry.Brands.Add(b)
		if entry.IssuingCountryCode == "" {
			entry.IssuingCountryCode = r.IssuingCountryCode
		}
	}

	if entry.Brands.Len() == 0 {
		return &bincache.Entry{Brands: s.table.Match(bin), Source: SourceLocal}, err == nil
	}
	return entry, true
}

func (s *lookupService) fromCache(ctx context.Context, bin string) *bincache.Entry {
	if s.cache == nil {
		return nil
	}

	entry, ok, err := s.cache.Get(ctx, bin)
	if err != nil {
		metrics.RecordCache("error")
		logger.Warn("BIN cache read failed", zap.Error(err))
		return nil
	}
	if !ok {
		metrics.RecordCache("miss")
		return nil
	}

	metrics.RecordCache("hit")
	entry.Source = SourceCache
	return entry
}

func (s *lookupService) toCache(ctx context.Context, bin string, entry *bincache.Entry) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, bin, entry); err != nil {
		logger.Warn("BIN cache write failed", zap.Error(err))
	}
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/darisadam/cardbrand/internal/domain/binlookup"
	"github.com/darisadam/cardbrand/internal/domain/brand"
	"github.com/darisadam/cardbrand/internal/pkg/bincache"
	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/darisadam/cardbrand/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalidRange = errors.New("invalid bin range")

const maxListLimit = 500

type BinRangeService interface {
	CreateRange(ctx context.Context, req *binlookup.CreateBinRangeRequest) (*binlookup.BinRange, error)
	ListRanges(ctx context.Context, limit, offset int) ([]*binlookup.BinRange, error)
	DeleteRange(ctx context.Context, id uuid.UUID) error
}

type binRangeService struct {
	repo  repository.BinRangeRepository
	cache *bincache.Cache
}

func NewBinRangeService(repo repository.BinRangeRepository, cache *bincache.Cache) BinRangeService {
	return &binRangeService{
		repo:  repo,
		cache: cache,
	}
}

func (s *binRangeService) CreateRange(ctx context.Context, req *binlookup.CreateBinRangeRequest) (*binlookup.BinRange, error) {
	b, err := brand.Parse(req.Brand)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	start, err := repository.NormalizeBIN(req.IINStart)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	end, err := repository.NormalizeRangeEnd(req.IINEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRange, err)
	}

	if end < start {
		return nil, fmt.Errorf("%w: iin_end is below iin_start", ErrInvalidRange)
	}

	r := &binlookup.BinRange{
		ID:                 uuid.New(),
		IINStart:           start,
		IINEnd:             end,
		Brand:              string(b),
		NumberLength:       req.NumberLength,
		IssuingCountryCode: strings.ToUpper(req.IssuingCountryCode),
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return nil, err
	}

	s.invalidate(ctx)

	logger.Info("BIN range created",
		zap.String("id", r.ID.String()),
		zap.String("brand", r.Brand),
		zap.Uint64("iin_start", r.IINStart),
		zap.Uint64("iin_end", r.IINEnd),
	)

	return r, nil
}

func (s *binRangeService) ListRanges(ctx context.Context, limit, offset int) ([]*binlookup.BinRange, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset)
}

func (s *binRangeService) DeleteRange(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx)

	logger.Info("BIN range deleted", zap.String("id", id.String()))
	return nil
}

// invalidate drops cached lookups so range edits take effect at once.
func (s *binRangeService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		logger.Warn("Failed to invalidate BIN cache", zap.Error(err))
	}
}

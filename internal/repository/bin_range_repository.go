package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/darisadam/cardbrand/internal/domain/binlookup"
	"github.com/darisadam/cardbrand/internal/pkg/metrics"
	"github.com/google/uuid"
)

var ErrBinRangeNotFound = errors.New("bin range not found")

type BinRangeRepository interface {
	Create(ctx context.Context, r *binlookup.BinRange) error
	FindByBIN(ctx context.Context, bin string) ([]*binlookup.BinRange, error)
	List(ctx context.Context, limit, offset int) ([]*binlookup.BinRange, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}

type binRangeRepository struct {
	db *sql.DB
}

func NewBinRangeRepository(db *sql.DB) BinRangeRepository {
	return &binRangeRepository{db: db}
}

// NormalizeBIN pads or truncates digits to the stored range width.
func NormalizeBIN(bin string) (uint64, error) {
	if len(bin) > binlookup.RangeDigits {
		bin = bin[:binlookup.RangeDigits]
	}
	bin += strings.Repeat("0", binlookup.RangeDigits-len(bin))

	n, err := strconv.ParseUint(bin, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bin %q: %w", bin, err)
	}
	return n, nil
}

// NormalizeRangeEnd pads an upper bound with nines so "4" covers 40000000-49999999.
func NormalizeRangeEnd(bin string) (uint64, error) {
	if len(bin) > binlookup.RangeDigits {
		bin = bin[:binlookup.RangeDigits]
	}
	bin += strings.Repeat("9", binlookup.RangeDigits-len(bin))

	n, err := strconv.ParseUint(bin, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bin %q: %w", bin, err)
	}
	return n, nil
}

func (r *binRangeRepository) Create(ctx context.Context, br *binlookup.BinRange) error {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("insert", "bin_ranges", time.Since(start).Seconds())
	}()

	query := `
		INSERT INTO bin_ranges (id, iin_start, iin_end, brand, number_length, issuing_country_code)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''))
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		br.ID,
		br.IINStart,
		br.IINEnd,
		br.Brand,
		br.NumberLength,
		br.IssuingCountryCode,
	).Scan(&br.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create bin range: %w", err)
	}

	return nil
}

// FindByBIN returns every range containing bin, narrowest first.
func (r *binRangeRepository) FindByBIN(ctx context.Context, bin string) ([]*binlookup.BinRange, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("select", "bin_ranges", time.Since(start).Seconds())
	}()

	value, err := NormalizeBIN(bin)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, iin_start, iin_end, brand, number_length, issuing_country_code, created_at
		FROM bin_ranges
		WHERE iin_start <= $1 AND iin_end >= $1
		ORDER BY (iin_end - iin_start) ASC, created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("failed to find bin ranges: %w", err)
	}
	defer rows.Close()

	return scanBinRanges(rows)
}

func (r *binRangeRepository) List(ctx context.Context, limit, offset int) ([]*binlookup.BinRange, error) {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("select", "bin_ranges", time.Since(start).Seconds())
	}()

	query := `
		SELECT id, iin_start, iin_end, brand, number_length, issuing_country_code, created_at
		FROM bin_ranges
		ORDER BY iin_start ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list bin ranges: %w", err)
	}
	defer rows.Close()

	return scanBinRanges(rows)
}

func (r *binRangeRepository) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("delete", "bin_ranges", time.Since(start).Seconds())
	}()

	result, err := r.db.ExecContext(ctx, `DELETE FROM bin_ranges WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bin range: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrBinRangeNotFound
	}

	return nil
}

func (r *binRangeRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func scanBinRanges(rows *sql.Rows) ([]*binlookup.BinRange, error) {
	ranges := []*binlookup.BinRange{}
	for rows.Next() {
		br := &binlookup.BinRange{}
		var country sql.NullString
		err := rows.Scan(
			&br.ID,
			&br.IINStart,
			&br.IINEnd,
			&br.Brand,
			&br.NumberLength,
			&country,
			&br.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bin range: %w", err)
		}
		br.IssuingCountryCode = country.String
		ranges = append(ranges, br)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bin ranges: %w", err)
	}

	return ranges, nil
}

package binlookup

import (
	"time"

	"github.com/google/uuid"
)

const (
	MinBINLength = 6
	MaxBINLength = 11
	MaxPANLength = 19

	// RangeDigits is the width BIN ranges are stored at.
	RangeDigits = 8
)

type LookupRequest struct {
	RequestID       string   `json:"request_id"`
	EncryptedBIN    string   `json:"encrypted_bin,omitempty" binding:"required_without=BIN"`
	BIN             string   `json:"bin,omitempty"`
	SupportedBrands []string `json:"supported_brands,omitempty"`

	// ClientID is taken from the bearer token, never from the body.
	ClientID string `json:"-"`
}

type LookupResponse struct {
	RequestID          string   `json:"request_id"`
	Brands             []string `json:"brands"`
	IssuingCountryCode string   `json:"issuing_country_code,omitempty"`

	// SessionData is refreshed by a checkout gateway fronting the lookup;
	// this service leaves it empty.
	SessionData string `json:"session_data,omitempty"`
}

func (r *LookupResponse) GetSessionData() string {
	return r.SessionData
}

type BinRange struct {
	ID                 uuid.UUID `json:"id"`
	IINStart           uint64    `json:"iin_start"`
	IINEnd             uint64    `json:"iin_end"`
	Brand              string    `json:"brand"`
	NumberLength       int       `json:"number_length"`
	IssuingCountryCode string    `json:"issuing_country_code,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

type CreateBinRangeRequest struct {
	IINStart           string `json:"iin_start" binding:"required,numeric,min=1,max=8"`
	IINEnd             string `json:"iin_end" binding:"required,numeric,min=1,max=8"`
	Brand              string `json:"brand" binding:"required"`
	NumberLength       int    `json:"number_length" binding:"omitempty,min=12,max=19"`
	IssuingCountryCode string `json:"issuing_country_code" binding:"omitempty,len=2,alpha"`
}

type ListBinRangesRequest struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}

package wallet

import (
	"strings"
	"time"
)

// Type is the kind of external account a wallet points at.
type Type string

const (
	TypeMomo Type = "Momo"
	TypeCard Type = "Card"
)

// Scheme is the operator or card network of a wallet.
type Scheme string

const (
	SchemeMTN        Scheme = "MTN"
	SchemeVodafone   Scheme = "Vodafone"
	SchemeAirtelTigo Scheme = "AirtelTigo"
	SchemeVisa       Scheme = "Visa"
	SchemeMastercard Scheme = "Mastercard"
)

var (
	types   = []Type{TypeMomo, TypeCard}
	schemes = []Scheme{SchemeMTN, SchemeVodafone, SchemeAirtelTigo, SchemeVisa, SchemeMastercard}
)

// ParseType matches s case-insensitively against the known wallet types.
func ParseType(s string) (Type, bool) {
	for _, t := range types {
		if strings.EqualFold(strings.TrimSpace(s), string(t)) {
			return t, true
		}
	}
	return "", false
}

// ParseScheme matches s case-insensitively against the known schemes.
func ParseScheme(s string) (Scheme, bool) {
	for _, sc := range schemes {
		if strings.EqualFold(strings.TrimSpace(s), string(sc)) {
			return sc, true
		}
	}
	return "", false
}

// Accepts reports whether scheme may be used with wallet type t.
func (t Type) Accepts(scheme Scheme) bool {
	switch t {
	case TypeCard:
		return scheme == SchemeVisa || scheme == SchemeMastercard
	case TypeMomo:
		return scheme == SchemeMTN || scheme == SchemeVodafone || scheme == SchemeAirtelTigo
	default:
		return false
	}
}

// Wallet is the metadata of a user's mobile-money or card account. For cards
// only the first CardPrefixLength digits of the number are kept.
type Wallet struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Type          Type      `json:"type"`
	AccountNumber string    `json:"accountNumber"`
	AccountScheme Scheme    `json:"accountScheme"`
	Owner         string    `json:"owner"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Page is one slice of a wallet listing.
type Page struct {
	TotalCount int      `json:"totalCount"`
	PageNumber int      `json:"pageNumber"`
	PageSize   int      `json:"pageSize"`
	Data       []Wallet `json:"data"`
}

package entity

import (
	"strings"

	"anbar/pkg/jalaali"
)

// Party holds the contact and tax identifiers shared by suppliers and customers.
type Party struct {
	Phone        string `db:"phone" json:"phone,omitempty"`
	Address      string `db:"address" json:"address,omitempty"`
	NationalID   string `db:"national_id" json:"nationalId,omitempty"`
	EconomicCode string `db:"economic_code" json:"economicCode,omitempty"`
}

// Normalize trims fields and converts Persian digits in identifiers to ASCII.
func (p *Party) Normalize() {
	p.Phone = jalaali.NormalizeDigits(strings.TrimSpace(p.Phone))
	p.Address = strings.TrimSpace(p.Address)
	p.NationalID = jalaali.NormalizeDigits(strings.TrimSpace(p.NationalID))
	p.EconomicCode = jalaali.NormalizeDigits(strings.TrimSpace(p.EconomicCode))
}

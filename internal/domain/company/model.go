// Package company manages the single active company profile and its fiscal year.
package company

import (
	"context"
	"strings"
	"time"

	"anbar/internal/core/apperror"
	"anbar/internal/core/id"
	"anbar/pkg/jalaali"
)

// Company is one revision of the company profile. Upserts never edit a row:
// they deactivate the current revision and insert a new one.
type Company struct {
	ID             id.ID  `db:"id" json:"id"`
	Name           string `db:"name" json:"name"`
	EconomicCode   string `db:"economic_code" json:"economicCode,omitempty"`
	NationalID     string `db:"national_id" json:"nationalId,omitempty"`
	RegistrationNo string `db:"registration_no" json:"registrationNo,omitempty"`
	Phone          string `db:"phone" json:"phone,omitempty"`
	Address        string `db:"address" json:"address,omitempty"`
	PostalCode     string `db:"postal_code" json:"postalCode,omitempty"`

	FiscalYearStart time.Time `db:"fiscal_year_start" json:"fiscalYearStart"`
	FiscalYearEnd   time.Time `db:"fiscal_year_end" json:"fiscalYearEnd"`

	IsActive  bool      `db:"is_active" json:"isActive"`
	Version   int       `db:"version" json:"version"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Contains reports whether t falls inside the fiscal year, bounds included.
func (c *Company) Contains(t time.Time) bool {
	return !t.Before(c.FiscalYearStart) && !t.After(c.FiscalYearEnd)
}

// FiscalYear returns the Jalaali year the fiscal period starts in.
func (c *Company) FiscalYear() int {
	return jalaali.FromTime(c.FiscalYearStart).Year
}

// UpsertInput is the editable company profile. The fiscal period is either a
// Jalaali year or an explicit start and end.
type UpsertInput struct {
	Name           string
	EconomicCode   string
	NationalID     string
	RegistrationNo string
	Phone          string
	Address        string
	PostalCode     string

	FiscalYear      int
	FiscalYearStart *time.Time
	FiscalYearEnd   *time.Time
}

// FiscalYearRange converts Jalaali year jy into the instants of its first and
// last moment, Tehran time.
func FiscalYearRange(jy int) (start, end time.Time) {
	first, last := jalaali.FiscalYearBoundaries(jy)
	start = first.Time(nil).UTC()
	end = last.AddDays(1).Time(nil).Add(-time.Nanosecond).UTC()
	return start, end
}

// Validate implements entity.Validatable interface.
func (in *UpsertInput) Validate(ctx context.Context) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return apperror.NewFieldValidation("name", "name is required")
	}
	in.EconomicCode = jalaali.NormalizeDigits(strings.TrimSpace(in.EconomicCode))
	in.NationalID = jalaali.NormalizeDigits(strings.TrimSpace(in.NationalID))
	in.RegistrationNo = jalaali.NormalizeDigits(strings.TrimSpace(in.RegistrationNo))
	in.Phone = jalaali.NormalizeDigits(strings.TrimSpace(in.Phone))
	in.PostalCode = jalaali.NormalizeDigits(strings.TrimSpace(in.PostalCode))
	in.Address = strings.TrimSpace(in.Address)

	if in.FiscalYear != 0 {
		if in.FiscalYear < 1 || in.FiscalYear > 3177 {
			return apperror.NewFieldValidation("fiscalYear", "fiscal year is out of range")
		}
		return nil
	}

	if in.FiscalYearStart == nil || in.FiscalYearEnd == nil {
		return apperror.NewFieldValidation("fiscalYear", "fiscal year or fiscal year start and end are required")
	}
	if !in.FiscalYearStart.Before(*in.FiscalYearEnd) {
		return apperror.NewFieldValidation("fiscalYearEnd", "fiscal year end must be after its start")
	}
	return nil
}

// period resolves the fiscal period of a validated input.
func (in *UpsertInput) period() (start, end time.Time) {
	if in.FiscalYear != 0 {
		return FiscalYearRange(in.FiscalYear)
	}
	return in.FiscalYearStart.UTC(), in.FiscalYearEnd.UTC()
}

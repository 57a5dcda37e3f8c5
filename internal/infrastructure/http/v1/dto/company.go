package dto

import (
	"time"

	"anbar/internal/domain/company"
	"anbar/pkg/jalaali"
)

// UpsertCompanyRequest replaces the active company profile. The fiscal period
// is a Jalaali year, or explicit bounds as instants or Jalaali days.
type UpsertCompanyRequest struct {
	Name           string `json:"name" binding:"required,max=200"`
	EconomicCode   string `json:"economicCode" binding:"max=16"`
	NationalID     string `json:"nationalId" binding:"max=16"`
	RegistrationNo string `json:"registrationNo" binding:"max=32"`
	Phone          string `json:"phone" binding:"max=32"`
	Address        string `json:"address"`
	PostalCode     string `json:"postalCode" binding:"max=16"`

	FiscalYear            int        `json:"fiscalYear" binding:"omitempty,min=1,max=3177"`
	FiscalYearStart       *time.Time `json:"fiscalYearStart"`
	FiscalYearEnd         *time.Time `json:"fiscalYearEnd"`
	JalaliFiscalYearStart string     `json:"jalaliFiscalYearStart"`
	JalaliFiscalYearEnd   string     `json:"jalaliFiscalYearEnd"`
}

// ToInput converts DTO to the domain upsert input. A Jalaali end day covers
// the whole day.
func (r *UpsertCompanyRequest) ToInput() company.UpsertInput {
	in := company.UpsertInput{
		Name:            r.Name,
		EconomicCode:    r.EconomicCode,
		NationalID:      r.NationalID,
		RegistrationNo:  r.RegistrationNo,
		Phone:           r.Phone,
		Address:         r.Address,
		PostalCode:      r.PostalCode,
		FiscalYear:      r.FiscalYear,
		FiscalYearStart: r.FiscalYearStart,
		FiscalYearEnd:   r.FiscalYearEnd,
	}
	if in.FiscalYearStart == nil {
		if t, ok := jalaali.ParseTime(r.JalaliFiscalYearStart); ok {
			in.FiscalYearStart = &t
		}
	}
	if in.FiscalYearEnd == nil {
		if t, ok := jalaali.ParseTime(r.JalaliFiscalYearEnd); ok {
			end := jalaali.EndOfDay(t)
			in.FiscalYearEnd = &end
		}
	}
	return in
}

// CompanyResponse is a company revision with its Jalaali fiscal period.
type CompanyResponse struct {
	*company.Company
	FiscalYear            int    `json:"fiscalYear"`
	JalaliFiscalYearStart string `json:"jalaliFiscalYearStart"`
	JalaliFiscalYearEnd   string `json:"jalaliFiscalYearEnd"`
}

// FromCompany creates response DTO from domain entity.
func FromCompany(c *company.Company) CompanyResponse {
	return CompanyResponse{
		Company:               c,
		FiscalYear:            c.FiscalYear(),
		JalaliFiscalYearStart: jalaali.FormatTime(c.FiscalYearStart),
		JalaliFiscalYearEnd:   jalaali.FormatTime(c.FiscalYearEnd),
	}
}

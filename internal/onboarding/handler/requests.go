package handler

import (
	"strings"

	"scoutpay/pkg/validation"
)

// CreateSessionRequest starts an onboarding session.
type CreateSessionRequest struct {
	Variant     string `json:"variant" validate:"required,oneof=individual business"`
	PhoneNumber string `json:"phoneNumber"`
}

func (r *CreateSessionRequest) Normalize() {
	r.Variant = strings.ToLower(strings.TrimSpace(r.Variant))
	r.PhoneNumber = strings.TrimSpace(r.PhoneNumber)
}

func (r *CreateSessionRequest) Validate() error {
	return validation.Validate(r)
}

// FieldInputRequest carries the latest raw text of an identity field. An
// empty value clears the field; sanitization happens in the session engine.
type FieldInputRequest struct {
	Value string `json:"value"`
}

// OTPCodeRequest carries the latest raw OTP entry.
type OTPCodeRequest struct {
	Code string `json:"code"`
}

// BankSelectRequest records a bank dropdown pick.
type BankSelectRequest struct {
	BankCode string `json:"bankCode" validate:"required"`
}

func (r *BankSelectRequest) Validate() error {
	return validation.Validate(r)
}

// SelectionRequest records a profile dropdown pick.
type SelectionRequest struct {
	Value string `json:"value" validate:"required,notblank"`
}

func (r *SelectionRequest) Validate() error {
	return validation.Validate(r)
}

// NameRequest carries the manually typed full name.
type NameRequest struct {
	FullName string `json:"fullName"`
}

// DateOfBirthRequest carries a manually entered birth date.
type DateOfBirthRequest struct {
	DateOfBirth string `json:"dateOfBirth"`
}

// BusinessDetailsRequest carries the manually supplied business fields.
type BusinessDetailsRequest struct {
	CompanyName       string `json:"companyName"`
	IncorporationDate string `json:"incorporationDate"`
	NatureOfBusiness  string `json:"natureOfBusiness"`
}

// CACDocumentRequest attaches an uploaded CAC certificate reference.
type CACDocumentRequest struct {
	DocumentID string `json:"documentId" validate:"required,notblank"`
}

func (r *CACDocumentRequest) Validate() error {
	return validation.Validate(r)
}

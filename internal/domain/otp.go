package domain

import (
	"strings"
	"time"
)

type OtpType string

const (
	OtpTypeEmail    OtpType = "EMAIL"
	OtpTypeWhatsapp OtpType = "WHATSAPP"
)

// OtpTypeForIdentifier derives the delivery type from the identifier shape:
// anything containing "@" is an email address, everything else a phone number.
func OtpTypeForIdentifier(identifier string) OtpType {
	if strings.Contains(identifier, "@") {
		return OtpTypeEmail
	}
	return OtpTypeWhatsapp
}

type OtpPurpose string

const (
	PurposeRegistration  OtpPurpose = "REGISTRATION"
	PurposePasswordReset OtpPurpose = "PASSWORD_RESET"
	PurposeLogin         OtpPurpose = "LOGIN"
	PurposeChangeEmail   OtpPurpose = "CHANGE_EMAIL"
	PurposeChangePhone   OtpPurpose = "CHANGE_PHONE"
)

func (p OtpPurpose) Valid() bool {
	switch p {
	case PurposeRegistration, PurposePasswordReset, PurposeLogin, PurposeChangeEmail, PurposeChangePhone:
		return true
	}
	return false
}

// Otp is a single one-time code scoped to (identifier, purpose). It is
// single-use: issued, then either verified (Used), expired, or exhausted once
// Attempts reaches the configured maximum.
type Otp struct {
	ID              OtpID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code            string     `gorm:"type:text;not null" json:"-"`
	UserID          UserID     `gorm:"type:uuid;index;not null" json:"userId"`
	Identifier      string     `gorm:"type:text;index;not null" json:"identifier"`
	Type            OtpType    `gorm:"type:text;not null" json:"type"`
	Purpose         OtpPurpose `gorm:"type:text;not null" json:"purpose"`
	ExpiresAt       time.Time  `gorm:"not null" json:"expiresAt"`
	Used            bool       `gorm:"not null;default:false" json:"used"`
	Attempts        int        `gorm:"not null;default:0" json:"attempts"`
	DailyCount      int        `gorm:"not null;default:0" json:"dailyCount"`
	DailyCountReset time.Time  `json:"dailyCountReset"`
	CreatedAt       time.Time  `gorm:"not null" json:"createdAt"`
}

func (Otp) TableName() string { return "otps" }

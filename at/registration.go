package at

import (
	"errors"
	"strings"
)

// RegistrationStatus is the network registration state reported by +CREG?.
// Values equal the literal reply digit.
type RegistrationStatus byte

const (
	RegDisabled       RegistrationStatus = '0'
	RegHomeNetwork    RegistrationStatus = '1'
	RegSearching      RegistrationStatus = '2'
	RegDenied         RegistrationStatus = '3'
	RegNoSignal       RegistrationStatus = '4'
	RegRoaming        RegistrationStatus = '5'
	RegHomeSMSOnly    RegistrationStatus = '6'
	RegRoamingSMSOnly RegistrationStatus = '7'
)

// Registered reports whether the status counts as connected. Only home
// network and roaming qualify; the SMS-only states do not carry data.
func (s RegistrationStatus) Registered() bool {
	return s == RegHomeNetwork || s == RegRoaming
}

// String returns a human-readable name for the registration status.
func (s RegistrationStatus) String() string {
	switch s {
	case RegDisabled:
		return "registration disabled"
	case RegHomeNetwork:
		return "registered to home network"
	case RegSearching:
		return "searching for network"
	case RegDenied:
		return "registration denied"
	case RegNoSignal:
		return "no signal"
	case RegRoaming:
		return "registered roaming"
	case RegHomeSMSOnly:
		return "registered to home network, SMS only"
	case RegRoamingSMSOnly:
		return "registered roaming, SMS only"
	default:
		return "invalid registration status"
	}
}

// ErrBadRegistrationReply is returned for +CREG? payloads that do not carry
// a "<n>,<stat>" pair with a valid status digit.
var ErrBadRegistrationReply = errors.New("at: malformed registration reply")

// ParseRegistration extracts the registration status from a +CREG? payload
// of the form "<n>,<stat>[,...]".
func ParseRegistration(payload string) (RegistrationStatus, error) {
	fields := strings.Split(payload, ",")
	if len(fields) < 2 || len(fields[1]) == 0 {
		return 0, ErrBadRegistrationReply
	}
	stat := RegistrationStatus(fields[1][0])
	if stat < RegDisabled || stat > RegRoamingSMSOnly {
		return 0, ErrBadRegistrationReply
	}
	return stat, nil
}

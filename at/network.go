package at

import (
	"fmt"
	"strings"
)

// MNOProfile is a mobile network operator configuration preset. Values are
// the numeric codes accepted by +UMNOPROF.
type MNOProfile int

const (
	MNOError MNOProfile = 0
	// MNOAuto lets the device pick a profile from the SIM. Does not work
	// while roaming.
	MNOAuto            MNOProfile = 1
	MNOATT             MNOProfile = 2
	MNOVerizon         MNOProfile = 3
	MNOTelstra         MNOProfile = 4
	MNOTMobile         MNOProfile = 5
	MNOChinaTelecom    MNOProfile = 6
	MNOSprint          MNOProfile = 8
	MNOVodafone        MNOProfile = 19
	MNOTelus           MNOProfile = 21
	MNODeutscheTelekom MNOProfile = 31
	MNOStandardEurope  MNOProfile = 100
)

var mnoNames = map[MNOProfile]string{
	MNOError:           "unconfigured",
	MNOAuto:            "auto",
	MNOATT:             "att",
	MNOVerizon:         "verizon",
	MNOTelstra:         "telstra",
	MNOTMobile:         "tmobile",
	MNOChinaTelecom:    "chinatelecom",
	MNOSprint:          "sprint",
	MNOVodafone:        "vodafone",
	MNOTelus:           "telus",
	MNODeutscheTelekom: "deutschetelekom",
	MNOStandardEurope:  "standardeurope",
}

// String returns the profile's lowercase name, or its numeric code for
// profiles outside the known table.
func (m MNOProfile) String() string {
	if name, ok := mnoNames[m]; ok {
		return name
	}
	return fmt.Sprintf("profile %d", int(m))
}

// ParseMNOProfile resolves a profile name as accepted on the command line.
func ParseMNOProfile(s string) (MNOProfile, error) {
	want := strings.ToLower(strings.TrimSpace(s))
	for profile, name := range mnoNames {
		if name == want && profile != MNOError {
			return profile, nil
		}
	}
	return MNOError, fmt.Errorf("at: unknown MNO profile %q", s)
}

// PDPType is the packet-data-protocol address family for a PDP context.
type PDPType int

const (
	PDPIPv4 PDPType = iota
	PDPNonIP
	PDPIPv4v6
	PDPIPv6
	// PDPNone disables PDP context configuration.
	PDPNone
)

// WireString returns the type string used inside +CGDCONT, or "" for
// PDPNone.
func (p PDPType) WireString() string {
	switch p {
	case PDPIPv4:
		return "IP"
	case PDPNonIP:
		return "NONIP"
	case PDPIPv4v6:
		return "IPV4V6"
	case PDPIPv6:
		return "IPV6"
	default:
		return ""
	}
}

// ParsePDPType resolves a PDP type name as accepted on the command line.
func ParsePDPType(s string) (PDPType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "IP", "IPV4":
		return PDPIPv4, nil
	case "NONIP":
		return PDPNonIP, nil
	case "IPV4V6":
		return PDPIPv4v6, nil
	case "IPV6":
		return PDPIPv6, nil
	case "", "NONE":
		return PDPNone, nil
	default:
		return PDPNone, fmt.Errorf("at: unknown PDP type %q", s)
	}
}

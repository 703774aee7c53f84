package device

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Well-known identifiers of the NIOX PRO device family. The service
// identifier predates strict RFC 4122 shape, so it is compared in
// hyphen-normalized form rather than parsed.
const (
	NioxServiceIdentifier = "000fc00b-8a4-4078-874c-14efbd4b510a"
	NioxNamePrefix        = "NIOX PRO"
)

// FilterKind discriminates the Filter variants.
type FilterKind int

const (
	// FilterNone matches every advertisement.
	FilterNone FilterKind = iota
	// FilterServiceIdentifier matches advertisements carrying a given
	// service identifier, compared case-insensitively with hyphens
	// stripped.
	FilterServiceIdentifier
	// FilterNamePrefix matches advertisements whose local name starts
	// with a given prefix, case-insensitively.
	FilterNamePrefix
	// FilterTargetOnly matches NIOX PRO devices: the well-known service
	// identifier or the well-known name prefix.
	FilterTargetOnly
)

// Filter is a pure predicate over advertisements.
type Filter struct {
	kind  FilterKind
	value string // normalized identifier or lowercased prefix
}

// NoFilter returns the filter that matches everything.
func NoFilter() Filter { return Filter{kind: FilterNone} }

// ServiceIdentifierFilter matches advertisements carrying id.
func ServiceIdentifierFilter(id string) Filter {
	return Filter{kind: FilterServiceIdentifier, value: NormalizeIdentifier(id)}
}

// NamePrefixFilter matches advertisements whose name starts with prefix.
func NamePrefixFilter(prefix string) Filter {
	return Filter{kind: FilterNamePrefix, value: strings.ToLower(prefix)}
}

// TargetFilter matches NIOX PRO devices.
func TargetFilter() Filter { return Filter{kind: FilterTargetOnly} }

// Kind returns the filter variant.
func (f Filter) Kind() FilterKind { return f.kind }

// Matches reports whether adv passes the filter. No side effects.
func (f Filter) Matches(adv Advertisement) bool {
	switch f.kind {
	case FilterServiceIdentifier:
		return advertisesService(adv, f.value)
	case FilterNamePrefix:
		return hasPrefixFold(adv.LocalName(), f.value)
	case FilterTargetOnly:
		return IsTargetAdvertisement(adv)
	default:
		return true
	}
}

var normalizedNioxService = NormalizeIdentifier(NioxServiceIdentifier)

// IsTargetAdvertisement applies the target-device rule: the well-known
// service identifier (case-insensitive, hyphen-normalized) OR the
// well-known name prefix (case-insensitive).
func IsTargetAdvertisement(adv Advertisement) bool {
	if advertisesService(adv, normalizedNioxService) {
		return true
	}
	return hasPrefixFold(adv.LocalName(), strings.ToLower(NioxNamePrefix))
}

// IsTargetDevice applies the same rule to already-copied device data.
func IsTargetDevice(name string, serviceIdentifiers []string) bool {
	for _, id := range serviceIdentifiers {
		if NormalizeIdentifier(id) == normalizedNioxService {
			return true
		}
	}
	return hasPrefixFold(name, strings.ToLower(NioxNamePrefix))
}

// ExtractSerial returns the serial number of a target device: the text
// following the name prefix and its separating space. Returns "" when
// the name does not carry a serial.
func ExtractSerial(name string) string {
	prefix := NioxNamePrefix + " "
	if len(name) <= len(prefix) {
		return ""
	}
	if !strings.EqualFold(name[:len(prefix)], prefix) {
		return ""
	}
	return name[len(prefix):]
}

// NormalizeIdentifier converts a service identifier to comparison form:
// lowercase with hyphens stripped. A 0x prefix is also dropped.
func NormalizeIdentifier(id string) string {
	id = strings.ToLower(strings.ReplaceAll(id, "-", ""))
	return strings.TrimPrefix(id, "0x")
}

// ValidateServiceID validates a caller-supplied service identifier and
// returns its normalized form. Full UUIDs are validated strictly; 16-
// and 32-bit short identifiers are accepted as plain hex.
func ValidateServiceID(id string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("service identifier cannot be empty")
	}
	if _, err := uuid.Parse(id); err == nil {
		return NormalizeIdentifier(id), nil
	}
	normalized := NormalizeIdentifier(id)
	switch len(normalized) {
	case 4, 8, 32:
		if _, err := hex.DecodeString(normalized); err == nil {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("invalid service identifier: %s", id)
}

// ParseFilter builds a Filter from a textual rule of the form
// "service:<uuid>" or "name:<prefix>". Malformed input degrades to the
// match-all filter, never an error.
func ParseFilter(rule string) Filter {
	if rule == "" {
		return NoFilter()
	}
	kind, value, found := strings.Cut(rule, ":")
	if !found || value == "" {
		return NoFilter()
	}
	switch strings.ToLower(kind) {
	case "service":
		normalized, err := ValidateServiceID(value)
		if err != nil {
			return NoFilter()
		}
		return Filter{kind: FilterServiceIdentifier, value: normalized}
	case "name":
		return NamePrefixFilter(value)
	default:
		return NoFilter()
	}
}

func advertisesService(adv Advertisement, normalized string) bool {
	for _, id := range adv.Services() {
		if NormalizeIdentifier(id) == normalized {
			return true
		}
	}
	return false
}

func hasPrefixFold(s, lowerPrefix string) bool {
	if len(s) < len(lowerPrefix) {
		return false
	}
	return strings.ToLower(s[:len(lowerPrefix)]) == lowerPrefix
}

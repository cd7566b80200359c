package deviceconfig

import (
	"fmt"
	"strconv"
	"strings"
)

// enumRange is the inclusive range of an enumerated key
type enumRange struct {
	min, max int
}

// Enumerated keys and their valid values
var enumRanges = map[string]enumRange{
	KeyIsSDR:        {0, 1},
	KeyIsHDR:        {0, 1},
	KeyIsLLDovi:     {0, 1},
	KeyIsStdDovi:    {0, 1},
	KeyColorFormat:  {0, 3},
	KeyColorimetry:  {0, 1},
	KeyQuantRange:   {0, 2},
	KeyEOTF:         {0, 3},
	KeyPrimaries:    {0, 3},
	KeyDVStatus:     {0, 1},
	KeyDVColorSpace: {0, 2},
	KeyDVMetadata:   {0, 1},
}

// Luminance keys are 16-bit InfoFrame fields
var luminanceKeys = map[string]bool{
	KeyMaxLuma: true,
	KeyMinLuma: true,
	KeyMaxCLL:  true,
	KeyMaxFALL: true,
}

const maxLuminanceField = 65535

// ValidBitDepths are the accepted max_bpc values
var ValidBitDepths = []int{8, 10, 12}

// ValidateEnum checks an enumerated key's value
func ValidateEnum(key string, value int) error {
	r, ok := enumRanges[key]
	if !ok {
		return NewValidationError(key, "not an enumerated key")
	}
	if value < r.min || value > r.max {
		return NewValidationError(key, fmt.Sprintf("must be %d-%d, got %d", r.min, r.max, value))
	}
	return nil
}

// ValidateMaxBPC checks the output bit depth
func ValidateMaxBPC(bpc int) error {
	for _, v := range ValidBitDepths {
		if bpc == v {
			return nil
		}
	}
	return NewValidationError(KeyMaxBPC, fmt.Sprintf("must be 8, 10 or 12, got %d", bpc))
}

// ValidateLuminance checks a luminance metadata field
func ValidateLuminance(key string, value int) error {
	if value < 0 || value > maxLuminanceField {
		return NewValidationError(key, fmt.Sprintf("must be 0-%d, got %d", maxLuminanceField, value))
	}
	return nil
}

// ValidateSignalMode checks that the mode is one of SignalModes
func ValidateSignalMode(m SignalMode) error {
	for _, v := range SignalModes {
		if m == v {
			return nil
		}
	}
	return NewValidationError("mode", fmt.Sprintf("unknown signal mode %q", string(m)))
}

// ValidateSignalSettings validates every field.
// Returns a slice of validation errors (empty if valid).
func ValidateSignalSettings(s SignalSettings) []error {
	var errs []error
	if err := ValidateSignalMode(s.Mode); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateEnum(KeyColorFormat, s.ColorFormat); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateEnum(KeyColorimetry, s.Colorimetry); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateEnum(KeyQuantRange, s.QuantRange); err != nil {
		errs = append(errs, err)
	}
	if err := ValidateMaxBPC(s.MaxBPC); err != nil {
		errs = append(errs, err)
	}
	return errs
}

// ValidateHDRSettings validates every field.
// Returns a slice of validation errors (empty if valid).
func ValidateHDRSettings(h HDRSettings) []error {
	var errs []error
	for _, check := range []struct {
		key   string
		value int
	}{
		{KeyEOTF, h.EOTF},
		{KeyPrimaries, h.Primaries},
		{KeyDVStatus, h.DVStatus},
		{KeyDVColorSpace, h.DVColorSpace},
		{KeyDVMetadata, h.DVMetadata},
	} {
		if err := ValidateEnum(check.key, check.value); err != nil {
			errs = append(errs, err)
		}
	}
	for _, check := range []struct {
		key   string
		value int
	}{
		{KeyMaxLuma, h.MaxLuma},
		{KeyMinLuma, h.MinLuma},
		{KeyMaxCLL, h.MaxCLL},
		{KeyMaxFALL, h.MaxFALL},
	} {
		if err := ValidateLuminance(check.key, check.value); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// ValidateSetting checks a raw key/value write. Known numeric keys must
// parse and be in range; unknown keys are accepted as-is so new device
// keys stay writable.
func ValidateSetting(s Setting) error {
	if s.Key == "" {
		return NewValidationError("", "key cannot be empty")
	}
	if strings.ContainsAny(s.Key, ":\n") {
		return NewValidationError(s.Key, "key cannot contain ':' or newlines")
	}
	if strings.ContainsAny(s.Value, "\n\x02\r") {
		return NewValidationError(s.Key, "value cannot contain control characters")
	}

	_, isEnum := enumRanges[s.Key]
	if !isEnum && !luminanceKeys[s.Key] && s.Key != KeyMaxBPC {
		return nil
	}

	n, err := strconv.Atoi(s.Value)
	if err != nil {
		return NewValidationError(s.Key, fmt.Sprintf("must be a number, got %q", s.Value))
	}
	switch {
	case isEnum:
		return ValidateEnum(s.Key, n)
	case luminanceKeys[s.Key]:
		return ValidateLuminance(s.Key, n)
	default:
		return ValidateMaxBPC(n)
	}
}

// ValidatePattern checks shape, size and colour ranges. Colours allow
// 10-bit code values.
func ValidatePattern(p Pattern) []error {
	var errs []error

	shapeOK := false
	for _, s := range Shapes {
		if p.Shape == s {
			shapeOK = true
			break
		}
	}
	if !shapeOK {
		errs = append(errs, NewValidationError("draw", fmt.Sprintf("shape must be one of %s, got %q", strings.Join(Shapes, ", "), p.Shape)))
	}
	if p.Width <= 0 || p.Height <= 0 {
		errs = append(errs, NewValidationError("dim", fmt.Sprintf("dimensions must be positive, got %s", p.Dim())))
	}
	if p.Size < 0 || p.Size > 100 {
		errs = append(errs, NewValidationError("res", fmt.Sprintf("size must be 0-100, got %d", p.Size)))
	}
	if err := validateRGB("rgb", p.Color); err != nil {
		errs = append(errs, err)
	}
	if p.Background != nil {
		if err := validateRGB("bg", *p.Background); err != nil {
			errs = append(errs, err)
		}
	}
	if strings.ContainsAny(p.Text+p.Position, ";\n") {
		errs = append(errs, NewValidationError("text", "text and position cannot contain ';' or newlines"))
	}
	return errs
}

func validateRGB(key string, c RGB) error {
	for _, v := range []int{c.R, c.G, c.B} {
		if v < 0 || v > 1023 {
			return NewValidationError(key, fmt.Sprintf("components must be 0-1023, got %s", c))
		}
	}
	return nil
}

// ValidateHostname checks a hostname for SET_HOSTNAME (RFC 1123 label)
func ValidateHostname(name string) error {
	if name == "" {
		return NewValidationError("hostname", "cannot be empty")
	}
	if len(name) > 63 {
		return NewValidationError("hostname", fmt.Sprintf("too long (max 63 chars): %d chars", len(name)))
	}
	for i, r := range name {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		if isAlnum {
			continue
		}
		if r == '-' && i != 0 && i != len(name)-1 {
			continue
		}
		return NewValidationError("hostname", fmt.Sprintf("invalid character %q at position %d", r, i))
	}
	return nil
}

// CombineErrors joins validation errors into one message, or nil
func CombineErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return &ValidationError{Message: fmt.Sprintf("%d problems: %s", len(errs), strings.Join(msgs, "; "))}
}

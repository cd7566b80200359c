package deviceconfig

import (
	"strconv"
)

// SettingsBuilder provides a fluent API for building an ordered list of
// configuration writes. Later writes to a key replace the value but keep
// the key's first position, so a mode preset followed by SetEOTF sends
// eotf once with the explicit value.
//
// Example usage:
//
//	settings, err := NewSettingsBuilder(current).
//	    SetMode(ModeHDR10).
//	    SetColorFormat(0).
//	    SetMaxBPC(10).
//	    SetMaxLuma(4000).
//	    Build()
type SettingsBuilder struct {
	// current is the baseline used by Changes (may be nil)
	current *Config

	order  []string
	values map[string]string
}

// NewSettingsBuilder creates a builder. Pass the current device
// configuration to let Changes skip keys that already hold the value, or
// nil to start from scratch.
func NewSettingsBuilder(current *Config) *SettingsBuilder {
	return &SettingsBuilder{
		current: current,
		values:  make(map[string]string),
	}
}

// Set records a raw key/value write
func (b *SettingsBuilder) Set(key, value string) *SettingsBuilder {
	if _, ok := b.values[key]; !ok {
		b.order = append(b.order, key)
	}
	b.values[key] = value
	return b
}

func (b *SettingsBuilder) setInt(key string, value int) *SettingsBuilder {
	return b.Set(key, strconv.Itoa(value))
}

// SetMode records the flag preset for a signal mode
func (b *SettingsBuilder) SetMode(mode SignalMode) *SettingsBuilder {
	for _, s := range mode.Preset() {
		b.Set(s.Key, s.Value)
	}
	if mode.Preset() == nil {
		// keep the bad value so Validate can report it
		b.Set("mode", string(mode))
	}
	return b
}

// SetColorFormat sets color_format (0 RGB, 1 YCbCr 444, 2 YCbCr 422, 3 YCbCr 420)
func (b *SettingsBuilder) SetColorFormat(v int) *SettingsBuilder {
	return b.setInt(KeyColorFormat, v)
}

// SetColorimetry sets colorimetry (0 BT.709, 1 BT.2020)
func (b *SettingsBuilder) SetColorimetry(v int) *SettingsBuilder {
	return b.setInt(KeyColorimetry, v)
}

// SetQuantRange sets rgb_quant_range (0 default, 1 limited, 2 full)
func (b *SettingsBuilder) SetQuantRange(v int) *SettingsBuilder {
	return b.setInt(KeyQuantRange, v)
}

// SetMaxBPC sets the output bit depth (8, 10 or 12)
func (b *SettingsBuilder) SetMaxBPC(v int) *SettingsBuilder {
	return b.setInt(KeyMaxBPC, v)
}

// SetEOTF sets the transfer function
func (b *SettingsBuilder) SetEOTF(v int) *SettingsBuilder {
	return b.setInt(KeyEOTF, v)
}

// SetPrimaries sets the mastering display primaries
func (b *SettingsBuilder) SetPrimaries(v int) *SettingsBuilder {
	return b.setInt(KeyPrimaries, v)
}

// SetMaxLuma sets the mastering display max luminance
func (b *SettingsBuilder) SetMaxLuma(v int) *SettingsBuilder {
	return b.setInt(KeyMaxLuma, v)
}

// SetMinLuma sets the mastering display min luminance
func (b *SettingsBuilder) SetMinLuma(v int) *SettingsBuilder {
	return b.setInt(KeyMinLuma, v)
}

// SetMaxCLL sets the maximum content light level
func (b *SettingsBuilder) SetMaxCLL(v int) *SettingsBuilder {
	return b.setInt(KeyMaxCLL, v)
}

// SetMaxFALL sets the maximum frame-average light level
func (b *SettingsBuilder) SetMaxFALL(v int) *SettingsBuilder {
	return b.setInt(KeyMaxFALL, v)
}

// SetDolbyVision sets dv_status, dv_color_space and dv_metadata together
func (b *SettingsBuilder) SetDolbyVision(status, colorSpace, metadata int) *SettingsBuilder {
	b.setInt(KeyDVStatus, status)
	b.setInt(KeyDVColorSpace, colorSpace)
	return b.setInt(KeyDVMetadata, metadata)
}

// WithSignal records every signal setting (mode preset first)
func (b *SettingsBuilder) WithSignal(s SignalSettings) *SettingsBuilder {
	b.SetMode(s.Mode)
	return b.
		SetColorFormat(s.ColorFormat).
		SetColorimetry(s.Colorimetry).
		SetQuantRange(s.QuantRange).
		SetMaxBPC(s.MaxBPC)
}

// WithHDR records every HDR setting
func (b *SettingsBuilder) WithHDR(h HDRSettings) *SettingsBuilder {
	for _, s := range h.Settings() {
		b.Set(s.Key, s.Value)
	}
	return b
}

// HasChanges returns true if any write has been recorded
func (b *SettingsBuilder) HasChanges() bool {
	return len(b.order) > 0
}

// Validate checks every recorded write.
// Returns a slice of validation errors (empty if valid).
func (b *SettingsBuilder) Validate() []error {
	var errs []error
	for _, key := range b.order {
		if key == "mode" {
			errs = append(errs, ValidateSignalMode(SignalMode(b.values[key])))
			continue
		}
		if err := ValidateSetting(Setting{Key: key, Value: b.values[key]}); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Build returns every recorded write in order.
// Returns an error if validation fails.
func (b *SettingsBuilder) Build() ([]Setting, error) {
	if err := CombineErrors(b.Validate()); err != nil {
		return nil, err
	}
	out := make([]Setting, 0, len(b.order))
	for _, key := range b.order {
		out = append(out, Setting{Key: key, Value: b.values[key]})
	}
	return out, nil
}

// Changes is Build minus the writes whose value the baseline already
// holds. Without a baseline it equals Build.
func (b *SettingsBuilder) Changes() ([]Setting, error) {
	all, err := b.Build()
	if err != nil {
		return nil, err
	}
	if b.current == nil {
		return all, nil
	}
	var out []Setting
	for _, s := range all {
		if v, ok := b.current.Lookup(s.Key); ok && v == s.Value {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

// Reset clears all recorded writes
func (b *SettingsBuilder) Reset() *SettingsBuilder {
	b.order = nil
	b.values = make(map[string]string)
	return b
}

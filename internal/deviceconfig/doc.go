// Package deviceconfig provides the command facade for a PGenerator.
//
// This package turns device operations (queries, configuration writes,
// patterns, lifecycle commands) into protocol commands sent over a
// Transport, and decodes the replies. It also models the signal and HDR
// settings kept in PGenerator.conf and applies them with a single
// read-back and optional rollback.
//
// # Usage Example
//
//	s := session.New(session.Config{Host: "10.10.10.1"})
//	if err := s.Connect(); err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	client := deviceconfig.NewClient(s)
//
//	info, err := client.GetSystemInfo()
//	if err != nil {
//	    return err
//	}
//	fmt.Print(info.FormatDetailed())
//
//	// Switch to HDR10 at 10 bits and restart the service
//	settings, err := deviceconfig.NewSettingsBuilder(nil).
//	    SetMode(deviceconfig.ModeHDR10).
//	    SetMaxBPC(10).
//	    Build()
//	if err != nil {
//	    return err
//	}
//	result := client.ApplySettings(settings, deviceconfig.DefaultApplyOptions())
//
// # Reply Handling
//
// Generic commands have "OK:" stripped when present; any other reply is
// returned raw. Configuration and EDID dumps are base64 and fall back to
// the raw text when decoding fails. Decode problems never surface as
// errors; they are logged at debug level.
//
// # Settings
//
// SignalMode selects one of SDR, HDR10, HLG, Dolby Vision LL and Dolby
// Vision Std through the is_sdr, is_hdr, is_ll_dovi, is_std_dovi and
// dv_status flags. DetectSignalMode reverses the mapping from a dump.
// SignalSettings and HDRSettings hold the InfoFrame and metadata keys with
// the device defaults. SettingsBuilder collects writes in order.
//
// # Apply, Verify, Rollback
//
// ApplySettings writes each key, optionally reads the dump back once to
// compare, and optionally sends RESTARTPGENERATOR: so the changes reach
// the output. RollbackManager snapshots the dump and rewrites only the
// keys that drifted. Nothing in this package retries a failed request.
//
// # Thread Safety
//
// Client methods are as safe for concurrent use as the Transport;
// *session.Session serializes requests. RollbackManager guards its
// snapshot list with a mutex.
package deviceconfig

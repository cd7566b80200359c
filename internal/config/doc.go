// Package config provides user configuration management for pgen.
//
// This package manages a YAML file that stores metadata for known
// PGenerator devices (nickname, model, hostname, last seen) and the
// connection preferences used by the CLI: the known-host list probed on
// startup, the device port, timeouts, the liveness poll interval and
// whether to fall back to network discovery.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/pgen/config.yaml or $HOME/.config/pgen/config.yaml
//   - macOS: $HOME/.config/pgen/config.yaml
//   - Windows: %LOCALAPPDATA%\pgen\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	registry.SetDeviceNickname("10.10.10.1", "projector-room")
//	host := registry.ResolveHost("projector-room") // "10.10.10.1"
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// Missing or zero preferences are filled with defaults on load.
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File writes are serialized by a mutex and go through a temp file and rename.
package config

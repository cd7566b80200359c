package deviceconfig

import (
	"fmt"
	"strconv"

	"github.com/muurk/pgen/internal/logging"
	"github.com/muurk/pgen/internal/protocol"
	"go.uber.org/zap"
)

// Transport sends one raw command and returns the decoded reply text.
// *session.Session satisfies it.
type Transport interface {
	Request(command string) (string, error)
}

// Client is the command facade for a PGenerator. It adds no state of its
// own: every method is one request on the transport, and transport
// errors are returned unchanged. No method retries.
type Client struct {
	transport Transport
}

// NewClient creates a client over a transport
func NewClient(transport Transport) *Client {
	return &Client{transport: transport}
}

// Transport returns the underlying transport
func (c *Client) Transport() Transport {
	return c.transport
}

// Raw sends a command exactly as given and returns the reply unmodified
func (c *Client) Raw(command string) (string, error) {
	return c.transport.Request(command)
}

// Command sends CMD:<name> and returns the reply with a leading "OK:"
// removed. Replies without the marker are returned raw.
func (c *Client) Command(name string) (string, error) {
	reply, err := c.transport.Request(protocol.BuildCommand(name))
	if err != nil {
		return "", err
	}
	text, ok := protocol.StripOK(reply)
	if !ok {
		logging.Debug("Reply without OK marker",
			zap.String("command", name),
			zap.String("reply", reply),
		)
	}
	return text, nil
}

// Multiple runs several queries in one CMD:MULTIPLE request. Names the
// device did not answer are absent from the result.
func (c *Client) Multiple(names ...string) (Values, error) {
	reply, err := c.transport.Request(protocol.BuildMultiple(names...))
	if err != nil {
		return nil, err
	}
	values := make(Values)
	for _, kv := range protocol.ParseMultiple(reply) {
		values[kv.Key] = kv.Value
	}
	return values, nil
}

// SetConfig writes one PGenerator.conf key. The key is upper-cased on the
// wire.
func (c *Client) SetConfig(key, value string) (string, error) {
	return c.Command(protocol.BuildSetConf(key, value))
}

// GetConfig reads one PGenerator.conf key
func (c *Client) GetConfig(key string) (string, error) {
	return c.Command(protocol.BuildGetConf(key))
}

// GetAllConfig reads the whole PGenerator.conf. The base64 dump is decoded
// when possible; otherwise the raw reply is parsed as text.
func (c *Client) GetAllConfig() (*Config, error) {
	raw, err := c.Command(protocol.BuildGetConf(protocol.ConfAllKey))
	if err != nil {
		return nil, err
	}
	text, decodeErr := protocol.DecodeBlobOrRaw(raw)
	if decodeErr != nil {
		logging.Debug("Config dump is not base64, using raw text", zap.Error(decodeErr))
	}
	return ParseConfig(text), nil
}

// GetEDID returns the decoded EDID report of the connected display, or the
// raw reply when it is not base64
func (c *Client) GetEDID() (string, error) {
	raw, err := c.Command(protocol.CmdGetEDID)
	if err != nil {
		return "", err
	}
	text, decodeErr := protocol.DecodeBlobOrRaw(raw)
	if decodeErr != nil {
		logging.Debug("EDID reply is not base64, using raw text", zap.Error(decodeErr))
	}
	return text, nil
}

// GetVersion returns the PGenerator software version
func (c *Client) GetVersion() (string, error) {
	return c.Command(protocol.CmdGetVersion)
}

// GetTemperature returns the SoC temperature in degrees Celsius
func (c *Client) GetTemperature() (string, error) {
	return c.Command(protocol.CmdGetTemperature)
}

// GetResolution returns the current output mode
func (c *Client) GetResolution() (string, error) {
	return c.Command(protocol.CmdGetResolution)
}

// GetHDMIInfo returns the HDMI link status
func (c *Client) GetHDMIInfo() (string, error) {
	return c.Command(protocol.CmdGetHDMIInfo)
}

// GetHostname returns the device hostname
func (c *Client) GetHostname() (string, error) {
	return c.Command(protocol.CmdGetHostname)
}

// GetDeviceModel returns the hardware model string
func (c *Client) GetDeviceModel() (string, error) {
	return c.Command(protocol.CmdGetDeviceModel)
}

// GetUptime returns the time the device has been up
func (c *Client) GetUptime() (string, error) {
	return c.Command(protocol.CmdGetUptime)
}

// SetHostname changes the device hostname
func (c *Client) SetHostname(name string) (string, error) {
	return c.Command(protocol.BuildCommandArg(protocol.CmdSetHostname, name))
}

// SetResolution selects an output mode by its index in the device mode list
func (c *Client) SetResolution(modeIndex int) (string, error) {
	return c.Command(protocol.BuildCommandArg(protocol.CmdSetMode, strconv.Itoa(modeIndex)))
}

// SetRefresh selects an output timing by CEA mode number
func (c *Client) SetRefresh(ceaMode int) (string, error) {
	return c.Command(protocol.BuildCommandArg(protocol.CmdSetRefresh, strconv.Itoa(ceaMode)))
}

// SetOutputRange sets the HDMI RGB range (1 limited, 2 full)
func (c *Client) SetOutputRange(value int) (string, error) {
	return c.Command(protocol.BuildCommandArg(protocol.CmdSetOutputRange, strconv.Itoa(value)))
}

// SetGPUMemory sets the GPU memory split in MB
func (c *Client) SetGPUMemory(megabytes int) (string, error) {
	return c.Command(protocol.BuildCommandArg(protocol.CmdSetGPUMemory, strconv.Itoa(megabytes)))
}

// SendRGB draws a pattern window. The reply is returned raw.
func (c *Client) SendRGB(p Pattern) (string, error) {
	return c.transport.Request(p.Command())
}

// TestPattern draws a named test pattern. The reply is returned raw.
func (c *Client) TestPattern(name string, p Pattern) (string, error) {
	return c.transport.Request(p.TestPatternCommand(name))
}

// RestartService restarts the PGenerator software so configuration
// changes take effect. The command carries no CMD: prefix.
func (c *Client) RestartService() (string, error) {
	return c.transport.Request(protocol.RestartCommand)
}

// Reboot reboots the device
func (c *Client) Reboot() (string, error) {
	return c.Command(protocol.CmdReboot)
}

// Shutdown halts the device
func (c *Client) Shutdown() (string, error) {
	return c.Command(protocol.CmdHalt)
}

// GetSystemInfo fills SystemInfo with one MULTIPLE query
func (c *Client) GetSystemInfo() (*SystemInfo, error) {
	values, err := c.Multiple(systemQueries...)
	if err != nil {
		return nil, fmt.Errorf("system info query failed: %w", err)
	}
	return systemInfoFromValues(values), nil
}

// GetNetworkInfo fills NetworkInfo with one MULTIPLE query
func (c *Client) GetNetworkInfo() (*NetworkInfo, error) {
	values, err := c.Multiple(networkQueries()...)
	if err != nil {
		return nil, fmt.Errorf("network info query failed: %w", err)
	}
	return networkInfoFromValues(values), nil
}

// GetSignalSettings reads the current signal settings from the config dump
func (c *Client) GetSignalSettings() (SignalSettings, error) {
	conf, err := c.GetAllConfig()
	if err != nil {
		return SignalSettings{}, err
	}
	return SignalSettingsFromConfig(conf), nil
}

// GetHDRSettings reads the current HDR settings from the config dump
func (c *Client) GetHDRSettings() (HDRSettings, error) {
	conf, err := c.GetAllConfig()
	if err != nil {
		return HDRSettings{}, err
	}
	return HDRSettingsFromConfig(conf), nil
}

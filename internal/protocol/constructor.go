package protocol

import (
	"strings"
)

// Command text builders for the PGenerator daemon. Argument order and
// delimiters are part of the wire contract; do not reformat them.

const (
	// CommandPrefix wraps every generic device command
	CommandPrefix = "CMD:"

	// OKPrefix marks a successful generic reply
	OKPrefix = "OK:"

	// StatusMarker is the bare status line at the top of MULTIPLE replies
	StatusMarker = "OK"

	// AliveProbe is the liveness request
	AliveProbe = "IS_ALIVE"

	// AliveToken is the only reply accepted for AliveProbe
	AliveToken = "ALIVE"

	// QuitCommand is sent best-effort before closing a connection
	QuitCommand = "QUIT"

	// RestartCommand restarts the PGenerator service. It is the one
	// command sent without CommandPrefix.
	RestartCommand = "RESTARTPGENERATOR:"

	// MultipleCommand batches several queries into one request
	MultipleCommand = "MULTIPLE"

	// ConfSetPrefix and ConfGetPrefix address PGenerator.conf keys
	ConfSetPrefix = "SET_PGENERATOR_CONF_"
	ConfGetPrefix = "GET_PGENERATOR_CONF_"

	// ConfAllKey selects every configuration key at once
	ConfAllKey = "ALL"
)

// Generic command names
const (
	CmdGetVersion     = "GET_PGENERATOR_VERSION"
	CmdGetDeviceModel = "GET_DEVICE_MODEL"
	CmdGetHostname    = "GET_HOSTNAME"
	CmdGetTemperature = "GET_TEMPERATURE"
	CmdGetResolution  = "GET_RESOLUTION"
	CmdGetHDMIInfo    = "GET_HDMI_INFO"
	CmdGetUptime      = "GET_UP_FROM"
	CmdGetEDID        = "GET_EDID_INFO"
	CmdGetAllIPMAC    = "GET_ALL_IPMAC"
	CmdSetHostname    = "SET_HOSTNAME"
	CmdSetMode        = "SET_MODE"
	CmdSetRefresh     = "SET_REFRESH"
	CmdSetOutputRange = "SET_OUTPUT_RANGE"
	CmdSetGPUMemory   = "SET_GPU_MEMORY"
	CmdReboot         = "REBOOT"
	CmdHalt           = "HALT"
)

// BuildCommand wraps a command name: CMD:<name>
func BuildCommand(name string) string {
	return CommandPrefix + name
}

// BuildCommandArg builds a command with one argument: <name>:<arg>.
// The result is a command name; pass it to BuildCommand for the wire form.
func BuildCommandArg(name, arg string) string {
	return name + ":" + arg
}

// BuildMultiple builds a batched query: CMD:MULTIPLE:<n1>:<n2>:...
func BuildMultiple(names ...string) string {
	return BuildCommand(MultipleCommand + ":" + strings.Join(names, ":"))
}

// BuildSetConf builds a configuration write name: SET_PGENERATOR_CONF_<KEY>:<value>.
// The key is upper-cased.
func BuildSetConf(key, value string) string {
	return ConfSetPrefix + strings.ToUpper(key) + ":" + value
}

// BuildGetConf builds a configuration read name: GET_PGENERATOR_CONF_<KEY>
func BuildGetConf(key string) string {
	return ConfGetPrefix + strings.ToUpper(key)
}

// BuildRGB builds a pattern draw command (no CMD: prefix):
//
//	RGB=<draw>;<dim>;<res>;<rgb>;<bg>;<pos>;<text>
//
// Empty fields stay as empty strings between the semicolons.
func BuildRGB(draw, dim, res, rgb, bg, pos, text string) string {
	return "RGB=" + strings.Join([]string{draw, dim, res, rgb, bg, pos, text}, ";")
}

// BuildTestPattern builds a named test pattern command (no CMD: prefix):
//
//	TESTPATTERN:<name>:<draw>:<dim>:<res>:<rgb>:
func BuildTestPattern(name, draw, dim, res, rgb string) string {
	return "TESTPATTERN:" + strings.Join([]string{name, draw, dim, res, rgb}, ":") + ":"
}

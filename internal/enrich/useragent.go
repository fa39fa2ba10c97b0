package enrich

import (
	"strings"

	"github.com/mssola/user_agent"
)

// Unknown is reported for any user-agent field that could not be derived.
const Unknown = "Unknown"

// Device is the parsed form of a User-Agent header.
type Device struct {
	Model           string
	BrowserName     string
	EngineName      string
	OSName          string
	CPUArchitecture string
	IsBot           bool
}

// cpuTokens maps UA substrings (lowercased) to an architecture, most specific first.
var cpuTokens = []struct {
	token string
	arch  string
}{
	{"aarch64", "arm64"},
	{"arm64", "arm64"},
	{"armv8", "arm64"},
	{"x86_64", "amd64"},
	{"x86-64", "amd64"},
	{"amd64", "amd64"},
	{"win64", "amd64"},
	{"wow64", "amd64"},
	{"x64", "amd64"},
	{"armv7", "arm"},
	{"armv6", "arm"},
	{"i686", "ia32"},
	{"i386", "ia32"},
	{"ppc", "ppc"},
}

// ParseUserAgent extracts device information from ua. It never fails; fields
// that cannot be derived are set to Unknown.
func ParseUserAgent(ua string) Device {
	device := Device{
		Model:           Unknown,
		BrowserName:     Unknown,
		EngineName:      Unknown,
		OSName:          Unknown,
		CPUArchitecture: Unknown,
	}

	if strings.TrimSpace(ua) == "" {
		return device
	}

	parsed := user_agent.New(ua)

	device.IsBot = parsed.Bot()
	device.Model = orUnknown(parsed.Model())
	device.OSName = orUnknown(parsed.OSInfo().Name)
	device.CPUArchitecture = orUnknown(cpuArchitecture(ua))

	if name, _ := parsed.Browser(); name != "" {
		device.BrowserName = name
	}

	if engine, _ := parsed.Engine(); engine != "" {
		device.EngineName = engine
	}

	return device
}

func cpuArchitecture(ua string) string {
	lower := strings.ToLower(ua)

	for _, c := range cpuTokens {
		if strings.Contains(lower, c.token) {
			return c.arch
		}
	}

	return ""
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}

	return s
}

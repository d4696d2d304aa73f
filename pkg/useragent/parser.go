package useragent

import (
	"fmt"
	"os"
	"strings"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceBot     = "bot"
	DeviceUnknown = "unknown"
)

// Parser wraps the uap-go parser with device type detection
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo represents parsed device information
type DeviceInfo struct {
	DeviceType string // mobile, desktop, tablet, bot, unknown
	Browser    string // Chrome, Firefox, Safari, etc.
	OS         string // Windows, iOS, Android, etc.
}

var (
	botIndicators = []string{
		"googlebot", "bingbot", "slurp", "duckduckbot", "baiduspider",
		"yandexbot", "facebookexternalhit", "twitterbot", "linkedinbot",
		"whatsapp", "telegrambot", "skypeuripreview", "bot", "crawler",
		"spider", "scraper",
	}
	tabletDevices = []string{"ipad", "tablet", "kindle", "surface"}
	mobileDevices = []string{"iphone", "android", "blackberry", "windows phone", "mobile", "phone"}
	mobileOS      = []string{"ios", "android", "windows phone", "blackberry os", "firefox os", "sailfish os"}
	desktopOS     = []string{
		"windows", "mac os x", "macos", "linux", "ubuntu",
		"chrome os", "freebsd", "openbsd", "netbsd",
	}
)

// NewParser creates a parser. Empty regexesPath selects the definitions bundled with uap-go.
func NewParser(regexesPath string, log *zap.Logger) (*Parser, error) {
	var (
		parser *uaparser.Parser
		err    error
	)

	if regexesPath == "" {
		parser, err = uaparser.NewFromSaved(), nil
	} else {
		var regexBytes []byte
		regexBytes, err = os.ReadFile(regexesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read regexes file %s: %w", regexesPath, err)
		}
		parser, err = uaparser.NewFromBytes(regexBytes)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent parser initialized", zap.String("regexes_file", regexesPath))

	return &Parser{
		parser: parser,
		log:    log,
	}, nil
}

// Parse returns device, browser and OS for a User-Agent string
func (p *Parser) Parse(userAgent string) *DeviceInfo {
	if strings.TrimSpace(userAgent) == "" {
		return &DeviceInfo{
			DeviceType: DeviceUnknown,
			Browser:    DeviceUnknown,
			OS:         DeviceUnknown,
		}
	}

	client := p.parser.Parse(userAgent)

	info := &DeviceInfo{
		Browser:    familyOrUnknown(client.UserAgent.Family),
		OS:         familyOrUnknown(client.Os.Family),
		DeviceType: deviceType(client, userAgent),
	}

	p.log.Debug("parsed User-Agent",
		zap.String("user_agent", userAgent),
		zap.String("device_type", info.DeviceType),
		zap.String("browser", info.Browser),
		zap.String("os", info.OS),
	)

	return info
}

func deviceType(client *uaparser.Client, userAgent string) string {
	ua := strings.ToLower(userAgent)
	if containsAny(strings.ToLower(client.UserAgent.Family), botIndicators) ||
		containsAny(ua, botIndicators) ||
		client.Device.Family == "Spider" {
		return DeviceBot
	}

	deviceFamily := strings.ToLower(client.Device.Family)
	if deviceFamily != "" && deviceFamily != "other" {
		if containsAny(deviceFamily, tabletDevices) {
			return DeviceTablet
		}
		if containsAny(deviceFamily, mobileDevices) {
			return DeviceMobile
		}
	}

	osFamily := strings.ToLower(client.Os.Family)
	if containsAny(osFamily, mobileOS) {
		// iPad и Android без "Mobile" считаем планшетами
		switch {
		case strings.Contains(osFamily, "ios") && strings.Contains(ua, "ipad"):
			return DeviceTablet
		case strings.Contains(osFamily, "android") && !strings.Contains(ua, "mobile"):
			return DeviceTablet
		}
		return DeviceMobile
	}

	if containsAny(osFamily, desktopOS) {
		return DeviceDesktop
	}

	return DeviceUnknown
}

func containsAny(s string, substrs []string) bool {
	if s == "" {
		return false
	}
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func familyOrUnknown(family string) string {
	if family == "" || family == "Other" {
		return DeviceUnknown
	}
	return family
}

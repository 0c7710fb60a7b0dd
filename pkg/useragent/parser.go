package useragent

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/ua-parser/uap-go/uaparser"
	"go.uber.org/zap"
)

// Parser wraps the User-Agent parser used to describe the device behind
// a security event
type Parser struct {
	parser *uaparser.Parser
	log    *zap.Logger
}

// DeviceInfo represents parsed device information
type DeviceInfo struct {
	DeviceType string // mobile, desktop, tablet, bot, unknown
	Browser    string // Chrome, Firefox, Safari, etc.
	OS         string // Windows, iOS, Android, etc.
	Raw        string // Original User-Agent string
}

var (
	globalParser *Parser
	once         sync.Once
)

// NewParser creates a new User-Agent parser instance from a uap-core
// regexes file
func NewParser(regexFilePath string, log *zap.Logger) (*Parser, error) {
	regexBytes, err := os.ReadFile(regexFilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read regexes file %s: %w", regexFilePath, err)
	}

	parser, err := uaparser.NewFromBytes(regexBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to create User-Agent parser: %w", err)
	}

	log.Info("User-Agent parser initialized", zap.String("regexes_file", regexFilePath))

	return &Parser{
		parser: parser,
		log:    log,
	}, nil
}

// GetGlobalParser returns the singleton parser instance (nil until
// InitGlobalParser succeeds)
func GetGlobalParser() *Parser {
	return globalParser
}

// InitGlobalParser initializes the global parser instance
func InitGlobalParser(regexFilePath string, log *zap.Logger) error {
	var err error
	once.Do(func() {
		globalParser, err = NewParser(regexFilePath, log)
	})
	return err
}

// ParseUserAgent parses a User-Agent string into device information
func (p *Parser) ParseUserAgent(userAgent string) *DeviceInfo {
	if userAgent == "" {
		return &DeviceInfo{
			DeviceType: "unknown",
			Browser:    "unknown",
			OS:         "unknown",
		}
	}

	client := p.parser.Parse(userAgent)

	return &DeviceInfo{
		DeviceType: determineDeviceType(client, userAgent),
		Browser:    orUnknown(client.UserAgent.Family),
		OS:         orUnknown(client.Os.Family),
		Raw:        userAgent,
	}
}

// determineDeviceType classifies the device from parsed client info and
// the raw User-Agent
func determineDeviceType(client *uaparser.Client, userAgent string) string {
	if isBot(client.UserAgent.Family, userAgent) {
		return "bot"
	}

	osFamily := client.Os.Family
	switch {
	case containsFold(osFamily, "iOS"):
		if containsFold(userAgent, "iPad") {
			return "tablet"
		}
		return "mobile"
	case containsFold(osFamily, "Android"):
		// Android tablets typically lack "Mobile" in the User-Agent
		if containsFold(userAgent, "Mobile") {
			return "mobile"
		}
		return "tablet"
	}

	device := client.Device.Family
	if containsFold(device, "iPad") || containsFold(device, "Tablet") || containsFold(device, "Kindle") {
		return "tablet"
	}
	if containsFold(device, "iPhone") || containsFold(device, "Phone") || containsFold(device, "Mobile") {
		return "mobile"
	}

	for _, desktop := range []string{"Windows", "Mac OS X", "macOS", "Linux", "Ubuntu", "Chrome OS", "FreeBSD"} {
		if containsFold(osFamily, desktop) {
			return "desktop"
		}
	}

	return "unknown"
}

// isBot checks if the User-Agent represents a bot/crawler
func isBot(uaFamily, userAgent string) bool {
	botIndicators := []string{
		"bot", "crawler", "spider", "scraper", "Googlebot", "Bingbot",
		"Slurp", "facebookexternalhit", "Twitterbot", "WhatsApp", "Telegram",
	}

	for _, indicator := range botIndicators {
		if containsFold(uaFamily, indicator) || containsFold(userAgent, indicator) {
			return true
		}
	}

	return false
}

func containsFold(str, substr string) bool {
	return strings.Contains(strings.ToLower(str), strings.ToLower(substr))
}

func orUnknown(s string) string {
	if s == "" || s == "Other" {
		return "unknown"
	}
	return s
}

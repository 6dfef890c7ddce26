package ratelimit

import "strings"

// automationAgents are user-agent fragments of scripted HTTP clients and crawlers
var automationAgents = []string{
	"curl/",
	"wget/",
	"python-requests",
	"python-urllib",
	"aiohttp",
	"go-http-client",
	"java/",
	"okhttp",
	"libwww-perl",
	"httpie",
	"scrapy",
	"headlesschrome",
	"phantomjs",
	"selenium",
	"puppeteer",
	"playwright",
	"bot",
	"crawler",
	"spider",
}

// BotDetector classifies requests by their user agent
type BotDetector struct {
	agents []string
}

// NewBotDetector creates a detector for the built-in agent list
func NewBotDetector() *BotDetector {
	return &BotDetector{agents: automationAgents}
}

// Detect reports whether userAgent looks automated and the fragment that matched.
// An empty user agent counts as automated.
func (b *BotDetector) Detect(userAgent string) (string, bool) {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return "empty user agent", true
	}
	for _, agent := range b.agents {
		if strings.Contains(ua, agent) {
			return agent, true
		}
	}
	return "", false
}

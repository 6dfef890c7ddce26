package ratelimit

import (
	"net/url"
	"regexp"
)

// ThreatType represents a class of malicious request pattern
type ThreatType string

const (
	ThreatSQLInjection     ThreatType = "sql_injection"
	ThreatXSS              ThreatType = "xss"
	ThreatPathTraversal    ThreatType = "path_traversal"
	ThreatCommandInjection ThreatType = "command_injection"
)

// shieldThreshold is the confidence at which a detection blocks the request
const shieldThreshold = 0.8

// ThreatDetection represents a matched pattern
type ThreatDetection struct {
	Type       ThreatType
	Field      string
	Pattern    string
	Confidence float64
}

type threatRule struct {
	typ        ThreatType
	confidence float64
	patterns   []*regexp.Regexp
}

var threatRules = []threatRule{
	{
		typ:        ThreatSQLInjection,
		confidence: 0.9,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)['"]\s*(or|and)\s+['"]?\w+['"]?\s*=\s*['"]?\w+`),
			regexp.MustCompile(`(?i)\bunion(\s+all)?\s+select\b`),
			regexp.MustCompile(`(?i);\s*(drop|delete|truncate|alter|insert|update)\s+\w+`),
			regexp.MustCompile(`(?i)\b(pg_sleep|sleep|benchmark|waitfor\s+delay)\s*\(`),
			regexp.MustCompile(`(?i)['"]\s*;?\s*--`),
		},
	},
	{
		typ:        ThreatXSS,
		confidence: 0.9,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)<\s*script\b`),
			regexp.MustCompile(`(?i)<\s*(iframe|object|embed|svg)\b`),
			regexp.MustCompile(`(?i)\bon(error|load|click|mouseover|focus)\s*=`),
			regexp.MustCompile(`(?i)javascript\s*:`),
		},
	},
	{
		typ:        ThreatPathTraversal,
		confidence: 0.85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`\.\.[/\\]`),
			regexp.MustCompile(`(?i)/etc/(passwd|shadow|hosts)\b`),
			regexp.MustCompile(`(?i)\bc:\\windows\\`),
		},
	},
	{
		typ:        ThreatCommandInjection,
		confidence: 0.85,
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)[;&|]\s*(cat|ls|id|whoami|uname|wget|curl|nc|bash|sh|rm)\b`),
			regexp.MustCompile("`[^`]+`"),
			regexp.MustCompile(`\$\([^)]*\)`),
		},
	},
}

// Shield flags requests whose path, query or user agent carry attack patterns
type Shield struct{}

// NewShield creates a shield detector
func NewShield() *Shield {
	return &Shield{}
}

// Inspect returns every detection across the inspected request fields
func (s *Shield) Inspect(req RequestContext) []ThreatDetection {
	fields := map[string]string{
		"path":       decode(req.Path),
		"query":      decode(req.RawQuery),
		"user_agent": req.UserAgent,
	}

	var detections []ThreatDetection
	for _, name := range []string{"path", "query", "user_agent"} {
		value := fields[name]
		if value == "" {
			continue
		}
		for _, rule := range threatRules {
			for _, pattern := range rule.patterns {
				if pattern.MatchString(value) {
					detections = append(detections, ThreatDetection{
						Type:       rule.typ,
						Field:      name,
						Pattern:    pattern.String(),
						Confidence: rule.confidence,
					})
				}
			}
		}
	}
	return detections
}

// Malicious returns the first high-confidence detection, if any
func (s *Shield) Malicious(req RequestContext) (ThreatDetection, bool) {
	for _, d := range s.Inspect(req) {
		if d.Confidence >= shieldThreshold {
			return d, true
		}
	}
	return ThreatDetection{}, false
}

func decode(v string) string {
	if decoded, err := url.QueryUnescape(v); err == nil {
		return decoded
	}
	return v
}

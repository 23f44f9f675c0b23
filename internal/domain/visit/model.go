package visit

import (
	"errors"
	"net/url"
	"regexp"
	"time"
)

// Insert retry policy.
const (
	MaxAttempts = 3
	BackoffStep = 300 * time.Millisecond
)

// Device types
const (
	DeviceDesktop = "desktop"
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
)

// Unknown is reported when the OS or browser cannot be identified.
const Unknown = "unknown"

// Domain errors
var (
	ErrEmptyVisitorID = errors.New("visitor ID cannot be empty")
	ErrEmptyPath      = errors.New("path cannot be empty")
)

var (
	tabletPattern  = regexp.MustCompile(`(?i)tablet|ipad|playbook|silk`)
	androidPattern = regexp.MustCompile(`(?i)android`)
	mobiPattern    = regexp.MustCompile(`(?i)android.*mobi`)
	mobilePattern  = regexp.MustCompile(`(?i)mobile|iphone|ipod|android|blackberry|opera mini|windows phone`)
)

type rule struct {
	pattern *regexp.Regexp
	name    string
}

// First match wins.
var osRules = []rule{
	{regexp.MustCompile(`(?i)windows nt`), "windows"},
	{regexp.MustCompile(`(?i)android`), "android"},
	{regexp.MustCompile(`(?i)iphone|ipad|ipod`), "ios"},
	{regexp.MustCompile(`(?i)mac os x`), "macos"},
	{regexp.MustCompile(`(?i)linux`), "linux"},
}

// Edge and Opera carry "Chrome" in their user agent, so they are tested first.
var browserRules = []rule{
	{regexp.MustCompile(`(?i)edg/`), "edge"},
	{regexp.MustCompile(`(?i)opr/`), "opera"},
	{regexp.MustCompile(`(?i)chrome|crios`), "chrome"},
	{regexp.MustCompile(`(?i)firefox|fxios`), "firefox"},
	{regexp.MustCompile(`(?i)safari`), "safari"},
}

// UTM holds campaign parameters from the landing URL.
type UTM struct {
	Source   string `json:"utmSource,omitempty"`
	Medium   string `json:"utmMedium,omitempty"`
	Campaign string `json:"utmCampaign,omitempty"`
}

// Geo is the approximate location of a visitor's IP address. Any field may
// be empty when the lookup is disabled or fails.
type Geo struct {
	Country string
	Region  string
	City    string
}

// Visit is one recorded home page view.
type Visit struct {
	ID              string
	VisitorID       string
	AccountID       string
	IsAuthenticated bool
	IsUnique        bool
	Path            string
	Referrer        string
	Language        string
	UserAgent       string
	IPAddress       string
	Geo             Geo
	DeviceType      string
	OS              string
	Browser         string
	UTM             UTM
	VisitedAt       time.Time
}

// Validate checks if the Visit has valid data.
func (v *Visit) Validate() error {
	if v.VisitorID == "" {
		return ErrEmptyVisitorID
	}
	if v.Path == "" {
		return ErrEmptyPath
	}
	return nil
}

// Classify fills DeviceType, OS and Browser from UserAgent.
// POST: the three fields are non-empty
func (v *Visit) Classify() {
	v.DeviceType = DetectDevice(v.UserAgent)
	v.OS = DetectOS(v.UserAgent)
	v.Browser = DetectBrowser(v.UserAgent)
}

// DetectDevice classifies a user agent as mobile, tablet or desktop.
// Android without "mobi" is a tablet.
func DetectDevice(ua string) string {
	if tabletPattern.MatchString(ua) {
		return DeviceTablet
	}
	if androidPattern.MatchString(ua) && !mobiPattern.MatchString(ua) {
		return DeviceTablet
	}
	if mobilePattern.MatchString(ua) {
		return DeviceMobile
	}
	return DeviceDesktop
}

// DetectOS returns the operating system family of a user agent.
func DetectOS(ua string) string {
	return match(osRules, ua)
}

// DetectBrowser returns the browser family of a user agent.
func DetectBrowser(ua string) string {
	return match(browserRules, ua)
}

// ParseUTM extracts the utm_source, utm_medium and utm_campaign parameters.
func ParseUTM(q url.Values) UTM {
	return UTM{
		Source:   q.Get("utm_source"),
		Medium:   q.Get("utm_medium"),
		Campaign: q.Get("utm_campaign"),
	}
}

// Backoff returns the wait after a failed attempt (1-based): 300ms, 600ms, ...
func Backoff(attempt int) time.Duration {
	return time.Duration(attempt) * BackoffStep
}

func match(rules []rule, ua string) string {
	for _, r := range rules {
		if r.pattern.MatchString(ua) {
			return r.name
		}
	}
	return Unknown
}

package usecase

import (
	"fmt"

	"github.com/mssola/useragent"
)

const (
	unknownBrowser = "Unknown browser"
	unknownOS      = "Unknown OS"
)

// DeviceFingerprint derives the coarse "{browser} on {os}" name used to
// spot logins from devices the user has not seen before. Unparseable
// user agents fall back to the Unknown placeholders so the fingerprint
// stays deterministic.
func DeviceFingerprint(rawUserAgent string) string {
	ua := useragent.New(rawUserAgent)

	// the parser echoes unrecognized tokens back as the browser name with
	// no version; a name without a version is not a recognized browser
	browser, version := ua.Browser()
	if browser == "" || version == "" {
		browser = unknownBrowser
	}
	os := ua.OSInfo().Name
	if os == "" {
		os = unknownOS
	}
	return fmt.Sprintf("%s on %s", browser, os)
}

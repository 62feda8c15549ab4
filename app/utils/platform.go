package utils

import "strings"

var platformDomains = []struct {
	domain string
	name   string
}{
	{"facebook.com", "facebook"}, {"fb.watch", "facebook"}, {"fb.com", "facebook"},
	{"youtube.com", "youtube"}, {"youtu.be", "youtube"},
	{"instagram.com", "instagram"},
	{"tiktok.com", "tiktok"},
	{"twitter.com", "twitter"}, {"x.com", "twitter"},
}

// DetectPlatform returns a platform name derived from the URL domain,
// or "other" when none matches.
func DetectPlatform(url string) string {
	url = strings.ToLower(url)
	for _, p := range platformDomains {
		if strings.Contains(url, p.domain) {
			return p.name
		}
	}
	return "other"
}

package checker

import (
	"net/http"
	"strings"

	"github.com/gradescan/gradescan/internal/shared/constants"
)

// techSignature matches one technology against a response header value or a
// body substring. The table is ordered so fingerprint output is stable.
type techSignature struct {
	name   string
	header string // header to inspect; empty means body
	match  string // lowercase substring
}

var techSignatures = []techSignature{
	// Server banners
	{name: "Nginx", header: "Server", match: "nginx"},
	{name: "Apache", header: "Server", match: "apache"},
	{name: "Microsoft IIS", header: "Server", match: "microsoft-iis"},
	{name: "LiteSpeed", header: "Server", match: "litespeed"},
	{name: "Caddy", header: "Server", match: "caddy"},
	{name: "Cloudflare", header: "Server", match: "cloudflare"},

	// Application frameworks
	{name: "PHP", header: "X-Powered-By", match: "php"},
	{name: "Express", header: "X-Powered-By", match: "express"},
	{name: "ASP.NET", header: "X-Powered-By", match: "asp.net"},
	{name: "Next.js", header: "X-Powered-By", match: "next.js"},
	{name: "Phusion Passenger", header: "X-Powered-By", match: "phusion"},

	// Body substrings: CMS and frontend stacks
	{name: "WordPress", match: "wp-content"},
	{name: "WordPress", match: "wp-json"},
	{name: "Drupal", match: "drupal-settings-json"},
	{name: "Joomla", match: "joomla"},
	{name: "Shopify", match: "cdn.shopify.com"},
	{name: "Next.js", match: "/_next/static"},
	{name: "Nuxt", match: "__nuxt"},
	{name: "React", match: "data-reactroot"},
	{name: "Vue.js", match: "data-v-app"},
	{name: "Angular", match: "ng-version"},
	{name: "jQuery", match: "jquery"},
	{name: "Bootstrap", match: "bootstrap"},
	{name: "Django", match: "csrfmiddlewaretoken"},

	// Analytics and third-party snippets
	{name: "Google Analytics", match: "googletagmanager.com"},
	{name: "Google Analytics", match: "google-analytics.com"},
	{name: "Hotjar", match: "hotjar"},
	{name: "Matomo", match: "matomo.js"},
}

// FingerprintTechnologies matches response headers and body against the
// signature table. Output is deduplicated, ordered by the table, and capped.
func FingerprintTechnologies(headers http.Header, body string) []string {
	lowerBody := strings.ToLower(body)
	seen := make(map[string]bool)
	var techs []string

	for _, sig := range techSignatures {
		if seen[sig.name] {
			continue
		}

		var haystack string
		if sig.header != "" {
			haystack = strings.ToLower(headers.Get(sig.header))
		} else {
			haystack = lowerBody
		}
		if haystack == "" || !strings.Contains(haystack, sig.match) {
			continue
		}

		seen[sig.name] = true
		techs = append(techs, sig.name)
		if len(techs) >= constants.MaxTechnologies {
			break
		}
	}
	return techs
}

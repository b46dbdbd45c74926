package domain

import "strings"

// SanitizeURL derives the interim file name of a download by replacing every
// path separator in the URL with an underscore.
func SanitizeURL(url string) string {
	return strings.ReplaceAll(url, "/", "_")
}

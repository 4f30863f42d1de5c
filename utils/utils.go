package utils

import (
	"crypto/rand"
	"html"
	"math/big"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

func GetDatesString(min, max int64) string {
	if min == 0 || max == 0 {
		return "empty :("
	}
	minString := time.Unix(min, 0).UTC().Format("2 Jan 2006")
	if max-min <= 86400 {
		return minString
	}
	maxString := time.Unix(max, 0).UTC().Format("2 Jan 2006")
	return minString + " - " + maxString
}

// RandBytesToBase62 reads n bytes from crypto/rand and encodes them in base62
func RandBytesToBase62(n int) string {
	buf := make([]byte, n)
	_, err := rand.Read(buf)
	if err != nil {
		panic(err)
	}
	var i big.Int
	return i.SetBytes(buf).Text(62)
}

// SanitizeText strips all markup from user supplied text (names, notes, etc).
// The result is plain text, not HTML: entities are unescaped again
func SanitizeText(in string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(in)))
}

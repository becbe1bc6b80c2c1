// Package cachekey derives the deterministic storage path an image is
// persisted under. The hash is always computed over the original source URL
// with its query parameters stripped, so repeated requests for the same
// image converge on the same key no matter which fallback variant ended up
// serving the bytes.
package cachekey

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"time"
)

const shortHashLen = 8

// StripQuery removes the query string and fragment from raw. Parse failures
// degrade to returning the input unchanged, keeping callers total.
func StripQuery(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// ShortHash returns the first 8 hex characters of the SHA-256 of the
// query-stripped source URL.
func ShortHash(sourceURL string) string {
	sum := sha256.Sum256([]byte(StripQuery(sourceURL)))
	return hex.EncodeToString(sum[:])[:shortHashLen]
}

// Derive computes the storage path {YYYYMMDD}/{shorthash}.{ext} for a write
// happening at now. Pure and total.
func Derive(sourceURL, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%s.%s", now.UTC().Format("20060102"), ShortHash(sourceURL), ext)
}

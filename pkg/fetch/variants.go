package fetch

import (
	"net/url"
	"strings"
)

// stripParams drops every query parameter not named in keep, and the
// fragment. A nil keep strips everything. Malformed URLs pass through
// unchanged.
func stripParams(raw string, keep []string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	query := u.Query()
	kept := url.Values{}
	for _, key := range keep {
		if values, ok := query[key]; ok {
			kept[key] = values
		}
	}

	u.RawQuery = kept.Encode()
	u.Fragment = ""
	return u.String()
}

// swapMirrorHost flips a URL between the two interchangeable source
// hostnames. URLs on neither host, or malformed ones, are returned
// unchanged.
func swapMirrorHost(raw string, hosts [2]string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}

	switch u.Host {
	case hosts[0]:
		u.Host = hosts[1]
	case hosts[1]:
		u.Host = hosts[0]
	default:
		return raw
	}

	return u.String()
}

// extensionOf returns the lowercased file extension of the last path
// segment, without the dot. Empty when the segment has none.
func extensionOf(raw string) string {
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.Path
	}

	segment := path[strings.LastIndex(path, "/")+1:]
	dot := strings.LastIndex(segment, ".")
	if dot < 0 || dot == len(segment)-1 {
		return ""
	}

	return strings.ToLower(segment[dot+1:])
}

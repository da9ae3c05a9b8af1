// Package dedup removes near-duplicate items within one pipeline run.
//
// The check is purely syntactic: two items are duplicates when their normalized
// titles or their normalized URLs hash to the same fingerprint. Reworded
// headlines of the same story are not detected.
package dedup

import (
	"net/url"
	"strings"
	"unicode"

	"github.com/bilgisen/newsdigest/internal/models"
	"github.com/bilgisen/newsdigest/internal/utils"
)

// Dedupe keeps the first item of every fingerprint pair, in input order.
// An item is dropped when either its title or its URL fingerprint was seen before.
func Dedupe(items []models.RawItem) ([]models.RawItem, int) {
	titles := make(map[string]struct{}, len(items))
	urls := make(map[string]struct{}, len(items))
	kept := make([]models.RawItem, 0, len(items))

	for _, item := range items {
		tfp := TitleFingerprint(item.Title)
		ufp := URLFingerprint(item.URL)

		_, seenTitle := titles[tfp]
		_, seenURL := urls[ufp]
		if seenTitle || seenURL {
			continue
		}
		titles[tfp] = struct{}{}
		urls[ufp] = struct{}{}
		kept = append(kept, item)
	}
	return kept, len(items) - len(kept)
}

// TitleFingerprint hashes the normalized title
func TitleFingerprint(title string) string {
	return utils.Fingerprint(NormalizeTitle(title))
}

// URLFingerprint hashes the normalized URL
func URLFingerprint(raw string) string {
	return utils.Fingerprint(NormalizeURL(raw))
}

// NormalizeTitle lowercases, strips punctuation and collapses whitespace
func NormalizeTitle(t string) string {
	t = strings.Map(func(r rune) rune {
		switch {
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			return ' '
		default:
			return unicode.ToLower(r)
		}
	}, t)
	return strings.Join(strings.Fields(t), " ")
}

// NormalizeURL lowercases scheme and host, drops the fragment,
// tracking parameters and any trailing slash
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return strings.ToLower(raw)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	q := u.Query()
	for k := range q {
		lk := strings.ToLower(k)
		if strings.HasPrefix(lk, "utm_") || lk == "fbclid" || lk == "gclid" {
			q.Del(k)
		}
	}
	u.RawQuery = q.Encode()

	return strings.TrimRight(u.String(), "/")
}

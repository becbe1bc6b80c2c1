package cachekey

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDeriveDeterministic(t *testing.T) {
	now := time.Date(2021, 11, 2, 23, 2, 58, 0, time.UTC)
	u := "https://cdn.discordapp.com/attachments/1/2/cat.png"

	first := Derive(u, "png", now)
	second := Derive(u, "png", now)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("Derive() not deterministic (-want +got):\n%s", diff)
	}
	if !strings.HasPrefix(first, "20211102/") {
		t.Fatalf("expected 20211102 date prefix, got %q", first)
	}
	if !strings.HasSuffix(first, ".png") {
		t.Fatalf("expected .png suffix, got %q", first)
	}
}

func TestDeriveIgnoresQueryParams(t *testing.T) {
	now := time.Date(2021, 11, 2, 0, 0, 0, 0, time.UTC)

	plain := Derive("https://cdn.discordapp.com/attachments/1/2/cat.png", "png", now)
	signed := Derive("https://cdn.discordapp.com/attachments/1/2/cat.png?ex=aaa&is=bbb&hm=ccc", "png", now)

	if diff := cmp.Diff(plain, signed); diff != "" {
		t.Errorf("query params should not change the key (-want +got):\n%s", diff)
	}
}

func TestDeriveDateSensitive(t *testing.T) {
	u := "https://cdn.discordapp.com/attachments/1/2/cat.png"
	day1 := Derive(u, "png", time.Date(2021, 11, 2, 23, 59, 0, 0, time.UTC))
	day2 := Derive(u, "png", time.Date(2021, 11, 3, 0, 1, 0, 0, time.UTC))

	if day1 == day2 {
		t.Errorf("keys across calendar days should differ, both were %q", day1)
	}
	if strings.SplitN(day1, "/", 2)[1] != strings.SplitN(day2, "/", 2)[1] {
		t.Error("hash portion should be identical across days")
	}
}

func TestDeriveUsesUTC(t *testing.T) {
	u := "https://cdn.discordapp.com/attachments/1/2/cat.png"
	tz := time.FixedZone("UTC+13", 13*60*60)
	// 2021-11-02 01:00 +13:00 is still 2021-11-01 in UTC
	key := Derive(u, "png", time.Date(2021, 11, 2, 1, 0, 0, 0, tz))

	if !strings.HasPrefix(key, "20211101/") {
		t.Errorf("expected UTC date prefix 20211101, got %q", key)
	}
}

func TestShortHashLength(t *testing.T) {
	h := ShortHash("https://cdn.discordapp.com/attachments/1/2/cat.png")
	if len(h) != 8 {
		t.Fatalf("expected 8 hex chars, got %d (%q)", len(h), h)
	}
}

func TestStripQueryMalformedUnchanged(t *testing.T) {
	raw := "::::not a url::::"
	if diff := cmp.Diff(raw, StripQuery(raw)); diff != "" {
		t.Errorf("malformed input should pass through unchanged (-want +got):\n%s", diff)
	}
}

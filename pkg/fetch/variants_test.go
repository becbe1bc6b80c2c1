package fetch

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestStripParams(t *testing.T) {
	keep := []string{"format", "quality"}

	tables := []struct {
		name     string
		url      string
		keep     []string
		expected string
	}{
		{"drops signing params", "https://cdn.discordapp.com/attachments/1/2/cat.png?ex=a&is=b&hm=c", keep, "https://cdn.discordapp.com/attachments/1/2/cat.png"},
		{"keeps render params", "https://media.discordapp.net/attachments/1/2/cat.png?ex=a&format=webp&quality=lossless", keep, "https://media.discordapp.net/attachments/1/2/cat.png?format=webp&quality=lossless"},
		{"nil keep strips all", "https://cdn.discordapp.com/attachments/1/2/cat.png?format=webp", nil, "https://cdn.discordapp.com/attachments/1/2/cat.png"},
		{"no params unchanged", "https://cdn.discordapp.com/attachments/1/2/cat.png", keep, "https://cdn.discordapp.com/attachments/1/2/cat.png"},
		{"malformed unchanged", "::::not a url::::", keep, "::::not a url::::"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			if diff := cmp.Diff(table.expected, stripParams(table.url, table.keep)); diff != "" {
				t.Errorf("stripParams() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSwapMirrorHost(t *testing.T) {
	hosts := [2]string{"cdn.discordapp.com", "media.discordapp.net"}

	tables := []struct {
		name     string
		url      string
		expected string
	}{
		{"cdn to media", "https://cdn.discordapp.com/attachments/1/2/cat.png", "https://media.discordapp.net/attachments/1/2/cat.png"},
		{"media to cdn", "https://media.discordapp.net/attachments/1/2/cat.png?format=webp", "https://cdn.discordapp.com/attachments/1/2/cat.png?format=webp"},
		{"unknown host unchanged", "https://example.com/attachments/1/2/cat.png", "https://example.com/attachments/1/2/cat.png"},
		{"malformed unchanged", "::::not a url::::", "::::not a url::::"},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			if diff := cmp.Diff(table.expected, swapMirrorHost(table.url, hosts)); diff != "" {
				t.Errorf("swapMirrorHost() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtensionOf(t *testing.T) {
	tables := []struct {
		name     string
		url      string
		expected string
	}{
		{"simple", "https://cdn.discordapp.com/attachments/1/2/cat.png", "png"},
		{"uppercase lowered", "https://cdn.discordapp.com/attachments/1/2/CAT.PNG", "png"},
		{"query ignored", "https://cdn.discordapp.com/attachments/1/2/cat.webp?format=webp", "webp"},
		{"multiple dots", "https://cdn.discordapp.com/attachments/1/2/cat.min.gif", "gif"},
		{"no extension", "https://cdn.discordapp.com/attachments/1/2/cat", ""},
		{"trailing dot", "https://cdn.discordapp.com/attachments/1/2/cat.", ""},
	}

	for _, table := range tables {
		t.Run(table.name, func(t *testing.T) {
			if diff := cmp.Diff(table.expected, extensionOf(table.url)); diff != "" {
				t.Errorf("extensionOf() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

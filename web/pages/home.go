// Package pages renders the HTML pages served by the service. The markup
// lives in .templ files; run templ generate after editing them.
package pages

import (
	twmerge "github.com/Oudwins/tailwind-merge-go"
)

const (
	badgeBase = "inline-block rounded px-2 py-0.5 font-mono text-xs text-white"
	cardBase  = "rounded-lg border border-gray-200 p-4 shadow-sm"
)

func methodClass(method string) string {
	switch method {
	case "POST":
		return twmerge.Merge(badgeBase, "bg-emerald-600")
	default:
		return twmerge.Merge(badgeBase, "bg-sky-600")
	}
}

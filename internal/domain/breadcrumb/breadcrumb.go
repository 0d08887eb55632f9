// Package breadcrumb resolves the navigation trail for a site path.
package breadcrumb

import (
	"strings"
	"unicode"
)

// HomeLabel is the label of the always-present root link.
const HomeLabel = "BERANDA"

// aliases maps path segments to their display labels.
var aliases = map[string]string{
	// Company pages
	"profile":        "Company Profile",
	"structure":      "Struktur Organisasi",
	"vision-mission": "Visi & Misi",

	// Services
	"services":   "Produk & Jasa",
	"ict":        "ICT Services",
	"avts":       "Automatic Vessel Tracking (AVTS)",
	"ndr":        "National Data Repository (NDR)",
	"retina":     "RETINA Monitoring",
	"data-asset": "Data & Asset Management",
	"scada":      "SCADA — Supervisory Control and Data Acquisition",

	// Other
	"clients":  "Klien",
	"contact":  "Kontak",
	"career":   "Karir",
	"feedback": "Feedback",
	"admin":    "Admin",

	"awards":      "Certificates & Awards",
	"penghargaan": "Certificates & Awards",
}

// Crumb is one link in the trail.
type Crumb struct {
	Href    string `json:"href"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

// Options tune how a trail is built.
type Options struct {
	// TitleMap overrides labels by full href, e.g. "/services/ict".
	TitleMap map[string]string
	// LabelOverride replaces the label of the last crumb.
	LabelOverride string
	// ShowOnHome returns an empty, non-nil trail for "/" instead of nil.
	ShowOnHome bool
}

// Build returns the ordered trail for pathname. It returns nil on the home
// path unless opts.ShowOnHome is set.
func Build(pathname string, opts Options) []Crumb {
	parts := segments(pathname)
	if len(parts) == 0 {
		if opts.ShowOnHome {
			return []Crumb{}
		}
		return nil
	}

	crumbs := make([]Crumb, len(parts))
	for i, seg := range parts {
		href := "/" + strings.Join(parts[:i+1], "/")
		label := opts.TitleMap[href]
		if label == "" {
			label = SegmentLabel(seg)
		}
		crumbs[i] = Crumb{Href: href, Label: label}
	}

	last := len(crumbs) - 1
	crumbs[last].Current = true
	if opts.LabelOverride != "" {
		crumbs[last].Label = opts.LabelOverride
	}
	return crumbs
}

// Display returns the trail with upper-cased labels, as rendered in the bar.
func Display(crumbs []Crumb) []Crumb {
	out := make([]Crumb, len(crumbs))
	for i, c := range crumbs {
		c.Label = strings.ToUpper(c.Label)
		out[i] = c
	}
	return out
}

// SegmentLabel resolves a single path segment: a known alias, or the segment
// with dashes turned into spaces and each word start upper-cased.
func SegmentLabel(seg string) string {
	if label, ok := aliases[seg]; ok {
		return label
	}

	var b strings.Builder
	prevWord := false
	for _, r := range strings.ReplaceAll(seg, "-", " ") {
		word := isWordRune(r)
		if word && !prevWord {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prevWord = word
	}
	return b.String()
}

func segments(pathname string) []string {
	var parts []string
	for _, p := range strings.Split(pathname, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func isWordRune(r rune) bool {
	return r == '_' || (r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

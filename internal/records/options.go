package records

import (
	"sort"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// #region known-categories
// KnownCategories are the policy categories the upstream classifier emits,
// with their display labels, in menu order.
var KnownCategories = []Option{
	{Value: "NONVIOLENT_WRONGDOING", Label: "Non-violent wrongdoing"},
	{Value: "HATE_SPEECH", Label: "Hate speech"},
	{Value: "SELF_HARM", Label: "Self-harm"},
	{Value: "VIOLENT_HARM", Label: "Violent harm"},
	{Value: "SEXUAL_CONTENT", Label: "Sexual content"},
}

// #endregion known-categories

// #region options
// Option is one selectable filter value.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CategoryOptions lists the known categories followed by any other category
// present in rows, sorted.
func CategoryOptions(rows []Record) []Option {
	seen := make(map[string]bool, len(KnownCategories))
	out := make([]Option, 0, len(KnownCategories))
	for _, o := range KnownCategories {
		seen[o.Value] = true
		out = append(out, o)
	}
	var extra []string
	for _, r := range rows {
		if r.PolicyCategory == "" || seen[r.PolicyCategory] {
			continue
		}
		seen[r.PolicyCategory] = true
		extra = append(extra, r.PolicyCategory)
	}
	sort.Strings(extra)
	for _, c := range extra {
		out = append(out, Option{Value: c, Label: c})
	}
	return out
}

// LanguageOptions lists the distinct language codes in rows, sorted, labelled
// with their English names when the code is a recognizable BCP 47 tag.
func LanguageOptions(rows []Record) []Option {
	seen := make(map[string]bool)
	var codes []string
	for _, r := range rows {
		if r.Language == "" || seen[r.Language] {
			continue
		}
		seen[r.Language] = true
		codes = append(codes, r.Language)
	}
	sort.Strings(codes)

	namer := display.English.Languages()
	out := make([]Option, 0, len(codes))
	for _, c := range codes {
		label := c
		if tag, err := language.Parse(c); err == nil {
			if name := namer.Name(tag); name != "" {
				label = name
			}
		}
		out = append(out, Option{Value: c, Label: label})
	}
	return out
}

// #endregion options

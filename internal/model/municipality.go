package model

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// VargemGrandePaulista is the canonical id every "vargem" spelling collapses to.
const VargemGrandePaulista = "vargem_grande_paulista"

// NormalizeMunicipality returns the canonical municipality id for a raw name:
// trimmed, accents removed, lower case, inner whitespace collapsed.
// "Vargem Grande Paulista" has several spellings in the source data, so any
// name containing "vargem" maps to VargemGrandePaulista.
func NormalizeMunicipality(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC, runes.Map(unicode.ToLower))
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = strings.ToLower(name)
	}
	folded = strings.Join(strings.Fields(folded), " ")
	if strings.Contains(folded, "vargem") {
		return VargemGrandePaulista
	}
	return folded
}

// NormalizeMunicipalities normalizes names, dropping blanks and duplicates
// while keeping the first-seen order.
func NormalizeMunicipalities(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		id := NormalizeMunicipality(n)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

var titleCaser = cases.Title(language.BrazilianPortuguese)

// DisplayMunicipality turns a canonical id back into a display name.
// "vargem_grande_paulista" -> "Vargem Grande Paulista"
func DisplayMunicipality(id string) string {
	return titleCaser.String(strings.ReplaceAll(id, "_", " "))
}

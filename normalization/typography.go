package normalization

import "strings"

// typographicReplacements приводит типографские кавычки и тире к ASCII
var typographicReplacements = map[rune]rune{
	'\u201C': '"', // Left double quotation mark
	'\u201D': '"', // Right double quotation mark
	'\u00AB': '"', // French quotes
	'\u00BB': '"',
	'\u201E': '"',
	'\u2013': '-', // En dash
	'\u2014': '-', // Em dash
	'\u2212': '-',
	'\u00A0': ' ', // Неразрывный пробел часто стоит во французских текстах перед ":" и внутри кавычек
	'\u202F': ' ',
	'\u00BA': '\u00B0', // "Nº" вместо "N°"
}

// foldTypography нормализует кавычки, тире и неразрывные пробелы
func foldTypography(text string) string {
	if !strings.ContainsFunc(text, func(r rune) bool {
		_, ok := typographicReplacements[r]
		return ok
	}) {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text))
	for _, r := range text {
		if replacement, ok := typographicReplacements[r]; ok {
			builder.WriteRune(replacement)
		} else {
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

package normalization

import (
	"regexp"
	"strings"
	"unicode"

	"recordformatter/records"
)

// Grammar тип структуры адреса
type Grammar string

const (
	// GrammarNumbered "CITY : STREET , N ° NUMBER"
	GrammarNumbered Grammar = "numbered_street"
	// GrammarPlace "CITY : PLACE_NAME"
	GrammarPlace Grammar = "bare_place"
	// GrammarAnnotated "CITY : STREET , "QUOTED_NAME" (PARENTHETICAL)"
	GrammarAnnotated Grammar = "annotated_place"
)

// FormattedAddress разобранный адрес
type FormattedAddress struct {
	Grammar     Grammar `json:"grammar"`
	HouseNumber string  `json:"house_number,omitempty"` // Только для GrammarNumbered
	Street      string  `json:"street"`
	City        string  `json:"city"`
	Annotation  string  `json:"annotation,omitempty"` // Только для GrammarAnnotated: "NAME" (PAREN)
}

// String возвращает адрес в канонической форме
func (a *FormattedAddress) String() string {
	if a == nil {
		return ""
	}

	var builder strings.Builder
	switch {
	case a.HouseNumber != "":
		builder.WriteString(a.HouseNumber)
		builder.WriteByte(' ')
	case a.Annotation != "":
		builder.WriteString(a.Annotation)
		builder.WriteByte(' ')
	}
	builder.WriteString(a.Street)
	builder.WriteString(", ")
	builder.WriteString(a.City)
	return builder.String()
}

// Value возвращает адрес как значение ячейки; nil - отсутствующее значение
func (a *FormattedAddress) Value() records.Value {
	if a == nil {
		return records.Missing()
	}
	return records.Present(a.String())
}

// addressGrammar распознаватель и экстрактор одной грамматики.
// Новая грамматика добавляется в конец addressGrammars.
type addressGrammar struct {
	grammar   Grammar
	recognize func(string) bool
	extract   func(string) (*FormattedAddress, bool)
}

var (
	numberedAddressPattern  = regexp.MustCompile(`^\s*([^:,]+?)\s*:\s*(.+?)\s*,\s*[Nn]\s*°\s*(\d+)`)
	placeAddressPattern     = regexp.MustCompile(`^\s*([^:,]+?)\s*:\s*(.+?)\s*$`)
	annotatedAddressPattern = regexp.MustCompile(`^\s*([^:,]+?)\s*:\s*(.+?)\s*,\s*"\s*([^"]+?)\s*"\s*(?:\(\s*([^)]*?)\s*\))?\s*$`)

	innerCommaPattern = regexp.MustCompile(`\s*,\s*`)
	spaceRunPattern   = regexp.MustCompile(`\s+`)
)

// addressGrammars проверяются по порядку; первая принявшая грамматика выбирается окончательно
var addressGrammars = []addressGrammar{
	{
		grammar: GrammarNumbered,
		recognize: func(s string) bool {
			return strings.ContainsRune(s, '°') || strings.ContainsAny(s, "0123456789")
		},
		extract: extractNumbered,
	},
	{
		grammar: GrammarPlace,
		recognize: func(s string) bool {
			return !strings.Contains(s, ",")
		},
		extract: extractPlace,
	},
	{
		grammar:   GrammarAnnotated,
		recognize: func(string) bool { return true },
		extract:   extractAnnotated,
	},
}

// ClassifyAddress возвращает грамматику, выбранную по структурным признакам строки
func ClassifyAddress(raw string) (Grammar, bool) {
	raw = foldTypography(raw)
	for _, g := range addressGrammars {
		if g.recognize(raw) {
			return g.grammar, true
		}
	}
	return "", false
}

// FormatAddress разбирает адрес по выбранной грамматике.
// Отсутствующий адрес или несовпадение с выбранной грамматикой дают nil и grammar для учета.
func FormatAddress(v records.Value) (*FormattedAddress, Grammar) {
	raw, ok := v.Get()
	if !ok {
		return nil, ""
	}

	raw = foldTypography(raw)
	for _, g := range addressGrammars {
		if !g.recognize(raw) {
			continue
		}
		addr, ok := g.extract(raw)
		if !ok || !hasContent(addr.City) || !hasContent(addr.Street) {
			return nil, g.grammar
		}
		addr.Grammar = g.grammar
		return addr, g.grammar
	}
	return nil, ""
}

func extractNumbered(raw string) (*FormattedAddress, bool) {
	match := numberedAddressPattern.FindStringSubmatch(raw)
	if match == nil {
		return nil, false
	}
	return &FormattedAddress{
		HouseNumber: match[3],
		Street:      tidySegment(match[2]),
		City:        tidySegment(match[1]),
	}, true
}

func extractPlace(raw string) (*FormattedAddress, bool) {
	match := placeAddressPattern.FindStringSubmatch(raw)
	if match == nil {
		return nil, false
	}
	return &FormattedAddress{
		Street: tidySegment(match[2]),
		City:   tidySegment(match[1]),
	}, true
}

func extractAnnotated(raw string) (*FormattedAddress, bool) {
	match := annotatedAddressPattern.FindStringSubmatch(raw)
	if match == nil {
		return nil, false
	}

	name := tidySegment(match[3])
	if !hasContent(name) {
		return nil, false
	}
	annotation := `"` + name + `"`
	if paren := tidySegment(match[4]); paren != "" {
		annotation += " (" + paren + ")"
	}

	return &FormattedAddress{
		Street:     tidySegment(match[2]),
		City:       tidySegment(match[1]),
		Annotation: annotation,
	}, true
}

// hasContent сообщает, есть ли во фрагменте хотя бы одна буква или цифра
func hasContent(s string) bool {
	return strings.ContainsFunc(s, func(r rune) bool {
		return unicode.IsLetter(r) || unicode.IsNumber(r)
	})
}

// tidySegment нормализует запятые и пробелы внутри фрагмента адреса
func tidySegment(s string) string {
	s = strings.TrimSpace(s)
	s = innerCommaPattern.ReplaceAllString(s, ", ")
	return spaceRunPattern.ReplaceAllString(s, " ")
}

package normalization

import (
	"regexp"
	"strings"

	"recordformatter/records"
)

// maxFreeTextPasses ограничивает число повторных прогонов цепочки правил
const maxFreeTextPasses = 8

// textRule одно правило очистки свободного текста
type textRule struct {
	name  string
	apply func(string) string
}

// replaceRule строит правило замены по регулярному выражению
func replaceRule(name, pattern, replacement string) textRule {
	re := regexp.MustCompile(pattern)
	return textRule{
		name: name,
		apply: func(s string) string {
			return re.ReplaceAllString(s, replacement)
		},
	}
}

var (
	bulletClusterPattern    = regexp.MustCompile(`\s*[•·]+[\s•·.\-]*`)
	trailingHyphenPattern   = regexp.MustCompile(`\s+-+\s*$`)
	quotedSegmentPattern    = regexp.MustCompile(`"[^"]*"`)
	quotedInnerSpacePattern = regexp.MustCompile(`^"\s*(.*?)\s*"$`)
)

// freeTextRules порядок правил важен: поздние правила могут вернуть шаблоны, которые убирают ранние
var freeTextRules = []textRule{
	// 1. Маркеры списка, точки и дефисы в начале строки
	replaceRule("leading_markers", `^[\s•·.\-]+`, ""),
	// 2. Кластеры маркеров внутри строки и висящий дефис в конце
	{
		name: "marker_clusters",
		apply: func(s string) string {
			s = bulletClusterPattern.ReplaceAllString(s, " ")
			return trailingHyphenPattern.ReplaceAllString(s, "")
		},
	},
	// 3. Пробелы перед знаками препинания
	replaceRule("space_before_punctuation", `\s+([.!?,:])`, "$1"),
	// 4. ". - " -> ". "
	replaceRule("period_hyphen", `\.\s*-\s*`, ". "),
	// 5. Заглушки "(...)" с необязательной запятой
	replaceRule("ellipsis_placeholder", `\(\s*(?:\.{2,}|…)\s*\)\s*,?`, ""),
	// 6. Запятая всегда ", "
	replaceRule("comma_spacing", `\s*,\s*`, ", "),
	// 7. Пробелы внутри скобок
	replaceRule("paren_open_space", `\(\s+`, "("),
	replaceRule("paren_close_space", `\s+\)`, ")"),
	// 8. Дефис, отделенный пробелом хотя бы с одной стороны, -> " - "
	replaceRule("hyphen_spacing", `\s+-\s*|\s*-\s+`, " - "),
	// 9. Пробелы внутри кавычек
	{name: "quote_inner_space", apply: trimInsideQuotes},
	// 10. Ровно один пробел перед открывающей кавычкой
	{name: "space_before_quote", apply: spaceBeforeQuotes},
	// 11. Повторы точек и дефисов
	replaceRule("repeated_markers", `[.\-]{2,}`, " "),
	// 12. Повторы пробелов
	replaceRule("repeated_spaces", `\s{2,}`, " "),
	// 13. Обрезка
	{name: "trim", apply: strings.TrimSpace},
}

// CleanFreeText очищает свободный текст от лишней пунктуации.
// Цепочка правил прогоняется повторно, пока текст меняется, поэтому повторный вызов ничего не меняет.
func CleanFreeText(v records.Value) records.Value {
	return v.Map(cleanFreeTextString)
}

func cleanFreeTextString(text string) string {
	text = foldTypography(text)
	for pass := 0; pass < maxFreeTextPasses; pass++ {
		next := applyFreeTextRules(text)
		if next == text {
			break
		}
		text = next
	}
	return text
}

func applyFreeTextRules(text string) string {
	for _, rule := range freeTextRules {
		text = rule.apply(text)
	}
	return text
}

// trimInsideQuotes убирает пробелы сразу после открывающей и перед закрывающей кавычкой.
// Кавычки группируются в пары слева направо.
func trimInsideQuotes(text string) string {
	return quotedSegmentPattern.ReplaceAllStringFunc(text, func(segment string) string {
		return quotedInnerSpacePattern.ReplaceAllString(segment, `"$1"`)
	})
}

// spaceBeforeQuotes вставляет пробел перед открывающей кавычкой, если перед ней не пробел и не "("
func spaceBeforeQuotes(text string) string {
	pairs := quotedSegmentPattern.FindAllStringIndex(text, -1)
	if len(pairs) == 0 {
		return text
	}

	var builder strings.Builder
	builder.Grow(len(text) + len(pairs))
	last := 0
	for _, pair := range pairs {
		start := pair[0]
		builder.WriteString(text[last:start])
		if start > 0 {
			prev := text[start-1]
			if prev != ' ' && prev != '\t' && prev != '\n' && prev != '\r' && prev != '(' {
				builder.WriteByte(' ')
			}
		}
		last = start
	}
	builder.WriteString(text[last:])
	return builder.String()
}

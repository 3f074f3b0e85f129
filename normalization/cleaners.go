package normalization

import (
	"regexp"
	"strings"
	"unicode"

	"recordformatter/records"
)

// birthDatePattern формат даты во входном файле: ГГГГ/ММ/ДД
var birthDatePattern = regexp.MustCompile(`^(\d{4})/(\d{2})/(\d{2})$`)

// CleanName оставляет в имени только буквы и пробельные символы. Регистр не меняется.
func CleanName(v records.Value) records.Value {
	return v.Map(func(s string) string {
		var builder strings.Builder
		builder.Grow(len(s))
		for _, r := range s {
			if unicode.IsLetter(r) || unicode.IsSpace(r) {
				builder.WriteRune(r)
			}
		}
		return builder.String()
	})
}

// JoinName собирает полное имя "prenoms, nom[, nom_de_jeune_fille]" из очищенных частей.
// Отсутствующие части пропускаются; если отсутствуют все - результат отсутствует.
func JoinName(first, last, maiden records.Value) records.Value {
	parts := make([]string, 0, 3)
	for _, part := range []records.Value{first, last, maiden} {
		s, ok := CleanName(part).Get()
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		parts = append(parts, s)
	}

	if len(parts) == 0 {
		return records.Missing()
	}
	return records.Present(strings.Join(parts, ", "))
}

// FormatDate переводит дату ГГГГ/ММ/ДД в ДД/ММ/ГГГГ.
// Несовпадающая с шаблоном или отсутствующая дата дает отсутствующее значение.
func FormatDate(v records.Value) records.Value {
	s, ok := v.Get()
	if !ok {
		return records.Missing()
	}

	match := birthDatePattern.FindStringSubmatch(strings.TrimSpace(s))
	if match == nil {
		return records.Missing()
	}

	year, month, day := match[1], match[2], match[3]
	return records.Present(day + "/" + month + "/" + year)
}

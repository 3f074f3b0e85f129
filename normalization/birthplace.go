package normalization

import (
	"regexp"
	"strings"

	"recordformatter/records"
)

// countryCityPattern "PAYS / VILLE", по одному слову с каждой стороны
var countryCityPattern = regexp.MustCompile(`(?i)^\s*([\p{L}\p{N}_]+)\s*/\s*([\p{L}\p{N}_]+)\s*$`)

// FormatBirthplace переводит "PAYS / VILLE" в "VILLE, PAYS" в верхнем регистре
func FormatBirthplace(v records.Value) records.Value {
	s, ok := v.Get()
	if !ok {
		return records.Missing()
	}

	match := countryCityPattern.FindStringSubmatch(s)
	if match == nil {
		return records.Missing()
	}

	country := strings.ToUpper(match[1])
	city := strings.ToUpper(match[2])
	return records.Present(city + ", " + country)
}

package pipeline

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"recordformatter/enrichment"
	"recordformatter/normalization"
)

// Stats итоги обработки пакета
type Stats struct {
	RunID string `json:"run_id"`
	Rows  int    `json:"rows"`

	AddressesByGrammar map[normalization.Grammar]int `json:"addresses_by_grammar"` // Успешно разобранные адреса
	AddressMismatches  int                           `json:"address_mismatches"`
	AddressesMissing   int                           `json:"addresses_missing"`

	BirthplacesFormatted int `json:"birthplaces_formatted"`
	BirthplaceMismatches int `json:"birthplace_mismatches"`

	ResolvedBySource map[string]int `json:"resolved_by_source,omitempty"` // Найденные коды по уровням
	Unresolved       int            `json:"unresolved"`

	Duration time.Duration `json:"duration"`
}

func newStats(runID string) Stats {
	return Stats{
		RunID:              runID,
		AddressesByGrammar: make(map[normalization.Grammar]int),
		ResolvedBySource:   make(map[string]int),
	}
}

func (s *Stats) add(row normalization.FormattedRow, code enrichment.ResolvedCode, enriched bool) {
	s.Rows++

	switch {
	case row.Address != nil:
		s.AddressesByGrammar[row.Grammar]++
	case row.AddressMismatch:
		s.AddressMismatches++
	default:
		s.AddressesMissing++
	}

	switch {
	case row.BirthplaceMismatch:
		s.BirthplaceMismatches++
	case !row.Output.FormattedBirthCountry.IsMissing():
		s.BirthplacesFormatted++
	}

	if !enriched {
		return
	}
	if code.IsResolved() {
		s.ResolvedBySource[code.Source]++
	} else {
		s.Unresolved++
	}
}

// AddressesFormatted число разобранных адресов по всем грамматикам
func (s Stats) AddressesFormatted() int {
	total := 0
	for _, n := range s.AddressesByGrammar {
		total += n
	}
	return total
}

// ResolvedTotal число найденных кодов по всем уровням
func (s Stats) ResolvedTotal() int {
	total := 0
	for _, n := range s.ResolvedBySource {
		total += n
	}
	return total
}

// String краткая сводка для вывода в консоль
func (s Stats) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Rows processed:        %d\n", s.Rows)
	fmt.Fprintf(&b, "Addresses formatted:   %d", s.AddressesFormatted())
	if len(s.AddressesByGrammar) > 0 {
		grammars := make([]string, 0, len(s.AddressesByGrammar))
		for g, n := range s.AddressesByGrammar {
			grammars = append(grammars, fmt.Sprintf("%s=%d", g, n))
		}
		sort.Strings(grammars)
		fmt.Fprintf(&b, " (%s)", strings.Join(grammars, ", "))
	}
	b.WriteByte('\n')
	fmt.Fprintf(&b, "Address mismatches:    %d\n", s.AddressMismatches)
	fmt.Fprintf(&b, "Addresses missing:     %d\n", s.AddressesMissing)
	fmt.Fprintf(&b, "Birth places:          %d formatted, %d mismatched\n", s.BirthplacesFormatted, s.BirthplaceMismatches)
	if len(s.ResolvedBySource) > 0 || s.Unresolved > 0 {
		sources := make([]string, 0, len(s.ResolvedBySource))
		for source, n := range s.ResolvedBySource {
			sources = append(sources, fmt.Sprintf("%s=%d", source, n))
		}
		sort.Strings(sources)
		fmt.Fprintf(&b, "Codes resolved:        %d (%s)\n", s.ResolvedTotal(), strings.Join(sources, ", "))
		fmt.Fprintf(&b, "Codes unresolved:      %d\n", s.Unresolved)
	}
	fmt.Fprintf(&b, "Duration:              %s\n", s.Duration.Round(time.Millisecond))
	return b.String()
}

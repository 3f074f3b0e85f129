package normalization

import (
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recordformatter/records"
)

func TestFormatAddress(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantGrammar Grammar
		want        string // пусто - ожидается nil
	}{
		{
			name:        "numbered street",
			input:       "MARSEILLE : CH DE GIBBES , N ° 262",
			wantGrammar: GrammarNumbered,
			want:        "262 CH DE GIBBES, MARSEILLE",
		},
		{
			name:        "numbered street without spaces",
			input:       "MARSEILLE:CH DE GIBBES,N°262",
			wantGrammar: GrammarNumbered,
			want:        "262 CH DE GIBBES, MARSEILLE",
		},
		{
			name:        "numbered street keeps case",
			input:       "Marseille : bd  National , n° 12",
			wantGrammar: GrammarNumbered,
			want:        "12 bd National, Marseille",
		},
		{
			name:        "numbered street with inner comma",
			input:       "MARSEILLE : RUE X ,BAT B , N ° 5",
			wantGrammar: GrammarNumbered,
			want:        "5 RUE X, BAT B, MARSEILLE",
		},
		{
			name:        "ordinal sign instead of degree",
			input:       "NICE : AV JEAN MEDECIN , Nº 7",
			wantGrammar: GrammarNumbered,
			want:        "7 AV JEAN MEDECIN, NICE",
		},
		{
			name:        "bare place",
			input:       "MARSEILLE : LA ROSE",
			wantGrammar: GrammarPlace,
			want:        "LA ROSE, MARSEILLE",
		},
		{
			name:        "bare place with extra spaces",
			input:       "AUBAGNE :  QUARTIER   SAINT MITRE ",
			wantGrammar: GrammarPlace,
			want:        "QUARTIER SAINT MITRE, AUBAGNE",
		},
		{
			name:        "annotated place",
			input:       `MARSEILLE : CH DU ROUCAS BLANC , "LES GENETS" (VILLA)`,
			wantGrammar: GrammarAnnotated,
			want:        `"LES GENETS" (VILLA) CH DU ROUCAS BLANC, MARSEILLE`,
		},
		{
			name:        "annotated place with french quotes",
			input:       "MARSEILLE : AV DE LA CORSE , « LE PARC »",
			wantGrammar: GrammarAnnotated,
			want:        `"LE PARC" AV DE LA CORSE, MARSEILLE`,
		},
		{
			name:        "annotated place with padded parenthetical",
			input:       `MARSEILLE : TRAVERSE , "LES PINS" ( BAT A )`,
			wantGrammar: GrammarAnnotated,
			want:        `"LES PINS" (BAT A) TRAVERSE, MARSEILLE`,
		},
		{
			name:        "digit selects numbered grammar which then fails",
			input:       "MARSEILLE : RUE 3",
			wantGrammar: GrammarNumbered,
		},
		{
			name:        "no city separator",
			input:       "LA ROSE",
			wantGrammar: GrammarPlace,
		},
		{
			name:        "blank city",
			input:       "  : LA ROSE",
			wantGrammar: GrammarPlace,
		},
		{
			name:        "blank place name",
			input:       "MARSEILLE : ",
			wantGrammar: GrammarPlace,
		},
		{
			name:        "numbered without street",
			input:       "MARSEILLE : , N ° 12",
			wantGrammar: GrammarNumbered,
		},
		{
			name:        "annotated without city",
			input:       ` : RUE X , "LES PINS"`,
			wantGrammar: GrammarAnnotated,
		},
		{
			name:        "annotated with blank quoted name",
			input:       `MARSEILLE : RUE X , " "`,
			wantGrammar: GrammarAnnotated,
		},
		{
			name:        "comma without quoted name",
			input:       "MARSEILLE : AV X , LE PARC",
			wantGrammar: GrammarAnnotated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, grammar := FormatAddress(records.Present(tt.input))
			assert.Equal(t, tt.wantGrammar, grammar)
			if tt.want == "" {
				assert.Nil(t, addr)
				assert.True(t, addr.Value().IsMissing())
				return
			}
			require.NotNil(t, addr)
			assert.Equal(t, tt.want, addr.String())
			assert.Equal(t, tt.wantGrammar, addr.Grammar)
		})
	}
}

func TestFormatAddress_Missing(t *testing.T) {
	addr, grammar := FormatAddress(records.Missing())
	assert.Nil(t, addr)
	assert.Empty(t, grammar)
}

func TestFormatAddress_Fields(t *testing.T) {
	addr, _ := FormatAddress(records.Present(`MARSEILLE : CH DU ROUCAS BLANC , "LES GENETS" (VILLA)`))
	require.NotNil(t, addr)
	assert.Equal(t, "CH DU ROUCAS BLANC", addr.Street)
	assert.Equal(t, "MARSEILLE", addr.City)
	assert.Equal(t, `"LES GENETS" (VILLA)`, addr.Annotation)
	assert.Empty(t, addr.HouseNumber)

	addr, _ = FormatAddress(records.Present("MARSEILLE : CH DE GIBBES , N ° 262"))
	require.NotNil(t, addr)
	assert.Equal(t, "262", addr.HouseNumber)
	assert.Empty(t, addr.Annotation)
}

func TestClassifyAddress(t *testing.T) {
	tests := []struct {
		input string
		want  Grammar
	}{
		{"PARIS : RUE X , N ° 1", GrammarNumbered},
		{"PARIS : RUE X , N °", GrammarNumbered},
		{"PARIS : RUE 1", GrammarNumbered},
		{"PARIS : LA DEFENSE", GrammarPlace},
		{`PARIS : RUE X , "Y"`, GrammarAnnotated},
	}

	for _, tt := range tests {
		got, ok := ClassifyAddress(tt.input)
		if !ok || got != tt.want {
			t.Errorf("ClassifyAddress(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

// reextractNumbered разбирает "NUMBER STREET, CITY" обратно на части
func reextractNumbered(formatted string) (number, street, city string) {
	lastComma := strings.LastIndex(formatted, ",")
	head := formatted[:lastComma]
	city = strings.TrimSpace(formatted[lastComma+1:])
	number, street, _ = strings.Cut(head, " ")
	return number, street, city
}

func TestFormatAddress_NumberedRoundTrip(t *testing.T) {
	faker := gofakeit.New(2024)
	norm := func(s string) string { return strings.Join(strings.Fields(s), " ") }

	for i := 0; i < 300; i++ {
		city := strings.ToUpper(faker.City())
		street := strings.ToUpper(faker.StreetName())
		number := faker.Numerify("###")
		input := city + " : " + street + " , N ° " + number

		addr, grammar := FormatAddress(records.Present(input))
		require.Equal(t, GrammarNumbered, grammar, input)
		require.NotNil(t, addr, input)

		gotNumber, gotStreet, gotCity := reextractNumbered(addr.String())
		assert.Equal(t, number, gotNumber, input)
		assert.Equal(t, norm(street), gotStreet, input)
		assert.Equal(t, norm(city), gotCity, input)
	}
}

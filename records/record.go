package records

// Названия колонок входной таблицы
const (
	ColumnFirstName         = "prenoms"
	ColumnLastName          = "nom"
	ColumnMaidenName        = "nom_de_jeune_fille"
	ColumnBirthDate         = "date_de_naissance"
	ColumnCurrentAddress    = "adresse_actuelle"
	ColumnOriginCountryCity = "pays_ville_origine"
	ColumnFreeText          = "texte"
)

// InputColumns все известные колонки входной таблицы в порядке исходного файла
var InputColumns = []string{
	ColumnFirstName,
	ColumnLastName,
	ColumnMaidenName,
	ColumnBirthDate,
	ColumnCurrentAddress,
	ColumnOriginCountryCity,
	ColumnFreeText,
}

// RequiredColumns колонки, без которых файл не принимается
var RequiredColumns = []string{ColumnFirstName, ColumnLastName}

// Record входная строка таблицы, после импорта только читается
type Record struct {
	Row               int   `json:"row"` // Номер строки в исходном файле (1 - заголовок)
	FirstName         Value `json:"prenoms"`
	LastName          Value `json:"nom"`
	MaidenName        Value `json:"nom_de_jeune_fille"`
	BirthDate         Value `json:"date_de_naissance"` // Ожидаемый формат: 1939/05/23
	CurrentAddress    Value `json:"adresse_actuelle"`  // Например: MARSEILLE : CH DE GIBBES , N ° 262
	OriginCountryCity Value `json:"pays_ville_origine"`
	FreeText          Value `json:"texte"`
}

// SetColumn устанавливает значение по имени колонки; неизвестные колонки игнорируются
func (r *Record) SetColumn(column string, v Value) bool {
	switch column {
	case ColumnFirstName:
		r.FirstName = v
	case ColumnLastName:
		r.LastName = v
	case ColumnMaidenName:
		r.MaidenName = v
	case ColumnBirthDate:
		r.BirthDate = v
	case ColumnCurrentAddress:
		r.CurrentAddress = v
	case ColumnOriginCountryCity:
		r.OriginCountryCity = v
	case ColumnFreeText:
		r.FreeText = v
	default:
		return false
	}
	return true
}

// OutputRecord строка результирующей таблицы, по одной на каждую входную запись
type OutputRecord struct {
	Row                   int    `json:"row"`
	Name                  Value  `json:"name"`
	FirstName             Value  `json:"first_name"`
	LastName              Value  `json:"last_name"`
	MaidenName            Value  `json:"maiden_name"`
	FormattedDate         Value  `json:"formatted_date"`
	FormattedAddress      Value  `json:"formatted_address"`
	FormattedBirthCountry Value  `json:"formatted_birth_country"`
	AdditionalInfo        Value  `json:"additional_info"`
	ResolvedCode          string `json:"resolved_code,omitempty"`
}

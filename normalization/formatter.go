package normalization

import (
	"log/slog"

	"recordformatter/monitoring"
	"recordformatter/records"
)

// FormattedRow результат синхронного форматирования одной записи.
// Address нужен для последующего разрешения кода; nil - адреса нет или он не разобран.
type FormattedRow struct {
	Output  records.OutputRecord
	Address *FormattedAddress
	Grammar Grammar // Выбранная грамматика, пусто если адрес отсутствует

	AddressMismatch    bool
	BirthplaceMismatch bool
}

// RowFormatter применяет очистители полей к записям
type RowFormatter struct {
	logger  *slog.Logger
	metrics *monitoring.Metrics
}

// NewRowFormatter создает форматтер строк; logger и metrics могут быть nil
func NewRowFormatter(logger *slog.Logger, metrics *monitoring.Metrics) *RowFormatter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RowFormatter{logger: logger, metrics: metrics}
}

// Format форматирует одну запись. Чистая функция от записи, ошибок не бывает.
func (f *RowFormatter) Format(rec records.Record) FormattedRow {
	row := FormattedRow{
		Output: records.OutputRecord{
			Row:            rec.Row,
			Name:           JoinName(rec.FirstName, rec.LastName, rec.MaidenName),
			FirstName:      CleanName(rec.FirstName),
			LastName:       CleanName(rec.LastName),
			MaidenName:     CleanName(rec.MaidenName),
			FormattedDate:  FormatDate(rec.BirthDate),
			AdditionalInfo: CleanFreeText(rec.FreeText),
		},
	}

	addr, grammar := FormatAddress(rec.CurrentAddress)
	row.Address = addr
	row.Grammar = grammar
	row.Output.FormattedAddress = addr.Value()
	switch {
	case rec.CurrentAddress.IsMissing():
		f.metrics.ObserveAddress("none", monitoring.OutcomeMissing)
	case addr == nil:
		row.AddressMismatch = true
		f.metrics.ObserveAddress(string(grammar), monitoring.OutcomeMismatch)
		f.logger.Debug("Address does not match selected grammar",
			"row", rec.Row,
			"grammar", grammar,
			"address", rec.CurrentAddress.String())
	default:
		f.metrics.ObserveAddress(string(grammar), monitoring.OutcomeFormatted)
	}

	row.Output.FormattedBirthCountry = FormatBirthplace(rec.OriginCountryCity)
	switch {
	case rec.OriginCountryCity.IsMissing():
		f.metrics.ObserveBirthplace(monitoring.OutcomeMissing)
	case row.Output.FormattedBirthCountry.IsMissing():
		row.BirthplaceMismatch = true
		f.metrics.ObserveBirthplace(monitoring.OutcomeMismatch)
		f.logger.Debug("Birth place does not match COUNTRY / CITY",
			"row", rec.Row,
			"value", rec.OriginCountryCity.String())
	default:
		f.metrics.ObserveBirthplace(monitoring.OutcomeFormatted)
	}

	return row
}

// FormatAll форматирует все записи по порядку
func (f *RowFormatter) FormatAll(recs []records.Record) []FormattedRow {
	rows := make([]FormattedRow, len(recs))
	for i, rec := range recs {
		rows[i] = f.Format(rec)
	}
	return rows
}

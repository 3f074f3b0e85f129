package records

import (
	"encoding/json"
	"strings"
)

// Value опциональное строковое значение ячейки.
// Отсутствующее значение (пустая ячейка) отличается от присутствующей пустой строки.
type Value struct {
	text    string
	present bool
}

// Present создает присутствующее значение
func Present(s string) Value {
	return Value{text: s, present: true}
}

// Missing возвращает маркер отсутствующего значения
func Missing() Value {
	return Value{}
}

// FromCell преобразует сырую ячейку таблицы: пустая или состоящая из пробелов ячейка считается отсутствующей
func FromCell(raw string) Value {
	if strings.TrimSpace(raw) == "" {
		return Missing()
	}
	return Present(raw)
}

// IsMissing проверяет, отсутствует ли значение
func (v Value) IsMissing() bool {
	return !v.present
}

// Get возвращает строку и признак присутствия
func (v Value) Get() (string, bool) {
	return v.text, v.present
}

// String возвращает строку; для отсутствующего значения - пустую строку
func (v Value) String() string {
	return v.text
}

// Map применяет fn к присутствующему значению, отсутствующее возвращается как есть
func (v Value) Map(fn func(string) string) Value {
	if !v.present {
		return v
	}
	return Present(fn(v.text))
}

// MarshalJSON сериализует отсутствующее значение как null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.present {
		return []byte("null"), nil
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON разбирает null как отсутствующее значение
func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Missing()
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*v = Present(s)
	return nil
}

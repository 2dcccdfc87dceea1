package dialog

import "strings"

// Aliases сопоставляет произносимые названия каноническим.
// Ключи хранятся в верхнем регистре, сравнение нечувствительно к регистру.
type Aliases map[string]string

// DefaultAliases - таблица псевдонимов, с которой собирается навык.
var DefaultAliases = NewAliases(map[string]string{
	"LYEBER": "LIBOR",
})

func NewAliases(pairs map[string]string) Aliases {
	a := make(Aliases, len(pairs))
	for spoken, canonical := range pairs {
		a[strings.ToUpper(spoken)] = canonical
	}
	return a
}

// Resolve возвращает каноническое название или исходную строку, если псевдонима нет.
func (a Aliases) Resolve(spoken string) string {
	if canonical, ok := a[strings.ToUpper(strings.TrimSpace(spoken))]; ok {
		return canonical
	}
	return spoken
}

// matchItems ищет элементы, содержащие query без учета регистра. Порядок сохраняется.
func matchItems(items []string, query string) []string {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	var matches []string
	for _, item := range items {
		if strings.Contains(strings.ToLower(item), needle) {
			matches = append(matches, item)
		}
	}
	return matches
}

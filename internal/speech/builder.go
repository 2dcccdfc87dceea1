package speech

import (
	"fmt"
	"strings"

	"newswizard/internal/domain"
)

const (
	breakMarkup = `<break time="1s"/>`

	DefaultNotFoundFormat = "Sorry, I could not find any rate by the name of %s."
	DefaultLookupPrompt   = "If you would like me to read any other rate, you can say Swap, Prime, LYEBER or Treasury."
)

var markupEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// Profile описывает фразы, которыми оформляется страница одной темы.
type Profile struct {
	Label      string
	Transition string
	MorePrompt string
}

// Rendered - результат сборки ответа для речевого канала и карточки.
type Rendered struct {
	Speech             string
	Card               string
	ContinuationPrompt string
}

// Builder собирает речевой ответ и текст карточки из страницы элементов.
type Builder struct {
	notFoundFormat string
	lookupPrompt   string
}

// NewBuilder создает построитель ответов; пустые шаблоны заменяются стандартными.
func NewBuilder(notFoundFormat, lookupPrompt string) *Builder {
	if notFoundFormat == "" {
		notFoundFormat = DefaultNotFoundFormat
	}
	if lookupPrompt == "" {
		lookupPrompt = DefaultLookupPrompt
	}
	return &Builder{notFoundFormat: notFoundFormat, lookupPrompt: lookupPrompt}
}

// BuildPage оформляет страницу: каждый элемент в отдельном абзаце,
// переходная фраза только между элементами, вопрос о продолжении - только если hasMore.
func (b *Builder) BuildPage(items []domain.SpeechItem, hasMore bool, p Profile) Rendered {
	var speech strings.Builder
	cardLines := make([]string, 0, 2*len(items))
	for i, item := range items {
		speech.WriteString("<p>")
		speech.WriteString(Escape(item))
		speech.WriteString("</p>")
		cardLines = append(cardLines, item)
		if i < len(items)-1 && p.Transition != "" {
			speech.WriteString("<p>")
			speech.WriteString(Escape(p.Transition))
			speech.WriteString("</p>")
			cardLines = append(cardLines, p.Transition)
		}
	}
	var prompt string
	if hasMore {
		prompt = p.MorePrompt
		speech.WriteString(" ")
		speech.WriteString(Escape(prompt))
		cardLines = append(cardLines, prompt)
	}
	return Rendered{
		Speech:             Speak(speech.String()),
		Card:               strings.Join(cardLines, "\n"),
		ContinuationPrompt: prompt,
	}
}

// BuildLookupResult объединяет найденные элементы паузами. Если совпадений нет,
// подставляется сообщение с искомым названием. Заключительная подсказка добавляется всегда.
func (b *Builder) BuildLookupResult(matches []domain.SpeechItem, queried string) Rendered {
	var speechBody, cardBody string
	if len(matches) == 0 {
		notFound := fmt.Sprintf(b.notFoundFormat, queried)
		speechBody = Escape(notFound)
		cardBody = notFound
	} else {
		escaped := make([]string, len(matches))
		for i, m := range matches {
			escaped[i] = Escape(m)
		}
		speechBody = strings.Join(escaped, breakMarkup)
		cardBody = strings.Join(matches, "\n")
	}
	return Rendered{
		Speech: Speak(speechBody + breakMarkup + Escape(b.lookupPrompt)),
		Card:   cardBody + "\n" + b.lookupPrompt,
	}
}

// Speak оборачивает текст в корневой элемент разметки речи.
func Speak(body string) string {
	return "<speak>" + body + "</speak>"
}

// Escape экранирует символы, значимые для разметки речи.
func Escape(text string) string {
	return markupEscaper.Replace(text)
}

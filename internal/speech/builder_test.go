package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var newsProfile = Profile{
	Label:      "news",
	Transition: "Next news",
	MorePrompt: "Do you want to hear more?",
}

func TestBuilder_BuildPage_SingleItemWithMore(t *testing.T) {
	b := NewBuilder("", "")

	r := b.BuildPage([]string{"Item one"}, true, newsProfile)

	assert.Equal(t, "<speak><p>Item one</p> Do you want to hear more?</speak>", r.Speech)
	assert.Equal(t, "Item one\nDo you want to hear more?", r.Card)
	assert.Equal(t, "Do you want to hear more?", r.ContinuationPrompt)
}

func TestBuilder_BuildPage_TransitionOnlyBetweenItems(t *testing.T) {
	b := NewBuilder("", "")

	r := b.BuildPage([]string{"A", "B", "C"}, false, newsProfile)

	assert.Equal(t, "<speak><p>A</p><p>Next news</p><p>B</p><p>Next news</p><p>C</p></speak>", r.Speech)
	assert.Equal(t, "A\nNext news\nB\nNext news\nC", r.Card)
	assert.Empty(t, r.ContinuationPrompt)
	assert.NotContains(t, r.Card, "<p>")
}

func TestBuilder_BuildPage_EscapesMarkupInSpeechOnly(t *testing.T) {
	b := NewBuilder("", "")

	r := b.BuildPage([]string{"Smith & Sons <LLC>"}, false, newsProfile)

	assert.Equal(t, "<speak><p>Smith &amp; Sons &lt;LLC&gt;</p></speak>", r.Speech)
	assert.Equal(t, "Smith & Sons <LLC>", r.Card)
}

func TestBuilder_BuildLookupResult_Matches(t *testing.T) {
	b := NewBuilder("", "Say Prime or Swap.")

	r := b.BuildLookupResult([]string{"As of 6 2 the Prime rate is 4.5", "As of 6 2 the Prime Swap rate is 3"}, "prime")

	assert.Equal(t,
		`<speak>As of 6 2 the Prime rate is 4.5<break time="1s"/>As of 6 2 the Prime Swap rate is 3<break time="1s"/>Say Prime or Swap.</speak>`,
		r.Speech)
	assert.Equal(t, "As of 6 2 the Prime rate is 4.5\nAs of 6 2 the Prime Swap rate is 3\nSay Prime or Swap.", r.Card)
}

func TestBuilder_BuildLookupResult_NotFound(t *testing.T) {
	b := NewBuilder("", "")

	r := b.BuildLookupResult(nil, "Euribor")

	assert.Contains(t, r.Speech, "Sorry, I could not find any rate by the name of Euribor.")
	assert.Contains(t, r.Card, "Euribor")
	assert.Contains(t, r.Speech, DefaultLookupPrompt)
	assert.NotContains(t, r.Speech, "As of")
}

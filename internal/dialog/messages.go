package dialog

import (
	"newswizard/internal/domain"
	"newswizard/internal/speech"
)

const guidance = "If you would like me to read your news say Read News or get news. " +
	"If you would like me to read the latest real estate rates say Read Rates or get rates. " +
	"You could also say Prime, swap, LYEBER or Treasury."

// Messages - общие фразы навыка, не привязанные к теме.
type Messages struct {
	Welcome  string
	Help     string
	Goodbye  string
	Sorry    string
	Reprompt string
	About    string
}

// DefaultMessages возвращает фразы по умолчанию.
func DefaultMessages() Messages {
	return Messages{
		Welcome:  "Welcome to meridian. " + guidance,
		Help:     guidance,
		Goodbye:  "Good bye!",
		Sorry:    "Sorry, I did not get that.",
		Reprompt: guidance,
		About: "I was launched on May 5th 2018 by Malhotra Consulting and Cosmos Communications. " +
			"If you would like me to read your news say Read News or get news. You could also say Prime, swap, LYEBER or Treasury.",
	}
}

// TopicMessages описывает оформление и служебные фразы одной темы.
type TopicMessages struct {
	Profile     speech.Profile
	CardTitle   string
	Reprompt    string
	Progressive string
	FetchFailed string
	Exhausted   string
	NoSession   string
}

// DefaultTopics возвращает оформление тем для навыка с именем skillName.
func DefaultTopics(skillName string) map[domain.Topic]TopicMessages {
	if skillName == "" {
		skillName = "meridian"
	}
	return map[domain.Topic]TopicMessages{
		domain.TopicNews: {
			Profile: speech.Profile{
				Label:      "news",
				Transition: "Next news",
				MorePrompt: "Do you want to hear more?",
			},
			CardTitle:   skillName + " news",
			Reprompt:    "Do you want to hear more?",
			Progressive: "Getting you the news",
			FetchFailed: "There is a problem connecting to the News Feed at this time. Please try again later.",
			Exhausted:   "There are no more news articles for today.",
			NoSession:   guidance,
		},
		domain.TopicRates: {
			Profile: speech.Profile{
				Label:      "rates",
				Transition: "Next rate",
				MorePrompt: "Say Next Rate if you would like to hear more rates.",
			},
			CardTitle:   skillName + " rates",
			Reprompt:    "Say Next Rate if you would like to hear more rates.",
			Progressive: "Rates may be delayed by 20 minutes",
			FetchFailed: "There is a problem connecting to the Rates Feed at this time. Please try again later.",
			Exhausted:   "There are no more rates to share.",
			NoSession: "I can get the latest real estate rates that you care for. " +
				"If you would like me to read the latest real estate rates say Read Rates or get rates. " +
				"You could also say Prime, swap, LYEBER or Treasury.",
		},
	}
}

package dialog

import "newswizard/internal/domain"

// Имена интентов, которые присылает голосовая платформа.
const (
	IntentGetNews   = "GetNewsEventIntent"
	IntentNextNews  = "GetNextNewsEventIntent"
	IntentGetRates  = "GetRatesEventIntent"
	IntentNextRates = "GetNextRatesEventIntent"
	IntentRateFor   = "GetRateForIntent"
	IntentBirth     = "Birth"
	IntentHelp      = "AMAZON.HelpIntent"
	IntentStop      = "AMAZON.StopIntent"
	IntentCancel    = "AMAZON.CancelIntent"

	// SlotName - слот с названием ставки в интенте поиска.
	SlotName = "intentname"
)

type action int

const (
	actionFirstPage action = iota
	actionNextPage
	actionLookup
	actionHelp
	actionStop
	actionAbout
)

type route struct {
	action action
	topic  domain.Topic
}

// routes - таблица диспетчеризации интентов.
var routes = map[string]route{
	IntentGetNews:   {action: actionFirstPage, topic: domain.TopicNews},
	IntentNextNews:  {action: actionNextPage, topic: domain.TopicNews},
	IntentGetRates:  {action: actionFirstPage, topic: domain.TopicRates},
	IntentNextRates: {action: actionNextPage, topic: domain.TopicRates},
	IntentRateFor:   {action: actionLookup, topic: domain.TopicRates},
	IntentBirth:     {action: actionAbout},
	IntentHelp:      {action: actionHelp},
	IntentStop:      {action: actionStop},
	IntentCancel:    {action: actionStop},
}

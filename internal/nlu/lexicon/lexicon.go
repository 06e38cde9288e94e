// Package lexicon holds the curated phrase sets and the coarse intent
// classifier built on top of them.
package lexicon

import (
	"vendor-portal-chatbot/internal/nlu/normalizer"
)

// Intent is the coarse category of conversational purpose.
type Intent string

const (
	IntentGreeting        Intent = "greeting"
	IntentFarewell        Intent = "farewell"
	IntentConfirmation    Intent = "confirmation"
	IntentApology         Intent = "apology"
	IntentAcknowledgement Intent = "acknowledgement"
	IntentTransfer        Intent = "transfer"
	IntentUnknown         Intent = "unknown"
)

var baseGreetings = []string{
	"hi", "hello", "hey", "hola", "howdy",
	"hlw", "hlo", "helloo", "hii", "heyy",
	"good morning", "good afternoon", "good evening",
}

var baseFarewells = []string{
	"bye", "goodbye", "see you", "thanks", "thank you", "thankyou",
	"thanx", "thx", "tx", "thanku", "appreciate",
	"cheers", "ciao", "seeya", "later", "peaceout", "welcome",
}

var baseConfirmations = []string{
	"ok", "okay", "okk", "alright", "sure", "fine", "nice", "okie", "great", "great work", "wonderful", "go ahead",
	"got it", "roger", "understood", "copy", "great job",
}

var baseApologies = []string{
	"sorry", "sry", "apologize", "apologies", "apologise", "mybad",
}

var baseAcknowledgements = []string{
	"no problem", "noproblem", "np", "noworries", "noworry",
	"itsok", "itsokay", "donotworry", "dontworry",
}

var baseTransfers = []string{
	"agent", "team member", "human", "representative", "support",
	"connect to buyer", "call agent", "talk to someone", "speak with agent",
	"contact support", "live agent", "real person", "transfer me", "connect team",
	"speak to human", "customer service", "phone support", "voice call",
	"direct contact", "live call", "phone agent", "connect on call",
	"talk on phone", "speak directly", "human assistance",
}

// Set is an immutable normalized phrase set.
type Set map[string]struct{}

// Has reports whole-string membership of the already-normalized phrase.
func (s Set) Has(normalized string) bool {
	_, ok := s[normalized]
	return ok
}

func newSet(phrases []string) Set {
	s := make(Set, len(phrases))
	for _, p := range phrases {
		s[normalizer.Normalize(p)] = struct{}{}
	}
	return s
}

// Lexicons bundles the six intent phrase sets, normalized once at startup.
type Lexicons struct {
	Greetings        Set
	Farewells        Set
	Confirmations    Set
	Apologies        Set
	Acknowledgements Set
	Transfers        Set
}

func New() *Lexicons {
	return &Lexicons{
		Greetings:        newSet(baseGreetings),
		Farewells:        newSet(baseFarewells),
		Confirmations:    newSet(baseConfirmations),
		Apologies:        newSet(baseApologies),
		Acknowledgements: newSet(baseAcknowledgements),
		Transfers:        newSet(baseTransfers),
	}
}

// Classify maps an utterance to exactly one intent. Membership is tested in
// fixed priority order; only the whole normalized string counts. Token-level
// matching belongs to the transfer detector, not here.
func (l *Lexicons) Classify(utterance string) Intent {
	normalized := normalizer.Normalize(utterance)

	switch {
	case l.Greetings.Has(normalized):
		return IntentGreeting
	case l.Farewells.Has(normalized):
		return IntentFarewell
	case l.Confirmations.Has(normalized):
		return IntentConfirmation
	case l.Apologies.Has(normalized):
		return IntentApology
	case l.Acknowledgements.Has(normalized):
		return IntentAcknowledgement
	case l.Transfers.Has(normalized):
		return IntentTransfer
	}
	return IntentUnknown
}

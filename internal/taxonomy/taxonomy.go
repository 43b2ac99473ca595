// Package taxonomy holds the category scheme used to label conversations.
// The scheme is fixed at build time; nothing here mutates at runtime.
package taxonomy

// Category names. The set is closed: every conversation is labeled with
// exactly one of these.
const (
	Revenue     = "Revenue Opportunity"
	Advisor     = "Forwarded to Advisor"
	RepairShop  = "Repair Status & Shop Updates"
	Logistics   = "Logistics, Billing & Other"
	GeneralInfo = "General Info & Customer Service"
	Hangups     = "Hangups"
	CatchAll    = "System / Other"
)

// Matching constants.
const (
	// SimilarityThreshold is the minimum keyword score for a category
	// assignment; anything below resolves to CatchAll.
	SimilarityThreshold = 0.2

	// ContainmentScore is the score for substring containment in either
	// direction.
	ContainmentScore = 0.8

	// NameMatchBar is the higher bar a category's own display name must
	// clear to count as a match. Category names are generic, so keyword
	// matches get the lower threshold and names this one.
	NameMatchBar = 0.3

	// HangupMaxDurationSecs / HangupMaxMessages gate the pre-check: calls
	// shorter than both limits are Hangups regardless of title.
	HangupMaxDurationSecs = 15
	HangupMaxMessages     = 3
)

// Category pairs a name with the lowercase keywords and phrases that map a
// summary title onto it.
type Category struct {
	Name     string
	Keywords []string
}

// Domain categories in evaluation order. Revenue is first: a title matching
// both a revenue keyword and any later category's keyword must land on
// Revenue Opportunity.
var domain = []Category{
	{
		Name: Revenue,
		Keywords: []string{
			"appointment", "appointments", "schedule", "scheduled", "scheduling",
			"book", "booking", "booked", "reserve", "reservation", "appt",
			"make an appointment", "schedule an appointment", "book an appointment",
			"schedule service", "book service", "schedule maintenance",
			"oil change", "tire rotation", "tires", "brake service", "brakes",
			"alignment", "inspection", "tune up", "tune-up",
			"price", "prices", "pricing", "cost", "costs", "quote", "quotes",
			"estimate", "estimates", "how much", "fee", "charge",
			"service request", "repair request", "new service", "interested in",
			"availability", "next available", "time slot",
		},
	},
	{
		Name: Advisor,
		Keywords: []string{
			"transfer", "transferred", "transfer to", "transfer me",
			"human", "human agent", "agent", "representative", "advisor",
			"speak to", "talk to", "speak with", "talk with", "speak to someone",
			"manager", "supervisor", "connect me", "connect to",
			"callback", "call back", "call me back", "have someone call",
			"escalate", "escalation", "forwarded", "forward to",
		},
	},
	{
		Name: RepairShop,
		Keywords: []string{
			"status", "status update", "check status", "check on", "checking on",
			"ready", "is it ready", "ready for pickup", "when will it be ready",
			"vehicle ready", "car ready", "update on", "progress",
			"in progress", "how long", "how much longer", "almost done",
			"finished", "done", "completed", "diagnosis", "diagnostic",
			"repair status", "work status", "shop update", "still working",
			"check engine", "engine light", "warning light",
		},
	},
	{
		Name: Logistics,
		Keywords: []string{
			"pickup", "pick up", "pick-up", "drop off", "drop-off", "dropping off",
			"delivery", "deliver", "tow", "towing", "tow truck", "transport",
			"shuttle", "loaner", "rental",
			"billing", "bill", "invoice", "payment", "pay", "paid", "balance",
			"receipt", "refund", "credit card", "financing",
			"hours", "location", "address", "directions", "where are you",
		},
	},
	{
		Name: GeneralInfo,
		Keywords: []string{
			"question", "questions", "inquiry", "information", "info",
			"general", "general question", "general inquiry",
			"help", "assistance", "need help", "wondering",
			"message", "take a message", "leave a message", "message for",
			"voicemail", "complaint", "issue", "problem", "concern",
			"feedback", "follow up", "following up", "customer service",
			"greeting", "introduction", "virtual assistant",
		},
	},
}

// Fallback categories, scanned only when no domain category already matched:
// their keywords describe the call outcome, not the caller's intent, so an
// explicit "wrong number" title wins only when nothing better did.
var fallback = []Category{
	{
		Name: Hangups,
		Keywords: []string{
			"hangup", "hang up", "hung up", "hanging up", "disconnected",
			"dropped", "dropped call", "cut off", "abandoned", "aborted",
			"silent call", "no response", "no answer", "incomplete",
			"incomplete call", "caller hung up",
		},
	},
	{
		Name: CatchAll,
		Keywords: []string{
			"wrong number", "test", "testing", "test call", "spam",
			"spam call", "robocall", "automated call", "scam",
			"system error", "error", "inaudible", "unclear", "miscellaneous",
		},
	},
}

// Domain returns the intent categories in evaluation order, priority first.
func Domain() []Category {
	return domain
}

// Fallback returns the outcome categories scanned after the domain pass.
func Fallback() []Category {
	return fallback
}

// Names returns every category name in evaluation order. The slice is a
// fresh copy on each call.
func Names() []string {
	names := make([]string, 0, len(domain)+len(fallback))
	for _, c := range domain {
		names = append(names, c.Name)
	}
	for _, c := range fallback {
		names = append(names, c.Name)
	}
	return names
}

// Valid reports whether name is part of the taxonomy.
func Valid(name string) bool {
	for _, c := range domain {
		if c.Name == name {
			return true
		}
	}
	for _, c := range fallback {
		if c.Name == name {
			return true
		}
	}
	return false
}

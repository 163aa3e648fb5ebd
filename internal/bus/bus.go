// Package bus defines the transport-agnostic message-bus contract the
// dispatcher talks to. The host simulator's JS-ish peer and a Wails
// frontend look identical from this side: both subscribe to named topics
// and receive JSON-shaped payloads, so the interface is tiny on purpose.
package bus

// HostBus is the one abstraction the core library needs from whatever
// process is embedding it. Production code backs it with Wails'
// runtime.EventsOn/EventsEmit (see internal/host); tests back it with an
// in-memory fake.
type HostBus interface {
	// Subscribe registers fn to be called with the raw payload every time a
	// message arrives on topic. Subscriptions accumulate; there is no
	// Unsubscribe for a single handler, only UnsubscribeAll.
	Subscribe(topic string, fn func(payload []byte))
	// Publish sends payload to every subscriber of topic.
	Publish(topic string, payload []byte)
	// UnsubscribeAll drops every registered subscription. Called once, from
	// PreKill.
	UnsubscribeAll()
}

// Well-known topic names, matching the wire contract in SPEC_FULL.md §6.
const (
	TopicCallFunction   = "NAVIGRAPH_CallFunction"
	TopicFunctionResult = "NAVIGRAPH_FunctionResult"
	TopicEvent          = "NAVIGRAPH_Event"
)

// Package chat is the realtime synchronization core: friendship state
// machine, inbox watching, one open conversation at a time, and typing
// signals, all kept consistent against a push-notifying store.
package chat

const chatIDSeparator = "_"

// ChatID derives the canonical conversation identifier for two
// participants. Symmetric: both sides compute the same id independently.
func ChatID(a string, b string) string {
	if a < b {
		return a + chatIDSeparator + b
	}
	return b + chatIDSeparator + a
}

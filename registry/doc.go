// Package registry holds the two in-process registries: ChatbotTracker and
// ConversationStore.
//
// Each registry owns its collection privately and is reachable only through
// its methods, which turn every call into a command on the registry's actor
// mailbox. Commands to one registry are applied one at a time in submission
// order; there is no ordering between the two registries.
//
// Submissions come in two flavours. Register, SendMessage and Store are
// fire-and-forget: they return as soon as the command is queued and only
// report submission failures. The *Sync variants and the read methods wait
// for the command to be applied and return its outcome.
package registry

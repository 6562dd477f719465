// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - ModelService: Language model operations (classify, rewrite, generate)
//   - ChatStore: Chat and message persistence
//   - EditStore: Edited-file record persistence
//   - ConfigStore: Application configuration
//
// # Optional Interfaces
//
// These can be absent - the application degrades gracefully:
//
//   - SearchChannel: One search backend. Chats work without any, but every
//     turn becomes chit-chat or grounded generation.
//   - FileStore: File listing/content per channel. Without the cloud file
//     store, code suggestions are disabled.
//   - PromptStore: Custom prompt templates. Without it, compiled-in
//     defaults are used.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or channel package
package driven

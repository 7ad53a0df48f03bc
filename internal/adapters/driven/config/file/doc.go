// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - ConfigStore: TOML-based configuration storage with change watching
//   - SchemaStore: form definitions embedded in the binary, overridable by
//     TOML files in a user directory
package file

// Package commands defines the sigil CLI and wires dependencies for subcommands.
//
// Commands
//
//   - register     Create an identity for a name and email and log in as it
//   - login        Switch the current session to a registered name
//   - whoami       Print the current session
//   - logout       Clear the current session
//   - fingerprint  Print the current identity and its short fingerprint
//   - sign         Sign a message as the current identity
//   - verify       Check a signature against a public key
//   - users        List registered names
//
// # Implementation
//
// The root command resolves configuration (defaults, config.yaml in the home
// directory, SIGIL_* environment variables, then flags) and builds an
// app.Wire before any subcommand runs. Each subcommand runs its work through
// Wire.Do, which applies the operation timeout and retries transient storage
// failures.
package commands

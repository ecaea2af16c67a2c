// Package app wires application dependencies for the CLI.
//
// It loads Config from defaults, an optional YAML file and the environment,
// then builds the credential store, identity service and session manager,
// exposing them via the Wire struct for commands to use.
package app

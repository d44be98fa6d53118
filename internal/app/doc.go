// Package app contains the application logic behind every command: it wires
// the run file loader, the model compiler, the sample readers and the
// forecast engine together, decoupled from any specific entrypoint.
package app

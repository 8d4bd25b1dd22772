// Package bootstrap wires configuration, logging and shutdown hooks around
// a command's task.
package bootstrap

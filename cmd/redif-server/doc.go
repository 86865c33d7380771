// Command redif-server runs the example key-value server on the redif
// reactor.
//
// Configuration is read, in increasing priority, from built-in defaults,
// the YAML file given by --config, REDIF_* environment variables and
// command-line flags. Changes to the file's log.level are applied without
// a restart.
package main

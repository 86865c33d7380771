// Package repl provides the interactive mode of redif-cli.
//
// Lines are read with chzyer/readline (history, prefix completion), split
// into arguments by Split and handed to an Executor. exit and quit end the
// session, as does EOF.
package repl

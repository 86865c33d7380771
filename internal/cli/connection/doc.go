// Package connection provides the blocking RESP client used by redif-cli.
//
// A Client holds one TCP connection, dialed lazily and redialed after an
// I/O failure. Each Do call writes one command and reads exactly one reply.
package connection

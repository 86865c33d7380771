// Command redif-cli talks RESP to a redif server.
//
//	redif-cli -s 127.0.0.1:4400 SET greeting hello
//	redif-cli -o json GET greeting
//	redif-cli                      # interactive mode
package main

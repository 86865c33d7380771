// Package confloader loads layered configuration with koanf and watches
// configuration files with fsnotify.
//
// Priority (highest to lowest):
//
//  1. Command-line flags (LoadMap)
//  2. Environment variables (REDIF_ prefix)
//  3. Configuration file (YAML)
//  4. Values already present in the target struct
//
// Environment names are matched against the keys of the target struct, so
// REDIF_SERVER_RESP_READ_BUFFER_SIZE sets server.resp.read_buffer_size.
package confloader

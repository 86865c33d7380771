// Package output renders RESP replies for redif-cli.
//
//   - raw: redis-cli style text, e.g. (integer) 1, "foo", numbered arrays
//   - json: indented JSON document
//   - yaml: YAML document
//
// JSON and YAML share one document model built by Document.
package output

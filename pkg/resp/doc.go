// Package resp implements the value model and codec of the Redis
// serialization protocol (RESP2) spoken by redif servers.
//
// Decoding is pure and I/O free: Decode parses exactly one value out of a
// byte slice and reports either the complete value, "insufficient data"
// (next == 0, no error), or a protocol error. Encoding is the exact inverse.
//
// Wire forms:
//
//	+<text>\r\n              Status
//	-<text>\r\n              Error
//	:<signed decimal>\r\n    Int
//	$<len>\r\n<bytes>\r\n    Data ($-1\r\n is Nil)
//	*<count>\r\n<values>     Bulk (*-1\r\n is NullArray)
package resp

// Package formdata decodes multipart/form-data (RFC 7578) bodies in
// streaming mode. The body arrives as an opaque sequence of byte chunks
// with no length-prefixing, so parts are delimited by scanning for the
// boundary incrementally, with bounded memory, in a single forward pass.
//
// FormData yields one Field per part; a Field yields its body in chunks.
// Both share a single State scanner, so a part's body must be drained
// (or abandoned — FormData.Next skips leftovers itself) before the next
// part can be discovered.
package formdata

package formdata

import (
	"bufio"
	"bytes"
	"mime"
	"net/textproto"
)

// maxHeaders bounds the number of header entries in one part.
const maxHeaders = 16

// parsePartHeaders parses a header block, including its terminating
// blank line, into a MIME header map.
func parsePartHeaders(block []byte) (textproto.MIMEHeader, error) {
	r := textproto.NewReader(bufio.NewReader(bytes.NewReader(block)))

	headers, err := r.ReadMIMEHeader()
	if err != nil {
		return nil, ErrInvalidHeader
	}

	n := 0
	for _, vs := range headers {
		n += len(vs)
	}
	if n > maxHeaders {
		return nil, ErrInvalidHeader
	}

	return headers, nil
}

// parseContentDisposition extracts the field name and optional filename
// from a Content-Disposition header value. The value must carry the
// form-data disposition and a non-empty name parameter.
func parseContentDisposition(v string) (name, filename string, hasFilename bool, err error) {
	if v == "" {
		return "", "", false, ErrInvalidContentDisposition
	}

	d, params, err := mime.ParseMediaType(v)
	if err != nil || d != "form-data" {
		return "", "", false, ErrInvalidContentDisposition
	}

	name, ok := params["name"]
	if !ok || name == "" {
		return "", "", false, ErrInvalidContentDisposition
	}

	filename, hasFilename = params["filename"]
	return name, filename, hasFilename, nil
}

// parseContentType returns the canonical media type of a Content-Type
// header value, or "" when the value is absent or unparseable.
func parseContentType(v string) string {
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return ""
	}
	return mt
}

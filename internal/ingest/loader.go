package ingest

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/antchfx/xmlquery"
	"golang.org/x/text/encoding/charmap"
)

// Document is a parsed tree document plus its file identity. It is the only
// input shape the engine accepts; transport knowledge stops here.
type Document struct {
	Root     *xmlquery.Node
	FileName string
}

// Parse builds a Document from raw XML bytes. A document that declares its
// own encoding is decoded from the declaration; when the declaration is
// absent, the encoding hint from the transport (if any) is applied.
func Parse(data []byte, fileName, encoding string) (*Document, error) {
	var reader io.Reader = bytes.NewReader(data)
	if strings.EqualFold(encoding, "windows-1251") && !hasEncodingDecl(data) {
		reader = charmap.Windows1251.NewDecoder().Reader(reader)
	}

	root, err := xmlquery.Parse(reader)
	if err != nil {
		return nil, fmt.Errorf("parse document %s: %w", fileName, err)
	}

	return &Document{Root: root, FileName: fileName}, nil
}

// hasEncodingDecl reports whether the XML declaration names an encoding
func hasEncodingDecl(data []byte) bool {
	head := data
	if len(head) > 128 {
		head = head[:128]
	}
	return bytes.Contains(head, []byte("encoding="))
}

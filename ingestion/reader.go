package ingestion

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode"
)

// documentReader splits its input into raw JSON documents. It accepts a single
// top-level array or a sequence of whitespace separated documents.
type documentReader struct {
	dec     *json.Decoder
	inArray bool
	started bool
}

func newDocumentReader(r io.Reader) *documentReader {
	br := bufio.NewReader(r)
	inArray := false
	for {
		ch, _, err := br.ReadRune()
		if err != nil {
			break
		}
		if unicode.IsSpace(ch) {
			continue
		}
		inArray = ch == '['
		_ = br.UnreadRune()
		break
	}
	return &documentReader{dec: json.NewDecoder(br), inArray: inArray}
}

// next returns the next raw document, or io.EOF when the input is exhausted.
// Running out of input inside an array is an error, not the end of input.
func (dr *documentReader) next() (json.RawMessage, error) {
	if dr.inArray {
		if !dr.started {
			dr.started = true
			if _, err := dr.dec.Token(); err != nil {
				return nil, invalidDocument(err)
			}
		}
		if !dr.dec.More() {
			if _, err := dr.dec.Token(); err != nil {
				return nil, invalidDocument(err)
			}
			return nil, io.EOF
		}
	}

	var raw json.RawMessage
	if err := dr.dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) && !dr.inArray {
			return nil, io.EOF
		}
		return nil, invalidDocument(err)
	}
	return raw, nil
}

func invalidDocument(err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return fmt.Errorf("%w: %w", ErrInvalidDocument, err)
}

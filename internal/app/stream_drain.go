package app

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Drainer reads a child process output channel to exhaustion.
// A nil Encoding means the stream is already UTF-8. A Drainer may be used
// for several streams at once; each Drain call gets its own decoder.
type Drainer struct {
	Encoding encoding.Encoding
}

// NewDrainer returns a Drainer that transcodes from the named character set
// (any WHATWG label, e.g. "windows-1252", "gbk", "shift_jis") to UTF-8.
// An empty name or "utf-8" yields a pass-through Drainer.
func NewDrainer(charset string) (*Drainer, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	if name == "" || name == "utf-8" || name == "utf8" {
		return &Drainer{}, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown output encoding %q: %w", charset, err)
	}
	return &Drainer{Encoding: enc}, nil
}

// Drain reads r line by line until EOF and returns every line followed by
// a single "\n". A line ends at "\n", "\r\n" or a lone "\r". There is no
// size limit.
func (d *Drainer) Drain(r io.Reader) (string, error) {
	if d != nil && d.Encoding != nil {
		r = transform.NewReader(r, d.Encoding.NewDecoder())
	}

	var sb strings.Builder
	reader := bufio.NewReaderSize(r, IOBufferSize)
	for {
		line, err := reader.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(line, "\n")
			line = strings.TrimSuffix(line, "\r")
			for _, part := range strings.Split(line, "\r") {
				sb.WriteString(part)
				sb.WriteByte('\n')
			}
		}
		if err != nil {
			if err == io.EOF {
				return sb.String(), nil
			}
			return sb.String(), fmt.Errorf("failed to read stream: %w", err)
		}
	}
}

// Drain reads r to exhaustion without any transcoding.
func Drain(r io.Reader) (string, error) {
	return (&Drainer{}).Drain(r)
}

package manifest

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

// Format names a manifest encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCBOR Format = "cbor"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name, case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatCBOR, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("manifest: unsupported format %q", s)
	}
}

// pairs converts the manifest to its structural form: a list of
// [mime, path] lists, shared by every encoding.
func (m Manifest) pairs() [][2]string {
	out := make([][2]string, len(m))
	for i, e := range m {
		out[i] = [2]string{e.MIME, e.Path}
	}
	return out
}

func fromPairs(pairs [][]string) (Manifest, error) {
	m := make(Manifest, 0, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 {
			return nil, fmt.Errorf("manifest: entry %d must have 2 fields, got %d", i, len(p))
		}
		m = append(m, Entry{MIME: p[0], Path: p[1]})
	}
	return m, nil
}

// Encode writes m to w in the given format.
func Encode(w io.Writer, m Manifest, format Format) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		err = enc.Encode(m.pairs())
	case FormatCBOR:
		err = cbor.NewEncoder(w).Encode(m.pairs())
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(m.pairs()); err == nil {
			err = enc.Close()
		}
	default:
		return fmt.Errorf("manifest: unsupported format %q", format)
	}
	if err != nil {
		return fmt.Errorf("manifest: encode %s: %w", format, err)
	}
	return nil
}

// Decode reads a manifest written by Encode.
func Decode(r io.Reader, format Format) (Manifest, error) {
	var pairs [][]string
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&pairs)
	case FormatCBOR:
		err = cbor.NewDecoder(r).Decode(&pairs)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&pairs)
		if err == io.EOF {
			err = nil
		}
	default:
		return nil, fmt.Errorf("manifest: unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: decode %s: %w", format, err)
	}
	return fromPairs(pairs)
}

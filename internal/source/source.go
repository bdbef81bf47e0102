// Package source describes the configured data sources and fetches
// their raw bytes from disk or over HTTP.
package source

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jpetrucciani/epimetheus/internal/decode"
)

// Origin distinguishes local files from remote HTTP endpoints.
type Origin string

const (
	OriginFile Origin = "file"
	OriginHTTP Origin = "http"
)

// Descriptor identifies one configured data source. The set of sources
// is fixed for the process lifetime.
type Descriptor struct {
	// URI is the path or URL as configured; it doubles as the source id
	// for registry ownership.
	URI    string
	Origin Origin
	// Format is the declared or extension-inferred format. It stays
	// FormatUnknown for HTTP sources without a declared format; those
	// are detected from the response Content-Type at fetch time.
	Format decode.Format
}

// New builds a descriptor from a URI, with an optionally declared
// format. A declared format always wins over inference.
func New(uri string, declared decode.Format) Descriptor {
	origin := OriginFile
	if strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		origin = OriginHTTP
	}

	d := Descriptor{URI: uri, Origin: origin, Format: declared}
	if d.Format == decode.FormatUnknown && origin == OriginFile {
		d.Format = FormatFromExtension(uri)
	}
	return d
}

// FormatFromExtension infers a format from a file extension.
func FormatFromExtension(path string) decode.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return decode.FormatJSON
	case ".yaml", ".yml":
		return decode.FormatYAML
	case ".csv":
		return decode.FormatCSV
	default:
		return decode.FormatUnknown
	}
}

// Content types accepted per format.
var (
	jsonTypes = []string{"application/json"}
	yamlTypes = []string{"application/yaml", "application/x-yaml", "text/x-yaml"}
	csvTypes  = []string{"text/csv"}
)

// FormatFromContentType infers a format from an HTTP Content-Type
// header value.
func FormatFromContentType(contentType string) decode.Format {
	ct := strings.ToLower(contentType)
	for _, t := range jsonTypes {
		if strings.Contains(ct, t) {
			return decode.FormatJSON
		}
	}
	for _, t := range yamlTypes {
		if strings.Contains(ct, t) {
			return decode.FormatYAML
		}
	}
	for _, t := range csvTypes {
		if strings.Contains(ct, t) {
			return decode.FormatCSV
		}
	}
	return decode.FormatUnknown
}

// FetchError reports a failure to retrieve a source's bytes. It is
// always recovered locally: the prior registry entries stay visible and
// the next cycle retries.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

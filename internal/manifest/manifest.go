package manifest

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/NamanBalaji/modsync/internal/filesystem"
	"github.com/NamanBalaji/modsync/internal/logger"
	httpPkg "github.com/NamanBalaji/modsync/pkg/http"
)

var (
	ErrUnknownFormat = errors.New("unknown manifest format")
	ErrInvalidEntry  = errors.New("invalid manifest entry")
	ErrEmptyPath     = errors.New("manifest entry has an empty path")
	ErrTooLarge      = errors.New("manifest exceeds the size limit")
)

// MaxManifestSize bounds how much of a remote manifest is read into memory.
// A larger manifest is rejected rather than parsed short.
const MaxManifestSize = 64 << 20

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXML  Format = "xml"
)

// FileSpec is one manifest entry: where to get a file, where it goes below
// the destination and what its content digest must be.
type FileSpec struct {
	URL  string `json:"url" yaml:"url"`
	Path string `json:"path" yaml:"path"`
	Hash string `json:"hash" yaml:"hash"`
}

// RelativePath returns Path stripped of leading separators and cleaned.
func (f FileSpec) RelativePath() string {
	return filesystem.Clean(f.Path)
}

// Validate checks that the entry can be processed.
func (f FileSpec) Validate() error {
	if f.RelativePath() == "" {
		return fmt.Errorf("%w: %q", ErrEmptyPath, f.Path)
	}

	if f.URL == "" {
		return fmt.Errorf("%w: %s has no url", ErrInvalidEntry, f.Path)
	}

	return nil
}

// Paths returns the relative paths of files, in order.
func Paths(files []FileSpec) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		out = append(out, f.Path)
	}

	return out
}

type xmlManifest struct {
	XMLName xml.Name  `xml:"theupdates"`
	Files   []xmlFile `xml:"file"`
}

type xmlFile struct {
	Name string `xml:"name,attr"`
	Hash string `xml:"hash,attr"`
}

// Parse decodes a manifest in the given format. Entries with a relative or
// missing URL are resolved against base; for the XML form every URL is
// derived from the entry name. base may be nil for local manifests with
// absolute URLs.
func Parse(data []byte, format Format, base *url.URL) ([]FileSpec, error) {
	var (
		files []FileSpec
		err   error
	)

	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &files)
	case FormatYAML:
		err = yaml.Unmarshal(data, &files)
	case FormatXML:
		files, err = parseXML(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to decode %s manifest: %w", format, err)
	}

	for i := range files {
		if files[i].URL == "" && base != nil {
			files[i].URL = ResolveURL(base, files[i].Path)
		} else if base != nil {
			files[i].URL = resolveReference(base, files[i].URL)
		}

		if err := files[i].Validate(); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	return files, nil
}

func parseXML(data []byte) ([]FileSpec, error) {
	var m xmlManifest
	if err := xml.Unmarshal(data, &m); err != nil {
		return nil, err
	}

	files := make([]FileSpec, 0, len(m.Files))
	for _, f := range m.Files {
		files = append(files, FileSpec{Path: f.Name, Hash: f.Hash})
	}

	return files, nil
}

// ResolveURL returns the URL of name relative to the directory that holds
// the manifest at base.
func ResolveURL(base *url.URL, name string) string {
	dir := *base
	dir.RawQuery = ""
	dir.Fragment = ""
	dir.Path = path.Dir(base.Path)
	dir.RawPath = ""

	if dir.Path == "." {
		dir.Path = "/"
	}

	segments := strings.Split(strings.TrimLeft(strings.ReplaceAll(name, `\`, "/"), "/"), "/")

	return dir.JoinPath(segments...).String()
}

func resolveReference(base *url.URL, raw string) string {
	ref, err := url.Parse(raw)
	if err != nil || ref.IsAbs() {
		return raw
	}

	return base.ResolveReference(ref).String()
}

// DetectFormat guesses the manifest format from a file name or URL path,
// falling back to sniffing the content.
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".xml":
		return FormatXML
	}

	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.HasPrefix(trimmed, []byte("<")):
		return FormatXML
	case bytes.HasPrefix(trimmed, []byte("[")), bytes.HasPrefix(trimmed, []byte("{")):
		return FormatJSON
	default:
		return FormatYAML
	}
}

// LoadFile reads a manifest from disk.
func LoadFile(filePath string) ([]FileSpec, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	return Parse(data, DetectFormat(filePath, data), nil)
}

// Load fetches the manifest at rawURL and resolves its entries against it.
// Local paths and file:// URLs are read from disk.
func Load(ctx context.Context, client *httpPkg.Client, rawURL string) ([]FileSpec, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		return LoadFile(rawURL)
	}

	if u.Scheme == "file" {
		return LoadFile(u.Path)
	}

	if client == nil {
		client = httpPkg.NewClient()
	}

	logger.Infof("Fetching manifest %s", rawURL)

	resp, err := client.Get(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxManifestSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", httpPkg.ClassifyError(err))
	}

	if len(data) > MaxManifestSize {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", ErrTooLarge, rawURL, MaxManifestSize)
	}

	files, err := Parse(data, DetectFormat(u.Path, data), u)
	if err != nil {
		return nil, err
	}

	logger.Debugf("Manifest %s lists %d files", rawURL, len(files))

	return files, nil
}

// Package catalog defines the token descriptors a batch mints and loads them from disk.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	dropperr "github.com/mrz1836/cnftdrop/pkg/errors"
)

// Field limits enforced on-chain by the token metadata program.
const (
	MaxNameLength   = 32
	MaxSymbolLength = 10
	MaxURILength    = 200
)

// Attribute is one trait of a token.
type Attribute struct {
	TraitType string `json:"trait_type" yaml:"trait_type"`
	Value     string `json:"value" yaml:"value"`
}

// NFTMetadata describes one token to mint.
type NFTMetadata struct {
	Name        string      `json:"name" yaml:"name"`
	Symbol      string      `json:"symbol" yaml:"symbol"`
	Description string      `json:"description" yaml:"description"`
	Image       string      `json:"image" yaml:"image"`
	ExternalURL string      `json:"external_url" yaml:"external_url"`
	Attributes  []Attribute `json:"attributes" yaml:"attributes"`
}

// Format is a catalog file encoding.
type Format string

// Supported catalog encodings.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// document is the on-disk shape: either a bare list or {"nfts": [...]}.
type document struct {
	NFTs []NFTMetadata `json:"nfts" yaml:"nfts"`
}

// FormatFromPath picks the encoding from a file extension; anything but .json is YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// LoadFile reads and validates a catalog file.
func LoadFile(path string) ([]NFTMetadata, error) {
	// #nosec G304 -- catalog path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dropperr.WithDetails(dropperr.ErrNotFound, map[string]string{"catalog": path})
		}
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	entries, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, err
	}

	if err := Validate(entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Parse decodes catalog bytes in the given format.
func Parse(data []byte, format Format) ([]NFTMetadata, error) {
	var (
		list []NFTMetadata
		doc  document
	)

	switch format {
	case FormatJSON:
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal(data, &list); err != nil {
				return nil, dropperr.WithCause(dropperr.ErrInvalidFormat, err)
			}
			return list, nil
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, dropperr.WithCause(dropperr.ErrInvalidFormat, err)
		}
		return doc.NFTs, nil
	case FormatYAML:
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return nil, dropperr.WithCause(dropperr.ErrInvalidFormat, err)
		}
		if len(node.Content) == 0 {
			return nil, nil
		}
		root := node.Content[0]
		if root.Kind == yaml.SequenceNode {
			if err := root.Decode(&list); err != nil {
				return nil, dropperr.WithCause(dropperr.ErrInvalidFormat, err)
			}
			return list, nil
		}
		if err := root.Decode(&doc); err != nil {
			return nil, dropperr.WithCause(dropperr.ErrInvalidFormat, err)
		}
		return doc.NFTs, nil
	default:
		return nil, dropperr.WithDetails(dropperr.ErrNotSupported, map[string]string{"format": string(format)})
	}
}

// Validate checks a catalog against the on-chain metadata limits.
// Problems are reported per entry index.
func Validate(entries []NFTMetadata) error {
	if len(entries) == 0 {
		return dropperr.WithDetails(dropperr.ErrInvalidInput, map[string]string{"catalog": "no entries"})
	}

	details := map[string]string{}
	for i, e := range entries {
		key := fmt.Sprintf("entry[%d]", i)
		switch {
		case strings.TrimSpace(e.Name) == "":
			details[key] = "name is required"
		case len(e.Name) > MaxNameLength:
			details[key] = fmt.Sprintf("name exceeds %d bytes", MaxNameLength)
		case len(e.Symbol) > MaxSymbolLength:
			details[key] = fmt.Sprintf("symbol exceeds %d bytes", MaxSymbolLength)
		case strings.TrimSpace(e.Image) == "":
			details[key] = "image uri is required"
		case len(e.Image) > MaxURILength:
			details[key] = fmt.Sprintf("image uri exceeds %d bytes", MaxURILength)
		}
	}

	if len(details) > 0 {
		return dropperr.WithDetails(dropperr.ErrInvalidInput, details)
	}
	return nil
}

// Marshal encodes entries for writing back to disk.
func Marshal(entries []NFTMetadata, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(document{NFTs: entries}, "", "  ")
	}
	return yaml.Marshal(document{NFTs: entries})
}

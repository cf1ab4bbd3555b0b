// Package metadata builds the self-describing document embedded in each issued
// warranty token. Documents are serialized as RFC 8785 canonical JSON so the
// same product attributes always produce the same URI.
package metadata

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gowebpki/jcs"
)

// URIPrefix marks an inline JSON document.
const URIPrefix = "data:application/json;base64,"

// ErrMalformedURI is returned when a URI is not an inline JSON document.
var ErrMalformedURI = errors.New("metadata: malformed data URI")

// Product carries the attributes described by the document.
type Product struct {
	Name               string
	Model              string
	SerialNumber       string
	Manufacturer       string
	Retailer           string
	WarrantyPeriodDays int
	IssuedAt           time.Time
}

// Attribute follows the common token metadata trait layout.
type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// Document is the token metadata payload.
type Document struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	ExternalURL string      `json:"external_url,omitempty"`
	Attributes  []Attribute `json:"attributes"`
}

// Attribute returns the value of the named trait.
func (d Document) Attribute(traitType string) (any, bool) {
	for _, a := range d.Attributes {
		if a.TraitType == traitType {
			return a.Value, true
		}
	}
	return nil, false
}

// Builder renders product attributes into metadata URIs.
type Builder struct {
	baseURL string
}

// NewBuilder returns a Builder whose external links point at baseURL.
// An empty baseURL omits the link.
func NewBuilder(baseURL string) *Builder {
	return &Builder{baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Build assembles the document for p.
func (b *Builder) Build(p Product) Document {
	doc := Document{
		Name:        "Digital Warranty - " + p.Name,
		Description: fmt.Sprintf("Digital warranty certificate for %s model %s", p.Name, p.Model),
		Attributes: []Attribute{
			{TraitType: "Product Name", Value: p.Name},
			{TraitType: "Model", Value: p.Model},
			{TraitType: "Serial Number", Value: p.SerialNumber},
			{TraitType: "Manufacturer", Value: p.Manufacturer},
			{TraitType: "Retailer", Value: p.Retailer},
			{TraitType: "Warranty Period (Days)", Value: p.WarrantyPeriodDays},
			{TraitType: "Issue Date", Value: p.IssuedAt.UTC().Format(time.DateOnly)},
		},
	}
	if b.baseURL != "" {
		doc.ExternalURL = b.baseURL + "/warranty/" + url.PathEscape(p.SerialNumber)
	}
	return doc
}

// URI builds the document for p and encodes it as a data URI.
func (b *Builder) URI(p Product) (string, error) {
	return EncodeURI(b.Build(p))
}

// Canonical returns the RFC 8785 form of doc.
func Canonical(doc Document) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("metadata: marshal: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("metadata: canonicalize: %w", err)
	}
	return canonical, nil
}

// Hash returns the hex SHA-256 digest of the canonical document.
func Hash(doc Document) (string, error) {
	canonical, err := Canonical(doc)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// EncodeURI serializes doc as a base64 data URI.
func EncodeURI(doc Document) (string, error) {
	canonical, err := Canonical(doc)
	if err != nil {
		return "", err
	}
	return URIPrefix + base64.StdEncoding.EncodeToString(canonical), nil
}

// DecodeURI parses a URI produced by EncodeURI.
func DecodeURI(uri string) (Document, error) {
	payload, ok := strings.CutPrefix(uri, URIPrefix)
	if !ok {
		return Document{}, ErrMalformedURI
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedURI, err)
	}
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrMalformedURI, err)
	}
	return doc, nil
}

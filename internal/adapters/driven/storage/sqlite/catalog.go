package sqlite

import (
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/custodia-labs/documentviewer/internal/core/domain"
)

// catalogFormat is the first byte of every encoded catalog.
const catalogFormat byte = 1

// catalogRecord is the stored form of a domain.Catalog. Integer keys
// keep the encoding small; the term maps dominate the size anyway.
type catalogRecord struct {
	Pages []catalogPageRecord `cbor:"1,keyasint"`
}

type catalogPageRecord struct {
	Page   int            `cbor:"1,keyasint"`
	Length int            `cbor:"2,keyasint"`
	Terms  map[string]int `cbor:"3,keyasint"`
}

var (
	catalogEncMode cbor.EncMode
	catalogDecMode cbor.DecMode
	zstdEncoder    *zstd.Encoder
	zstdDecoder    *zstd.Decoder
)

func init() {
	var err error

	// Core deterministic encoding sorts map keys, so the same catalog
	// always produces the same bytes.
	catalogEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("sqlite: CBOR encoder initialization failed: " + err.Error())
	}
	catalogDecMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic("sqlite: CBOR decoder initialization failed: " + err.Error())
	}

	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("sqlite: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("sqlite: zstd decoder initialization failed: " + err.Error())
	}
}

// EncodeCatalog serialises a catalog as a format byte followed by
// zstd-compressed CBOR. A nil catalog encodes to nil.
func EncodeCatalog(c *domain.Catalog) ([]byte, error) {
	if c == nil {
		return nil, nil
	}
	record := catalogRecord{Pages: make([]catalogPageRecord, len(c.Pages))}
	for i, page := range c.Pages {
		record.Pages[i] = catalogPageRecord{Page: page.Page, Length: page.Length, Terms: page.Terms}
	}

	raw, err := catalogEncMode.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encoding catalog: %w", err)
	}
	out := make([]byte, 1, 1+len(raw)/2)
	out[0] = catalogFormat
	return zstdEncoder.EncodeAll(raw, out), nil
}

// DecodeCatalog is the inverse of EncodeCatalog. Empty input decodes to nil.
func DecodeCatalog(data []byte) (*domain.Catalog, error) {
	if len(data) == 0 {
		return nil, nil
	}
	if data[0] != catalogFormat {
		return nil, fmt.Errorf("decoding catalog: unknown format %d", data[0])
	}

	raw, err := zstdDecoder.DecodeAll(data[1:], nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing catalog: %w", err)
	}
	var record catalogRecord
	if err := catalogDecMode.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	catalog := &domain.Catalog{Pages: make([]domain.CatalogPage, len(record.Pages))}
	for i, page := range record.Pages {
		if page.Page != i+1 {
			return nil, errors.New("decoding catalog: pages out of order")
		}
		terms := page.Terms
		if terms == nil {
			terms = map[string]int{}
		}
		catalog.Pages[i] = domain.CatalogPage{Page: page.Page, Length: page.Length, Terms: terms}
	}
	return catalog, nil
}

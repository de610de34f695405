package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/postings"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/errors"
)

// Read loads the segment at path back into a Table. Both postings views are
// rebuilt from the file and cross-checked before the Table is returned.
func Read(path string) (*postings.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening segment file: %w", err)
	}
	if len(data) < HeaderSize+FooterSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", apperrors.ErrCorruptSegment, path, len(data))
	}
	header, err := decodeHeader(data[:HeaderSize])
	if err != nil {
		return nil, err
	}
	dictData, err := section(data, header.DictOffset, header.DictSize)
	if err != nil {
		return nil, fmt.Errorf("reading dictionary: %w", err)
	}
	docsData, err := section(data, header.DocsOffset, header.DocsSize)
	if err != nil {
		return nil, fmt.Errorf("reading document list: %w", err)
	}
	footer := data[len(data)-FooterSize:]
	if want := binary.LittleEndian.Uint32(footer[0:4]); checksum(dictData, docsData) != want {
		return nil, fmt.Errorf("%w: checksum mismatch", apperrors.ErrCorruptSegment)
	}

	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()

	var dict []DictEntry
	if err := json.Unmarshal(dictData, &dict); err != nil {
		return nil, fmt.Errorf("parsing dictionary: %w", err)
	}
	docsJSON, err := dec.DecodeAll(docsData, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing document list: %w", err)
	}
	var docs []string
	if err := json.Unmarshal(docsJSON, &docs); err != nil {
		return nil, fmt.Errorf("parsing document list: %w", err)
	}
	if len(docs) != int(header.DocCount) || len(dict) != int(header.TermCount) {
		return nil, fmt.Errorf("%w: header counts %d docs/%d terms, found %d/%d",
			apperrors.ErrCorruptSegment, header.DocCount, header.TermCount, len(docs), len(dict))
	}

	docTerms := make(map[string]map[string]int, len(docs))
	for _, doc := range docs {
		docTerms[doc] = make(map[string]int)
	}
	postData, err := section(data, header.PostOffset, header.PostSize)
	if err != nil {
		return nil, fmt.Errorf("reading postings: %w", err)
	}
	termDocs := make(map[string]map[string]int, len(dict))
	for _, entry := range dict {
		block, err := span(postData, entry.PostOffset, int64(entry.PostLen), int64(len(postData)))
		if err != nil {
			return nil, fmt.Errorf("reading postings for term %q: %w", entry.Term, err)
		}
		raw, err := dec.DecodeAll(block, nil)
		if err != nil {
			return nil, fmt.Errorf("decompressing postings for term %q: %w", entry.Term, err)
		}
		var list []Posting
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("parsing postings for term %q: %w", entry.Term, err)
		}
		if len(list) != entry.DocFreq {
			return nil, fmt.Errorf("%w: term %q lists %d postings, dictionary says %d",
				apperrors.ErrCorruptSegment, entry.Term, len(list), entry.DocFreq)
		}
		col := make(map[string]int, len(list))
		for _, p := range list {
			row, ok := docTerms[p.DocID]
			if !ok {
				return nil, fmt.Errorf("%w: term %q references unknown document %q",
					apperrors.ErrCorruptSegment, entry.Term, p.DocID)
			}
			row[entry.Term] = p.Count
			col[p.DocID] = p.Count
		}
		termDocs[entry.Term] = col
	}
	return postings.FromViews(docTerms, termDocs)
}

func decodeHeader(buf []byte) (Header, error) {
	h := Header{
		Magic:      binary.LittleEndian.Uint32(buf[0:4]),
		Version:    binary.LittleEndian.Uint32(buf[4:8]),
		TermCount:  binary.LittleEndian.Uint32(buf[8:12]),
		DocCount:   binary.LittleEndian.Uint32(buf[12:16]),
		DictOffset: int64(binary.LittleEndian.Uint64(buf[16:24])),
		DictSize:   int64(binary.LittleEndian.Uint64(buf[24:32])),
		PostOffset: int64(binary.LittleEndian.Uint64(buf[32:40])),
		PostSize:   int64(binary.LittleEndian.Uint64(buf[40:48])),
		DocsOffset: int64(binary.LittleEndian.Uint64(buf[48:56])),
		DocsSize:   int64(binary.LittleEndian.Uint64(buf[56:64])),
	}
	if h.Magic != MagicBytes {
		return h, fmt.Errorf("%w: bad magic bytes %x", apperrors.ErrCorruptSegment, h.Magic)
	}
	if h.Version != FormatVersion {
		return h, fmt.Errorf("%w: unsupported version %d", apperrors.ErrCorruptSegment, h.Version)
	}
	return h, nil
}

func section(data []byte, offset, size int64) ([]byte, error) {
	return span(data, offset, size, int64(len(data)-FooterSize))
}

// span returns buf[offset:offset+size] when that range lies within
// buf[:limit]. The bounds are compared without adding offset and size so
// header values near MaxInt64 cannot wrap.
func span(buf []byte, offset, size, limit int64) ([]byte, error) {
	if offset < 0 || size < 0 || offset > limit || size > limit-offset {
		return nil, fmt.Errorf("%w: section at %d (+%d) exceeds %d bytes",
			apperrors.ErrCorruptSegment, offset, size, limit)
	}
	return buf[offset : offset+size], nil
}

// Package segment persists a postings Table as a single .spdx snapshot file
// and loads it back.
//
// Layout: a 64-byte header, one zstd-compressed JSON postings block per
// term, a JSON dictionary locating those blocks, a zstd-compressed JSON
// document list, and a 16-byte footer carrying a CRC32 of the dictionary
// and document list.
package segment

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/Adithya-Monish-Kumar-K/relevance-ranker/internal/postings"
	apperrors "github.com/Adithya-Monish-Kumar-K/relevance-ranker/pkg/errors"
)

// MagicBytes identifies a valid .spdx segment file.
const (
	MagicBytes    uint32 = 0x53504458
	FormatVersion uint32 = 2
	HeaderSize    int    = 64
	FooterSize    int    = 16
)

// Header is the fixed-size header written at the start of every segment.
type Header struct {
	Magic      uint32
	Version    uint32
	TermCount  uint32
	DocCount   uint32
	DictOffset int64
	DictSize   int64
	PostOffset int64
	PostSize   int64
	DocsOffset int64
	DocsSize   int64
}

// DictEntry maps a term to its postings block and document frequency.
type DictEntry struct {
	Term       string `json:"t"`
	PostOffset int64  `json:"o"`
	PostLen    int    `json:"l"`
	DocFreq    int    `json:"d"`
}

// Posting is one (document, count) pair inside a term's block.
type Posting struct {
	DocID string `json:"id"`
	Count int    `json:"c"`
}

func (h Header) encode() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], h.Version)
	binary.LittleEndian.PutUint32(buf[8:12], h.TermCount)
	binary.LittleEndian.PutUint32(buf[12:16], h.DocCount)
	binary.LittleEndian.PutUint64(buf[16:24], uint64(h.DictOffset))
	binary.LittleEndian.PutUint64(buf[24:32], uint64(h.DictSize))
	binary.LittleEndian.PutUint64(buf[32:40], uint64(h.PostOffset))
	binary.LittleEndian.PutUint64(buf[40:48], uint64(h.PostSize))
	binary.LittleEndian.PutUint64(buf[48:56], uint64(h.DocsOffset))
	binary.LittleEndian.PutUint64(buf[56:64], uint64(h.DocsSize))
	return buf
}

// Write atomically creates a segment file at path holding table. It writes
// to a .tmp file first and renames on success.
func Write(path string, table *postings.Table) error {
	if table.NumDocs() == 0 {
		return fmt.Errorf("%w: cannot write empty segment", apperrors.ErrEmptyCorpus)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating segment directory: %w", err)
	}
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp segment file: %w", err)
	}
	defer f.Close()
	renamed := false
	defer func() {
		if !renamed {
			os.Remove(tmpPath)
		}
	}()

	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return fmt.Errorf("creating zstd encoder: %w", err)
	}
	defer enc.Close()

	header := Header{
		Magic:     MagicBytes,
		Version:   FormatVersion,
		TermCount: uint32(len(table.Terms())),
		DocCount:  uint32(table.NumDocs()),
	}
	if _, err := f.Write(header.encode()); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	postingsStart := int64(HeaderSize)
	offset := postingsStart
	dict := make([]DictEntry, 0, len(table.Terms()))
	for _, term := range table.Terms() {
		block, err := encodeBlock(enc, table, term)
		if err != nil {
			return fmt.Errorf("encoding postings for term %q: %w", term, err)
		}
		if _, err := f.Write(block); err != nil {
			return fmt.Errorf("writing postings for term %q: %w", term, err)
		}
		dict = append(dict, DictEntry{
			Term:       term,
			PostOffset: offset - postingsStart,
			PostLen:    len(block),
			DocFreq:    table.DocumentFrequency(term),
		})
		offset += int64(len(block))
	}
	header.PostOffset = postingsStart
	header.PostSize = offset - postingsStart

	dictData, err := json.Marshal(dict)
	if err != nil {
		return fmt.Errorf("marshaling dictionary: %w", err)
	}
	if _, err := f.Write(dictData); err != nil {
		return fmt.Errorf("writing dictionary: %w", err)
	}
	header.DictOffset = offset
	header.DictSize = int64(len(dictData))
	offset += header.DictSize

	docsJSON, err := json.Marshal(table.Documents())
	if err != nil {
		return fmt.Errorf("marshaling document list: %w", err)
	}
	docsData := enc.EncodeAll(docsJSON, nil)
	if _, err := f.Write(docsData); err != nil {
		return fmt.Errorf("writing document list: %w", err)
	}
	header.DocsOffset = offset
	header.DocsSize = int64(len(docsData))

	footer := make([]byte, FooterSize)
	binary.LittleEndian.PutUint32(footer[0:4], checksum(dictData, docsData))
	binary.LittleEndian.PutUint32(footer[4:8], header.DocCount)
	binary.LittleEndian.PutUint64(footer[8:16], uint64(header.DictOffset))
	if _, err := f.Write(footer); err != nil {
		return fmt.Errorf("writing footer: %w", err)
	}
	if _, err := f.WriteAt(header.encode(), 0); err != nil {
		return fmt.Errorf("updating header: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing segment file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing segment file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("renaming segment file: %w", err)
	}
	renamed = true
	return nil
}

func encodeBlock(enc *zstd.Encoder, table *postings.Table, term string) ([]byte, error) {
	docs := table.TermDocs(term)
	list := make([]Posting, 0, len(docs))
	for _, doc := range table.Documents() {
		if c, ok := docs[doc]; ok {
			list = append(list, Posting{DocID: doc, Count: c})
		}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return nil, err
	}
	return enc.EncodeAll(raw, nil), nil
}

func checksum(parts ...[]byte) uint32 {
	h := crc32.NewIEEE()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return h.Sum32()
}


package commonModels

import "time"

type Document struct {
	Id                  string           `json:"source_doc_id"`
	Name                string           `json:"doc_name"`
	LastIngestTimestamp time.Time        `json:"ingested_at"`
	ContentType         DocType          `json:"content_type"`
	Method              ExtractionMethod `json:"extraction_method"`
	Pages               int              `json:"pages"`
	Characters          int              `json:"characters"`
	Chunks              int              `json:"chunks"`
	Collection          string           `json:"collection"`
}

// ExtractedText is the loader output. PageOffsets[i] is the byte offset in Text where
// page i+1 starts; it is empty when the source has no page structure (OCR, docx).
type ExtractedText struct {
	Text        string
	PageOffsets []int
	Pages       int
	Method      ExtractionMethod
	ContentType DocType
}

// PageAt maps a byte offset to a 1-based page number, 0 when unknown.
func (e ExtractedText) PageAt(offset int) int {
	page := 0
	for i, start := range e.PageOffsets {
		if start > offset {
			break
		}
		page = i + 1
	}
	return page
}

type DocChunk struct {
	Doc     Document `json:"-"`
	ChunkId string   `json:"chunk_id"`
	Chunk   string   `json:"content"`
	Offset  int      `json:"offset"` //byte offset into the extracted text
	Length  int      `json:"length"` //characters
	PageNum int      `json:"page_num"`
	Index   int      `json:"chunk_order"`
}

type ScoredChunk struct {
	DocChunk
	Score float32 `json:"score"`
}

// Retrieval is a top-k result together with the collection version it came from.
type Retrieval struct {
	Collection string
	Chunks     []ScoredChunk
}

type Verdict struct {
	IsSupported bool   `json:"is_supported"`
	Reasoning   string `json:"reasoning"`
}

type Answer struct {
	Question  string
	Text      string //what the caller shows, including the verification note
	Raw       string //model output before annotation
	Sources   []ScoredChunk
	Verdict   *Verdict
	Found     bool
	// cache hits carry only the stored Text, which already includes the verification note;
	// Sources and Verdict stay empty
	FromCache bool
}

type DocType string

var PDF DocType = "PDF"
var DOCX DocType = "DOCX"
var TXT DocType = "TXT"
var ERR DocType = "ERROR"

type ExtractionMethod string

const (
	MethodDirect ExtractionMethod = "direct"
	MethodOCR    ExtractionMethod = "ocr"
	MethodText   ExtractionMethod = "text"
)

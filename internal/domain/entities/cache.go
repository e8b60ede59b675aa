package entities

// RenderedSlide is the part of a ParsedSlide that depends only on the
// slide source and the rule set, so it can be reused across parses
type RenderedSlide struct {
	HTML          string
	NotesHTML     string
	AppliedLayout string
}

// Size estimates the memory held by the rendered slide in bytes
func (r RenderedSlide) Size() int64 {
	return int64(len(r.HTML) + len(r.NotesHTML) + len(r.AppliedLayout))
}

// CacheStats reports render cache usage
type CacheStats struct {
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	Entries   int     `json:"entries"`
	Bytes     int64   `json:"bytes"`
	MaxBytes  int64   `json:"maxBytes"`
	HitRate   float64 `json:"hitRate"`
}

package printer

import (
	"encoding/json"
	"fmt"

	"github.com/felixjones/tinyheap/heap"
	"github.com/felixjones/tinyheap/heap/alloc"
)

// jsonBlock represents one block in JSON format. Addresses are hex strings
// so they survive consumers that parse numbers as float64.
type jsonBlock struct {
	Addr string  `json:"addr"`
	Size uintptr `json:"size"`
}

type jsonSnapshot struct {
	Base      string      `json:"base"`
	Limit     string      `json:"limit"`
	Top       string      `json:"top"`
	Alignment uintptr     `json:"alignment"`
	MaxBlocks int         `json:"max_blocks"`
	Fresh     int         `json:"fresh"`
	Free      []jsonBlock `json:"free,omitempty"`
	Used      []jsonBlock `json:"used,omitempty"`
}

type jsonStats struct {
	AllocCalls        int     `json:"alloc_calls"`
	CallocCalls       int     `json:"calloc_calls"`
	ReallocCalls      int     `json:"realloc_calls"`
	FreeCalls         int     `json:"free_calls"`
	BumpAllocs        int     `json:"bump_allocs"`
	FreeListHits      int     `json:"free_list_hits"`
	TopReuses         int     `json:"top_reuses"`
	Splits            int     `json:"splits"`
	Merges            int     `json:"merges"`
	TopTrims          int     `json:"top_trims"`
	HeapExhausted     int     `json:"heap_exhausted"`
	MetadataExhausted int     `json:"metadata_exhausted"`
	InvalidFrees      int     `json:"invalid_frees"`
	BytesInUse        uintptr `json:"bytes_in_use"`
	PeakTop           string  `json:"peak_top"`
}

type jsonReport struct {
	Snapshot jsonSnapshot `json:"snapshot"`
	Stats    jsonStats    `json:"stats"`
}

func hexAddr(a heap.Addr) string {
	return fmt.Sprintf("0x%X", uintptr(a))
}

func blocksJSON(blocks []alloc.Block) []jsonBlock {
	if len(blocks) == 0 {
		return nil
	}
	out := make([]jsonBlock, len(blocks))
	for i, b := range blocks {
		out[i] = jsonBlock{Addr: hexAddr(b.Addr), Size: b.Size}
	}
	return out
}

func (p *Printer) snapshotJSON(s alloc.Snapshot) jsonSnapshot {
	js := jsonSnapshot{
		Base:      hexAddr(s.Base),
		Limit:     hexAddr(s.Limit),
		Top:       hexAddr(s.Top),
		Alignment: s.Alignment,
		MaxBlocks: s.MaxBlocks,
		Fresh:     s.Fresh,
	}
	if p.opts.ShowFree {
		js.Free = blocksJSON(s.Free)
	}
	if p.opts.ShowUsed {
		js.Used = blocksJSON(s.Used)
	}
	return js
}

func statsJSON(st alloc.Stats) jsonStats {
	return jsonStats{
		AllocCalls:        st.AllocCalls,
		CallocCalls:       st.CallocCalls,
		ReallocCalls:      st.ReallocCalls,
		FreeCalls:         st.FreeCalls,
		BumpAllocs:        st.BumpAllocs,
		FreeListHits:      st.FreeListHits,
		TopReuses:         st.TopReuses,
		Splits:            st.Splits,
		Merges:            st.Merges,
		TopTrims:          st.TopTrims,
		HeapExhausted:     st.HeapExhausted,
		MetadataExhausted: st.MetadataExhausted,
		InvalidFrees:      st.InvalidFrees,
		BytesInUse:        st.BytesInUse,
		PeakTop:           hexAddr(st.PeakTop),
	}
}

func (p *Printer) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}

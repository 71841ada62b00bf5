package printer

import (
	"strings"

	"github.com/felixjones/tinyheap/heap/alloc"
)

func (p *Printer) printSnapshotText(s alloc.Snapshot) error {
	indent := strings.Repeat(" ", p.opts.IndentSize)

	p.msg.Fprintf(p.writer, "Region: 0x%X-0x%X (%d bytes)\n", s.Base, s.Limit, uintptr(s.Limit-s.Base))
	p.msg.Fprintf(p.writer, "%sTop: 0x%X (%d bytes untouched)\n", indent, s.Top, uintptr(s.Limit-s.Top))
	p.msg.Fprintf(p.writer, "%sAlignment: %d\n", indent, s.Alignment)
	p.msg.Fprintf(p.writer, "%sBlocks: %d free, %d used, %d fresh of %d\n",
		indent, len(s.Free), len(s.Used), s.Fresh, s.MaxBlocks)

	if p.opts.ShowFree {
		p.printBlocksText("Free", s.Free, indent)
	}
	if p.opts.ShowUsed {
		p.printBlocksText("Used", s.Used, indent)
	}
	return nil
}

func (p *Printer) printBlocksText(title string, blocks []alloc.Block, indent string) {
	var total uintptr
	for _, b := range blocks {
		total += b.Size
	}
	p.msg.Fprintf(p.writer, "%s (%d bytes):\n", title, total)
	if len(blocks) == 0 {
		p.msg.Fprintf(p.writer, "%s(none)\n", indent)
		return
	}
	for _, b := range blocks {
		p.msg.Fprintf(p.writer, "%s0x%08X-0x%08X %d\n", indent, b.Addr, b.End(), b.Size)
	}
}

func (p *Printer) printStatsText(st alloc.Stats) error {
	indent := strings.Repeat(" ", p.opts.IndentSize)

	p.msg.Fprintf(p.writer, "Calls:\n")
	p.msg.Fprintf(p.writer, "%salloc: %d, calloc: %d, realloc: %d, free: %d\n",
		indent, st.AllocCalls, st.CallocCalls, st.ReallocCalls, st.FreeCalls)
	p.msg.Fprintf(p.writer, "Placement:\n")
	p.msg.Fprintf(p.writer, "%sbump: %d, free list: %d, top reuse: %d\n",
		indent, st.BumpAllocs, st.FreeListHits, st.TopReuses)
	p.msg.Fprintf(p.writer, "%ssplits: %d, merges: %d, top trims: %d\n",
		indent, st.Splits, st.Merges, st.TopTrims)
	p.msg.Fprintf(p.writer, "Failures:\n")
	p.msg.Fprintf(p.writer, "%sheap: %d, metadata: %d, invalid free: %d\n",
		indent, st.HeapExhausted, st.MetadataExhausted, st.InvalidFrees)
	p.msg.Fprintf(p.writer, "Memory:\n")
	p.msg.Fprintf(p.writer, "%sin use: %d bytes, peak top: 0x%X\n", indent, st.BytesInUse, st.PeakTop)
	return nil
}

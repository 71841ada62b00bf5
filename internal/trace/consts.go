package trace

const (
	// CommentPrefix starts a comment. Comments run to the end of the line.
	CommentPrefix = "#"

	// KeywordAlloc is "alloc <name> <size>".
	KeywordAlloc = "alloc"

	// KeywordCalloc is "calloc <name> <count> <size>".
	KeywordCalloc = "calloc"

	// KeywordRealloc is "realloc <name> <size>".
	KeywordRealloc = "realloc"

	// KeywordFree is "free <name>".
	KeywordFree = "free"

	// KeywordCheck is "check" and verifies allocator invariants.
	KeywordCheck = "check"

	// ScannerInitialBufferSize is the initial line buffer.
	ScannerInitialBufferSize = 4 * 1024

	// ScannerMaxLineSize bounds a single trace line.
	ScannerMaxLineSize = 64 * 1024
)

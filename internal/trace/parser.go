// Package trace parses and replays allocation scripts.
//
// A trace is line oriented. Each line is one operation on a named pointer
// variable:
//
//	# comment
//	alloc  a 100
//	calloc b 4 16
//	realloc a 200
//	free   b
//	check
//
// Sizes accept any strconv base prefix (0x40, 0o100, 0b1000000).
package trace

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("trace: syntax error")

// SyntaxError reports a malformed trace line.
type SyntaxError struct {
	Line int
	Text string
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("trace: line %d: %s: %q", e.Line, e.Msg, e.Text)
}

func (e *SyntaxError) Unwrap() error { return ErrSyntax }

// ParseFile reads and parses the trace at path.
func ParseFile(path string) ([]Op, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read trace %s", path)
	}
	return Parse(data)
}

// ParseReader reads all of r and parses it.
func ParseReader(r io.Reader) ([]Op, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read trace")
	}
	return Parse(data)
}

// Parse converts trace text into operations.
func Parse(data []byte) ([]Op, error) {
	text, err := decodeInput(data)
	if err != nil {
		return nil, errors.Wrap(err, "trace: decode input")
	}

	scanner := bufio.NewScanner(bytes.NewReader(text))
	buf := make([]byte, 0, ScannerInitialBufferSize)
	scanner.Buffer(buf, ScannerMaxLineSize)

	var ops []Op
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.Index(line, CommentPrefix); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		op, err := parseFields(fields)
		if err != nil {
			return nil, &SyntaxError{Line: lineNo, Text: strings.TrimSpace(line), Msg: err.Error()}
		}
		op.Line = lineNo
		ops = append(ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "trace: line %d", lineNo+1)
	}
	return ops, nil
}

func parseFields(fields []string) (Op, error) {
	keyword := strings.ToLower(fields[0])
	args := fields[1:]

	switch keyword {
	case KeywordAlloc, KeywordRealloc:
		if len(args) != 2 {
			return Op{}, fmt.Errorf("%s takes <name> <size>", keyword)
		}
		size, err := parseSize(args[1])
		if err != nil {
			return Op{}, err
		}
		kind := OpAlloc
		if keyword == KeywordRealloc {
			kind = OpRealloc
		}
		return Op{Kind: kind, Name: args[0], Size: size}, nil

	case KeywordCalloc:
		if len(args) != 3 {
			return Op{}, fmt.Errorf("%s takes <name> <count> <size>", keyword)
		}
		count, err := parseSize(args[1])
		if err != nil {
			return Op{}, err
		}
		size, err := parseSize(args[2])
		if err != nil {
			return Op{}, err
		}
		return Op{Kind: OpCalloc, Name: args[0], Count: count, Size: size}, nil

	case KeywordFree:
		if len(args) != 1 {
			return Op{}, fmt.Errorf("%s takes <name>", keyword)
		}
		return Op{Kind: OpFree, Name: args[0]}, nil

	case KeywordCheck:
		if len(args) != 0 {
			return Op{}, fmt.Errorf("%s takes no arguments", keyword)
		}
		return Op{Kind: OpCheck}, nil

	default:
		return Op{}, fmt.Errorf("unknown operation %q", fields[0])
	}
}

func parseSize(s string) (uintptr, error) {
	v, err := strconv.ParseUint(s, 0, strconv.IntSize)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	return uintptr(v), nil
}

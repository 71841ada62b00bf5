package trace

import "fmt"

// Kind identifies a trace operation.
type Kind uint8

const (
	OpAlloc Kind = iota
	OpCalloc
	OpRealloc
	OpFree
	OpCheck
)

func (k Kind) String() string {
	switch k {
	case OpAlloc:
		return KeywordAlloc
	case OpCalloc:
		return KeywordCalloc
	case OpRealloc:
		return KeywordRealloc
	case OpFree:
		return KeywordFree
	case OpCheck:
		return KeywordCheck
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Op is one parsed trace line.
type Op struct {
	Kind  Kind
	Name  string  // pointer variable, empty for OpCheck
	Count uintptr // OpCalloc only
	Size  uintptr // OpAlloc, OpCalloc, OpRealloc
	Line  int     // 1-based source line
}

func (o Op) String() string {
	switch o.Kind {
	case OpAlloc, OpRealloc:
		return fmt.Sprintf("%s %s %d", o.Kind, o.Name, o.Size)
	case OpCalloc:
		return fmt.Sprintf("%s %s %d %d", o.Kind, o.Name, o.Count, o.Size)
	case OpFree:
		return fmt.Sprintf("%s %s", o.Kind, o.Name)
	default:
		return o.Kind.String()
	}
}

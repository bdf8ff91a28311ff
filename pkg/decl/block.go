package decl

import "github.com/panbanda/remapper/pkg/models"

// BlockType is the structural role of a statement block.
type BlockType string

const (
	BlockIf          BlockType = "IF"
	BlockElse        BlockType = "ELSE"
	BlockTry         BlockType = "TRY"
	BlockCatch       BlockType = "CATCH"
	BlockFinally     BlockType = "FINALLY"
	BlockFor         BlockType = "FOR"
	BlockEnhancedFor BlockType = "ENHANCED_FOR"
	BlockWhile       BlockType = "WHILE"
	BlockDo          BlockType = "DO"
	BlockSwitchCase  BlockType = "SWITCH_CASE"
	BlockCase        BlockType = "CASE"
	BlockLambda      BlockType = "LAMBDA"
	BlockAnonymous   BlockType = "ANONYMOUS"
	BlockPlain       BlockType = "BLOCK"
	BlockOther       BlockType = "OTHER"
)

func (t BlockType) String() string { return string(t) }

// Block is a nested statement block inside a method or initializer body.
type Block struct {
	Type       BlockType
	Expression string
	Text       string
	Tokens     []string
	Location   models.Location
	// Method is the display name of the enclosing method or initializer.
	Method string

	parent   *Block
	children []*Block
}

// AddChild appends c below b.
func (b *Block) AddChild(c *Block) {
	c.parent = b
	b.children = append(b.children, c)
}

// Parent returns the enclosing block or nil for top-level blocks.
func (b *Block) Parent() *Block { return b.parent }

// Children returns the nested blocks.
func (b *Block) Children() []*Block { return b.children }

// Depth is the nesting depth, 0 for top-level blocks.
func (b *Block) Depth() int {
	d := 0
	for p := b.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Same reports whether two blocks have the same type, expression and text.
func (b *Block) Same(o *Block) bool {
	return b.Type == o.Type && b.Expression == o.Expression && b.Text == o.Text
}

// AllBlocks flattens the block trees of n in preorder.
func (n *Node) AllBlocks() []*Block {
	var out []*Block
	var walk func([]*Block)
	walk = func(bs []*Block) {
		for _, b := range bs {
			out = append(out, b)
			walk(b.children)
		}
	}
	walk(n.blocks)
	return out
}

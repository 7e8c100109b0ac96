// Package notion flattens a Notion page tree into the markdown-like knowledge
// document the router grounds its answers on.
package notion

import (
	"context"
	"fmt"
	"strings"
)

const (
	DefaultMaxDepth  = 8
	DefaultMaxBlocks = 2000
)

// Kind is the structural kind of a block, reduced to the ones that produce text.
type Kind string

const (
	KindParagraph Kind = "paragraph"
	KindHeading1  Kind = "heading_1"
	KindHeading2  Kind = "heading_2"
	KindHeading3  Kind = "heading_3"
	KindBulleted  Kind = "bulleted_list_item"
	KindNumbered  Kind = "numbered_list_item"
	KindOther     Kind = "other"
)

// Block is one node of the content tree.
type Block struct {
	ID          string
	Kind        Kind
	Text        string
	HasChildren bool
}

// ChildPage is one page of a block's children.
type ChildPage struct {
	Blocks     []Block
	NextCursor string
	HasMore    bool
}

// BlockLister lists the direct children of a block, one page at a time.
type BlockLister interface {
	ListChildren(ctx context.Context, blockID, cursor string) (*ChildPage, error)
}

// Document is a flattened knowledge document.
type Document struct {
	Content string
	Blocks  int
	// Truncated is set when MaxBlocks stopped the traversal early.
	Truncated bool
}

// Flattener walks a block tree depth-first in document order.
type Flattener struct {
	lister    BlockLister
	maxDepth  int
	maxBlocks int
}

func NewFlattener(lister BlockLister, maxDepth, maxBlocks int) *Flattener {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if maxBlocks <= 0 {
		maxBlocks = DefaultMaxBlocks
	}
	return &Flattener{lister: lister, maxDepth: maxDepth, maxBlocks: maxBlocks}
}

type frame struct {
	block Block
	depth int
}

// Flatten builds the document for rootID. Children are expanded before the
// next sibling. Any listing error fails the whole fetch.
func (f *Flattener) Flatten(ctx context.Context, rootID string) (*Document, error) {
	var (
		b     strings.Builder
		doc   Document
		stack []frame
	)

	roots, capped, err := f.listAll(ctx, rootID)
	if err != nil {
		return nil, err
	}
	doc.Truncated = capped
	stack = pushReversed(stack, roots, 1)

	for len(stack) > 0 {
		if doc.Blocks >= f.maxBlocks {
			doc.Truncated = true
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		doc.Blocks++

		writeBlock(&b, top.block)

		if top.block.HasChildren && top.depth < f.maxDepth {
			children, capped, err := f.listAll(ctx, top.block.ID)
			if err != nil {
				return nil, err
			}
			if capped {
				doc.Truncated = true
			}
			stack = pushReversed(stack, children, top.depth+1)
		}
	}

	doc.Content = b.String()
	return &doc, nil
}

// listAll pages through the children of blockID. The bool reports that paging
// stopped at MaxBlocks with more children still unread.
func (f *Flattener) listAll(ctx context.Context, blockID string) ([]Block, bool, error) {
	var (
		all    []Block
		cursor string
	)
	for {
		page, err := f.lister.ListChildren(ctx, blockID, cursor)
		if err != nil {
			return nil, false, fmt.Errorf("failed to list children of %s: %w", blockID, err)
		}
		all = append(all, page.Blocks...)
		more := page.HasMore && page.NextCursor != ""
		if !more {
			return all, false, nil
		}
		if len(all) >= f.maxBlocks {
			return all, true, nil
		}
		cursor = page.NextCursor
	}
}

func pushReversed(stack []frame, blocks []Block, depth int) []frame {
	for i := len(blocks) - 1; i >= 0; i-- {
		stack = append(stack, frame{block: blocks[i], depth: depth})
	}
	return stack
}

func writeBlock(b *strings.Builder, blk Block) {
	if blk.Text == "" {
		return
	}
	switch blk.Kind {
	case KindParagraph:
		b.WriteString(blk.Text)
		b.WriteString("\n\n")
	case KindHeading1:
		b.WriteString("# " + blk.Text + "\n\n")
	case KindHeading2:
		b.WriteString("## " + blk.Text + "\n\n")
	case KindHeading3:
		b.WriteString("### " + blk.Text + "\n\n")
	case KindBulleted:
		b.WriteString("- " + blk.Text + "\n")
	case KindNumbered:
		b.WriteString("1. " + blk.Text + "\n")
	}
}

package notion

import (
	"context"
	"strings"

	"github.com/jomei/notionapi"
)

const pageSize = 100

// APIClient lists block children through the Notion API.
type APIClient struct {
	blocks notionapi.BlockService
}

func NewAPIClient(token string) *APIClient {
	client := notionapi.NewClient(notionapi.Token(token))
	return &APIClient{blocks: client.Block}
}

// ListChildren implements BlockLister.
func (c *APIClient) ListChildren(ctx context.Context, blockID, cursor string) (*ChildPage, error) {
	resp, err := c.blocks.GetChildren(ctx, notionapi.BlockID(blockID), &notionapi.Pagination{
		StartCursor: notionapi.Cursor(cursor),
		PageSize:    pageSize,
	})
	if err != nil {
		return nil, err
	}

	page := &ChildPage{
		Blocks:     make([]Block, 0, len(resp.Results)),
		NextCursor: string(resp.NextCursor),
		HasMore:    resp.HasMore,
	}
	for _, b := range resp.Results {
		page.Blocks = append(page.Blocks, convert(b))
	}
	return page, nil
}

func convert(b notionapi.Block) Block {
	out := Block{
		ID:          string(b.GetID()),
		Kind:        KindOther,
		HasChildren: b.GetHasChildren(),
	}

	switch v := b.(type) {
	case *notionapi.ParagraphBlock:
		out.Kind, out.Text = KindParagraph, plainText(v.Paragraph.RichText)
	case *notionapi.Heading1Block:
		out.Kind, out.Text = KindHeading1, plainText(v.Heading1.RichText)
	case *notionapi.Heading2Block:
		out.Kind, out.Text = KindHeading2, plainText(v.Heading2.RichText)
	case *notionapi.Heading3Block:
		out.Kind, out.Text = KindHeading3, plainText(v.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		out.Kind, out.Text = KindBulleted, plainText(v.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		out.Kind, out.Text = KindNumbered, plainText(v.NumberedListItem.RichText)
	}
	return out
}

func plainText(rt []notionapi.RichText) string {
	var b strings.Builder
	for _, t := range rt {
		b.WriteString(t.PlainText)
	}
	return b.String()
}

// Package editor holds the ordered block list of a page and the
// structural operations the visual editor performs on it.
package editor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/blocks"
)

// Block is a single content unit on a page. Content is the serialized form
// produced by blocks.SerializeContent.
type Block struct {
	ID        string           `json:"id"`
	BlockType blocks.BlockType `json:"blockType"`
	Content   string           `json:"content"`
}

// Decoded returns the typed content of b.
func (b Block) Decoded() blocks.Content {
	return blocks.ParseContent(b.Content, b.BlockType)
}

// Position says where a dragged block lands relative to its target.
type Position string

const (
	Before Position = "before"
	After  Position = "after"
)

// Page is an ordered sequence of blocks with at most one selected block.
// A Page is not safe for concurrent use.
type Page struct {
	blocks   []Block
	selected string
	newID    func() string
}

// NewPage returns a page holding a copy of bs.
func NewPage(bs []Block) *Page {
	p := &Page{newID: func() string { return uuid.New().String() }}
	p.blocks = append(p.blocks, bs...)
	return p
}

// Blocks returns a copy of the ordered block list.
func (p *Page) Blocks() []Block {
	out := make([]Block, len(p.blocks))
	copy(out, p.blocks)
	return out
}

// Len returns the number of blocks.
func (p *Page) Len() int { return len(p.blocks) }

func (p *Page) index(id string) int {
	for i, b := range p.blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the block with the given id.
func (p *Page) Get(id string) (Block, bool) {
	i := p.index(id)
	if i < 0 {
		return Block{}, false
	}
	return p.blocks[i], true
}

// Add appends a block of type t pre-filled with its default content.
func (p *Page) Add(t blocks.BlockType) (Block, error) {
	if !t.Valid() {
		return Block{}, fmt.Errorf("editor: add %q: %w", t, apperr.ErrInvalidInput)
	}
	b := Block{ID: p.newID(), BlockType: t, Content: blocks.DefaultSerialized(t)}
	p.blocks = append(p.blocks, b)
	return b, nil
}

// CanMoveUp reports whether the block is not already first.
func (p *Page) CanMoveUp(id string) bool { return p.index(id) > 0 }

// CanMoveDown reports whether the block is not already last.
func (p *Page) CanMoveDown(id string) bool {
	i := p.index(id)
	return i >= 0 && i < len(p.blocks)-1
}

// MoveUp swaps the block with its predecessor. It is a no-op for the first
// block and for unknown ids, and reports whether anything moved.
func (p *Page) MoveUp(id string) bool {
	i := p.index(id)
	if i <= 0 {
		return false
	}
	p.blocks[i-1], p.blocks[i] = p.blocks[i], p.blocks[i-1]
	return true
}

// MoveDown swaps the block with its successor. It is a no-op for the last
// block and for unknown ids.
func (p *Page) MoveDown(id string) bool {
	i := p.index(id)
	if i < 0 || i >= len(p.blocks)-1 {
		return false
	}
	p.blocks[i], p.blocks[i+1] = p.blocks[i+1], p.blocks[i]
	return true
}

// Remove deletes the block. Removing the selected block clears selection.
func (p *Page) Remove(id string) bool {
	i := p.index(id)
	if i < 0 {
		return false
	}
	p.blocks = append(p.blocks[:i], p.blocks[i+1:]...)
	if p.selected == id {
		p.selected = ""
	}
	return true
}

// ReorderByDrag moves dragged immediately before or after target. All other
// blocks keep their relative order.
func (p *Page) ReorderByDrag(dragged, target string, pos Position) error {
	if pos != Before && pos != After {
		return fmt.Errorf("editor: drop position %q: %w", pos, apperr.ErrInvalidInput)
	}
	from := p.index(dragged)
	if from < 0 || p.index(target) < 0 {
		return fmt.Errorf("editor: reorder: %w", apperr.ErrNotFound)
	}
	if dragged == target {
		return nil
	}
	b := p.blocks[from]
	rest := append(p.blocks[:from:from], p.blocks[from+1:]...)

	to := -1
	for i, r := range rest {
		if r.ID == target {
			to = i
			break
		}
	}
	if pos == After {
		to++
	}

	out := make([]Block, 0, len(p.blocks))
	out = append(out, rest[:to]...)
	out = append(out, b)
	out = append(out, rest[to:]...)
	p.blocks = out
	return nil
}

// Select makes id the only selected block.
func (p *Page) Select(id string) error {
	if p.index(id) < 0 {
		return fmt.Errorf("editor: select %s: %w", id, apperr.ErrNotFound)
	}
	p.selected = id
	return nil
}

// ClearSelection deselects any block.
func (p *Page) ClearSelection() { p.selected = "" }

// Selected returns the selected block, if any.
func (p *Page) Selected() (Block, bool) {
	if p.selected == "" {
		return Block{}, false
	}
	return p.Get(p.selected)
}

// UpdateContent replaces the whole content of a block. The content variant
// must match the block's type.
func (p *Page) UpdateContent(id string, c blocks.Content) error {
	i := p.index(id)
	if i < 0 {
		return fmt.Errorf("editor: update %s: %w", id, apperr.ErrNotFound)
	}
	if c == nil || c.BlockType() != p.blocks[i].BlockType {
		return fmt.Errorf("editor: update %s: content does not match %s: %w", id, p.blocks[i].BlockType, apperr.ErrInvalidInput)
	}
	p.blocks[i].Content = blocks.SerializeContent(c)
	return nil
}

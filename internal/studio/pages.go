package studio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/webcraft/internal/apperr"
	"github.com/starford/webcraft/internal/blocks"
	"github.com/starford/webcraft/internal/checksum"
	"github.com/starford/webcraft/internal/editor"
	"github.com/starford/webcraft/internal/render"
	"github.com/starford/webcraft/internal/sse"
)

// Page is a project's block list with its version tag.
type Page struct {
	ProjectID string         `json:"projectId"`
	Blocks    []editor.Block `json:"blocks"`
	ETag      string         `json:"etag"`
}

func newPage(projectID string, bs []editor.Block) (*Page, error) {
	bs = nonNilSlice(bs)
	data, err := json.Marshal(bs)
	if err != nil {
		return nil, fmt.Errorf("studio: encode page: %w", err)
	}
	return &Page{ProjectID: projectID, Blocks: bs, ETag: checksum.Sum(data)}, nil
}

// Direction is the way a block moves one step.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// LoadPage returns the blocks of the caller's project.
func (s *Service) LoadPage(ctx context.Context, projectID string) (*Page, error) {
	if _, err := s.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	bs, err := s.pages.LoadBlocks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return newPage(projectID, bs)
}

// SavePage replaces the whole block list. A non-empty ifMatch must equal
// the current page's ETag.
func (s *Service) SavePage(ctx context.Context, projectID string, list []editor.Block, ifMatch string) (*Page, error) {
	if err := validateBlocks(list); err != nil {
		return nil, err
	}
	return s.mutate(ctx, projectID, ifMatch, func(p *editor.Page) error {
		*p = *editor.NewPage(list)
		return nil
	})
}

// AddBlock appends a block of the given type with its default content.
func (s *Service) AddBlock(ctx context.Context, projectID, blockType, ifMatch string) (*Page, editor.Block, error) {
	t, err := blocks.ParseBlockType(blockType)
	if err != nil {
		return nil, editor.Block{}, apperr.Invalid(err)
	}
	var added editor.Block
	page, err := s.mutate(ctx, projectID, ifMatch, func(p *editor.Page) error {
		b, addErr := p.Add(t)
		added = b
		return addErr
	})
	if err != nil {
		return nil, editor.Block{}, err
	}
	return page, added, nil
}

// MoveBlock moves a block one step. Moving past either end leaves the page
// unchanged.
func (s *Service) MoveBlock(ctx context.Context, projectID, blockID string, dir Direction, ifMatch string) (*Page, error) {
	if dir != Up && dir != Down {
		return nil, apperr.Invalid(fmt.Errorf("direction: %q is not up or down", dir))
	}
	return s.mutate(ctx, projectID, ifMatch, func(p *editor.Page) error {
		if _, ok := p.Get(blockID); !ok {
			return fmt.Errorf("studio: move %s: %w", blockID, apperr.ErrNotFound)
		}
		if dir == Up {
			p.MoveUp(blockID)
		} else {
			p.MoveDown(blockID)
		}
		return nil
	})
}

// UpdateBlock replaces a block's content. raw must be a JSON object; it is
// projected onto the block's type, unknown keys are dropped and missing
// ones left empty.
func (s *Service) UpdateBlock(ctx context.Context, projectID, blockID, raw, ifMatch string) (*Page, error) {
	if err := contentObject(raw); err != nil {
		return nil, err
	}
	return s.mutate(ctx, projectID, ifMatch, func(p *editor.Page) error {
		b, ok := p.Get(blockID)
		if !ok {
			return fmt.Errorf("studio: update %s: %w", blockID, apperr.ErrNotFound)
		}
		return p.UpdateContent(blockID, blocks.ParseContent(raw, b.BlockType))
	})
}

// RemoveBlock deletes a block.
func (s *Service) RemoveBlock(ctx context.Context, projectID, blockID, ifMatch string) (*Page, error) {
	return s.mutate(ctx, projectID, ifMatch, func(p *editor.Page) error {
		if !p.Remove(blockID) {
			return fmt.Errorf("studio: remove %s: %w", blockID, apperr.ErrNotFound)
		}
		return nil
	})
}

// ReorderBlock drops dragged before or after target.
func (s *Service) ReorderBlock(ctx context.Context, projectID, dragged, target string, pos editor.Position, ifMatch string) (*Page, error) {
	return s.mutate(ctx, projectID, ifMatch, func(p *editor.Page) error {
		return p.ReorderByDrag(dragged, target, pos)
	})
}

// Preview renders the project's page as a standalone HTML document.
func (s *Service) Preview(ctx context.Context, projectID, viewport string) ([]byte, error) {
	proj, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	bs, err := s.pages.LoadBlocks(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return render.RenderPreview(proj.Name, bs, render.ParseViewport(viewport))
}

// mutate runs a read-modify-write cycle on a project's page and publishes
// blocks.updated when it succeeds.
func (s *Service) mutate(ctx context.Context, projectID, ifMatch string, fn func(*editor.Page) error) (*Page, error) {
	s.pageMu.Lock()
	defer s.pageMu.Unlock()

	current, err := s.LoadPage(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != current.ETag {
		return nil, apperr.ErrConflict
	}

	p := editor.NewPage(current.Blocks)
	if err := fn(p); err != nil {
		return nil, err
	}
	next := p.Blocks()
	if err := s.pages.ReplaceBlocks(ctx, projectID, next); err != nil {
		return nil, err
	}
	page, err := newPage(projectID, next)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, sse.BlocksUpdated, map[string]string{"projectId": projectID, "etag": page.ETag})
	return page, nil
}

func validateBlocks(list []editor.Block) error {
	seen := make(map[string]struct{}, len(list))
	for i := range list {
		b := &list[i]
		err := validation.ValidateStruct(b,
			validation.Field(&b.ID, validation.Required),
			validation.Field(&b.BlockType, validation.By(func(any) error {
				if !b.BlockType.Valid() {
					return errors.New("must be a known block type")
				}
				return nil
			})),
		)
		if err != nil {
			return apperr.Invalid(fmt.Errorf("blocks[%d]: %w", i, err))
		}
		if _, dup := seen[b.ID]; dup {
			return apperr.Invalid(fmt.Errorf("blocks[%d]: duplicate id %q", i, b.ID))
		}
		seen[b.ID] = struct{}{}
	}
	return nil
}

// contentObject rejects edits that are not a JSON object. Stored content
// decodes tolerantly; an edit that would decode to the default is refused.
func contentObject(raw string) error {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil || fields == nil {
		return apperr.Invalid(errors.New("content must be a JSON object"))
	}
	return nil
}

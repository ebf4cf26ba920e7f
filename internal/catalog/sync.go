package catalog

import (
	"cmp"
	"context"
	"embed"
	"log/slog"
	"slices"

	"github.com/starford/webcraft/internal/checksum"
	"github.com/starford/webcraft/internal/models"
	"github.com/starford/webcraft/internal/storage"
	"github.com/starford/webcraft/internal/store"
)

// Source names.
const (
	SourceBuiltin   = "builtin"
	SourceDirectory = "directory"
)

//go:embed templates/*.md
var builtinFS embed.FS

// Store is the template persistence surface Sync needs.
type Store interface {
	UpsertTemplate(ctx context.Context, row store.TemplateRow) error
	DeleteTemplate(ctx context.Context, id string) error
	TemplateChecksums(ctx context.Context, source string) (map[string]string, error)
}

// Source is a named set of template documents. Base, when set, is the
// source this one overrides: a template removed here falls back to the
// Base document with the same id instead of disappearing.
type Source struct {
	Name string
	Docs storage.Provider
	Base *Source
}

// Builtin returns the catalogue shipped with the binary.
func Builtin() Source {
	docs, err := storage.NewEmbedded(builtinFS, "templates")
	if err != nil {
		panic(err) // embedded directory is fixed at build time
	}
	return Source{Name: SourceBuiltin, Docs: docs}
}

// Result lists the template ids a sync touched.
type Result struct {
	Upserted []string
	Deleted  []string
}

// Changed reports whether the sync modified the store.
func (r Result) Changed() bool {
	return len(r.Upserted) > 0 || len(r.Deleted) > 0
}

// Sync brings the store up to date with src:
//   - new/changed documents are parsed and upserted
//   - templates of src whose document is gone are restored from src.Base
//     when it has one, deleted otherwise
//
// Unreadable or invalid documents are logged and skipped.
func Sync(ctx context.Context, db Store, src Source, logger *slog.Logger) (Result, error) {
	var res Result

	rows, err := readRows(src, logger)
	if err != nil {
		return res, err
	}
	checksums, err := db.TemplateChecksums(ctx, src.Name)
	if err != nil {
		return res, err
	}

	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		seen[row.ID] = true
		if checksums[row.ID] == row.Checksum {
			continue
		}
		if err := db.UpsertTemplate(ctx, row); err != nil {
			logger.Warn("catalog: upsert failed", slog.String("id", row.ID), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("catalog: upserted", slog.String("id", row.ID), slog.String("source", src.Name))
		res.Upserted = append(res.Upserted, row.ID)
	}

	var base map[string]store.TemplateRow
	for id := range checksums {
		if seen[id] {
			continue
		}
		if src.Base != nil && base == nil {
			baseRows, err := readRows(*src.Base, logger)
			if err != nil {
				logger.Warn("catalog: base read failed", slog.String("source", src.Base.Name), slog.String("error", err.Error()))
			}
			base = make(map[string]store.TemplateRow, len(baseRows))
			for _, row := range baseRows {
				base[row.ID] = row
			}
		}
		if row, ok := base[id]; ok {
			if err := db.UpsertTemplate(ctx, row); err != nil {
				logger.Warn("catalog: restore failed", slog.String("id", id), slog.String("error", err.Error()))
				continue
			}
			logger.Debug("catalog: restored", slog.String("id", id), slog.String("source", row.Source))
			res.Upserted = append(res.Upserted, id)
			continue
		}
		if err := db.DeleteTemplate(ctx, id); err != nil {
			logger.Warn("catalog: delete failed", slog.String("id", id), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("catalog: removed stale", slog.String("id", id))
		res.Deleted = append(res.Deleted, id)
	}

	return res, nil
}

// readRows parses every document of src into store rows. For duplicate
// ids the first document wins.
func readRows(src Source, logger *slog.Logger) ([]store.TemplateRow, error) {
	metas, err := src.Docs.List("", ".md")
	if err != nil {
		return nil, err
	}
	seen := make(map[string]string, len(metas))
	rows := make([]store.TemplateRow, 0, len(metas))
	for _, m := range metas {
		data, err := src.Docs.Read(m.Path)
		if err != nil {
			logger.Warn("catalog: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		doc, err := ParseDocument(m.Path, data)
		if err != nil {
			logger.Warn("catalog: parse failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		id := doc.Template.ID
		if prev, dup := seen[id]; dup {
			logger.Warn("catalog: duplicate template id", slog.String("id", id), slog.String("path", m.Path), slog.String("previous", prev))
			continue
		}
		seen[id] = m.Path
		rows = append(rows, store.TemplateRow{
			Template: doc.Template,
			Source:   src.Name,
			Checksum: checksum.Sum(data),
			Position: doc.Order,
		})
	}
	return rows, nil
}

// Templates parses every document of src without touching a store,
// ordered the way the store lists them.
func Templates(src Source) ([]models.Template, error) {
	metas, err := src.Docs.List("", ".md")
	if err != nil {
		return nil, err
	}
	docs := make([]*Document, 0, len(metas))
	for _, m := range metas {
		data, err := src.Docs.Read(m.Path)
		if err != nil {
			return nil, err
		}
		doc, err := ParseDocument(m.Path, data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	slices.SortStableFunc(docs, func(a, b *Document) int {
		if c := cmp.Compare(a.Order, b.Order); c != 0 {
			return c
		}
		return cmp.Compare(a.Template.ID, b.Template.ID)
	})
	out := make([]models.Template, len(docs))
	for i, d := range docs {
		out[i] = d.Template
	}
	return out, nil
}

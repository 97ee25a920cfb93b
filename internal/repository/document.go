package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/estatehub/internal/common"
	"github.com/joseph-ayodele/estatehub/internal/entity"
)

type DocumentRepository interface {
	AddDocument(ctx context.Context, doc *entity.ProfileDocument) (*entity.ProfileDocument, error)
	GetDocument(ctx context.Context, id uuid.UUID) (*entity.ProfileDocument, error)
	ListDocuments(ctx context.Context, profileID uuid.UUID) ([]*entity.ProfileDocument, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

type documentRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	return &documentRepository{
		db:     db,
		logger: logger,
	}
}

var documentColumns = []string{"id", "profile_id", "kind", "file_name", "storage_key", "content_type", "size_bytes", "uploaded_at", "accepted_at"}

func scanDocument(rows *entsql.Rows) (*entity.ProfileDocument, error) {
	var (
		d             entity.ProfileDocument
		id, profileID string
		uploadedAt    int64
		acceptedAt    sql.NullInt64
	)
	if err := rows.Scan(&id, &profileID, &d.Kind, &d.FileName, &d.StorageKey, &d.ContentType, &d.SizeBytes, &uploadedAt, &acceptedAt); err != nil {
		return nil, err
	}
	var err error
	if d.ID, err = uuid.Parse(id); err != nil {
		return nil, err
	}
	if d.ProfileID, err = uuid.Parse(profileID); err != nil {
		return nil, err
	}
	d.UploadedAt = fromMillis(uploadedAt)
	if acceptedAt.Valid {
		t := fromMillis(acceptedAt.Int64)
		d.AcceptedAt = &t
	}
	return &d, nil
}

func (r *documentRepository) AddDocument(ctx context.Context, doc *entity.ProfileDocument) (*entity.ProfileDocument, error) {
	out := *doc
	if out.ID == uuid.Nil {
		out.ID = newID()
	}
	if out.UploadedAt.IsZero() {
		out.UploadedAt = time.Now().UTC()
	}
	out.AcceptedAt = nil
	query, args := r.db.builder().Insert("profile_documents").
		Columns(documentColumns[:8]...).
		Values(out.ID.String(), out.ProfileID.String(), out.Kind, out.FileName, out.StorageKey, out.ContentType, out.SizeBytes, toMillis(out.UploadedAt)).
		Query()
	if err := r.db.drv.Exec(ctx, query, args, nil); err != nil {
		r.logger.Error("failed to add document", "profile_id", out.ProfileID, "file_name", out.FileName, "error", err)
		return nil, err
	}
	out.UploadedAt = fromMillis(toMillis(out.UploadedAt))
	return &out, nil
}

func (r *documentRepository) GetDocument(ctx context.Context, id uuid.UUID) (*entity.ProfileDocument, error) {
	b := r.db.builder()
	query, args := b.Select(documentColumns...).
		From(b.Table("profile_documents")).
		Where(entsql.EQ("id", id.String())).
		Query()
	var out *entity.ProfileDocument
	err := queryRows(ctx, r.db.drv, query, args, func(rows *entsql.Rows) error {
		d, err := scanDocument(rows)
		out = d
		return err
	})
	if err != nil {
		r.logger.Error("failed to get document", "document_id", id, "error", err)
		return nil, err
	}
	if out == nil {
		return nil, common.NotFoundErrorf("document %s not found", id)
	}
	return out, nil
}

func (r *documentRepository) ListDocuments(ctx context.Context, profileID uuid.UUID) ([]*entity.ProfileDocument, error) {
	b := r.db.builder()
	query, args := b.Select(documentColumns...).
		From(b.Table("profile_documents")).
		Where(entsql.EQ("profile_id", profileID.String())).
		OrderBy("uploaded_at", "id").
		Query()
	var out []*entity.ProfileDocument
	err := queryRows(ctx, r.db.drv, query, args, func(rows *entsql.Rows) error {
		d, err := scanDocument(rows)
		if err != nil {
			return err
		}
		out = append(out, d)
		return nil
	})
	if err != nil {
		r.logger.Error("failed to list documents", "profile_id", profileID, "error", err)
		return nil, err
	}
	return out, nil
}

// DeleteDocument removes a document that has not been accepted yet.
func (r *documentRepository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	query, args := r.db.builder().Delete("profile_documents").
		Where(entsql.And(
			entsql.EQ("id", id.String()),
			entsql.IsNull("accepted_at"),
		)).
		Query()
	n, err := execAffected(ctx, r.db.drv, query, args)
	if err != nil {
		r.logger.Error("failed to delete document", "document_id", id, "error", err)
		return err
	}
	if n == 0 {
		if _, err := r.GetDocument(ctx, id); err != nil {
			return err
		}
		return common.ConflictErrorf("document %s was accepted and can no longer be removed", id)
	}
	return nil
}

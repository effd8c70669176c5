package transactions

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lotbridge/lotbridge-backend/pkg/config"
	"github.com/lotbridge/lotbridge-backend/pkg/db/models"
	"github.com/lotbridge/lotbridge-backend/pkg/enums"
	pkgerrors "github.com/lotbridge/lotbridge-backend/pkg/errors"
	"github.com/lotbridge/lotbridge-backend/pkg/pagination"
)

// Service exposes transaction settlement operations.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*TransactionDTO, error)
	List(ctx context.Context, dealerID *uuid.UUID, params pagination.Params) (*ListResult, error)
	MarkPaid(ctx context.Context, id uuid.UUID) (*TransactionDTO, error)
	Complete(ctx context.Context, id uuid.UUID) (*TransactionDTO, error)
	BillOfSaleUpload(ctx context.Context, id uuid.UUID, contentType string) (*BillOfSaleUpload, error)
	BillOfSaleDownload(ctx context.Context, id uuid.UUID) (string, error)
}

// ListResult pairs a page of transactions with the cursor for the next page.
type ListResult struct {
	Transactions []TransactionDTO `json:"transactions"`
	NextCursor   string           `json:"next_cursor,omitempty"`
}

// BillOfSaleUpload carries a presigned PUT URL and the key it will land at.
type BillOfSaleUpload struct {
	UploadURL string `json:"upload_url"`
	ObjectKey string `json:"object_key"`
}

type urlSigner interface {
	SignedURL(bucket, object, contentType string, ttl time.Duration) (string, error)
	SignedReadURL(bucket, object string, ttl time.Duration) (string, error)
}

type service struct {
	repo   Repository
	signer urlSigner
	gcsCfg config.GCSConfig
}

// NewService builds a transactions service with the provided dependencies.
func NewService(repo Repository, signer urlSigner, gcsCfg config.GCSConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("transaction repository required")
	}
	if signer == nil {
		return nil, fmt.Errorf("url signer required")
	}
	return &service{repo: repo, signer: signer, gcsCfg: gcsCfg}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*TransactionDTO, error) {
	txn, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(txn), nil
}

func (s *service) List(ctx context.Context, dealerID *uuid.UUID, params pagination.Params) (*ListResult, error) {
	rows, err := s.repo.List(ctx, dealerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &ListResult{Transactions: make([]TransactionDTO, 0, len(rows))}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for i := range rows {
		result.Transactions = append(result.Transactions, *FromModel(&rows[i]))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

// MarkPaid records that funds arrived. Settlement order is paid first, then
// complete.
func (s *service) MarkPaid(ctx context.Context, id uuid.UUID) (*TransactionDTO, error) {
	txn, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn.IsPaid {
		return FromModel(txn), nil
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]any{"is_paid": true}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark transaction paid")
	}
	txn.IsPaid = true
	return FromModel(txn), nil
}

func (s *service) Complete(ctx context.Context, id uuid.UUID) (*TransactionDTO, error) {
	txn, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !txn.IsPaid {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "transaction must be paid before completion")
	}
	if txn.Status == enums.TransactionStatusCompleted {
		return FromModel(txn), nil
	}
	if err := s.repo.UpdateFields(ctx, id, map[string]any{"status": enums.TransactionStatusCompleted}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete transaction")
	}
	txn.Status = enums.TransactionStatusCompleted
	return FromModel(txn), nil
}

// BillOfSaleUpload presigns a PUT for the bill of sale and attaches the
// object key to the transaction. The client uploads directly to storage.
func (s *service) BillOfSaleUpload(ctx context.Context, id uuid.UUID, contentType string) (*BillOfSaleUpload, error) {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		contentType = "application/pdf"
	}
	txn, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("bill-of-sale/%s%s", txn.ID, extensionFor(contentType))
	uploadURL, err := s.signer.SignedURL(s.gcsCfg.BucketName, key, contentType, s.gcsCfg.UploadURLExpiry)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	if err := s.repo.UpdateFields(ctx, id, map[string]any{"bill_of_sale_key": key}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "attach bill of sale")
	}

	return &BillOfSaleUpload{UploadURL: uploadURL, ObjectKey: key}, nil
}

// BillOfSaleDownload presigns a GET for a previously attached bill of sale.
func (s *service) BillOfSaleDownload(ctx context.Context, id uuid.UUID) (string, error) {
	txn, err := s.load(ctx, id)
	if err != nil {
		return "", err
	}
	if txn.BillOfSaleKey == nil || *txn.BillOfSaleKey == "" {
		return "", pkgerrors.New(pkgerrors.CodeNotFound, "no bill of sale attached")
	}
	downloadURL, err := s.signer.SignedReadURL(s.gcsCfg.BucketName, *txn.BillOfSaleKey, s.gcsCfg.DownloadURLExpiry)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign download url")
	}
	return downloadURL, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Transaction, error) {
	txn, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load transaction")
	}
	return txn, nil
}

func extensionFor(contentType string) string {
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	for _, ext := range exts {
		if ext == ".pdf" || ext == ".png" || ext == ".jpg" || ext == ".jpeg" {
			return ext
		}
	}
	return exts[0]
}

package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"star-exchange/internal/repository"
	"star-exchange/internal/storage"
)

// ErrReportingDisabled is returned when no storage bucket is configured.
var ErrReportingDisabled = errors.New("report storage is not configured")

// ReportService exports the full balance sheet as CSV to object storage.
// Authorization is handled by the admin service before export runs.
type ReportService interface {
	Export(ctx context.Context, actorID int64) (string, error)
	List(ctx context.Context, actorID int64) ([]storage.ObjectInfo, error)
}

type reportService struct {
	admin     AdminService
	balances  repository.BalanceRepository
	store     storage.Service
	bucket    string
	keyPrefix string
}

func NewReportService(admin AdminService, balances repository.BalanceRepository, store storage.Service, bucket, keyPrefix string) ReportService {
	return &reportService{
		admin:     admin,
		balances:  balances,
		store:     store,
		bucket:    bucket,
		keyPrefix: keyPrefix,
	}
}

func (s *reportService) Export(ctx context.Context, actorID int64) (string, error) {
	if err := s.admin.Authorize(ctx, actorID); err != nil {
		return "", err
	}
	if s.store == nil || s.bucket == "" {
		return "", ErrReportingDisabled
	}

	entries, err := s.balances.ListAll(ctx)
	if err != nil {
		return "", fmt.Errorf("collect balances: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"user_id", "username", "crypto_id", "symbol", "balance"}); err != nil {
		return "", fmt.Errorf("write report header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			strconv.FormatInt(e.UserID, 10),
			e.Username,
			strconv.FormatInt(e.CryptoID, 10),
			e.Symbol,
			strconv.FormatFloat(e.Balance, 'f', -1, 64),
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("write report row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush report: %w", err)
	}

	key := fmt.Sprintf("%s/balances-%s-%s.csv",
		s.keyPrefix,
		time.Now().UTC().Format("20060102-150405"),
		uuid.NewString(),
	)
	location, err := s.store.UploadObject(ctx, s.bucket, key, &buf)
	if err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}
	return location, nil
}

func (s *reportService) List(ctx context.Context, actorID int64) ([]storage.ObjectInfo, error) {
	if err := s.admin.Authorize(ctx, actorID); err != nil {
		return nil, err
	}
	if s.store == nil || s.bucket == "" {
		return nil, ErrReportingDisabled
	}
	return s.store.ListObjects(ctx, s.bucket, s.keyPrefix)
}

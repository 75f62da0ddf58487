package file

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ozziework/contracts-backend-go/internal/pkg/storage"
)

// FileService stores and resolves the artifacts a payroll run produces.
type FileService interface {
	// StorePayslipPDF stores the rendered payslip document.
	StorePayslipPDF(ctx context.Context, payslipID string, data []byte) (string, error)

	// StoreBankFile stores the generated ABA instruction file.
	StoreBankFile(ctx context.Context, payslipID string, content string) (string, error)

	// Generic operations
	DeleteFile(ctx context.Context, path string) error
	GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

type fileServiceImpl struct {
	storage storage.FileStorage
}

func NewFileService(storage storage.FileStorage) FileService {
	return &fileServiceImpl{
		storage: storage,
	}
}

// StorePayslipPDF stores the payslip document under payslips/{id}.pdf
func (s *fileServiceImpl) StorePayslipPDF(ctx context.Context, payslipID string, data []byte) (string, error) {
	path := filepath.Join("payslips", fmt.Sprintf("%s.pdf", payslipID))

	uploadedPath, err := s.storage.Upload(ctx, bytes.NewReader(data), path, "application/pdf")
	if err != nil {
		return "", fmt.Errorf("failed to upload payslip pdf: %w", err)
	}

	return uploadedPath, nil
}

// StoreBankFile stores the ABA file under bank-files/{id}.aba
func (s *fileServiceImpl) StoreBankFile(ctx context.Context, payslipID string, content string) (string, error) {
	path := filepath.Join("bank-files", fmt.Sprintf("%s.aba", payslipID))

	uploadedPath, err := s.storage.Upload(ctx, strings.NewReader(content), path, "text/plain")
	if err != nil {
		return "", fmt.Errorf("failed to upload bank file: %w", err)
	}

	return uploadedPath, nil
}

// DeleteFile deletes a file
func (s *fileServiceImpl) DeleteFile(ctx context.Context, path string) error {
	return s.storage.Delete(ctx, path)
}

// GetFileURL generates URL to access file
func (s *fileServiceImpl) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.storage.GetURL(ctx, path, expiry)
}

package services

import (
	"context"
	"errors"
	"mime/multipart"
	"time"

	"casework-service/internal/models"
	"casework-service/internal/repositories/postgres"
	"casework-service/internal/storage"
	"casework-service/internal/websocket"

	"gorm.io/gorm"
)

var ErrDocumentNotFound = errors.New("document not found")

// DocumentService handles visitor document uploads and the admin
// verification workflow. Status changes fan out on the admin_documents
// stream and as a targeted notification to the owner.
type DocumentService struct {
	store      *storage.DocumentStore
	repo       *postgres.DocumentRepository
	dispatcher Dispatcher
}

func NewDocumentService(store *storage.DocumentStore, repo *postgres.DocumentRepository, dispatcher Dispatcher) *DocumentService {
	return &DocumentService{store: store, repo: repo, dispatcher: dispatcher}
}

func (s *DocumentService) Upload(ctx context.Context, userID uint, file *multipart.FileHeader) (*models.Document, error) {
	key, url, err := s.store.Upload(ctx, userID, file)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		UserID:    userID,
		Name:      file.Filename,
		ObjectKey: key,
		URL:       url,
		Status:    models.DocumentPending,
	}
	if err := s.repo.Create(doc); err != nil {
		return nil, err
	}

	// Tell reviewers there is new work.
	s.dispatcher.BroadcastToCategory(websocket.CategoryAdminDocuments,
		websocket.NewDocumentEvent(doc.ID, userID, doc.Status, time.Now()))

	return doc, nil
}

func (s *DocumentService) Verify(id, verifierID uint, req *models.VerifyDocumentRequest) error {
	doc, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDocumentNotFound
		}
		return err
	}

	if err := s.repo.SetVerification(id, verifierID, req.Status, req.Note); err != nil {
		return err
	}

	now := time.Now()
	event := websocket.NewDocumentEvent(id, doc.UserID, req.Status, now)
	s.dispatcher.BroadcastToCategory(websocket.CategoryAdminDocuments, event)

	// The owner hears about it directly; offline is fine.
	if err := s.dispatcher.BroadcastToUser(doc.UserID, event); err != nil &&
		!errors.Is(err, websocket.ErrNoActiveConnections) {
		return err
	}
	return nil
}

func (s *DocumentService) ListForUser(userID uint) ([]models.Document, error) {
	return s.repo.ListByUser(userID)
}

func (s *DocumentService) ListPending() ([]models.Document, error) {
	return s.repo.ListPending()
}

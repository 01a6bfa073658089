package services

import (
	"errors"
	"testing"

	"casework-service/internal/models"
	"casework-service/internal/websocket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeNotificationStore struct {
	rows   []models.Notification
	nextID uint
	failed bool
}

func (f *fakeNotificationStore) Create(n *models.Notification) error {
	if f.failed {
		return errors.New("db unavailable")
	}
	f.nextID++
	n.ID = f.nextID
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotificationStore) ListByUser(userID uint, limit int) ([]models.Notification, error) {
	var out []models.Notification
	for i := len(f.rows) - 1; i >= 0 && len(out) < limit; i-- {
		if f.rows[i].UserID == userID {
			out = append(out, f.rows[i])
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) ListUnreadByUser(userID uint) ([]models.Notification, error) {
	var out []models.Notification
	for _, n := range f.rows {
		if n.UserID == userID && !n.Read {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotificationStore) MarkRead(userID, id uint) error {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			f.rows[i].Read = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

type fakeDispatcher struct {
	userEvents     map[uint][]any
	categoryEvents map[string][]any
	offline        bool
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		userEvents:     make(map[uint][]any),
		categoryEvents: make(map[string][]any),
	}
}

func (f *fakeDispatcher) BroadcastToUser(userID uint, payload any) error {
	if f.offline {
		return websocket.ErrNoActiveConnections
	}
	f.userEvents[userID] = append(f.userEvents[userID], payload)
	return nil
}

func (f *fakeDispatcher) BroadcastToCategory(category string, payload any) {
	f.categoryEvents[category] = append(f.categoryEvents[category], payload)
}

func (f *fakeDispatcher) BroadcastAll(payload any) {}

type fakePublisher struct {
	published []uint
	err       error
}

func (f *fakePublisher) PublishNotificationCreated(n *models.Notification) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, n.ID)
	return nil
}

func TestCreatePersistsPublishesAndPushes(t *testing.T) {
	store := &fakeNotificationStore{}
	dispatcher := newFakeDispatcher()
	publisher := &fakePublisher{}
	svc := NewNotificationService(store, dispatcher, publisher)

	resp, err := svc.Create(&models.CreateNotificationRequest{
		UserID:  7,
		Title:   "Appointment booked",
		Message: "Thursday 10:00 with your caseworker",
	})
	require.NoError(t, err)

	assert.Equal(t, models.PriorityNormal, resp.Priority)
	assert.Len(t, store.rows, 1)
	assert.Equal(t, []uint{resp.ID}, publisher.published)

	require.Len(t, dispatcher.userEvents[7], 1)
	event, ok := dispatcher.userEvents[7][0].(websocket.NotificationEvent)
	require.True(t, ok)
	assert.Equal(t, "Appointment booked", event.Title)
}

func TestCreateForOfflineUserIsNotAnError(t *testing.T) {
	store := &fakeNotificationStore{}
	dispatcher := newFakeDispatcher()
	dispatcher.offline = true
	svc := NewNotificationService(store, dispatcher, &fakePublisher{})

	_, err := svc.Create(&models.CreateNotificationRequest{
		UserID: 7, Title: "t", Message: "m",
	})
	require.NoError(t, err)
	assert.Len(t, store.rows, 1, "notification must persist as backlog")
}

func TestCreateSurvivesPublisherFailure(t *testing.T) {
	store := &fakeNotificationStore{}
	dispatcher := newFakeDispatcher()
	publisher := &fakePublisher{err: errors.New("broker down")}
	svc := NewNotificationService(store, dispatcher, publisher)

	_, err := svc.Create(&models.CreateNotificationRequest{
		UserID: 7, Title: "t", Message: "m",
	})
	require.NoError(t, err)
	assert.Len(t, dispatcher.userEvents[7], 1, "push must still happen")
}

func TestCreateFailsWhenStoreFails(t *testing.T) {
	store := &fakeNotificationStore{failed: true}
	dispatcher := newFakeDispatcher()
	svc := NewNotificationService(store, dispatcher, &fakePublisher{})

	_, err := svc.Create(&models.CreateNotificationRequest{
		UserID: 7, Title: "t", Message: "m",
	})
	require.Error(t, err)
	assert.Empty(t, dispatcher.userEvents, "nothing pushed without a persisted row")
}

func TestSendBacklogReplaysOnlyUnread(t *testing.T) {
	store := &fakeNotificationStore{}
	dispatcher := newFakeDispatcher()
	svc := NewNotificationService(store, dispatcher, &fakePublisher{})

	for i := 0; i < 3; i++ {
		_, err := svc.Create(&models.CreateNotificationRequest{
			UserID: 7, Title: "t", Message: "m",
		})
		require.NoError(t, err)
	}
	require.NoError(t, svc.MarkRead(7, 2))

	dispatcher.userEvents = make(map[uint][]any)
	svc.SendBacklog(7)

	assert.Len(t, dispatcher.userEvents[7], 2)
}

func TestListForUserClampsLimit(t *testing.T) {
	store := &fakeNotificationStore{}
	svc := NewNotificationService(store, newFakeDispatcher(), &fakePublisher{})

	for i := 0; i < 60; i++ {
		_, err := svc.Create(&models.CreateNotificationRequest{
			UserID: 7, Title: "t", Message: "m",
		})
		require.NoError(t, err)
	}

	rows, err := svc.ListForUser(7, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 50)

	rows, err = svc.ListForUser(7, 1000)
	require.NoError(t, err)
	assert.Len(t, rows, 50)
}

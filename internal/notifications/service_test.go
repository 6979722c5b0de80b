package notifications

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/capitlshop/storefront-backend/pkg/db/models"
	"github.com/capitlshop/storefront-backend/pkg/enums"
	pkgerrors "github.com/capitlshop/storefront-backend/pkg/errors"
	"github.com/capitlshop/storefront-backend/pkg/logger"
	"github.com/capitlshop/storefront-backend/pkg/pagination"
)

type stubRepo struct {
	created  []*models.Notification
	rows     []models.Notification
	next     *pagination.Cursor
	found    bool
	allCount int64
}

func (r *stubRepo) Create(ctx context.Context, notification *models.Notification) error {
	r.created = append(r.created, notification)
	return nil
}

func (r *stubRepo) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	return r.rows, r.next, nil
}

func (r *stubRepo) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (markResult, error) {
	return markResult{Updated: r.found, Found: r.found}, nil
}

func (r *stubRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	return r.allCount, nil
}

func TestNotifyPersistsEvent(t *testing.T) {
	t.Parallel()

	repo := &stubRepo{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	userID := uuid.New()
	if err := svc.Notify(context.Background(), userID, enums.NotificationLevelInfo, "Leather Jacket removed from cart"); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if len(repo.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(repo.created))
	}
	got := repo.created[0]
	if got.UserID != userID || got.Level != enums.NotificationLevelInfo {
		t.Fatalf("unexpected notification %+v", got)
	}
}

func TestNotifyRejectsBadInput(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	cases := []struct {
		name    string
		userID  uuid.UUID
		level   enums.NotificationLevel
		message string
	}{
		{"nil user", uuid.Nil, enums.NotificationLevelInfo, "m"},
		{"bad level", uuid.New(), enums.NotificationLevel("loud"), "m"},
		{"empty message", uuid.New(), enums.NotificationLevelError, ""},
	}
	for _, tc := range cases {
		err := svc.Notify(context.Background(), tc.userID, tc.level, tc.message)
		if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
			t.Fatalf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestListEncodesNextCursor(t *testing.T) {
	t.Parallel()

	next := &pagination.Cursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}
	repo := &stubRepo{rows: []models.Notification{{ID: uuid.New()}}, next: next}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Limit: 1})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if result.Cursor == "" {
		t.Fatal("expected a next-page cursor")
	}
	if len(result.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(result.Items))
	}
}

func TestMarkReadNotFound(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubRepo{found: false})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	err = svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEmitterSwallowsDeliveryFailure(t *testing.T) {
	t.Parallel()

	log := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(&stubRepo{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	emitter, err := NewEmitter(svc, log)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}

	// An unparseable shopper id is logged, not raised.
	emitter.Success(context.Background(), "not-a-uuid", "Payment Successful! Your order has been placed.")
	emitter.Info(context.Background(), uuid.NewString(), "Desk Lamp removed from cart")
}

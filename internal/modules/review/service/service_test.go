package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/pocmarket/internal/entity"
	"anoa.com/pocmarket/internal/modules/review/dto"
	"anoa.com/pocmarket/internal/modules/review/repository"
	"anoa.com/pocmarket/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeReviewRepo struct {
	reviews []*entity.Review
	badges  []*entity.UserBadge
}

func (f *fakeReviewRepo) Atomic(ctx context.Context, fn func(tx repository.ReviewRepository) error) error {
	return fn(f)
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	f.reviews = append(f.reviews, review)
	return nil
}

func (f *fakeReviewRepo) ExistsByContractAndReviewer(ctx context.Context, contractID, reviewerID uuid.UUID) (bool, error) {
	for _, r := range f.reviews {
		if r.ContractID == contractID && r.ReviewerID == reviewerID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepo) CountForReviewee(ctx context.Context, revieweeID uuid.UUID) (int64, error) {
	var count int64
	for _, r := range f.reviews {
		if r.RevieweeID == revieweeID {
			count++
		}
	}
	return count, nil
}

func (f *fakeReviewRepo) AverageRating(ctx context.Context, revieweeID uuid.UUID) (float64, error) {
	var sum, count float64
	for _, r := range f.reviews {
		if r.RevieweeID == revieweeID {
			sum += float64(r.Rating)
			count++
		}
	}
	if count == 0 {
		return 0, nil
	}
	return sum / count, nil
}

func (f *fakeReviewRepo) HasBadge(ctx context.Context, userID uuid.UUID, badgeType entity.BadgeType) (bool, error) {
	for _, b := range f.badges {
		if b.UserID == userID && b.BadgeType == badgeType {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepo) GrantBadge(ctx context.Context, badge *entity.UserBadge) error {
	f.badges = append(f.badges, badge)
	return nil
}

func (f *fakeReviewRepo) FindForUser(ctx context.Context, userID uuid.UUID, received bool, offset, limit int) ([]*entity.Review, int64, error) {
	var out []*entity.Review
	for _, r := range f.reviews {
		if (received && r.RevieweeID == userID) || (!received && r.ReviewerID == userID) {
			out = append(out, r)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeReviewRepo) FindBadges(ctx context.Context, userID uuid.UUID) ([]entity.UserBadge, error) {
	var out []entity.UserBadge
	for _, b := range f.badges {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

var _ repository.ReviewRepository = (*fakeReviewRepo)(nil)

type fakeContractRepo struct {
	contracts map[uuid.UUID]*entity.Contract
}

func (f *fakeContractRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Contract, error) {
	contract, ok := f.contracts[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return contract, nil
}

func (f *fakeContractRepo) FindByParty(ctx context.Context, userID uuid.UUID, offset, limit int) ([]*entity.Contract, int64, error) {
	return nil, 0, nil
}

func (f *fakeContractRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ContractStatus) error {
	contract, ok := f.contracts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	contract.Status = status
	return nil
}

type sentNotification struct {
	userID    uuid.UUID
	notifType string
}

type fakeNotifier struct {
	sent []sentNotification
}

func (f *fakeNotifier) CreateNotification(ctx context.Context, n *entity.Notification) error {
	f.sent = append(f.sent, sentNotification{userID: n.UserID, notifType: n.Type})
	return nil
}

func (f *fakeNotifier) Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) error {
	f.sent = append(f.sent, sentNotification{userID: userID, notifType: notifType})
	return nil
}

func (f *fakeNotifier) GetNotifications(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return nil, nil
}

func (f *fakeNotifier) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error { return nil }

func (f *fakeNotifier) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error { return nil }

func (f *fakeNotifier) UnreadCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

type fixture struct {
	svc       ReviewService
	reviews   *fakeReviewRepo
	contracts *fakeContractRepo
	notifier  *fakeNotifier

	client   uuid.UUID
	engineer uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	reviews := &fakeReviewRepo{}
	contracts := &fakeContractRepo{contracts: make(map[uuid.UUID]*entity.Contract)}
	notifier := &fakeNotifier{}

	f := &fixture{
		svc:       NewReviewService(reviews, contracts, notifier),
		reviews:   reviews,
		contracts: contracts,
		notifier:  notifier,
		client:    uuid.New(),
		engineer:  uuid.New(),
	}
	return f
}

// addContract registers a completed contract between the fixture's client and
// engineer and returns its ID.
func (f *fixture) addContract(status entity.ContractStatus) uuid.UUID {
	id := uuid.New()
	f.contracts.contracts[id] = &entity.Contract{
		ID:       id,
		Project:  entity.Project{UserID: f.client},
		Proposal: entity.Proposal{EngineerID: f.engineer},
		Status:   status,
	}
	return id
}

func (f *fixture) seedReviews(revieweeID uuid.UUID, ratings ...int) {
	for _, rating := range ratings {
		f.reviews.reviews = append(f.reviews.reviews, &entity.Review{
			ID:         uuid.New(),
			ContractID: uuid.New(),
			ReviewerID: uuid.New(),
			RevieweeID: revieweeID,
			Rating:     rating,
		})
	}
}

func badgeTypes(badges []entity.UserBadge) []entity.BadgeType {
	out := make([]entity.BadgeType, 0, len(badges))
	for _, b := range badges {
		out = append(out, b.BadgeType)
	}
	return out
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()

	t.Run("outsider is rejected", func(t *testing.T) {
		f := newFixture(t)
		contractID := f.addContract(entity.ContractCompleted)

		_, _, err := f.svc.CreateReview(ctx, uuid.New(), dto.CreateReviewInput{
			ContractID: contractID.String(),
			Rating:     5,
		})
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("active contract cannot be reviewed", func(t *testing.T) {
		f := newFixture(t)
		contractID := f.addContract(entity.ContractActive)

		_, _, err := f.svc.CreateReview(ctx, f.client, dto.CreateReviewInput{
			ContractID: contractID.String(),
			Rating:     5,
		})
		if !errors.Is(err, apperror.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
	})

	t.Run("second review on same contract conflicts", func(t *testing.T) {
		f := newFixture(t)
		contractID := f.addContract(entity.ContractCompleted)

		if _, _, err := f.svc.CreateReview(ctx, f.client, dto.CreateReviewInput{ContractID: contractID.String(), Rating: 4}); err != nil {
			t.Fatalf("first review error = %v", err)
		}

		_, _, err := f.svc.CreateReview(ctx, f.client, dto.CreateReviewInput{ContractID: contractID.String(), Rating: 5})
		if !errors.Is(err, apperror.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
	})

	t.Run("client reviews engineer, engineer reviews client", func(t *testing.T) {
		f := newFixture(t)
		contractID := f.addContract(entity.ContractCompleted)

		fromClient, _, err := f.svc.CreateReview(ctx, f.client, dto.CreateReviewInput{ContractID: contractID.String(), Rating: 4})
		if err != nil {
			t.Fatalf("CreateReview() error = %v", err)
		}
		if fromClient.RevieweeID != f.engineer {
			t.Errorf("reviewee = %s, want the engineer", fromClient.RevieweeID)
		}

		fromEngineer, _, err := f.svc.CreateReview(ctx, f.engineer, dto.CreateReviewInput{ContractID: contractID.String(), Rating: 5})
		if err != nil {
			t.Fatalf("CreateReview() error = %v", err)
		}
		if fromEngineer.RevieweeID != f.client {
			t.Errorf("reviewee = %s, want the client", fromEngineer.RevieweeID)
		}
	})
}

func TestBadgeEngine(t *testing.T) {
	ctx := context.Background()

	t.Run("first review grants FIRST_PROJECT", func(t *testing.T) {
		f := newFixture(t)
		contractID := f.addContract(entity.ContractCompleted)

		_, earned, err := f.svc.CreateReview(ctx, f.client, dto.CreateReviewInput{ContractID: contractID.String(), Rating: 3})
		if err != nil {
			t.Fatalf("CreateReview() error = %v", err)
		}
		if got := badgeTypes(earned); len(got) != 1 || got[0] != entity.BadgeFirstProject {
			t.Errorf("earned = %v, want [FIRST_PROJECT]", got)
		}
	})

	t.Run("fifth review grants FIVE_PROJECTS only on the exact count", func(t *testing.T) {
		f := newFixture(t)
		f.seedReviews(f.engineer, 2, 2, 2, 2)
		contractID := f.addContract(entity.ContractCompleted)

		_, earned, err := f.svc.CreateReview(ctx, f.client, dto.CreateReviewInput{ContractID: contractID.String(), Rating: 2})
		if err != nil {
			t.Fatalf("CreateReview() error = %v", err)
		}
		if got := badgeTypes(earned); len(got) != 1 || got[0] != entity.BadgeFiveProjects {
			t.Errorf("earned = %v, want [FIVE_PROJECTS]", got)
		}
	})

	t.Run("sixth review grants nothing on count", func(t *testing.T) {
		f := newFixture(t)
		f.seedReviews(f.engineer, 2, 2, 2, 2, 2)
		contractID := f.addContract(entity.ContractCompleted)

		_, earned, err := f.svc.CreateReview(ctx, f.client, dto.CreateReviewInput{ContractID: contractID.String(), Rating: 2})
		if err != nil {
			t.Fatalf("CreateReview() error = %v", err)
		}
		if len(earned) != 0 {
			t.Errorf("earned = %v, want none", badgeTypes(earned))
		}
	})

	t.Run("high mean with three reviews grants TOP_RATED", func(t *testing.T) {
		f := newFixture(t)
		f.seedReviews(f.engineer, 5, 5)
		contractID := f.addContract(entity.ContractCompleted)

		_, earned, err := f.svc.CreateReview(ctx, f.client, dto.CreateReviewInput{ContractID: contractID.String(), Rating: 4})
		if err != nil {
			t.Fatalf("CreateReview() error = %v", err)
		}
		// mean of 5,5,4 is 4.67 over 3 reviews
		if got := badgeTypes(earned); len(got) != 1 || got[0] != entity.BadgeTopRated {
			t.Errorf("earned = %v, want [TOP_RATED]", got)
		}
	})

	t.Run("TOP_RATED is granted at most once", func(t *testing.T) {
		f := newFixture(t)
		f.seedReviews(f.engineer, 5, 5, 5)
		f.reviews.badges = append(f.reviews.badges, &entity.UserBadge{UserID: f.engineer, BadgeType: entity.BadgeTopRated})
		contractID := f.addContract(entity.ContractCompleted)

		_, earned, err := f.svc.CreateReview(ctx, f.client, dto.CreateReviewInput{ContractID: contractID.String(), Rating: 5})
		if err != nil {
			t.Fatalf("CreateReview() error = %v", err)
		}
		if len(earned) != 0 {
			t.Errorf("earned = %v, want none", badgeTypes(earned))
		}
	})

	t.Run("low mean never grants TOP_RATED", func(t *testing.T) {
		f := newFixture(t)
		f.seedReviews(f.engineer, 5, 3)
		contractID := f.addContract(entity.ContractCompleted)

		_, earned, err := f.svc.CreateReview(ctx, f.client, dto.CreateReviewInput{ContractID: contractID.String(), Rating: 5})
		if err != nil {
			t.Fatalf("CreateReview() error = %v", err)
		}
		// mean of 5,3,5 is 4.33
		if len(earned) != 0 {
			t.Errorf("earned = %v, want none", badgeTypes(earned))
		}
	})

	t.Run("badge notifications follow the review notification", func(t *testing.T) {
		f := newFixture(t)
		contractID := f.addContract(entity.ContractCompleted)

		if _, _, err := f.svc.CreateReview(ctx, f.client, dto.CreateReviewInput{ContractID: contractID.String(), Rating: 5}); err != nil {
			t.Fatalf("CreateReview() error = %v", err)
		}

		if len(f.notifier.sent) != 2 {
			t.Fatalf("notifications = %d, want 2", len(f.notifier.sent))
		}
		if f.notifier.sent[0].notifType != entity.NotificationReviewReceived {
			t.Errorf("first notification = %s, want REVIEW_RECEIVED", f.notifier.sent[0].notifType)
		}
		if f.notifier.sent[1].notifType != entity.NotificationBadgeEarned {
			t.Errorf("second notification = %s, want BADGE_EARNED", f.notifier.sent[1].notifType)
		}
		for _, sent := range f.notifier.sent {
			if sent.userID != f.engineer {
				t.Errorf("notification went to %s, want the reviewee", sent.userID)
			}
		}
	})
}

func TestListReviews(t *testing.T) {
	ctx := context.Background()

	t.Run("missing userId is a bad request", func(t *testing.T) {
		f := newFixture(t)

		_, _, err := f.svc.ListReviews(ctx, dto.ReviewListFilter{})
		if !errors.Is(err, apperror.ErrBadRequest) {
			t.Errorf("error = %v, want ErrBadRequest", err)
		}
	})

	t.Run("unknown type is invalid", func(t *testing.T) {
		f := newFixture(t)

		_, _, err := f.svc.ListReviews(ctx, dto.ReviewListFilter{UserID: uuid.NewString(), Type: "sent"})
		if !errors.Is(err, apperror.ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}
	})

	t.Run("received and given are split", func(t *testing.T) {
		f := newFixture(t)
		userID := uuid.New()
		f.seedReviews(userID, 5, 4)
		f.reviews.reviews = append(f.reviews.reviews, &entity.Review{
			ID:         uuid.New(),
			ReviewerID: userID,
			RevieweeID: uuid.New(),
			Rating:     3,
		})

		received, _, err := f.svc.ListReviews(ctx, dto.ReviewListFilter{UserID: userID.String()})
		if err != nil {
			t.Fatalf("ListReviews() error = %v", err)
		}
		if len(received) != 2 {
			t.Errorf("received = %d, want 2", len(received))
		}

		given, _, err := f.svc.ListReviews(ctx, dto.ReviewListFilter{UserID: userID.String(), Type: "given"})
		if err != nil {
			t.Fatalf("ListReviews() error = %v", err)
		}
		if len(given) != 1 {
			t.Errorf("given = %d, want 1", len(given))
		}
	})
}

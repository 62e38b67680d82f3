package service

import (
	"context"
	"errors"
	"testing"

	"anoa.com/pocmarket/internal/entity"
	"anoa.com/pocmarket/internal/modules/message/dto"
	"anoa.com/pocmarket/pkg/apperror"
	commonDto "anoa.com/pocmarket/pkg/dto"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeMessageRepo struct {
	messages map[uuid.UUID]*entity.Message

	linkedAttachments []uint
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[uuid.UUID]*entity.Message)}
}

func (f *fakeMessageRepo) Create(ctx context.Context, message *entity.Message, attachmentIDs []uint) error {
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	f.messages[message.ID] = message
	f.linkedAttachments = append(f.linkedAttachments, attachmentIDs...)
	return nil
}

func (f *fakeMessageRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	message, ok := f.messages[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return message, nil
}

func (f *fakeMessageRepo) FindThread(ctx context.Context, owner entity.ThreadOwner, offset, limit int) ([]*entity.Message, int64, error) {
	var out []*entity.Message
	for _, m := range f.messages {
		if m.Owner() == owner {
			out = append(out, m)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeMessageRepo) SetPinned(ctx context.Context, id uuid.UUID, pinned bool) error {
	message, ok := f.messages[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	message.IsPinned = pinned
	return nil
}

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
	return nil
}

type fakeProposalRepo struct {
	proposals map[uuid.UUID]*entity.Proposal
}

func (f *fakeProposalRepo) Create(ctx context.Context, proposal *entity.Proposal) error { return nil }

func (f *fakeProposalRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Proposal, error) {
	proposal, ok := f.proposals[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return proposal, nil
}

func (f *fakeProposalRepo) FindByEngineer(ctx context.Context, engineerID uuid.UUID, offset, limit int) ([]*entity.Proposal, int64, error) {
	return nil, 0, nil
}

func (f *fakeProposalRepo) FindActiveByProjectAndEngineer(ctx context.Context, projectID, engineerID uuid.UUID) (*entity.Proposal, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProposalRepo) Update(ctx context.Context, proposal *entity.Proposal) error { return nil }

func (f *fakeProposalRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ProposalStatus) error {
	return nil
}

func (f *fakeProposalRepo) Accept(ctx context.Context, proposal *entity.Proposal) (*entity.Contract, []entity.Proposal, error) {
	return nil, nil, nil
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
	svc      MessageService
	messages *fakeMessageRepo
	notifier *fakeNotifier

	client     uuid.UUID
	engineer   uuid.UUID
	contractID uuid.UUID
	proposalID uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	messages := newFakeMessageRepo()
	notifier := &fakeNotifier{}

	client := uuid.New()
	engineer := uuid.New()

	contractID := uuid.New()
	contracts := &fakeContractRepo{contracts: map[uuid.UUID]*entity.Contract{
		contractID: {
			ID:       contractID,
			Project:  entity.Project{UserID: client},
			Proposal: entity.Proposal{EngineerID: engineer},
		},
	}}

	proposalID := uuid.New()
	proposals := &fakeProposalRepo{proposals: map[uuid.UUID]*entity.Proposal{
		proposalID: {
			ID:         proposalID,
			Project:    entity.Project{UserID: client},
			EngineerID: engineer,
		},
	}}

	return &fixture{
		svc:        NewMessageService(messages, contracts, proposals, notifier, nil, 0),
		messages:   messages,
		notifier:   notifier,
		client:     client,
		engineer:   engineer,
		contractID: contractID,
		proposalID: proposalID,
	}
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("party sends on a contract thread and the other party is notified", func(t *testing.T) {
		f := newFixture(t)
		owner := entity.ThreadOwner{Kind: entity.ThreadOwnerContract, ID: f.contractID}

		sent, err := f.svc.SendMessage(ctx, f.client, owner, dto.CreateMessageInput{Body: "hello"})
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if sent.Owner() != owner {
			t.Errorf("owner = %+v, want the contract", sent.Owner())
		}
		if len(f.notifier.sent) != 1 || f.notifier.sent[0].userID != f.engineer {
			t.Errorf("notification = %+v, want one MESSAGE_RECEIVED to the engineer", f.notifier.sent)
		}
		if f.notifier.sent[0].notifType != entity.NotificationMessageReceived {
			t.Errorf("type = %s, want MESSAGE_RECEIVED", f.notifier.sent[0].notifType)
		}
	})

	t.Run("engineer sends on a proposal thread", func(t *testing.T) {
		f := newFixture(t)
		owner := entity.ThreadOwner{Kind: entity.ThreadOwnerProposal, ID: f.proposalID}

		sent, err := f.svc.SendMessage(ctx, f.engineer, owner, dto.CreateMessageInput{Body: "question about scope"})
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if sent.ProposalID == nil || *sent.ProposalID != f.proposalID {
			t.Error("message must hang off the proposal")
		}
		if sent.ContractID != nil {
			t.Error("contract id must stay empty on a proposal thread")
		}
		if len(f.notifier.sent) != 1 || f.notifier.sent[0].userID != f.client {
			t.Errorf("notification = %+v, want one to the client", f.notifier.sent)
		}
	})

	t.Run("outsider is rejected", func(t *testing.T) {
		f := newFixture(t)
		owner := entity.ThreadOwner{Kind: entity.ThreadOwnerContract, ID: f.contractID}

		_, err := f.svc.SendMessage(ctx, uuid.New(), owner, dto.CreateMessageInput{Body: "let me in"})
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("unknown thread is not found", func(t *testing.T) {
		f := newFixture(t)
		owner := entity.ThreadOwner{Kind: entity.ThreadOwnerContract, ID: uuid.New()}

		_, err := f.svc.SendMessage(ctx, f.client, owner, dto.CreateMessageInput{Body: "hi"})
		if !errors.Is(err, apperror.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("reply parent must live in the same thread", func(t *testing.T) {
		f := newFixture(t)
		contractOwner := entity.ThreadOwner{Kind: entity.ThreadOwnerContract, ID: f.contractID}
		proposalOwner := entity.ThreadOwner{Kind: entity.ThreadOwnerProposal, ID: f.proposalID}

		parent, err := f.svc.SendMessage(ctx, f.client, contractOwner, dto.CreateMessageInput{Body: "root"})
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}

		parentID := parent.ID.String()
		_, err = f.svc.SendMessage(ctx, f.engineer, proposalOwner, dto.CreateMessageInput{Body: "reply", ParentID: &parentID})
		if !errors.Is(err, apperror.ErrInvalidInput) {
			t.Errorf("error = %v, want ErrInvalidInput", err)
		}

		reply, err := f.svc.SendMessage(ctx, f.engineer, contractOwner, dto.CreateMessageInput{Body: "reply", ParentID: &parentID})
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if reply.ParentID == nil || *reply.ParentID != parent.ID {
			t.Error("reply must reference its parent")
		}
	})

	t.Run("attachments are claimed on create", func(t *testing.T) {
		f := newFixture(t)
		owner := entity.ThreadOwner{Kind: entity.ThreadOwnerContract, ID: f.contractID}

		_, err := f.svc.SendMessage(ctx, f.client, owner, dto.CreateMessageInput{Body: "document attached", AttachmentIDs: []uint{3, 7}})
		if err != nil {
			t.Fatalf("SendMessage() error = %v", err)
		}
		if len(f.messages.linkedAttachments) != 2 {
			t.Errorf("linked attachments = %v, want [3 7]", f.messages.linkedAttachments)
		}
	})
}

func TestGetThread(t *testing.T) {
	ctx := context.Background()

	t.Run("outsider cannot read", func(t *testing.T) {
		f := newFixture(t)
		owner := entity.ThreadOwner{Kind: entity.ThreadOwnerContract, ID: f.contractID}

		_, _, err := f.svc.GetThread(ctx, uuid.New(), owner, commonDto.PageFilter{})
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})

	t.Run("threads are isolated by owner", func(t *testing.T) {
		f := newFixture(t)
		contractOwner := entity.ThreadOwner{Kind: entity.ThreadOwnerContract, ID: f.contractID}
		proposalOwner := entity.ThreadOwner{Kind: entity.ThreadOwnerProposal, ID: f.proposalID}

		if _, err := f.svc.SendMessage(ctx, f.client, contractOwner, dto.CreateMessageInput{Body: "a"}); err != nil {
			t.Fatal(err)
		}
		if _, err := f.svc.SendMessage(ctx, f.engineer, proposalOwner, dto.CreateMessageInput{Body: "b"}); err != nil {
			t.Fatal(err)
		}

		messages, _, err := f.svc.GetThread(ctx, f.client, contractOwner, commonDto.PageFilter{})
		if err != nil {
			t.Fatalf("GetThread() error = %v", err)
		}
		if len(messages) != 1 || messages[0].Body != "a" {
			t.Errorf("messages = %+v, want only the contract message", messages)
		}
	})
}

func TestPinMessage(t *testing.T) {
	ctx := context.Background()

	f := newFixture(t)
	owner := entity.ThreadOwner{Kind: entity.ThreadOwnerContract, ID: f.contractID}

	sent, err := f.svc.SendMessage(ctx, f.client, owner, dto.CreateMessageInput{Body: "important"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.PinMessage(ctx, uuid.New(), sent.ID, true); !errors.Is(err, apperror.ErrForbidden) {
		t.Errorf("outsider pin error = %v, want ErrForbidden", err)
	}

	pinned, err := f.svc.PinMessage(ctx, f.engineer, sent.ID, true)
	if err != nil {
		t.Fatalf("PinMessage() error = %v", err)
	}
	if !pinned.IsPinned {
		t.Error("message should be pinned")
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/pocmarket/internal/entity"
	"anoa.com/pocmarket/internal/modules/project/dto"
	"anoa.com/pocmarket/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeProjectRepo struct {
	projects map[uuid.UUID]*entity.Project
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[uuid.UUID]*entity.Project)}
}

func (f *fakeProjectRepo) Create(ctx context.Context, project *entity.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjectRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *project
	return &copied, nil
}

func (f *fakeProjectRepo) FindAll(ctx context.Context, status entity.ProjectStatus, ownerID *uuid.UUID, offset, limit int) ([]*entity.Project, int64, error) {
	var out []*entity.Project
	for _, p := range f.projects {
		if status != "" && p.Status != status {
			continue
		}
		if ownerID != nil && p.UserID != *ownerID {
			continue
		}
		out = append(out, p)
	}
	return out, int64(len(out)), nil
}

func (f *fakeProjectRepo) Update(ctx context.Context, project *entity.Project) error {
	f.projects[project.ID] = project
	return nil
}

func (f *fakeProjectRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.ProjectStatus) error {
	project, ok := f.projects[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	project.Status = status
	return nil
}

func (f *fakeProjectRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(f.projects, id)
	return nil
}

type fakeUserRepo struct {
	users map[string]*entity.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *entity.User) error { return nil }

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindByGoogleID(ctx context.Context, googleID string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindPublicProfile(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	return f.FindByID(ctx, id.String())
}

func (f *fakeUserRepo) FindAll(ctx context.Context, offset, limit int) ([]*entity.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *entity.User) error { return nil }

func (f *fakeUserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status entity.UserStatus) error {
	return nil
}

func (f *fakeUserRepo) SwitchRole(ctx context.Context, id uuid.UUID, role entity.UserRole) error {
	return nil
}

func setup(t *testing.T) (ProjectService, *fakeProjectRepo, *entity.User, *entity.User) {
	t.Helper()

	projects := newFakeProjectRepo()
	client := &entity.User{ID: uuid.New(), Role: entity.RoleClient}
	engineer := &entity.User{ID: uuid.New(), Role: entity.RoleEngineer}
	users := &fakeUserRepo{users: map[string]*entity.User{
		client.ID.String():   client,
		engineer.ID.String(): engineer,
	}}

	return NewProjectService(projects, users, nil), projects, client, engineer
}

func TestCreateProject(t *testing.T) {
	ctx := context.Background()

	t.Run("client creates a draft by default", func(t *testing.T) {
		svc, _, client, _ := setup(t)

		created, err := svc.CreateProject(ctx, client.ID, dto.CreateProjectInput{
			Title:       "PoC dashboard",
			Description: "Build it",
			Budget:      500000,
		})
		if err != nil {
			t.Fatalf("CreateProject() error = %v", err)
		}
		if created.Status != entity.ProjectDraft {
			t.Errorf("status = %s, want DRAFT", created.Status)
		}
		if created.Deadline != nil {
			t.Error("deadline should be unset without a period")
		}
	})

	t.Run("publish opens the project immediately", func(t *testing.T) {
		svc, _, client, _ := setup(t)

		created, err := svc.CreateProject(ctx, client.ID, dto.CreateProjectInput{
			Title:       "PoC dashboard",
			Description: "Build it",
			Budget:      500000,
			Publish:     true,
		})
		if err != nil {
			t.Fatalf("CreateProject() error = %v", err)
		}
		if created.Status != entity.ProjectOpen {
			t.Errorf("status = %s, want OPEN", created.Status)
		}
	})

	t.Run("period sets the deadline that many days out", func(t *testing.T) {
		svc, _, client, _ := setup(t)

		created, err := svc.CreateProject(ctx, client.ID, dto.CreateProjectInput{
			Title:       "PoC dashboard",
			Description: "Build it",
			Budget:      500000,
			PeriodDays:  30,
		})
		if err != nil {
			t.Fatalf("CreateProject() error = %v", err)
		}
		if created.Deadline == nil {
			t.Fatal("expected a deadline")
		}
		want := time.Now().AddDate(0, 0, 30)
		if diff := created.Deadline.Sub(want); diff < -time.Minute || diff > time.Minute {
			t.Errorf("deadline = %v, want about %v", created.Deadline, want)
		}
	})

	t.Run("engineer cannot create projects", func(t *testing.T) {
		svc, _, _, engineer := setup(t)

		_, err := svc.CreateProject(ctx, engineer.ID, dto.CreateProjectInput{
			Title:       "nope",
			Description: "nope",
			Budget:      1,
		})
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})
}

func TestUpdateProjectStatus(t *testing.T) {
	ctx := context.Background()

	transitions := []struct {
		name    string
		from    entity.ProjectStatus
		to      entity.ProjectStatus
		wantErr error
	}{
		{"draft can open", entity.ProjectDraft, entity.ProjectOpen, nil},
		{"draft can cancel", entity.ProjectDraft, entity.ProjectCancelled, nil},
		{"open can close", entity.ProjectOpen, entity.ProjectClosed, nil},
		{"open can go back to draft", entity.ProjectOpen, entity.ProjectDraft, nil},
		{"in progress can close", entity.ProjectInProgress, entity.ProjectClosed, nil},
		{"in progress cannot reopen", entity.ProjectInProgress, entity.ProjectOpen, apperror.ErrConflict},
		{"nothing moves to in progress by hand", entity.ProjectOpen, entity.ProjectInProgress, apperror.ErrConflict},
		{"closed is terminal", entity.ProjectClosed, entity.ProjectOpen, apperror.ErrConflict},
		{"cancelled is terminal", entity.ProjectCancelled, entity.ProjectOpen, apperror.ErrConflict},
	}

	for _, tc := range transitions {
		t.Run(tc.name, func(t *testing.T) {
			svc, projects, client, _ := setup(t)
			project := &entity.Project{ID: uuid.New(), UserID: client.ID, Status: tc.from}
			projects.projects[project.ID] = project

			_, err := svc.UpdateProjectStatus(ctx, client.ID, project.ID, tc.to)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("UpdateProjectStatus() error = %v", err)
				}
				if projects.projects[project.ID].Status != tc.to {
					t.Errorf("status = %s, want %s", projects.projects[project.ID].Status, tc.to)
				}
			} else if !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}

	t.Run("only the owner may transition", func(t *testing.T) {
		svc, projects, client, engineer := setup(t)
		project := &entity.Project{ID: uuid.New(), UserID: client.ID, Status: entity.ProjectDraft}
		projects.projects[project.ID] = project

		_, err := svc.UpdateProjectStatus(ctx, engineer.ID, project.ID, entity.ProjectOpen)
		if !errors.Is(err, apperror.ErrForbidden) {
			t.Errorf("error = %v, want ErrForbidden", err)
		}
	})
}

func TestDeleteProject(t *testing.T) {
	ctx := context.Background()

	t.Run("owner deletes a draft", func(t *testing.T) {
		svc, projects, client, _ := setup(t)
		project := &entity.Project{ID: uuid.New(), UserID: client.ID, Status: entity.ProjectDraft}
		projects.projects[project.ID] = project

		if err := svc.DeleteProject(ctx, client.ID, project.ID); err != nil {
			t.Fatalf("DeleteProject() error = %v", err)
		}
		if _, ok := projects.projects[project.ID]; ok {
			t.Error("project should be gone")
		}
	})

	t.Run("in progress project cannot be deleted", func(t *testing.T) {
		svc, projects, client, _ := setup(t)
		project := &entity.Project{ID: uuid.New(), UserID: client.ID, Status: entity.ProjectInProgress}
		projects.projects[project.ID] = project

		err := svc.DeleteProject(ctx, client.ID, project.ID)
		if !errors.Is(err, apperror.ErrConflict) {
			t.Errorf("error = %v, want ErrConflict", err)
		}
	})
}

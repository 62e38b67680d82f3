package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"anoa.com/pocmarket/internal/config"
	"anoa.com/pocmarket/internal/entity"
	search "anoa.com/pocmarket/internal/modules/search/service"
	"anoa.com/pocmarket/internal/modules/user/dto"
	"anoa.com/pocmarket/internal/modules/user/repository"
	"anoa.com/pocmarket/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

type AuthService interface {
	Signup(ctx context.Context, input dto.SignupInput) (*entity.User, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	GoogleLogin() string
	GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error)
}

type authService struct {
	repo         repository.UserRepository
	meili        search.MeiliService
	secret       string
	tokenTTL     time.Duration
	googleConfig *oauth2.Config
}

func NewAuthService(cfg *config.Config, repo repository.UserRepository, meili search.MeiliService) AuthService {
	googleConfig := &oauth2.Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	return &authService{
		repo:         repo,
		meili:        meili,
		secret:       cfg.JWTSecret,
		tokenTTL:     time.Duration(cfg.JWTTTLMinutes) * time.Minute,
		googleConfig: googleConfig,
	}
}

func (s *authService) Signup(ctx context.Context, input dto.SignupInput) (*entity.User, error) {
	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, fmt.Errorf("%w: email is already registered", apperror.ErrBadRequest)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:        input.Email,
		PasswordHash: string(hashed),
		DisplayName:  input.DisplayName,
		Role:         entity.UserRole(input.Role),
		Status:       entity.UserPending,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	if s.meili != nil {
		if err := s.meili.IndexUser(user); err != nil {
			// Index sync failures must not fail signup.
			fmt.Fprintf(os.Stderr, "failed to index user %s: %v\n", user.ID, err)
		}
	}

	return user, nil
}

func (s *authService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid credentials", apperror.ErrUnauthorized)
	}

	if user.Status == entity.UserSuspended {
		return nil, fmt.Errorf("%w: account is suspended", apperror.ErrForbidden)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) GoogleLogin() string {
	return s.googleConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
}

func (s *authService) GoogleCallback(ctx context.Context, code string) (*dto.AuthResponse, error) {
	token, err := s.googleConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange token: %w", err)
	}

	client := s.googleConfig.Client(ctx, token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	var googleUser struct {
		ID            string `json:"id"`
		Email         string `json:"email"`
		VerifiedEmail bool   `json:"verified_email"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	user, err := s.repo.FindByGoogleID(ctx, googleUser.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Fall back to email linking, then to a fresh account.
		user, err = s.repo.FindByEmail(ctx, googleUser.Email)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = &entity.User{
				Email:       googleUser.Email,
				DisplayName: googleUser.Name,
				Role:        entity.RoleEngineer,
				Status:      entity.UserActive,
				GoogleID:    &googleUser.ID,
			}
			if googleUser.Picture != "" {
				user.AvatarURL = &googleUser.Picture
			}
			if err := s.repo.Create(ctx, user); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		} else {
			user.GoogleID = &googleUser.ID
			if err := s.repo.Update(ctx, user); err != nil {
				return nil, err
			}
		}
	} else if err != nil {
		return nil, err
	}

	if user.Status == entity.UserSuspended {
		return nil, fmt.Errorf("%w: account is suspended", apperror.ErrForbidden)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	resp := &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokenTTL.Seconds()),
		User:        user,
	}

	if s.meili != nil {
		if searchToken, err := s.meili.GenerateSearchToken(string(user.Role)); err == nil {
			resp.SearchToken = searchToken
		}
	}

	return resp, nil
}

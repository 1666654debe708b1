package admin

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"anonboard/internal/common"
	"anonboard/internal/message"
)

//go:generate mockgen -source=service.go -destination=mock_service.go -package=admin

type Service interface {
	Login(ctx context.Context, username, password string) (string, *Account, error)
	Authenticate(ctx context.Context, token string) (common.AdminIdentity, error)
	CreateAdmin(ctx context.Context, username, password string) (*Account, error)
	ListAdmins(ctx context.Context) ([]Account, error)
	UpdateAdmin(ctx context.Context, id string, username, password *string) (*Account, error)
	DeleteAdmin(ctx context.Context, callerID, id string) error
	ListMessages(ctx context.Context) ([]message.Message, error)
	DeleteMessage(ctx context.Context, id string) error
}

// MessageStore is the part of the message service the console needs.
type MessageStore interface {
	List(ctx context.Context, category string) ([]message.Message, error)
	Delete(ctx context.Context, id string) error
}

// Tokens signs and verifies session tokens.
type Tokens interface {
	GenerateToken(userID, username string, isAdmin bool) (string, error)
	ValidToken(token string) (*common.Claims, error)
}

type service struct {
	repo     Repository
	messages MessageStore
	tokens   Tokens
	logger   *zap.Logger
}

func NewService(repo Repository, messages MessageStore, tokens Tokens, logger *zap.Logger) Service {
	return &service{repo: repo, messages: messages, tokens: tokens, logger: logger}
}

func errBadCredentials() error {
	return common.NewError(common.ErrUnauthenticated, "Invalid username or password")
}

func (s *service) Login(ctx context.Context, username, password string) (string, *Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, common.NewError(common.ErrInvalidInput, "Username and password are required")
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		return "", nil, errBadCredentials()
	}
	if err != nil {
		return "", nil, err
	}
	if !account.IsAdmin {
		return "", nil, errBadCredentials()
	}
	if err := common.CheckPassword(password, account.PasswordHash); err != nil {
		return "", nil, errBadCredentials()
	}

	token, err := s.tokens.GenerateToken(account.ID.Hex(), account.Username, account.IsAdmin)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("Admin logged in", zap.String("username", account.Username))
	return token, account, nil
}

// Authenticate verifies the token and re-reads the account, so a demoted or
// deleted admin is refused even while their token has not expired.
func (s *service) Authenticate(ctx context.Context, token string) (common.AdminIdentity, error) {
	claims, err := s.tokens.ValidToken(token)
	if err != nil {
		return common.AdminIdentity{}, common.NewError(common.ErrInvalidToken, "Invalid or expired token")
	}

	account, err := s.repo.FindByID(ctx, claims.UserID)
	if errors.Is(err, common.ErrNotFound) {
		return common.AdminIdentity{}, errNotAdmin()
	}
	if err != nil {
		return common.AdminIdentity{}, err
	}
	if !account.IsAdmin {
		return common.AdminIdentity{}, errNotAdmin()
	}
	return common.AdminIdentity{
		UserID:   account.ID.Hex(),
		Username: account.Username,
		IsAdmin:  true,
	}, nil
}

func errNotAdmin() error {
	return common.NewError(common.ErrForbidden, "Access denied. Not an admin.")
}

func (s *service) CreateAdmin(ctx context.Context, username, password string) (*Account, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, common.NewError(common.ErrInvalidInput, "All fields are required")
	}
	username, err := common.ValidateUsername(username)
	if err != nil {
		return nil, err
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := common.HashPassword(password)
	if err != nil {
		return nil, err
	}
	account := &Account{Username: username, PasswordHash: hashed, IsAdmin: true}
	if err := s.repo.Create(ctx, account); err != nil {
		return nil, err
	}
	s.logger.Info("Admin created", zap.String("username", username))
	return account, nil
}

func (s *service) ListAdmins(ctx context.Context) ([]Account, error) {
	return s.repo.ListAdmins(ctx)
}

// UpdateAdmin changes whichever of username and password is non-nil and
// non-empty. An empty value leaves the field unchanged.
func (s *service) UpdateAdmin(ctx context.Context, id string, username, password *string) (*Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !account.IsAdmin {
		return nil, errAdminNotFound()
	}

	if username != nil && strings.TrimSpace(*username) != "" {
		name, err := common.ValidateUsername(*username)
		if err != nil {
			return nil, err
		}
		if name != account.Username {
			other, err := s.repo.FindByUsername(ctx, name)
			switch {
			case err == nil && other.ID != account.ID:
				return nil, errUsernameTaken()
			case err != nil && !errors.Is(err, common.ErrNotFound):
				return nil, err
			}
		}
		account.Username = name
	}

	if password != nil && *password != "" {
		if err := common.ValidatePassword(*password); err != nil {
			return nil, err
		}
		hashed, err := common.HashPassword(*password)
		if err != nil {
			return nil, err
		}
		account.PasswordHash = hashed
	}

	if err := s.repo.Update(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteAdmin compares parsed ids, so any spelling of the caller's own id
// (hex is case-insensitive) is refused.
func (s *service) DeleteAdmin(ctx context.Context, callerID, id string) error {
	target, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return errAdminNotFound()
	}
	if caller, err := primitive.ObjectIDFromHex(callerID); err == nil && caller == target {
		return common.NewError(common.ErrCannotDeleteSelf, "Cannot delete your own account")
	}
	id = target.Hex()
	if err := s.repo.DeleteAdmin(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Admin deleted", zap.String("id", id), zap.String("by", callerID))
	return nil
}

func (s *service) ListMessages(ctx context.Context) ([]message.Message, error) {
	return s.messages.List(ctx, "")
}

func (s *service) DeleteMessage(ctx context.Context, id string) error {
	return s.messages.Delete(ctx, id)
}

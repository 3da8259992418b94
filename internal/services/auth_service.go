package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/octostats/octostats/internal/github"
	"github.com/octostats/octostats/internal/models"
	"github.com/octostats/octostats/pkg/crypto"
)

// UserStore is the credential/session persistence contract, implemented by
// repositories.UserRepository.
type UserStore interface {
	Create(user *models.User) error
	GetByUsername(username string) (*models.User, error)
	GetBySessionToken(token string) (*models.User, error)
	Update(user *models.User) error
}

// TokenProvider issues and verifies session tokens, implemented by
// token.Provider.
type TokenProvider interface {
	Issue(subject string) (string, error)
	Verify(tokenString string) (string, error)
}

type AuthService struct {
	api           github.API
	users         UserStore
	tokens        TokenProvider
	encryptionKey string
}

func NewAuthService(api github.API, users UserStore, tokens TokenProvider, encryptionKey string) *AuthService {
	return &AuthService{
		api:           api,
		users:         users,
		tokens:        tokens,
		encryptionKey: encryptionKey,
	}
}

// Authenticate exchanges a username and personal access token for a session
// token. The credential is verified against the upstream authenticated-user
// endpoint; on success the encrypted PAT and the issued token are stored so
// later requests can be resolved by bearer token alone.
func (s *AuthService) Authenticate(ctx context.Context, username, pat string) (string, error) {
	if username == "" {
		return "", validationErrorf("username was not provided")
	}
	if pat == "" {
		return "", validationErrorf("PAT was not provided")
	}
	if !strings.HasPrefix(pat, "ghp_") {
		return "", validationErrorf("PAT format is invalid")
	}

	login, err := s.api.CheckCredentials(ctx, models.Credential{Login: username, PAT: pat})
	if err != nil {
		return "", fmt.Errorf("failed to verify credentials: %w", err)
	}
	if login != username {
		return "", fmt.Errorf("token belongs to %s, not %s", login, username)
	}

	encryptedPAT, err := crypto.Encrypt(s.encryptionKey, pat)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt PAT: %w", err)
	}

	sessionToken, err := s.tokens.Issue(username)
	if err != nil {
		return "", fmt.Errorf("failed to issue session token: %w", err)
	}

	user, err := s.users.GetByUsername(username)
	if err != nil {
		user = models.NewUser(username, encryptedPAT)
		user.SessionToken = sessionToken
		if err := s.users.Create(user); err != nil {
			return "", fmt.Errorf("failed to create user: %w", err)
		}
		return sessionToken, nil
	}

	user.EncryptedPAT = encryptedPAT
	user.SessionToken = sessionToken
	if err := s.users.Update(user); err != nil {
		return "", fmt.Errorf("failed to update user: %w", err)
	}

	return sessionToken, nil
}

// ResolveSession maps a bearer token back to the credential it was issued
// for. Used by the auth middleware on every protected request.
func (s *AuthService) ResolveSession(tokenString string) (models.Credential, error) {
	subject, err := s.tokens.Verify(tokenString)
	if err != nil {
		return models.Credential{}, fmt.Errorf("invalid session token: %w", err)
	}

	user, err := s.users.GetBySessionToken(tokenString)
	if err != nil {
		return models.Credential{}, fmt.Errorf("unknown session token: %w", err)
	}
	if user.Username != subject {
		return models.Credential{}, fmt.Errorf("session token subject mismatch")
	}

	pat, err := crypto.Decrypt(s.encryptionKey, user.EncryptedPAT)
	if err != nil {
		return models.Credential{}, fmt.Errorf("failed to decrypt PAT: %w", err)
	}

	return models.Credential{Login: user.Username, PAT: pat}, nil
}

package services

import (
	goerrors "errors"
	"fmt"

	"friendly-chat/auth"
	"friendly-chat/errors"
	"friendly-chat/repositories"
)

type IAuthService interface {
	Login(email, password string) (Token, error)
	Register(request auth.RegisterRequest) (Token, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         *auth.TokenManager
}

type Token string

func (t Token) String() string {
	return string(t)
}

func NewAuthService(repo repositories.IUserRepository, tokens *auth.TokenManager) IAuthService {
	return &AuthService{userRepository: repo, tokens: tokens}
}

// Register creates a local account and returns its first session token.
func (s *AuthService) Register(request auth.RegisterRequest) (Token, error) {
	// Validation runs before hashing, argon2 being expensive.
	if err := auth.ValidateRegister(request); err != nil {
		if goerrors.Is(err, errors.ErrInvalidPassword) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", errors.ErrInvalidCredentials, err)
	}

	hashedPassword, err := auth.HashPassword(request.Password)
	if err != nil {
		return "", fmt.Errorf("hashing failed: %w", err)
	}

	userID, err := s.userRepository.CreateUser(repositories.NewUser{
		Email:          request.Email,
		HashedPassword: hashedPassword,
		DisplayName:    request.DisplayName,
		PhotoURL:       request.PhotoURL,
	})
	if err != nil {
		return "", err
	}

	return s.issue(repositories.User{
		ID:          userID,
		DisplayName: request.DisplayName,
		PhotoURL:    request.PhotoURL,
		Roles:       []string{"user"},
	})
}

// Login never tells an unknown e-mail apart from a wrong password.
func (s *AuthService) Login(email, password string) (Token, error) {
	user, err := s.userRepository.GetUserByEmail(email)
	if err != nil {
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}

	return s.issue(user)
}

func (s *AuthService) issue(user repositories.User) (Token, error) {
	token, err := s.tokens.GenerateToken(auth.CustomClaims{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		PhotoURL:    user.PhotoURL,
		Roles:       user.Roles,
	})
	if err != nil {
		return "", err
	}
	return Token(token), nil
}

package services

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode"

	"todoapp/internal/apperrors"
	"todoapp/internal/models"
	"todoapp/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// emailPattern matches local-part@domain.tld with a 2-6 letter TLD.
var emailPattern = regexp.MustCompile(`^[A-Za-z0-9+_.-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,6}$`)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		tokenDurat: 24 * time.Hour, // Token valid for 24 hours
	}
}

// RegisterUser validates the registration input, checks username and email
// uniqueness, hashes the password, and persists the new user. Email is
// optional. The plaintext password is never stored or logged.
func (s *AuthService) RegisterUser(username, password, email string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.New(apperrors.InvalidInput, "missing_credentials", "Username and password are required")
	}
	if strings.IndexFunc(username, unicode.IsSpace) >= 0 {
		return nil, apperrors.New(apperrors.InvalidInput, "invalid_username", "Username cannot contain spaces")
	}
	if email != "" && !emailPattern.MatchString(email) {
		return nil, apperrors.New(apperrors.InvalidInput, "invalid_email", "Invalid email format")
	}

	if _, err := s.userRepo.GetByUsername(username); err == nil {
		return nil, apperrors.New(apperrors.Conflict, "username_taken", fmt.Sprintf("Username '%s' is already taken", username))
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Wrap(err, apperrors.Internal, "internal_error", "Could not register user")
	}

	if email != "" {
		if _, err := s.userRepo.GetByEmail(email); err == nil {
			return nil, apperrors.New(apperrors.Conflict, "email_taken", fmt.Sprintf("Email '%s' is already registered", email))
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Wrap(err, apperrors.Internal, "internal_error", "Could not register user")
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "internal_error", "Could not register user")
	}

	user := &models.User{
		Username: username,
		Password: string(hashedPassword),
		Email:    email,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, apperrors.Wrap(err, apperrors.Internal, "internal_error", "Could not register user")
	}
	return user, nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
// Unknown username and wrong password both produce the same generic error so
// the response does not reveal which check failed.
func (s *AuthService) LoginUser(username, password string) (string, error) {
	if username == "" || password == "" {
		return "", apperrors.New(apperrors.InvalidInput, "missing_credentials", "Username and password are required")
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return "", apperrors.New(apperrors.Unauthorized, "invalid_credentials", "Authentication failed: Invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperrors.New(apperrors.Unauthorized, "invalid_credentials", "Authentication failed: Invalid username or password")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenDurat).Unix(), // Token expiration time
		"iat":      time.Now().Unix(),                   // Issued at time
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.Internal, "internal_error", "Could not generate token")
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the alg is what we expect:
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

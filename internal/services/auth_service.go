package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"mandale/internal/errs"
	"mandale/internal/models"
	"mandale/internal/repositories"
	"mandale/pkg/wallet"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// Profile is the authenticated user's view of their account.
type Profile struct {
	models.User
	Wallets map[wallet.Kind]models.WalletState `json:"wallets"`
}

// ProfileUpdate carries the editable profile fields.
type ProfileUpdate struct {
	Name       string `json:"name" validate:"omitempty,max=100"`
	Phone      string `json:"phone" validate:"omitempty,max=20"`
	StoreName  string `json:"store_name" validate:"omitempty,max=200"`
	Street     string `json:"street" validate:"omitempty,max=200"`
	City       string `json:"city" validate:"omitempty,max=100"`
	Province   string `json:"province" validate:"omitempty,max=100"`
	PostalCode string `json:"postal_code" validate:"omitempty,max=10"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
	jwtSecret   []byte
	tokenDurat  time.Duration // Duration for which JWT is valid
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, productRepo repositories.ProductRepository, jwtSecret string, tokenDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		productRepo: productRepo,
		jwtSecret:   []byte(jwtSecret),
		tokenDurat:  tokenDuration,
	}
}

// RegisterUser registers a new user, hashes their password, and saves them to
// the database. A missing username is derived from the email; a taken one gets
// a numeric suffix.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	if _, err := s.userRepo.GetByEmail(ctx, user.Email); err == nil {
		return errs.Conflict("email '%s' already registered", user.Email)
	} else if !errors.Is(err, errs.ErrNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	username, err := s.availableUsername(ctx, user.Username, user.Email)
	if err != nil {
		return err
	}
	user.Username = username

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

func (s *AuthService) availableUsername(ctx context.Context, requested, email string) (string, error) {
	base := requested
	if base == "" {
		base = email
	}
	if i := strings.Index(base, "@"); i > 0 {
		base = base[:i]
	}

	candidate := base
	for attempt := 0; attempt < 10; attempt++ {
		_, err := s.userRepo.GetByUsername(ctx, candidate)
		if errors.Is(err, errs.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check username: %w", err)
		}
		candidate = fmt.Sprintf("%s_%d", base, 1000+rand.Intn(9000))
	}
	return "", errs.Conflict("could not find a free username for '%s'", base)
}

// LoginUser authenticates a user by email and returns a JWT token.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", nil, errs.Unauthorized("invalid credentials")
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, errs.Unauthorized("invalid credentials")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, user, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		log.Printf("Token validation error: %v", err)
		return nil, errs.Unauthorized("invalid token")
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errs.Unauthorized("invalid token")
}

// Resolve turns a bearer token into the id of an existing user.
func (s *AuthService) Resolve(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", errs.Unauthorized("invalid token claims")
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return "", errs.Unauthorized("user no longer exists")
		}
		return "", err
	}
	return userID, nil
}

// GetProfile returns the user with their published product ids and wallets.
func (s *AuthService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	products, err := s.productRepo.GetAll(ctx, repositories.ProductFilter{OwnerID: userID, AllStatuses: true})
	if err != nil {
		return nil, err
	}
	user.ProductIDs = make([]string, 0, len(products))
	for _, p := range products {
		user.ProductIDs = append(user.ProductIDs, p.ID)
	}

	accounts, err := s.userRepo.ListWallets(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: *user, Wallets: models.WalletMap(accounts)}, nil
}

// UpdateProfile overwrites the editable fields and returns the new profile.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	user.Name = update.Name
	user.Phone = update.Phone
	user.StoreName = update.StoreName
	user.Street = update.Street
	user.City = update.City
	user.Province = update.Province
	user.PostalCode = update.PostalCode

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}

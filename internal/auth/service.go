package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/granada/granada-os/internal/models"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrInvalidCreds = errors.New("invalid credentials")
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

type SignupRequest struct {
	Email            string                  `json:"email"`
	Password         string                  `json:"password"`
	FullName         string                  `json:"full_name"`
	OrganizationName string                  `json:"organization_name"`
	OrganizationType models.OrganizationType `json:"organization_type"`
	Country          string                  `json:"country"`
	Sector           string                  `json:"sector"`
	Interests        []string                `json:"interests"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Service issues and verifies credentials. The signing secret comes from
// configuration; when unset an ephemeral secret is generated, which
// invalidates tokens on restart but keeps local development working.
type Service struct {
	db         *pgxpool.Pool
	secret     []byte
	defaultOrg string
}

func NewService(db *pgxpool.Pool, jwtSecret, defaultOrg string, logger *zap.Logger) (*Service, error) {
	secret := []byte(jwtSecret)
	if len(secret) == 0 {
		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate JWT fallback secret: %w", err)
		}
		secret = []byte(base64.RawURLEncoding.EncodeToString(buf))
		if logger != nil {
			logger.Warn("JWT_SECRET is not set; using ephemeral in-memory fallback secret")
		}
	}
	return &Service{db: db, secret: secret, defaultOrg: defaultOrg}, nil
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	var exists bool
	err := s.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)", req.Email).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing failed: %w", err)
	}

	orgName := req.OrganizationName
	if orgName == "" {
		orgName = s.defaultOrg
	}
	orgType := req.OrganizationType
	if _, known := map[models.OrganizationType]bool{
		models.OrgStudent: true, models.OrgStartupIndividual: true,
		models.OrgSmallNGO: true, models.OrgMediumNGO: true, models.OrgLargeNGO: true,
		models.OrgUniversity: true, models.OrgGovernment: true,
	}[orgType]; !known {
		orgType = models.OrgSmallNGO
	}
	country := req.Country
	if country == "" {
		country = "Global"
	}
	interests := req.Interests
	if interests == nil {
		interests = []string{}
	}

	var user User
	err = s.db.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, full_name, organization_name,
			organization_type, country, sector, interests)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, email, full_name, created_at
	`, req.Email, string(hash), req.FullName, orgName,
		orgType, country, req.Sector, interests,
	).Scan(&user.ID, &user.Email, &user.FullName, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert failed: %w", err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var user User
	err := s.db.QueryRow(ctx,
		"SELECT id, email, full_name, password_hash, created_at FROM users WHERE email = $1",
		req.Email).Scan(&user.ID, &user.Email, &user.FullName, &user.PasswordHash, &user.CreatedAt)
	if err == pgx.ErrNoRows {
		return nil, ErrInvalidCreds
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCreds
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &AuthResponse{Token: token, User: user}, nil
}

func (s *Service) generateToken(userID uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/argon2"

	"github.com/infinitas/crm/internal/apperror"
)

// sessionKeyPrefix is the Redis key prefix for token sessions, keyed by jti.
const sessionKeyPrefix = "session:"

// argon2id parameters per OWASP guidance for interactive logins:
// memory=64MB, iterations=3, parallelism=4.
const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// AuthService defines the business logic contract for identity. Handlers and
// middleware call these methods and never touch the repository directly.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (token string, user *User, err error)

	// ValidateToken verifies a bearer token end to end: signature, expiry,
	// live Redis session, user lookup, organization membership. It returns
	// the AuthContext the request runs under.
	ValidateToken(ctx context.Context, token string) (*AuthContext, error)

	// Logout revokes the token's session. Validating the same token
	// afterwards fails even though its signature is still good.
	Logout(ctx context.Context, token string) error
}

// accessClaims are the JWT claims carried by an access token. The org ID is
// a convenience copy; the authoritative value is re-read from the user row
// on every validation.
type accessClaims struct {
	OrganizationID string `json:"org_id"`
	jwt.RegisteredClaims
}

type authService struct {
	repo       UserRepository
	redis      *redis.Client
	secretKey  []byte
	sessionTTL time.Duration
}

// NewAuthService creates an auth service with the given dependencies.
func NewAuthService(repo UserRepository, rdb *redis.Client, secretKey string, sessionTTL time.Duration) AuthService {
	return &authService{
		repo:       repo,
		redis:      rdb,
		secretKey:  []byte(secretKey),
		sessionTTL: sessionTTL,
	}
}

// Register creates a new account: a fresh organization plus its owner user.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// Cheap uniqueness check before the expensive hash.
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("an account with this email already exists")
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	now := time.Now().UTC()
	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hash,
		Role:         RoleOwner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	orgName := strings.TrimSpace(input.OrganizationName)
	if err := s.repo.CreateWithOrganization(ctx, user, uuid.NewString(), orgName); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating account: %w", err))
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("organization_id", user.OrganizationID),
	)

	return user, nil
}

// Login authenticates by email and password and issues a bearer token.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		// Same message whether the email is unknown or the password is
		// wrong, to avoid confirming which emails have accounts.
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 404 {
			return "", nil, apperror.NewUnauthorized("invalid email or password")
		}
		return "", nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	if !verifyPassword(input.Password, user.PasswordHash) {
		return "", nil, apperror.NewUnauthorized("invalid email or password")
	}

	token, err := s.issueToken(ctx, user)
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("issuing token: %w", err))
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("failed to update last login",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))

	return token, user, nil
}

// ValidateToken resolves a bearer token to an AuthContext.
func (s *authService) ValidateToken(ctx context.Context, token string) (*AuthContext, error) {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, apperror.NewUnauthorized("invalid or expired token")
	}
	if claims.ID == "" || claims.Subject == "" {
		return nil, apperror.NewUnauthorized("invalid or expired token")
	}

	// The session must still exist in Redis; Logout deletes it.
	data, err := s.redis.Get(ctx, sessionKeyPrefix+claims.ID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperror.NewUnauthorized("session expired or revoked")
	}
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading session: %w", err))
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("unmarshaling session: %w", err))
	}
	if session.UserID != claims.Subject {
		return nil, apperror.NewUnauthorized("invalid or expired token")
	}

	user, err := s.repo.FindByID(ctx, session.UserID)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == 404 {
			return nil, apperror.NewUnauthorized("invalid or expired token")
		}
		return nil, apperror.NewInternal(fmt.Errorf("loading user: %w", err))
	}

	if user.OrganizationID == "" {
		return nil, apperror.NewBadRequest("No organization found")
	}

	return &AuthContext{User: user, OrganizationID: user.OrganizationID}, nil
}

// Logout deletes the token's Redis session. A malformed token is a no-op
// success; there is nothing to revoke.
func (s *authService) Logout(ctx context.Context, token string) error {
	claims := &accessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !parsed.Valid || claims.ID == "" {
		return nil
	}

	if err := s.redis.Del(ctx, sessionKeyPrefix+claims.ID).Err(); err != nil {
		return apperror.NewInternal(fmt.Errorf("deleting session: %w", err))
	}
	return nil
}

// issueToken mints an HS256 JWT and stores its session in Redis with the
// configured TTL. Token and session expire together.
func (s *authService) issueToken(ctx context.Context, user *User) (string, error) {
	now := time.Now().UTC()
	claims := accessClaims{
		OrganizationID: user.OrganizationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}

	session := Session{
		UserID:         user.ID,
		OrganizationID: user.OrganizationID,
		CreatedAt:      now,
	}
	data, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("marshaling session: %w", err)
	}
	if err := s.redis.Set(ctx, sessionKeyPrefix+claims.ID, data, s.sessionTTL).Err(); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}

	return token, nil
}

// --- Password hashing (argon2id) ---

// hashPassword produces a PHC-format argon2id hash:
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
// The parameters travel with the hash, so verification needs no side table.
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads, b64Salt, b64Hash), nil
}

// verifyPassword checks a plaintext password against a PHC argon2id string.
func verifyPassword(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return false
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(expected, computed) == 1
}

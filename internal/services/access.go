package services

import (
	"fmt"
	"time"

	"photo-gallery-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	galleryTokenTTL = 24 * time.Hour
	adminTokenTTL   = 7 * 24 * time.Hour
	minSecretLength = 32
	bcryptCost      = 10
)

// GalleryAccess is the payload embedded in a gallery access token
type GalleryAccess struct {
	GalleryID string
	Slug      string
}

// AccessService issues and verifies signed credentials: admin session tokens
// and gallery-scoped access tokens for password-protected galleries. Gallery
// access state lives entirely in the token held by the client; nothing is
// stored server-side.
type AccessService struct {
	secret []byte
}

// NewAccessService creates a new access service. The signing secret must be
// at least 32 bytes; a weaker secret is a startup failure.
func NewAccessService(secret string) (*AccessService, error) {
	if len(secret) < minSecretLength {
		return nil, fmt.Errorf("signing secret must be at least %d characters", minSecretLength)
	}
	return &AccessService{secret: []byte(secret)}, nil
}

// HashPassword hashes a plain-text password with bcrypt
func (s *AccessService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyGalleryPassword checks a supplied password against the gallery's
// stored hash. A gallery without a hash cannot be unlocked by any password.
func (s *AccessService) VerifyGalleryPassword(gallery *models.Gallery, password string) bool {
	if gallery.PasswordHash == nil || *gallery.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(*gallery.PasswordHash), []byte(password)) == nil
}

// VerifyUserPassword checks an admin user's password against their hash
func (s *AccessService) VerifyUserPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// IssueAccessToken produces a signed token proving the holder supplied the
// correct password for one gallery. Valid for 24 hours.
func (s *AccessService) IssueAccessToken(galleryID, slug string) (string, error) {
	claims := jwt.MapClaims{
		"gallery_id": galleryID,
		"slug":       slug,
		"exp":        time.Now().Add(galleryTokenTTL).Unix(),
		"iat":        time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// VerifyAccessToken verifies signature and expiry and returns the embedded
// payload. Any failure (bad signature, expired, malformed) yields ok=false;
// the reason is never surfaced to the caller.
func (s *AccessService) VerifyAccessToken(tokenString string) (*GalleryAccess, bool) {
	claims, ok := s.parse(tokenString)
	if !ok {
		return nil, false
	}

	galleryID, ok := claims["gallery_id"].(string)
	if !ok || galleryID == "" {
		return nil, false
	}
	slug, ok := claims["slug"].(string)
	if !ok {
		return nil, false
	}

	return &GalleryAccess{GalleryID: galleryID, Slug: slug}, true
}

// AuthorizeGalleryAccess decides whether a token grants access to a gallery's
// photos. Public galleries need no token. Private galleries require a valid
// token whose embedded gallery ID matches the requested gallery; a token
// minted for one gallery never unlocks another.
func (s *AccessService) AuthorizeGalleryAccess(tokenString string, gallery *models.Gallery) bool {
	if gallery.IsPublic {
		return true
	}
	if tokenString == "" {
		return false
	}
	payload, ok := s.VerifyAccessToken(tokenString)
	if !ok {
		return false
	}
	return payload.GalleryID == gallery.ID
}

// IssueAdminToken produces a signed session token for an admin user
func (s *AccessService) IssueAdminToken(userID, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(adminTokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// VerifyAdminToken validates an admin session token and returns the user ID
func (s *AccessService) VerifyAdminToken(tokenString string) (string, error) {
	claims, ok := s.parse(tokenString)
	if !ok {
		return "", fmt.Errorf("invalid token")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user_id not found in token")
	}

	return userID, nil
}

func (s *AccessService) parse(tokenString string) (jwt.MapClaims, bool) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	return claims, true
}

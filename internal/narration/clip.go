package narration

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// ClipSigner issues short-lived tokens for downloading pre-rendered narration clips.
type ClipSigner struct {
	secret  string
	issuer  string
	baseURL string
	ttl     time.Duration
}

// SignedClip is a clip location plus the token that authorizes it.
type SignedClip struct {
	URL       string `json:"url"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

func NewClipSigner(secret, issuer, baseURL string, ttl time.Duration) *ClipSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ClipSigner{
		secret:  secret,
		issuer:  issuer,
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
	}
}

// ClipPath is the storage path of the clip for a request: tts/<lang>/<voice>/<key>_<lang>.mp3
func ClipPath(req Request) string {
	return fmt.Sprintf("tts/%s/%s/%s_%s.mp3", req.Language, req.Voice, req.Key, req.Language)
}

// Sign returns a URL and token allowing user to fetch the clip for req.
func (s *ClipSigner) Sign(user string, req Request) (SignedClip, error) {
	if s == nil {
		return SignedClip{}, fmt.Errorf("clip signer is nil")
	}
	if user == "" {
		return SignedClip{}, fmt.Errorf("user is required")
	}
	if s.secret == "" || s.issuer == "" || s.baseURL == "" {
		return SignedClip{}, fmt.Errorf("clip signer config is incomplete")
	}
	if !req.Key.Known() {
		return SignedClip{}, fmt.Errorf("unknown message key: %s", req.Key)
	}

	path := ClipPath(req)
	expires := time.Now().Add(s.ttl).Unix()
	claims := jwt.MapClaims{
		"iss":  s.issuer,
		"sub":  user,
		"exp":  expires,
		"jti":  fmt.Sprintf("%d-%d", time.Now().UnixNano(), rand.Int63()),
		"path": path,
		"key":  string(req.Key),
		"lang": req.Language,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.secret))
	if err != nil {
		return SignedClip{}, fmt.Errorf("sign clip token: %w", err)
	}

	return SignedClip{
		URL:       s.baseURL + "/" + path,
		Token:     signed,
		ExpiresAt: expires,
	}, nil
}

// Verify checks a clip token and returns the path it grants.
func (s *ClipSigner) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return "", fmt.Errorf("parse clip token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid clip token")
	}
	if iss, _ := claims["iss"].(string); iss != s.issuer {
		return "", fmt.Errorf("unexpected issuer %q", iss)
	}
	path, _ := claims["path"].(string)
	if path == "" {
		return "", fmt.Errorf("clip token has no path")
	}
	return path, nil
}

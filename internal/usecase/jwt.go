package usecase

import (
	"crypto/rsa"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/xirothedev/facebook-clone-backend/config"
	"github.com/xirothedev/facebook-clone-backend/internal/tokenverify"
)

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type JWTSigner interface {
	SignAccessToken(subject string, claims map[string]interface{}, ttl time.Duration) (string, error)
	SignRefreshToken(subject, jti string, ttl time.Duration) (string, error)
	Parse(token string) (*jwt.Token, jwt.MapClaims, error)
}

type jwtSigner struct {
	cfg       *config.Config
	hmacKey   []byte
	private   *rsa.PrivateKey
	publicKey *rsa.PublicKey
}

// NewJWTSigner picks HS256 when a shared secret is configured and RS256
// when a key pair is. Absence of both is fatal at startup.
func NewJWTSigner(cfg *config.Config) (JWTSigner, error) {
	s := &jwtSigner{cfg: cfg}
	if cfg.JWTSecret != "" {
		s.hmacKey = []byte(cfg.JWTSecret)
		return s, nil
	}
	if cfg.JWTPrivateKey != "" && cfg.JWTPublicKey != "" {
		priv, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.JWTPrivateKey))
		if err != nil {
			return nil, err
		}
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(cfg.JWTPublicKey))
		if err != nil {
			return nil, err
		}
		s.private = priv
		s.publicKey = pub
		return s, nil
	}
	return nil, errors.New("jwt secret or key pair required")
}

// SignAccessToken mints a typ=access token carrying the given custom
// claims on top of the registered set.
func (s *jwtSigner) SignAccessToken(subject string, claims map[string]interface{}, ttl time.Duration) (string, error) {
	std := s.baseClaims(subject, tokenverify.TokenTypeAccess, ttl)
	for k, v := range claims {
		std[k] = v
	}
	return s.signClaims(std)
}

// SignRefreshToken mints a typ=refresh token. The jti ties the token to
// one issuance; the access gates reject this kind outright.
func (s *jwtSigner) SignRefreshToken(subject, jti string, ttl time.Duration) (string, error) {
	std := s.baseClaims(subject, tokenverify.TokenTypeRefresh, ttl)
	std["jti"] = jti
	return s.signClaims(std)
}

func (s *jwtSigner) Parse(tokenStr string) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithAudience(s.cfg.JWTAudience), jwt.WithIssuer(s.cfg.JWTIssuer), jwt.WithLeeway(30*time.Second))
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if s.hmacKey != nil {
			return s.hmacKey, nil
		}
		return s.publicKey, nil
	})
	return token, claims, err
}

func (s *jwtSigner) baseClaims(subject, typ string, ttl time.Duration) jwt.MapClaims {
	now := time.Now().UTC()
	return jwt.MapClaims{
		"sub": subject,
		"typ": typ,
		"iss": s.cfg.JWTIssuer,
		"aud": s.cfg.JWTAudience,
		"exp": now.Add(ttl).Unix(),
		"iat": now.Unix(),
	}
}

func (s *jwtSigner) signClaims(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(s.method()), claims)
	if s.hmacKey != nil {
		return token.SignedString(s.hmacKey)
	}
	if s.private == nil {
		return "", errors.New("private key not configured")
	}
	return token.SignedString(s.private)
}

func (s *jwtSigner) method() string {
	if s.hmacKey != nil {
		return jwt.SigningMethodHS256.Alg()
	}
	return jwt.SigningMethodRS256.Alg()
}

package authenticating

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/warroom-ads-api/internal/config"
	"github.com/vfg2006/warroom-ads-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator protege a API própria. A integração guarda uma única
// credencial de operador definida por configuração; não há cadastro de
// usuários
type Authenticator interface {
	LoginUser(email, password string) (string, error)
	ValidateToken(tokenString string) (*domain.Claims, error)
}

type Service struct {
	cfg *config.Config
}

func NewService(cfg *config.Config) Authenticator {
	return &Service{cfg: cfg}
}

// LoginUser valida as credenciais do operador e emite um JWT de sessão
func (s *Service) LoginUser(email, password string) (string, error) {
	if s.cfg.Auth.OperatorEmail == "" || s.cfg.Auth.OperatorPasswordHash == "" {
		logrus.Warn("auth: tentativa de login sem credencial de operador configurada")
		return "", ErrNotConfigured
	}

	if !strings.EqualFold(email, s.cfg.Auth.OperatorEmail) {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.cfg.Auth.OperatorPasswordHash), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("auth: senha incorreta no login")
		return "", ErrInvalidCredentials
	}

	ttl := time.Duration(s.cfg.Auth.TokenTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}

	claims := &domain.Claims{
		Email: s.cfg.Auth.OperatorEmail,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Auth.Secret))
	if err != nil {
		logrus.WithError(err).Error("auth: falha ao assinar token de sessão")
		return "", err
	}

	logrus.WithField("email", email).Info("auth: login realizado com sucesso")
	return signed, nil
}

// ValidateToken verifica assinatura e expiração do JWT de sessão
func (s *Service) ValidateToken(tokenString string) (*domain.Claims, error) {
	claims := &domain.Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.cfg.Auth.Secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

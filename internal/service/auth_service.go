package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"rewardshub-backend/internal/config"
	"rewardshub-backend/internal/domain"
	"rewardshub-backend/internal/ports"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	Config    config.Config
	Employees ports.EmployeeDirectory
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Employee     domain.Employee
	ExpiresAt    time.Time
}

type RegisterInput struct {
	EmployeeID int64
	Name       string
	Email      string
	Location   string
	Password   string
	Role       domain.EmployeeRole
}

type LoginInput struct {
	Email    string
	Password string
}

type RefreshInput struct {
	RefreshToken string
}

func (s AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if in.Role == "" {
		in.Role = domain.RoleUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	hashStr := string(hash)
	employee, err := s.Employees.Create(ctx, domain.Employee{
		EmployeeID:   in.EmployeeID,
		Name:         in.Name,
		Email:        in.Email,
		Location:     in.Location,
		Role:         in.Role,
		PasswordHash: &hashStr,
	})
	if err != nil {
		if errors.Is(err, ports.ErrDuplicate) {
			return nil, failure(KindConflict, "employee already registered")
		}
		return nil, err
	}
	return s.issueTokens(employee)
}

func (s AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	employee, err := s.Employees.ByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if employee.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*employee.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(employee)
}

func (s AuthService) Refresh(ctx context.Context, in RefreshInput) (*AuthResult, error) {
	token, err := jwt.Parse(in.RefreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.Config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if claims["token_type"] != "refresh" {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	employeeID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	employee, err := s.Employees.ByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return s.issueTokens(employee)
}

func (s AuthService) issueTokens(employee *domain.Employee) (*AuthResult, error) {
	now := time.Now()
	accessExp := now.Add(s.Config.AccessTokenTTL)
	refreshExp := now.Add(s.Config.RefreshTokenTTL)

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        fmt.Sprintf("%d", employee.EmployeeID),
		"name":       employee.Name,
		"email":      employee.Email,
		"role":       employee.Role,
		"location":   employee.Location,
		"token_type": "access",
		"exp":        accessExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        fmt.Sprintf("%d", employee.EmployeeID),
		"token_type": "refresh",
		"exp":        refreshExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Employee:     *employee,
		ExpiresAt:    accessExp,
	}, nil
}

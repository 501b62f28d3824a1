package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"aminashop/backend/internal/domain"
	"aminashop/backend/internal/reducer"
	"aminashop/backend/internal/store"
	"aminashop/backend/internal/validation"
)

func (s *Service) ListUsers(ctx context.Context) ([]domain.UserView, error) {
	if err := s.authorize(ctx, domain.CanManageUsers); err != nil {
		return nil, err
	}
	doc := s.snapshot()
	out := make([]domain.UserView, 0, len(doc.Users))
	for _, u := range doc.Users {
		out = append(out, u.View())
	}
	return out, nil
}

// User returns the stored account behind an authenticated request.
func (s *Service) User(id string) (domain.User, bool) {
	var (
		user domain.User
		ok   bool
	)
	s.store.View(func(doc domain.Document, _ uint64) {
		user, ok = doc.User(id)
	})
	return user, ok
}

func (s *Service) AddUser(ctx context.Context, req domain.UserInput) (domain.UserView, error) {
	if err := validation.Check(req); err != nil {
		return domain.UserView{}, err
	}
	if req.PIN == "" {
		return domain.UserView{}, fmt.Errorf("%w: pin is required", store.ErrInvalidTransaction)
	}
	hash, err := hashPIN(req.PIN)
	if err != nil {
		return domain.UserView{}, err
	}

	user := domain.User{ID: s.newID("user"), Name: strings.TrimSpace(req.Name), PIN: hash, Role: req.Role}
	err = s.apply(ctx, domain.CanManageUsers, func(domain.Document) (reducer.Action, error) {
		return reducer.AddUser{User: user}, nil
	})
	return user.View(), err
}

// UpdateUser changes name and role. The PIN is only replaced when given.
func (s *Service) UpdateUser(ctx context.Context, id string, req domain.UserInput) (domain.UserView, error) {
	if err := validation.Check(req); err != nil {
		return domain.UserView{}, err
	}
	var hash string
	if req.PIN != "" {
		h, err := hashPIN(req.PIN)
		if err != nil {
			return domain.UserView{}, err
		}
		hash = h
	}

	var updated domain.User
	err := s.apply(ctx, domain.CanManageUsers, func(doc domain.Document) (reducer.Action, error) {
		user, ok := doc.User(id)
		if !ok {
			return nil, fmt.Errorf("user %s: %w", id, store.ErrNotFound)
		}
		if user.Role == domain.RoleAdmin && req.Role != domain.RoleAdmin && doc.CountRole(domain.RoleAdmin) == 1 {
			return nil, ErrLastAdmin
		}
		user.Name = strings.TrimSpace(req.Name)
		user.Role = req.Role
		if hash != "" {
			user.PIN = hash
		}
		updated = user
		return reducer.UpdateUser{User: user}, nil
	})
	if err == nil {
		s.refreshSession(updated)
	}
	return updated.View(), err
}

func (s *Service) DeleteUser(ctx context.Context, id string) error {
	err := s.apply(ctx, domain.CanManageUsers, func(doc domain.Document) (reducer.Action, error) {
		user, ok := doc.User(id)
		if !ok {
			return nil, fmt.Errorf("user %s: %w", id, store.ErrNotFound)
		}
		if user.Role == domain.RoleAdmin && doc.CountRole(domain.RoleAdmin) == 1 {
			return nil, ErrLastAdmin
		}
		return reducer.DeleteUser{UserID: id}, nil
	})
	if err == nil {
		if current, ok := s.store.CurrentUser(); ok && current.ID == id {
			s.store.ClearSession()
		}
	}
	return err
}

func (s *Service) refreshSession(user domain.User) {
	if current, ok := s.store.CurrentUser(); ok && current.ID == user.ID {
		s.store.SetCurrentUser(user)
	}
}

// Login checks the PIN and opens the session. PINs stored in clear by older
// backups are replaced by their hash on first use.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (domain.User, error) {
	if err := validation.Check(req); err != nil {
		return domain.User{}, ErrInvalidCredentials
	}

	var user domain.User
	err := s.store.Apply(ctx, func(doc domain.Document) (reducer.Action, error) {
		found, ok := doc.User(strings.TrimSpace(req.UserID))
		if !ok || !verifyPIN(found.PIN, req.PIN) {
			return nil, ErrInvalidCredentials
		}
		user = found
		if isPINHash(found.PIN) {
			return nil, nil
		}
		hash, err := bcryptPIN(req.PIN)
		if err != nil {
			return nil, err
		}
		user.PIN = hash
		return reducer.UpdateUser{User: user}, nil
	})
	if err != nil {
		return domain.User{}, err
	}
	s.store.SetCurrentUser(user)
	return user, nil
}

func (s *Service) Logout(_ context.Context) {
	s.store.ClearSession()
}

func (s *Service) CurrentUser() (domain.UserView, bool) {
	user, ok := s.store.CurrentUser()
	if !ok {
		return domain.UserView{}, false
	}
	return user.View(), true
}

func hashPIN(pin string) (string, error) {
	if err := ValidatePINStrength(pin); err != nil {
		return "", err
	}
	return bcryptPIN(pin)
}

func bcryptPIN(pin string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(bytes), nil
}

func verifyPIN(stored string, input string) bool {
	if stored == "" || strings.TrimSpace(input) == "" {
		return false
	}
	if !isPINHash(stored) {
		return subtle.ConstantTimeCompare([]byte(stored), []byte(input)) == 1
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func isPINHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}

// ValidatePINStrength rejects PINs that are all the same digit,
// sequential (ascending or descending), or from a known-weak list.
func ValidatePINStrength(pin string) error {
	known := map[string]bool{
		"1234": true, "4321": true, "0000": true, "1111": true,
		"123456": true, "654321": true, "000000": true, "111111": true,
		"121212": true, "112233": true, "123123": true,
	}
	if known[pin] {
		return fmt.Errorf("%w: common PIN not allowed", ErrWeakPIN)
	}

	allSame := true
	for i := 1; i < len(pin); i++ {
		if pin[i] != pin[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("%w: all-same-digit PIN not allowed", ErrWeakPIN)
	}

	// 1234 and 9876 style runs.
	ascending, descending := true, true
	for i := 1; i < len(pin); i++ {
		diff := int(pin[i]) - int(pin[i-1])
		if diff != 1 {
			ascending = false
		}
		if diff != -1 {
			descending = false
		}
	}
	if ascending || descending {
		return fmt.Errorf("%w: sequential PIN not allowed", ErrWeakPIN)
	}

	return nil
}

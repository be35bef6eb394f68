package services

import (
	"golang.org/x/crypto/bcrypt"

	"shopmart/internal/domain"
	errs "shopmart/internal/errors"
	"shopmart/internal/repos"
)

type AuthService struct {
	Users *repos.UserRepo
}

func NewAuthService(users *repos.UserRepo) *AuthService { return &AuthService{Users: users} }

// Register creates a shopper account. Field presence and password length are
// validated by the handler; uniqueness is enforced by the email index.
func (s *AuthService) Register(username, email, password, address, contact string) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, err
	}
	return s.Users.Create(domain.User{
		Username: username,
		Email:    email,
		Hash:     string(hash),
		Address:  address,
		Contact:  contact,
		Role:     "user",
	})
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, errs.ErrBadCredentials
	}
	if !u.Active {
		return nil, errs.ErrAccountInactive
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}

func (s *AuthService) UpdateProfile(userID int64, username, email, contact, address string) error {
	return s.Users.UpdateProfile(userID, username, email, contact, address)
}

func (s *AuthService) UpdateAddress(userID int64, address string) error {
	return s.Users.UpdateAddress(userID, address)
}

// ChangePassword verifies the old password before storing a new hash.
func (s *AuthService) ChangePassword(userID int64, oldPassword, newPassword string) error {
	u, err := s.Users.ByID(userID)
	if err != nil {
		return err
	}
	if u == nil || bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(oldPassword)) != nil {
		return errs.ErrBadCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.Users.ChangePassword(userID, string(hash))
}

package directory

import (
	"context"
	"errors"
	"strconv"

	"github.com/MarcVCE/TrabajoOpcional/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Gorm 是基于 Postgres 的 UserDirectory 实现，密码以 bcrypt 哈希落库。
type Gorm struct {
	db *gorm.DB
}

func NewGorm(db *gorm.DB) *Gorm {
	return &Gorm{db: db}
}

func toUser(u models.User) *User {
	out := &User{ID: strconv.FormatUint(uint64(u.ID), 10), Email: u.Email}
	if u.Token != nil {
		out.Token = *u.Token
	}
	return out
}

func (g *Gorm) FindByEmail(ctx context.Context, email string) (*User, error) {
	var u models.User
	if err := g.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toUser(u), nil
}

func (g *Gorm) FindByToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var u models.User
	if err := g.db.WithContext(ctx).Where("token = ?", token).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return toUser(u), nil
}

func (g *Gorm) Create(ctx context.Context, email, password string) (*User, error) {
	var count int64
	if err := g.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := models.User{Email: email, PasswordHash: string(hash)}
	if err := g.db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, err
	}
	return toUser(u), nil
}

func (g *Gorm) SetToken(ctx context.Context, email, password, token string) error {
	var u models.User
	if err := g.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBadCredentials
		}
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return ErrBadCredentials
	}
	var val *string
	if token != "" {
		val = &token
	}
	return g.db.WithContext(ctx).Model(&u).Update("token", val).Error
}

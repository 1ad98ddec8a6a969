package model

import (
	"time"

	"github.com/golang-jwt/jwt"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserName  string    `json:"user_name"`
	Password  string    `json:"-"`
	Role      string    `json:"role"` // vendor | admin
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type UserClaims struct {
	jwt.StandardClaims
	UserName string `json:"user_name"`
	Role     string `json:"role"`
}

type ReqLogin struct {
	UserName string `json:"user_name"`
	Password string `json:"password"`
}

type ReqRegister struct {
	Name     string `json:"name"`
	UserName string `json:"user_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

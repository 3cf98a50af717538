package dto

import (
	"time"

	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/accounts"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/application/auth"
	"github.com/baechuer/real-time-ressys/services/user-service/internal/domain"
)

// UserView is the wire form of an account. There is no password field.
type UserView struct {
	ID         int64     `json:"id"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	MiddleName *string   `json:"middleName"`
	BirthDate  string    `json:"birthDate"`
	Email      string    `json:"email"`
	Role       string    `json:"role"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func NewUserView(v domain.AccountView) UserView {
	return UserView{
		ID:         v.ID,
		FirstName:  v.FirstName,
		LastName:   v.LastName,
		MiddleName: v.MiddleName,
		BirthDate:  v.BirthDate.Format(domain.DateLayout),
		Email:      v.Email,
		Role:       string(v.Role),
		IsActive:   v.IsActive,
		CreatedAt:  v.CreatedAt.UTC(),
		UpdatedAt:  v.UpdatedAt.UTC(),
	}
}

type AuthData struct {
	User  UserView `json:"user"`
	Token string   `json:"token"`
}

func NewAuthData(res auth.AuthResult) AuthData {
	return AuthData{User: NewUserView(res.Account), Token: res.Token}
}

type UserList struct {
	Users      []UserView `json:"users"`
	Total      int        `json:"total"`
	Page       int        `json:"page"`
	Limit      int        `json:"limit"`
	TotalPages int        `json:"totalPages"`
}

func NewUserList(res accounts.ListResult) UserList {
	users := make([]UserView, 0, len(res.Items))
	for _, v := range res.Items {
		users = append(users, NewUserView(v))
	}
	return UserList{
		Users:      users,
		Total:      res.Total,
		Page:       res.Page,
		Limit:      res.Limit,
		TotalPages: res.TotalPages,
	}
}

type StatusResponse struct {
	Status string `json:"status"`
}

package usecase

import (
	"context"
	"fmt"
	"time"

	"vendor-portal/domain/dto"
	"vendor-portal/domain/model"
	"vendor-portal/domain/repository"
	"vendor-portal/infrastructure/configuration"
	"vendor-portal/infrastructure/logger"
	"vendor-portal/infrastructure/utils"
)

type IUserUsecase interface {
	Login(ctx context.Context, req model.ReqLogin) dto.Res
	Register(ctx context.Context, req model.ReqRegister) dto.Res
}

type userUsecase struct {
	userRepo repository.IUser
}

func NewUserUsecase(userRepo repository.IUser) IUserUsecase {
	return &userUsecase{userRepo: userRepo}
}

func (u *userUsecase) Login(ctx context.Context, req model.ReqLogin) dto.Res {
	var res dto.Res
	user, err := u.userRepo.GetByUserName(ctx, req.UserName)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while fetching user")
		res.ResponseCode = "401"
		res.ResponseMessage = "Invalid username or password"
		return res
	}
	if user.Password != req.Password {
		res.ResponseCode = "401"
		res.ResponseMessage = "Invalid username or password"
		return res
	}

	now := utils.GetCurrentTime()
	token, err := utils.GenerateToken(map[string]interface{}{
		"iss":       fmt.Sprintf("%d", user.ID),
		"user_name": user.UserName,
		"role":      user.Role,
		"iat":       now.Unix(),
		"exp":       now.Add(24 * time.Hour).Unix(),
	}, configuration.C.App.SecretKey)
	if err != nil {
		res.ResponseCode = "500"
		res.ResponseMessage = "Internal Server Error"
		return res
	}

	res.ResponseCode = "200"
	res.ResponseMessage = "OK"
	res.Data = map[string]interface{}{
		"access_token": token,
		"user": map[string]interface{}{
			"id":        user.ID,
			"name":      user.Name,
			"user_name": user.UserName,
			"role":      user.Role,
		},
	}
	return res
}

func (u *userUsecase) Register(ctx context.Context, req model.ReqRegister) dto.Res {
	var res dto.Res
	user := &model.User{
		Name:     req.Name,
		UserName: req.UserName,
		Password: req.Password,
		Role:     req.Role,
	}
	if user.Role != "admin" {
		user.Role = "vendor"
	}
	if err := u.userRepo.CreateUser(ctx, user); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while creating user")
		res.ResponseCode = "500"
		res.ResponseMessage = "Error while creating user"
		return res
	}
	res.ResponseCode = "200"
	res.ResponseMessage = "OK"
	res.Data = user
	return res
}

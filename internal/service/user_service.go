package service

import (
	"learn_my_way_backend/internal/model"
	"learn_my_way_backend/internal/repository"
	"learn_my_way_backend/internal/util"
)

// UserService 处理档案相关的业务逻辑
type UserService struct {
	UserRepo     *repository.UserRepository
	ProgressRepo *repository.ProgressRepository
}

func NewUserService(userRepo *repository.UserRepository, progressRepo *repository.ProgressRepository) *UserService {
	return &UserService{
		UserRepo:     userRepo,
		ProgressRepo: progressRepo,
	}
}

// Profile 用户档案 + 各学科进度
type Profile struct {
	User     *model.User             `json:"user"`
	Progress []model.SubjectProgress `json:"progress"`
}

func (s *UserService) GetProfile(userID uint) (*Profile, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	progress, err := s.ProgressRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}

	return &Profile{User: user, Progress: progress}, nil
}

func (s *UserService) UpdateProfile(userID uint, name, gradeLevel, language string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		return nil, util.ErrUserNotFound
	}

	if name != "" {
		user.Name = name
	}
	if gradeLevel != "" {
		user.GradeLevel = gradeLevel
	}
	if language != "" {
		user.Language = language
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListStudents() ([]model.User, error) {
	return s.UserRepo.ListStudents()
}

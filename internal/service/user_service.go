package service

import (
	"context"
	"errors"
	"strings"

	"github.com/haierkeys/jot-sync-service/internal/domain"
	"github.com/haierkeys/jot-sync-service/internal/dto"
	"github.com/haierkeys/jot-sync-service/pkg/app"
	"github.com/haierkeys/jot-sync-service/pkg/code"
	"github.com/haierkeys/jot-sync-service/pkg/util"

	"go.uber.org/zap"
)

// UserService 定义用户业务服务接口
type UserService interface {
	// Register 用户注册
	Register(ctx context.Context, params *dto.UserCreateRequest) (*dto.UserDTO, error)

	// Login 用户登录
	Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserDTO, error)

	// GetInfo 获取用户信息
	GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error)

	// GetAllUIDs 获取所有用户的 UID
	GetAllUIDs(ctx context.Context) ([]int64, error)
}

// userService 实现 UserService 接口
type userService struct {
	userRepo     domain.UserRepository
	tokenManager app.TokenManager
	logger       *zap.Logger
	config       *ServiceConfig
}

// NewUserService 创建 UserService 实例
func NewUserService(userRepo domain.UserRepository, tokenManager app.TokenManager, logger *zap.Logger, config *ServiceConfig) UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userService{
		userRepo:     userRepo,
		tokenManager: tokenManager,
		logger:       logger,
		config:       config,
	}
}

// normalizeEmail 邮箱按小写存储与比较
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// lookup 查找用户，不存在时返回 nil
func (s *userService) lookup(user *domain.User, err error) (*domain.User, error) {
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("user lookup failed", zap.Error(err))
		return nil, code.ErrorDBQuery
	}
	return user, nil
}

// Register 用户注册
func (s *userService) Register(ctx context.Context, params *dto.UserCreateRequest) (*dto.UserDTO, error) {
	// 检查注册是否启用
	if s.config == nil || !s.config.User.RegisterIsEnable {
		return nil, code.ErrorUserRegisterIsDisable
	}

	if !util.IsValidUsername(params.Username) {
		return nil, code.ErrorUserUsernameNotValid
	}

	if params.Password != params.ConfirmPassword {
		return nil, code.ErrorUserPasswordNotMatch
	}

	email := normalizeEmail(params.Email)
	emailUser, err := s.lookup(s.userRepo.GetByEmail(ctx, email))
	if err != nil {
		return nil, err
	}
	if emailUser != nil {
		return nil, code.ErrorUserEmailAlreadyExists
	}

	nameUser, err := s.lookup(s.userRepo.GetByUsername(ctx, params.Username))
	if err != nil {
		return nil, err
	}
	if nameUser != nil {
		return nil, code.ErrorUserAlreadyExists
	}

	password, err := util.GeneratePasswordHash(params.Password)
	if err != nil {
		return nil, code.ErrorPasswordNotValid
	}

	user, err := s.userRepo.Create(ctx, &domain.User{
		Username: params.Username,
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, code.ErrorUserRegister.WithDetails(err.Error())
	}

	token, err := s.tokenManager.Generate(user.UID, user.Username, "")
	if err != nil {
		return nil, code.ErrorTokenGenerate.WithDetails(err.Error())
	}

	s.logger.Info("user registered", zap.Int64("uid", user.UID), zap.String("username", user.Username))
	return dto.NewUserDTO(user, token)
}

// Login 用户登录
func (s *userService) Login(ctx context.Context, params *dto.UserLoginRequest, clientIP string) (*dto.UserDTO, error) {
	var (
		user *domain.User
		err  error
	)
	credentials := strings.TrimSpace(params.Credentials)
	if util.IsValidEmail(credentials) {
		user, err = s.userRepo.GetByEmail(ctx, normalizeEmail(credentials))
	} else {
		user, err = s.userRepo.GetByUsername(ctx, credentials)
	}
	// 不暴露用户是否存在，统一返回用户名或密码错误
	if errors.Is(err, domain.ErrUserNotFound) {
		return nil, code.ErrorUserLoginPasswordFailed
	}
	if err != nil {
		s.logger.Error("login lookup failed", zap.Error(err))
		return nil, code.ErrorDBQuery
	}

	if !util.CheckPasswordHash(user.Password, params.Password) {
		return nil, code.ErrorUserLoginPasswordFailed
	}

	token, err := s.tokenManager.Generate(user.UID, user.Username, clientIP)
	if err != nil {
		return nil, code.ErrorTokenGenerate.WithDetails(err.Error())
	}
	return dto.NewUserDTO(user, token)
}

// GetInfo 获取用户信息
func (s *userService) GetInfo(ctx context.Context, uid int64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, code.ErrorUserNotFound
		}
		return nil, code.ErrorDBQuery
	}
	return dto.NewUserDTO(user, "")
}

// GetAllUIDs 获取所有已注册用户的 UID，升级命令据此补建笔记库
func (s *userService) GetAllUIDs(ctx context.Context) ([]int64, error) {
	uids, err := s.userRepo.GetAllUIDs(ctx)
	if err != nil {
		s.logger.Error("list users failed", zap.Error(err))
		return nil, code.ErrorDBQuery
	}
	return uids, nil
}

package service

import (
	"context"
	"io"

	"github.com/google/uuid"
	"nudduck.com/nudduck/internal/dto"
	"nudduck.com/nudduck/internal/model"
	"nudduck.com/nudduck/internal/repository"
	"nudduck.com/nudduck/pkg/storage"
)

type ProfileService interface {
	GetMyProfile(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error)
	UpdateProfileImage(ctx context.Context, userID uuid.UUID, file io.Reader, fileName string) (*dto.ProfileResponse, error)
	// GetUserProfile is the public view shown when another user's avatar is
	// clicked in the community.
	GetUserProfile(ctx context.Context, userID uuid.UUID) (*dto.UserProfileResponse, error)
	DeleteAccount(ctx context.Context, userID uuid.UUID) error

	CreateLifeGraph(ctx context.Context, userID uuid.UUID, req dto.CreateLifeGraphRequest) (*dto.LifeGraphResponse, error)
	GetLifeGraphs(ctx context.Context, userID uuid.UUID) ([]dto.LifeGraphResponse, error)
	DeleteLifeGraph(ctx context.Context, userID, graphID uuid.UUID) error
	SetFavoriteLifeGraph(ctx context.Context, userID, graphID uuid.UUID) error
}

type profileService struct {
	userRepo      repository.UserRepository
	lifeGraphRepo repository.LifeGraphRepository
	imageStorage  storage.ImageStorage
}

func NewProfileService(userRepo repository.UserRepository, lifeGraphRepo repository.LifeGraphRepository, imageStorage storage.ImageStorage) ProfileService {
	return &profileService{
		userRepo:      userRepo,
		lifeGraphRepo: lifeGraphRepo,
		imageStorage:  imageStorage,
	}
}

func (s *profileService) GetMyProfile(ctx context.Context, userID uuid.UUID) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return mapUserToProfile(user), nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	if req.Nickname != nil {
		user.Nickname = *req.Nickname
	}
	if req.Hashtags != nil {
		user.Hashtags = *req.Hashtags
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return mapUserToProfile(user), nil
}

func (s *profileService) UpdateProfileImage(ctx context.Context, userID uuid.UUID, file io.Reader, fileName string) (*dto.ProfileResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	imageURL, err := s.imageStorage.UploadImage(ctx, file, "profiles", fileName)
	if err != nil {
		return nil, err
	}

	// Best effort cleanup of the previous image
	if user.ImageURL != nil {
		_ = s.imageStorage.DeleteImage(ctx, *user.ImageURL)
	}

	user.ImageURL = &imageURL
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return mapUserToProfile(user), nil
}

func (s *profileService) GetUserProfile(ctx context.Context, userID uuid.UUID) (*dto.UserProfileResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapNotFound(err)
	}

	resp := &dto.UserProfileResponse{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Nickname: user.Nickname,
		ImageURL: user.ImageURL,
		Hashtags: user.Hashtags,
	}

	if user.FavoriteLifeGraphID != nil {
		graph, err := s.lifeGraphRepo.FindByID(ctx, *user.FavoriteLifeGraphID)
		if err == nil {
			mapped := mapLifeGraphToResponse(graph)
			resp.FavoriteLifeGraph = &mapped
		}
	}

	return resp, nil
}

func (s *profileService) DeleteAccount(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return mapNotFound(err)
	}

	if user.ImageURL != nil {
		_ = s.imageStorage.DeleteImage(ctx, *user.ImageURL)
	}

	// Posts, comments, sessions and graphs cascade via foreign keys.
	return s.userRepo.Delete(ctx, userID)
}

func (s *profileService) CreateLifeGraph(ctx context.Context, userID uuid.UUID, req dto.CreateLifeGraphRequest) (*dto.LifeGraphResponse, error) {
	graph := &model.LifeGraph{
		UserID: userID,
		Title:  req.Title,
	}
	for _, e := range req.Events {
		graph.Events = append(graph.Events, model.LifeGraphEvent{
			Age:   e.Age,
			Score: e.Score,
			Title: e.Title,
		})
	}

	if err := s.lifeGraphRepo.Create(ctx, graph); err != nil {
		return nil, err
	}

	mapped := mapLifeGraphToResponse(graph)
	return &mapped, nil
}

func (s *profileService) GetLifeGraphs(ctx context.Context, userID uuid.UUID) ([]dto.LifeGraphResponse, error) {
	graphs, err := s.lifeGraphRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := make([]dto.LifeGraphResponse, 0, len(graphs))
	for _, g := range graphs {
		resp = append(resp, mapLifeGraphToResponse(g))
	}
	return resp, nil
}

func (s *profileService) DeleteLifeGraph(ctx context.Context, userID, graphID uuid.UUID) error {
	graph, err := s.lifeGraphRepo.FindByID(ctx, graphID)
	if err != nil {
		return mapNotFound(err)
	}

	if err := CheckOwnership(userID, graph.UserID); err != nil {
		return err
	}

	return s.lifeGraphRepo.Delete(ctx, graphID)
}

func (s *profileService) SetFavoriteLifeGraph(ctx context.Context, userID, graphID uuid.UUID) error {
	graph, err := s.lifeGraphRepo.FindByID(ctx, graphID)
	if err != nil {
		return mapNotFound(err)
	}

	if err := CheckOwnership(userID, graph.UserID); err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return mapNotFound(err)
	}

	user.FavoriteLifeGraphID = &graph.ID
	return s.userRepo.Update(ctx, user)
}

func mapUserToProfile(user *model.User) *dto.ProfileResponse {
	return &dto.ProfileResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Nickname:  user.Nickname,
		ImageURL:  user.ImageURL,
		Hashtags:  user.Hashtags,
		CreatedAt: user.CreatedAt,
	}
}

func mapLifeGraphToResponse(graph *model.LifeGraph) dto.LifeGraphResponse {
	resp := dto.LifeGraphResponse{
		ID:        graph.ID,
		Title:     graph.Title,
		Events:    make([]dto.LifeGraphEventResponse, 0, len(graph.Events)),
		CreatedAt: graph.CreatedAt,
	}
	for _, e := range graph.Events {
		resp.Events = append(resp.Events, dto.LifeGraphEventResponse{
			Age:   e.Age,
			Score: e.Score,
			Title: e.Title,
		})
	}
	return resp
}

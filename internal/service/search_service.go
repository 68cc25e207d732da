package service

import (
	"html"

	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
	"nudduck.com/nudduck/internal/model"
	"nudduck.com/nudduck/pkg/logger"
)

const postsIndex = "posts"

type SearchService interface {
	IndexPost(post *model.Post) error
	DeletePost(id uuid.UUID) error
	Search(query string, offset, limit int) ([]uuid.UUID, int64, error)
}

type searchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndex()
	return s
}

func (s *searchService) initIndex() {
	attrs := []string{"category"}
	filterable := make([]any, len(attrs))
	for i, v := range attrs {
		filterable[i] = v
	}
	if _, err := s.client.Index(postsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		logger.L().Warn("failed to update posts filterable attributes", zap.Error(err))
	}
}

type postDocument struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

func (s *searchService) IndexPost(post *model.Post) error {
	doc := postDocument{
		ID:       post.ID.String(),
		Category: post.Category,
		Title:    post.Title,
		// Index plain text, not markup
		Content: html.UnescapeString(s.sanitizer.Sanitize(post.Content)),
	}

	_, err := s.client.Index(postsIndex).AddDocuments([]postDocument{doc}, nil)
	return err
}

func (s *searchService) DeletePost(id uuid.UUID) error {
	_, err := s.client.Index(postsIndex).DeleteDocument(id.String())
	return err
}

func (s *searchService) Search(query string, offset, limit int) ([]uuid.UUID, int64, error) {
	resp, err := s.client.Index(postsIndex).Search(query, &meilisearch.SearchRequest{
		Offset: int64(offset),
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		var doc postDocument
		if err := hit.Decode(&doc); err != nil {
			continue
		}
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}

	return ids, resp.EstimatedTotalHits, nil
}

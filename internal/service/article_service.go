package service

import (
	"fmt"
	"mindmirror-go/internal/model"
	"net/url"
)

// ArticleService 提供只读的文章列表。
type ArticleService interface {
	List() []model.Article
}

type articleService struct {
	articles []model.Article
}

// NewArticleService 校验并保存文章列表，之后不再修改。
func NewArticleService(articles []model.Article) (ArticleService, error) {
	stored := make([]model.Article, 0, len(articles))
	for i, a := range articles {
		if a.Name == "" {
			return nil, fmt.Errorf("article %d has an empty name", i)
		}
		u, err := url.Parse(a.Link)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("article %d (%s) has an invalid link %q", i, a.Name, a.Link)
		}
		stored = append(stored, a)
	}
	return &articleService{articles: stored}, nil
}

// List 返回文章列表的副本。
func (s *articleService) List() []model.Article {
	out := make([]model.Article, len(s.articles))
	copy(out, s.articles)
	return out
}

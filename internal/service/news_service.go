package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/market"
	"github.com/ndewijer/Portfolio-Dashboard-Backend/internal/model"
)

// Default result sizes per news listing.
const (
	DefaultAssetNews    = 10
	DefaultMarketNews   = 12
	DefaultCryptoNews   = 10
	DefaultResearchNews = 8
)

// NewsService serves headline listings.
type NewsService struct {
	news   NewsSource
	market MarketData
}

// NewNewsService creates a new NewsService. The market data source is used
// to resolve a display name when asset news is requested by ticker only.
func NewNewsService(news NewsSource, m MarketData) *NewsService {
	return &NewsService{news: news, market: m}
}

// GetMarketNews returns general market headlines.
func (s *NewsService) GetMarketNews(ctx context.Context, max int) []model.NewsItem {
	return s.news.MarketNews(ctx, orDefault(max, DefaultMarketNews))
}

// GetCryptoNews returns crypto headlines.
func (s *NewsService) GetCryptoNews(ctx context.Context, max int) []model.NewsItem {
	return s.news.CryptoNews(ctx, orDefault(max, DefaultCryptoNews))
}

// GetAssetNews returns headlines about one asset. When name is empty the
// quote's name is used, falling back to the ticker.
func (s *NewsService) GetAssetNews(ctx context.Context, ticker, name string, max int) ([]model.NewsItem, error) {
	sym := market.NormalizeTicker(ticker)
	if sym == "" {
		return nil, fmt.Errorf("ticker is required: %w", apperrors.ErrValidation)
	}
	if strings.TrimSpace(name) == "" && s.market != nil {
		if q := s.market.FetchQuote(ctx, sym); q.Valid && q.Name != "" {
			name = q.Name
		}
	}
	if strings.TrimSpace(name) == "" {
		name = sym
	}
	return s.news.AssetNews(ctx, sym, name, market.DetectAssetType(sym), orDefault(max, DefaultAssetNews)), nil
}

// GetResearchNews returns headlines for a free-text query.
func (s *NewsService) GetResearchNews(ctx context.Context, query string, max int) ([]model.NewsItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("query is required: %w", apperrors.ErrValidation)
	}
	return s.news.ResearchNews(ctx, query, orDefault(max, DefaultResearchNews)), nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

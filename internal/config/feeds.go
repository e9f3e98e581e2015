package config

import "github.com/kovalyov-valentin/news-feed-sync/internal/model"

// Список лент. Меняется только вместе с кодом
var Feeds = []model.Source{
	{
		Category: "국내주식",
		Label:    "국내주식",
		FeedURL:  "https://news.google.com/rss/search?q=국내주식+OR+코스피&hl=ko&gl=KR&ceid=KR:ko",
		Icon:     "📈",
	},
	{
		Category: "미국주식",
		Label:    "미국주식",
		FeedURL:  "https://news.google.com/rss/search?q=미국주식+OR+나스닥&hl=ko&gl=KR&ceid=KR:ko",
		Icon:     "🇺🇸",
	},
	{
		Category: "코인",
		Label:    "코인",
		FeedURL:  "https://news.google.com/rss/search?q=비트코인+OR+암호화폐&hl=ko&gl=KR&ceid=KR:ko",
		Icon:     "🪙",
	},
	{
		Category: "경제캘린더",
		Label:    "토큰포스트",
		FeedURL:  "https://www.tokenpost.kr/rss/calendar",
		Icon:     "📅",
		Parser:   "gofeed",
	},
}

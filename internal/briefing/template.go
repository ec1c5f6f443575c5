// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package briefing

import (
	"html/template"
	"strings"
	"time"

	"github.com/pdiddy/neurotrack/pkg/types"
)

// templateData is the view model for the briefing template.
type templateData struct {
	Date         string
	Total        int
	Critical     []types.Record
	Journals     []types.Record
	Preprints    []types.Record
	News         []types.Record
	Trending     []types.KeywordCount
	DashboardURL string
}

// GenerateHTML renders the briefing for the given records and trending
// keywords. Records are grouped into a critical section (importance 60
// and up) followed by per-category sections, each capped at five items.
func GenerateHTML(records []types.Record, trending []types.KeywordCount, dashboardURL string, now time.Time) (string, error) {
	data := templateData{
		Date:         now.Format("2006年1月2日"),
		Total:        len(records),
		Trending:     trending,
		DashboardURL: dashboardURL,
	}
	if data.DashboardURL == "" {
		data.DashboardURL = "http://localhost:3000"
	}

	for _, rec := range records {
		if rec.ImportanceLevel == types.LevelCritical || rec.Importance >= 60 {
			data.Critical = append(data.Critical, rec)
		}
		switch rec.Category {
		case types.CategoryJournal:
			data.Journals = append(data.Journals, rec)
		case types.CategoryPreprint:
			data.Preprints = append(data.Preprints, rec)
		case types.CategoryNews:
			data.News = append(data.News, rec)
		}
	}
	data.Critical = capSection(data.Critical)
	data.Journals = capSection(data.Journals)
	data.Preprints = capSection(data.Preprints)
	data.News = capSection(data.News)

	var b strings.Builder
	if err := briefingTemplate.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func capSection(records []types.Record) []types.Record {
	if len(records) > sectionLimit {
		return records[:sectionLimit]
	}
	return records
}

// badge maps an importance level to its indicator.
func badge(level types.ImportanceLevel) string {
	switch level {
	case types.LevelCritical:
		return "🔴"
	case types.LevelHigh:
		return "🟡"
	case types.LevelMedium:
		return "🔵"
	default:
		return "⚪"
	}
}

// shortAbstract trims abstracts for the compact briefing rows.
func shortAbstract(s string) string {
	const limit = 150
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// sectionData feeds the shared section sub-template.
type sectionData struct {
	Title   string
	TitleEn string
	Items   []types.Record
}

func section(title, titleEn string, items []types.Record) sectionData {
	return sectionData{Title: title, TitleEn: titleEn, Items: items}
}

var briefingTemplate = template.Must(template.New("briefing").Funcs(template.FuncMap{
	"badge":         badge,
	"shortAbstract": shortAbstract,
	"section":       section,
}).Parse(`{{define "section"}}{{if .Items}}
  <h2 style="color: #00f5d4; border-bottom: 1px solid #333; padding-bottom: 8px; margin-top: 30px;">
    {{.Title}} <span style="color: #666; font-weight: normal; font-size: 14px;">{{.TitleEn}}</span>
  </h2>
  <table style="width: 100%; border-collapse: collapse;">
    <thead>
      <tr style="color: #888; font-size: 12px; text-align: left;">
        <th style="padding: 8px;">标题 / Title</th>
        <th style="padding: 8px; text-align: center;">评分</th>
        <th style="padding: 8px;">来源</th>
      </tr>
    </thead>
    <tbody>
    {{range .Items}}
      <tr style="border-bottom: 1px solid #2a2a3e;">
        <td style="padding: 12px; vertical-align: top;">
          <a href="{{.URL}}" style="color: #00f5d4; text-decoration: none; font-weight: 600;">{{.Title}}</a>
          {{if .TitleZh}}<br><span style="color: #a0a0b0; font-size: 13px;">{{.TitleZh}}</span>{{end}}
          {{if .Abstract}}<br><span style="color: #888; font-size: 12px;">{{shortAbstract .Abstract}}</span>{{end}}
        </td>
        <td style="padding: 12px; text-align: center; white-space: nowrap;">{{badge .ImportanceLevel}} {{.Importance}}</td>
        <td style="padding: 12px; color: #888; font-size: 12px;">{{if .Source}}{{.Source}}{{else}}{{.Provider}}{{end}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>
{{end}}{{end}}<!DOCTYPE html>
<html>
<head><meta charset="utf-8"></head>
<body style="background: #0d0d1a; color: #e0e0e8; font-family: -apple-system, 'Segoe UI', sans-serif; padding: 40px 20px; max-width: 700px; margin: 0 auto;">
  <div style="text-align: center; margin-bottom: 30px;">
    <h1 style="margin: 0; font-size: 24px;">
      <span style="color: #00f5d4;">🧠 BCI Tracker</span>
      <span style="color: #888; font-weight: normal; font-size: 16px;"> 每日简报 Daily Briefing</span>
    </h1>
    <p style="color: #666; margin: 8px 0;">{{.Date}} · 共 {{.Total}} 条新动态</p>
  </div>
{{template "section" (section "⚡ 重点关注" "Critical / High Importance" .Critical)}}
{{template "section" (section "📄 期刊论文" "Journal Articles" .Journals)}}
{{template "section" (section "📋 预印本" "Preprints" .Preprints)}}
{{template "section" (section "📰 产业动态" "Industry News" .News)}}
{{if .Trending}}
  <h2 style="color: #00f5d4; border-bottom: 1px solid #333; padding-bottom: 8px; margin-top: 30px;">
    🔥 热门关键词 <span style="color: #666; font-weight: normal; font-size: 14px;">Trending Keywords</span>
  </h2>
  <div style="margin: 16px 0;">
    {{range .Trending}}<span style="background: #1a1a2e; border: 1px solid #333; padding: 4px 12px; border-radius: 16px; font-size: 13px; color: #ccc;">{{.Keyword}} ({{.Count}})</span> {{end}}
  </div>
{{end}}
  <div style="text-align: center; margin-top: 40px; padding-top: 20px; border-top: 1px solid #333; color: #666; font-size: 12px;">
    <p>由 BCI Tracker 自动生成 · <a href="{{.DashboardURL}}" style="color: #00f5d4;">查看完整面板</a></p>
    <p>如需退订，请回复此邮件</p>
  </div>
</body>
</html>
`))

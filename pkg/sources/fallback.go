package sources

import (
	"time"

	"github.com/samvad-hq/samvad-health-news/internal/domain"
)

// FallbackItems is the fixed set served while the search API is rate limited.
// Every item is stamped with now so it ranks as fresh.
func FallbackItems(now time.Time) []domain.NewsItem {
	item := func(title, link, source, desc, image string, cat domain.Category, prio domain.Priority) domain.NewsItem {
		return domain.NewsItem{
			Title:       title,
			Link:        link,
			Source:      source,
			PublishedAt: now,
			Description: desc,
			ImageURL:    image,
			Language:    domain.LanguageEnglish,
			Category:    cat,
			Priority:    prio,
			IsLocal:     false,
			SourceKind:  domain.KindAPI,
		}
	}

	return []domain.NewsItem{
		item(
			"Study finds regular exercise may reduce risk of severe COVID-19 outcomes",
			"https://www.who.int/news-room/health-topics/physical-activity",
			"World Health Organization",
			"Regular physical activity is proven to help prevent and manage diseases such as heart disease, stroke, diabetes and several cancers. It also helps prevent hypertension, maintain healthy body weight and can improve mental health, quality of life and well-being.",
			"https://www.who.int/images/default-source/departments/social-media/social-determinants-of-health-sdh.jpg",
			domain.CategoryHealth, domain.PriorityMedium,
		),
		item(
			"New guidelines released for managing hypertension in older adults",
			"https://www.who.int/news-room/fact-sheets/detail/hypertension",
			"Health Journal",
			"Recent medical research has led to updated guidelines for treating high blood pressure in older patients, emphasizing personalized approaches based on overall health status.",
			"https://www.who.int/images/default-source/wpro/countries/philippines/feature-stories/hypertension-blood-pressure-measurement.jpg",
			domain.CategoryMedical, domain.PriorityMedium,
		),
		item(
			"Nutritionists recommend Mediterranean diet for heart health benefits",
			"https://www.who.int/news-room/fact-sheets/detail/healthy-diet",
			"Nutrition Research",
			"The Mediterranean diet, rich in olive oil, nuts, fruits, vegetables, and fish, continues to show strong evidence for cardiovascular health improvements and longevity.",
			"https://www.who.int/images/default-source/wpro/health-topic/nutrition/img-nutrition-healthy-eating.jpg",
			domain.CategoryNutrition, domain.PriorityLow,
		),
		item(
			"Mental health awareness focuses on post-pandemic anxiety and depression",
			"https://www.who.int/news-room/fact-sheets/detail/mental-health-strengthening-our-response",
			"Mental Health Foundation",
			"Health professionals are highlighting the importance of addressing lingering psychological effects from pandemic isolation and stress, with new approaches to community support.",
			"https://www.who.int/images/default-source/departments/mental-health/depression/woman-in-blue-shirt.jpg",
			domain.CategoryWellness, domain.PriorityMedium,
		),
		item(
			"Advances in diabetes treatment show promise for improved quality of life",
			"https://www.who.int/news-room/fact-sheets/detail/diabetes",
			"Medical Innovations",
			"New diabetes management technologies and medications are making it easier for patients to maintain stable blood glucose levels with fewer complications.",
			"https://www.who.int/images/default-source/wpro/countries/philippines/feature-stories/8fea0583-1816-4169-b2b1-4f8e2e579135.jpg",
			domain.CategoryMedical, domain.PriorityMedium,
		),
	}
}

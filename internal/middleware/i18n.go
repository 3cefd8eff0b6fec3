// internal/middleware/i18n.go
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/balaguruva/admin-backend/internal/i18n"
)

// I18nMiddleware picks the first Accept-Language entry that has a catalog
// and falls back to English.
func I18nMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("lang", negotiateLanguage(c.GetHeader("Accept-Language"), i18n.GetSupportedLanguages()))
		c.Next()
	}
}

func negotiateLanguage(header string, supported []string) string {
	known := make(map[string]bool, len(supported))
	for _, lang := range supported {
		known[lang] = true
	}

	// Handle cases like "zh-TW,zh;q=0.9,en;q=0.8"
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.Split(part, ";")[0])
		switch tag {
		case "zh-TW", "zh-Hant", "zh_TW":
			tag = "zh_TW"
		case "en-US", "en-GB":
			tag = "en"
		}
		if known[tag] {
			return tag
		}
	}
	return "en"
}

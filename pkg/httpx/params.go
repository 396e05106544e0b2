package httpx

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// ClampInt — ограничение значения v в диапазоне [lo, hi].
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ParsePage — читает номер страницы из query с дефолтом 1.
func ParsePage(c *gin.Context) int {
	page := 1
	if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v >= 1 {
		page = v
	}
	return page
}

// ParseDate — читает дату из query в формате YYYY-MM-DD; nil при отсутствии
// или неразборчивом значении.
func ParseDate(c *gin.Context, name string) *time.Time {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	return &t
}

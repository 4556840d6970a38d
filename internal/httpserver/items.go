package httpserver

import (
	"net/http"
	"strconv"
	"strings"

	"storefront-api/internal/service/catalog"

	"github.com/gin-gonic/gin"
)

func listItemsHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		in := catalog.ListInput{
			Category:  c.Query("category"),
			Search:    c.Query("search"),
			InStock:   c.Query("inStock") == "true",
			SortBy:    c.DefaultQuery("sortBy", "createdAt"),
			SortOrder: c.DefaultQuery("sortOrder", "desc"),
			Page:      intQuery(c, "page", 1),
			Limit:     intQuery(c, "limit", 12),
		}
		if v, ok := int64Query(c, "minPriceCents"); ok {
			in.MinPriceCents = &v
		}
		if v, ok := int64Query(c, "maxPriceCents"); ok {
			in.MaxPriceCents = &v
		}

		items, pagination, err := svc.List(c.Request.Context(), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"items":      items,
			"pagination": pagination,
		})
	}
}

func searchItemsHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if len(strings.TrimSpace(query)) < 2 {
			c.JSON(http.StatusOK, gin.H{
				"suggestions": []interface{}{},
				"message":     "Query must be at least 2 characters long",
			})
			return
		}
		suggestions, categories, err := svc.Search(c.Request.Context(), query)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"suggestions":     suggestions,
			"categoryMatches": categories,
			"total":           len(suggestions),
		})
	}
}

func categoriesHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := svc.Categories(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		categories := make([]gin.H, 0, len(counts))
		for _, cc := range counts {
			categories = append(categories, gin.H{"name": cc.Name, "count": cc.Count})
		}
		c.JSON(http.StatusOK, gin.H{"categories": categories})
	}
}

func getItemHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"item": item})
	}
}

func createItemHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.ItemInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		item, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"message": "Item created successfully",
			"item":    item,
		})
	}
}

func updateItemHandler(svc CatalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req catalog.ItemInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		item, err := svc.Update(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Item updated successfully",
			"item":    item,
		})
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func int64Query(c *gin.Context, key string) (int64, bool) {
	v := c.Query(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

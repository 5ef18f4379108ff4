package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"newsdigest/app/database"
)

const recentListLimit = 50

func NewHandler(feedRepo database.FeedRepository, itemRepo database.ItemRepository,
	recipientRepo database.RecipientRepository, subscriptionRepo database.SubscriptionRepository,
	deliveryRepo database.DeliveryRepository, maintenanceRepo database.MaintenanceRepository,
	scheduler SchedulerInterface) *Handler {
	return &Handler{
		feedRepo:         feedRepo,
		itemRepo:         itemRepo,
		recipientRepo:    recipientRepo,
		subscriptionRepo: subscriptionRepo,
		deliveryRepo:     deliveryRepo,
		maintenanceRepo:  maintenanceRepo,
		scheduler:        scheduler,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := gin.H{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if stats, err := h.maintenanceRepo.Stats(c.Request.Context()); err == nil {
		health["active_feeds"] = stats.ActiveFeeds
		health["active_recipients"] = stats.ActiveRecipients
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.maintenanceRepo.Stats(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListJobs(c *gin.Context) {
	jobs := h.scheduler.Status()

	c.JSON(http.StatusOK, gin.H{
		"jobs":  jobs,
		"total": len(jobs),
	})
}

func (h *Handler) APITriggerJob(c *gin.Context) {
	name := c.Param("name")

	result, err := h.scheduler.Trigger(name)
	if err != nil {
		slog.Error("Job trigger failed", "job", name, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Job failed",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"job":     name,
		"result":  result,
	})
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	feeds, err := h.feedRepo.ListFeeds(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_feeds", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": lo.Map(feeds, func(f database.Feed, _ int) gin.H {
			return gin.H{
				"id":              f.ID,
				"name":            f.Name,
				"url":             f.URL,
				"active":          f.Active,
				"last_fetched_at": f.LastFetchedAt,
			}
		}),
		"total": len(feeds),
	})
}

func (h *Handler) APICreateFeed(c *gin.Context) {
	var req struct {
		Name          string `json:"name" binding:"required"`
		URL           string `json:"url" binding:"required,url"`
		FetchInterval int    `json:"fetch_interval_seconds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interval := time.Duration(req.FetchInterval) * time.Second
	if interval <= 0 {
		interval = time.Hour
	}

	feed, err := h.feedRepo.CreateFeed(c.Request.Context(), req.Name, req.URL, interval)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateFeed) {
			c.JSON(http.StatusConflict, gin.H{"error": "Feed URL already registered"})
			return
		}
		slog.Error("Database error", "operation", "create_feed", "url", req.URL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": feed.ID, "name": feed.Name, "url": feed.URL})
}

func (h *Handler) APIDeactivateFeed(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.feedRepo.SetFeedActive(c.Request.Context(), id, false); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
			return
		}
		slog.Error("Database error", "operation", "deactivate_feed", "feed_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) APIListRecipients(c *gin.Context) {
	recipients, err := h.recipientRepo.ListRecipients(c.Request.Context())
	if err != nil {
		slog.Error("Database error", "operation", "list_recipients", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"recipients": lo.Map(recipients, func(r database.Recipient, _ int) gin.H {
			return gin.H{
				"id":            r.ID,
				"external_id":   r.ExternalID,
				"display_name":  r.DisplayName,
				"summary_level": r.SummaryLevel,
				"delivery_time": r.DeliveryTime,
				"timezone":      r.Timezone,
				"active":        r.Active,
			}
		}),
		"total": len(recipients),
	})
}

func (h *Handler) APIUpsertRecipient(c *gin.Context) {
	var req struct {
		ExternalID  string `json:"external_id" binding:"required"`
		DisplayName string `json:"display_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipient, err := h.recipientRepo.UpsertRecipient(c.Request.Context(), req.ExternalID, req.DisplayName)
	if err != nil {
		slog.Error("Database error", "operation", "upsert_recipient", "external_id", req.ExternalID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": recipient.ID, "external_id": recipient.ExternalID})
}

func (h *Handler) APIUpdateRecipientSettings(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		DisplayName  *string `json:"display_name"`
		SummaryLevel *string `json:"summary_level"`
		DeliveryTime *string `json:"delivery_time"`
		Timezone     *string `json:"timezone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Timezone != nil {
		if _, err := time.LoadLocation(*req.Timezone); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown timezone"})
			return
		}
	}

	settings := database.RecipientSettings{
		DisplayName:  req.DisplayName,
		SummaryLevel: req.SummaryLevel,
		DeliveryTime: req.DeliveryTime,
		Timezone:     req.Timezone,
	}

	if err := h.recipientRepo.UpdateRecipientSettings(c.Request.Context(), id, settings); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
			return
		}
		slog.Error("Database error", "operation", "update_settings", "recipient_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) APIDeactivateRecipient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.recipientRepo.SetRecipientActive(c.Request.Context(), id, false); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipient not found"})
			return
		}
		slog.Error("Database error", "operation", "deactivate_recipient", "recipient_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) APIListSubscriptions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	feeds, err := h.subscriptionRepo.ListSubscribedFeeds(c.Request.Context(), id)
	if err != nil {
		slog.Error("Database error", "operation", "list_subscriptions", "recipient_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": lo.Map(feeds, func(f database.Feed, _ int) gin.H {
			return gin.H{"id": f.ID, "name": f.Name, "url": f.URL}
		}),
		"total": len(feeds),
	})
}

func (h *Handler) APISubscribe(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		FeedID int64 `json:"feed_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.subscriptionRepo.Subscribe(c.Request.Context(), id, req.FeedID); err != nil {
		slog.Error("Database error", "operation", "subscribe", "recipient_id", id, "feed_id", req.FeedID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) APIUnsubscribe(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	feedID, err := strconv.ParseInt(c.Param("feedID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid feed id"})
		return
	}

	if err := h.subscriptionRepo.Unsubscribe(c.Request.Context(), id, feedID); err != nil {
		slog.Error("Database error", "operation", "unsubscribe", "recipient_id", id, "feed_id", feedID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) APIListRecentItems(c *gin.Context) {
	items, err := h.itemRepo.ListRecentItems(c.Request.Context(), recentListLimit)
	if err != nil {
		slog.Error("Database error", "operation", "list_items", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": lo.Map(items, func(item database.Item, _ int) gin.H {
			return gin.H{
				"id":           item.ID,
				"feed":         item.FeedName,
				"title":        item.Title,
				"url":          item.URL,
				"published_at": item.PublishedAt,
				"processed":    item.Processed,
			}
		}),
		"total": len(items),
	})
}

func (h *Handler) APIListRecentDeliveries(c *gin.Context) {
	deliveries, err := h.deliveryRepo.ListRecentDeliveries(c.Request.Context(), recentListLimit)
	if err != nil {
		slog.Error("Database error", "operation", "list_deliveries", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deliveries": lo.Map(deliveries, func(d database.DeliveryRecord, _ int) gin.H {
			return gin.H{
				"id":           d.ID,
				"recipient_id": d.RecipientID,
				"item_id":      d.ItemID,
				"status":       d.Status,
				"delivered_at": d.DeliveredAt,
				"error":        d.Error,
			}
		}),
		"total": len(deliveries),
	})
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id parameter"})
		return 0, false
	}
	return id, true
}

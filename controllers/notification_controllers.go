package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/kopiaku-backend/models"
	"github.com/yeremiapane/kopiaku-backend/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications -> ?unread=true untuk yang belum dibaca saja
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	query := nc.DB.Order("created_at desc")
	if c.Query("unread") == "true" {
		query = query.Where("read_at IS NULL")
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of notifications", notifications)
}

// MarkNotificationRead
func (nc *NotificationController) MarkNotificationRead(c *gin.Context) {
	notifID, err := parseIDParam(c, "notif_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var notification models.Notification
	if err := nc.DB.First(&notification, notifID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	now := time.Now()
	notification.ReadAt = &now
	if err := nc.DB.Save(&notification).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", notification)
}

// DeleteNotification
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	notifID, err := parseIDParam(c, "notif_id")
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := nc.DB.Delete(&models.Notification{}, notifID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", gin.H{"notif_id": notifID})
}

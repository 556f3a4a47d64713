package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/organivo/organivo/db"
	"github.com/organivo/organivo/internal/apperrors"
	"github.com/organivo/organivo/internal/models"
	"github.com/organivo/organivo/internal/types"
	"github.com/organivo/organivo/internal/utils"
	"gorm.io/gorm"
)

// Stats returns aggregate counts across everything the caller owns.
func (h *Projects) Stats(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		fail(ctx, apperrors.Auth("Unauthorized"))
		return
	}

	var totalProjects int64

	if err := db.DB.Model(&models.Project{}).Where("owner_id = ?", userID).Count(&totalProjects).Error; err != nil {
		fail(ctx, err)
		return
	}

	ownedProjects := func() *gorm.DB {
		return db.DB.Model(&models.Project{}).Select("id").Where("owner_id = ?", userID)
	}

	var totalLists int64

	if err := db.DB.Model(&models.List{}).Where("project_id IN (?)", ownedProjects()).Count(&totalLists).Error; err != nil {
		fail(ctx, err)
		return
	}

	var totalTasks int64

	if err := db.DB.Model(&models.Task{}).Where("project_id IN (?)", ownedProjects()).Count(&totalTasks).Error; err != nil {
		fail(ctx, err)
		return
	}

	var avgTasks float64

	if totalProjects > 0 {
		avgTasks = math.Round(float64(totalTasks)/float64(totalProjects)*100) / 100
	}

	stats := []types.StatItem{
		{Title: "Total Projects", Value: float64(totalProjects)},
		{Title: "Total Lists", Value: float64(totalLists)},
		{Title: "Total Tasks", Value: float64(totalTasks)},
		{Title: "Avg. Tasks / Project", Value: avgTasks},
	}

	respond(ctx, http.StatusOK, "", stats)
}

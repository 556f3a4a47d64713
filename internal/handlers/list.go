package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/organivo/organivo/db"
	"github.com/organivo/organivo/internal/apperrors"
	"github.com/organivo/organivo/internal/models"
	"github.com/organivo/organivo/internal/utils"
	"gorm.io/gorm"
)

// Lists owns the list endpoints, all scoped to a parent project the caller
// owns.
type Lists struct {
	Hub *BoardHub
}

type CreateListRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateListRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type ReorderListsRequest struct {
	Order []uint `json:"order" binding:"required"`
}

func validateListFields(title, description string) error {
	if title != "" && len(title) > 100 {
		return apperrors.Validation("Title must be at most 100 characters")
	}

	if len(description) > 500 {
		return apperrors.Validation("Description must be at most 500 characters")
	}

	return nil
}

func findProjectList(listParam string, projectID uint) (*models.List, error) {
	listID, err := parseEntityID(listParam)

	if err != nil {
		return nil, err
	}

	var list models.List

	err = db.DB.Where("id = ? AND project_id = ?", listID, projectID).First(&list).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("List not found")
		}
		return nil, err
	}

	return &list, nil
}

func (h *Lists) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		fail(ctx, apperrors.Auth("Unauthorized"))
		return
	}

	project, err := findOwnedProject(ctx.Param("project_id"), userID)

	if err != nil {
		fail(ctx, err)
		return
	}

	var body CreateListRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Please provide a list title"))
		return
	}

	if err := validateListFields(body.Title, body.Description); err != nil {
		fail(ctx, err)
		return
	}

	// New lists go to the end of the board.
	var maxPosition int

	err = db.DB.Model(&models.List{}).
		Where("project_id = ?", project.ID).
		Select("COALESCE(MAX(position), -1)").
		Scan(&maxPosition).Error

	if err != nil {
		fail(ctx, err)
		return
	}

	list := models.List{
		Title:       strings.TrimSpace(body.Title),
		Description: strings.TrimSpace(body.Description),
		ProjectID:   project.ID,
		Position:    maxPosition + 1,
	}

	if err := db.DB.Create(&list).Error; err != nil {
		fail(ctx, err)
		return
	}

	h.Hub.NotifyProject(project.ID)

	respond(ctx, http.StatusCreated, "", gin.H{
		"list": newListResponse(list),
	})
}

func (h *Lists) Update(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		fail(ctx, apperrors.Auth("Unauthorized"))
		return
	}

	project, err := findOwnedProject(ctx.Param("project_id"), userID)

	if err != nil {
		fail(ctx, err)
		return
	}

	list, err := findProjectList(ctx.Param("list_id"), project.ID)

	if err != nil {
		fail(ctx, err)
		return
	}

	var body UpdateListRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Invalid request"))
		return
	}

	if err := validateListFields(body.Title, body.Description); err != nil {
		fail(ctx, err)
		return
	}

	if body.Title != "" {
		list.Title = strings.TrimSpace(body.Title)
	}

	if body.Description != "" {
		list.Description = strings.TrimSpace(body.Description)
	}

	if err := db.DB.Save(list).Error; err != nil {
		fail(ctx, err)
		return
	}

	h.Hub.NotifyProject(project.ID)

	respond(ctx, http.StatusOK, "", gin.H{
		"list": newListResponse(*list),
	})
}

// Delete removes the list and its tasks in one transaction.
func (h *Lists) Delete(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		fail(ctx, apperrors.Auth("Unauthorized"))
		return
	}

	project, err := findOwnedProject(ctx.Param("project_id"), userID)

	if err != nil {
		fail(ctx, err)
		return
	}

	list, err := findProjectList(ctx.Param("list_id"), project.ID)

	if err != nil {
		fail(ctx, err)
		return
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", list.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		return tx.Delete(list).Error
	})

	if err != nil {
		fail(ctx, err)
		return
	}

	h.Hub.NotifyProject(project.ID)

	respond(ctx, http.StatusOK, "List deleted successfully", gin.H{
		"listId": list.ID,
	})
}

// Reorder replaces the board's list order wholesale. The payload must be a
// permutation of the project's list ids; anything else is rejected before
// any write happens.
func (h *Lists) Reorder(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		fail(ctx, apperrors.Auth("Unauthorized"))
		return
	}

	project, err := findOwnedProject(ctx.Param("project_id"), userID)

	if err != nil {
		fail(ctx, err)
		return
	}

	var body ReorderListsRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Please provide the new list order"))
		return
	}

	var lists []models.List

	if err := db.DB.Where("project_id = ?", project.ID).Find(&lists).Error; err != nil {
		fail(ctx, err)
		return
	}

	existing := make(map[uint]bool, len(lists))

	for _, list := range lists {
		existing[list.ID] = true
	}

	if len(body.Order) != len(lists) {
		fail(ctx, apperrors.Validation("List order must include every list of the project exactly once"))
		return
	}

	seen := make(map[uint]bool, len(body.Order))

	for _, id := range body.Order {
		if !existing[id] || seen[id] {
			fail(ctx, apperrors.Validation("List order must include every list of the project exactly once"))
			return
		}
		seen[id] = true
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		for position, id := range body.Order {
			err := tx.Model(&models.List{}).
				Where("id = ? AND project_id = ?", id, project.ID).
				Update("position", position).Error

			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		fail(ctx, err)
		return
	}

	h.Hub.NotifyProject(project.ID)

	respond(ctx, http.StatusOK, "Lists reordered successfully", gin.H{
		"order": body.Order,
	})
}

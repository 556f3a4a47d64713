package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/organivo/organivo/db"
	"github.com/organivo/organivo/internal/apperrors"
	"github.com/organivo/organivo/internal/models"
	"github.com/organivo/organivo/internal/utils"
	"gorm.io/gorm"
)

// Projects owns the project endpoints. Every operation is scoped to the
// authenticated owner; entities owned by someone else read as not found.
type Projects struct {
	Hub *BoardHub
}

type CreateProjectRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type UpdateProjectRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
}

// sortFields whitelists the single-field sort specification of the list
// endpoint (field:asc|desc) against actual columns.
var sortFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"status":    "status",
	"priority":  "priority",
}

func parseEntityID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 64)

	if err != nil || id == 0 {
		return 0, apperrors.Validation("Invalid id")
	}

	return uint(id), nil
}

// findOwnedProject resolves a project id against the current owner.
// Cross-tenant access fails with not found, never forbidden.
func findOwnedProject(idParam string, userID uint) (*models.Project, error) {
	projectID, err := parseEntityID(idParam)

	if err != nil {
		return nil, err
	}

	var project models.Project

	err = db.DB.Where("id = ? AND owner_id = ?", projectID, userID).First(&project).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("Project not found")
		}
		return nil, err
	}

	return &project, nil
}

func validateProjectFields(title, description, priority, status string, titleRequired bool) error {
	if titleRequired && strings.TrimSpace(title) == "" {
		return apperrors.Validation("Please provide a valid title")
	}

	// Bounds are in characters, not bytes.
	if n := utf8.RuneCountInString(title); title != "" && (n < 3 || n > 50) {
		return apperrors.Validation("Title must be between 3 and 50 characters")
	}

	if description != "" && !validDescription(description) {
		return apperrors.Validation("Description must be between 10 and 500 characters")
	}

	if priority != "" && !models.ValidProjectPriority(priority) {
		return apperrors.Validation("Priority must be either 'low', 'medium', 'high', or 'default'")
	}

	if status != "" && !models.ValidProjectStatus(status) {
		return apperrors.Validation("Status must be either 'active', 'completed', or 'archived'")
	}

	return nil
}

// Create makes a project together with its four default lists in one
// transaction, so a board is never observable half-initialized.
func (h *Projects) Create(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		fail(ctx, apperrors.Auth("Unauthorized"))
		return
	}

	var body CreateProjectRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Please provide a valid title"))
		return
	}

	if err := validateProjectFields(body.Title, body.Description, body.Priority, "", true); err != nil {
		fail(ctx, err)
		return
	}

	project := models.Project{
		Title:       strings.TrimSpace(body.Title),
		Description: strings.TrimSpace(body.Description),
		OwnerID:     userID,
		Status:      models.ProjectStatusActive,
		Priority:    body.Priority,
	}

	if project.Priority == "" {
		project.Priority = models.ProjectPriorityDefault
	}

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		for position, title := range models.DefaultListTitles {
			list := models.List{
				Title:     title,
				ProjectID: project.ID,
				Position:  position,
			}

			if err := tx.Create(&list).Error; err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		fail(ctx, err)
		return
	}

	respond(ctx, http.StatusCreated, "", gin.H{
		"project": newProjectResponse(project),
	})
}

func (h *Projects) List(ctx *gin.Context) {
	userID, err := utils.GetCurrentUserID(ctx)

	if err != nil {
		fail(ctx, apperrors.Auth("Unauthorized"))
		return
	}

	query := db.DB.Where("owner_id = ?", userID)

	// Filters outside the enums are ignored rather than rejected.
	if status := ctx.Query("status"); models.ValidProjectStatus(status) {
		query = query.Where("status = ?", status)
	}

	if priority := ctx.Query("priority"); models.ValidProjectPriority(priority) {
		query = query.Where("priority = ?", priority)
	}

	order := "created_at desc"

	if sortBy := ctx.Query("sortBy"); sortBy != "" {
		parts := strings.SplitN(sortBy, ":", 2)

		if column, ok := sortFields[parts[0]]; ok {
			direction := "desc"
			if len(parts) == 2 && parts[1] == "asc" {
				direction = "asc"
			}
			order = column + " " + direction
		}
	}

	query = query.Order(order)

	if limit, err := strconv.Atoi(ctx.Query("limit")); err == nil && limit > 0 {
		query = query.Limit(limit)
	}

	var projects []models.Project

	if err := query.Find(&projects).Error; err != nil {
		fail(ctx, err)
		return
	}

	response := make([]ProjectResponse, 0, len(projects))

	for _, project := range projects {
		response = append(response, newProjectResponse(project))
	}

	respond(ctx, http.StatusOK, "", gin.H{
		"projects": response,
		"total":    len(response),
	})
}

func (h *Projects) Get(ctx *gin.Context) {
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

	respond(ctx, http.StatusOK, "", gin.H{
		"project": newProjectResponse(*project),
	})
}

func (h *Projects) Update(ctx *gin.Context) {
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

	var body UpdateProjectRequest

	if err := ctx.ShouldBindJSON(&body); err != nil {
		fail(ctx, apperrors.Validation("Invalid request"))
		return
	}

	if err := validateProjectFields(body.Title, body.Description, body.Priority, body.Status, false); err != nil {
		fail(ctx, err)
		return
	}

	if body.Title != "" {
		project.Title = strings.TrimSpace(body.Title)
	}

	if body.Description != "" {
		project.Description = strings.TrimSpace(body.Description)
	}

	if body.Priority != "" {
		project.Priority = body.Priority
	}

	if body.Status != "" {
		project.Status = body.Status
	}

	if err := db.DB.Save(project).Error; err != nil {
		fail(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "", gin.H{
		"project": newProjectResponse(*project),
	})
}

// Delete removes the project and everything under it in one transaction,
// so the cascade is never observable half-applied.
func (h *Projects) Delete(ctx *gin.Context) {
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

	err = db.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.List{}).Error; err != nil {
			return err
		}

		return tx.Delete(project).Error
	})

	if err != nil {
		fail(ctx, err)
		return
	}

	respond(ctx, http.StatusOK, "Project deleted successfully", gin.H{
		"projectId": project.ID,
	})
}

// GetData returns the whole board: the project, its lists in display order,
// and each list's tasks in task order. A flat task array is included as
// well, matching the shape clients already consume.
func (h *Projects) GetData(ctx *gin.Context) {
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

	var lists []models.List

	if err := db.DB.Where("project_id = ?", project.ID).Order("position asc").Find(&lists).Error; err != nil {
		fail(ctx, err)
		return
	}

	var tasks []models.Task

	if err := db.DB.Where("project_id = ?", project.ID).Order("sort_order asc").Find(&tasks).Error; err != nil {
		fail(ctx, err)
		return
	}

	taskResponses := make([]TaskResponse, 0, len(tasks))
	tasksByList := make(map[uint][]TaskResponse)

	for _, task := range tasks {
		resp := newTaskResponse(task)
		taskResponses = append(taskResponses, resp)
		tasksByList[task.ListID] = append(tasksByList[task.ListID], resp)
	}

	listResponses := make([]ListResponse, 0, len(lists))

	for _, list := range lists {
		resp := newListResponse(list)
		resp.Tasks = tasksByList[list.ID]
		listResponses = append(listResponses, resp)
	}

	respond(ctx, http.StatusOK, "", gin.H{
		"project": newProjectResponse(*project),
		"lists":   listResponses,
		"tasks":   taskResponses,
	})
}

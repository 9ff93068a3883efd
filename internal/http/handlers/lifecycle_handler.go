package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"asset_tracker/internal/lifecycle"
	"asset_tracker/internal/models"
)

// Lifecycle is the mutating surface of lifecycle.Service.
type Lifecycle interface {
	Assign(ctx context.Context, actor models.Actor, assetID int64, dest models.Destination, payload *models.SensitivePayload) (*models.Assignment, error)
	Return(ctx context.Context, actor models.Actor, assignmentID int64, notes string) (*models.Assignment, error)
	CancelAssignment(ctx context.Context, actor models.Actor, assignmentID int64, reason string) (*models.Assignment, error)
	SendToRepair(ctx context.Context, actor models.Actor, assetID int64, provider, problem string) (*models.Repair, error)
	ReturnFromRepair(ctx context.Context, actor models.Actor, repairID int64, resolution string, outcome models.RepairState) (*models.Repair, error)
	ValidateSerials(ctx context.Context, serials []string) (*lifecycle.SerialReport, error)
	RegisterAssets(ctx context.Context, actor models.Actor, productID int64, serials []string) ([]models.Asset, error)
}

func AssignAsset(svc Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		type inputDTO struct {
			EmployeeID *int64                   `json:"employee_id"`
			SectorID   *int64                   `json:"sector_id"`
			BranchID   *int64                   `json:"branch_id"`
			Sensitive  *models.SensitivePayload `json:"sensitive"`
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		who, ok := actor(c)
		if !ok {
			return
		}
		var in inputDTO
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		dest, err := models.NewDestination(in.EmployeeID, in.SectorID, in.BranchID)
		if err != nil {
			respondError(c, err)
			return
		}

		a, err := svc.Assign(c.Request.Context(), who, id, dest, in.Sensitive)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"assignment": a})
	}
}

func ReturnAssignment(svc Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Notes string `json:"notes"`
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		who, ok := actor(c)
		if !ok {
			return
		}
		if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
			badRequest(c, err)
			return
		}

		a, err := svc.Return(c.Request.Context(), who, id, in.Notes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"assignment": a})
	}
}

func CancelAssignment(svc Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Reason string `json:"reason" binding:"required"`
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		who, ok := actor(c)
		if !ok {
			return
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}

		a, err := svc.CancelAssignment(c.Request.Context(), who, id, in.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"assignment": a})
	}
}

func SendToRepair(svc Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Provider string `json:"provider" binding:"required"`
			Problem  string `json:"problem" binding:"required"`
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		who, ok := actor(c)
		if !ok {
			return
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}

		r, err := svc.SendToRepair(c.Request.Context(), who, id, in.Provider, in.Problem)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"repair": r})
	}
}

func ReturnFromRepair(svc Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Resolution string             `json:"resolution" binding:"required"`
			Outcome    models.RepairState `json:"outcome" binding:"required"`
		}
		id, ok := pathID(c)
		if !ok {
			return
		}
		who, ok := actor(c)
		if !ok {
			return
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}

		r, err := svc.ReturnFromRepair(c.Request.Context(), who, id, in.Resolution, in.Outcome)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"repair": r})
	}
}

func ValidateSerials(svc Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			Serials []string `json:"serials" binding:"required"`
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		report, err := svc.ValidateSerials(c.Request.Context(), in.Serials)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"report": report, "accepted": report.Accepted()})
	}
}

func RegisterAssets(svc Lifecycle) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in struct {
			ProductID int64    `json:"product_id" binding:"required"`
			Serials   []string `json:"serials" binding:"required"`
		}
		who, ok := actor(c)
		if !ok {
			return
		}
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, err)
			return
		}
		assets, err := svc.RegisterAssets(c.Request.Context(), who, in.ProductID, in.Serials)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"assets": assets})
	}
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"banksantri/internal/config"
	"banksantri/internal/service"
	"banksantri/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handler holds every service the HTTP API calls into.
type Handler struct {
	accountService   *service.AccountService
	postingService   *service.PostingService
	queryService     *service.QueryService
	reconcileService *service.ReconcileService
}

func NewHandler(db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Handler {
	return &Handler{
		accountService:   service.NewAccountService(db),
		postingService:   service.NewPostingService(db, rdb, cfg),
		queryService:     service.NewQueryService(db, &cfg.Business),
		reconcileService: service.NewReconcileService(db),
	}
}

// fail writes the error body matching a service error kind. Internal errors
// are logged and answered with their message only.
func fail(c *gin.Context, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		zap.L().Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		response.ServerError(c, "Internal server error")
		return
	}

	switch se.Kind {
	case service.KindValidation:
		response.ParamError(c, se.Message, se.Fields)
	case service.KindNotFound:
		response.NotFound(c, se.Message)
	case service.KindConflict:
		response.Conflict(c, se.Message)
	default:
		zap.L().Error("request failed", zap.String("path", c.FullPath()), zap.Error(se))
		response.ServerError(c, se.Message)
	}
}

// bindJSON decodes the body and answers 422 itself on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		message, fields := bindingErrors(err)
		response.ParamError(c, message, fields)
		return false
	}
	return true
}

func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		message, fields := bindingErrors(err)
		response.ParamError(c, message, fields)
		return false
	}
	return true
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusNotFound, "Movement not found")
		return 0, false
	}
	return id, true
}

// Package controllers handles HTTP request handling
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/questionbank/internal/app/auth"
	"github.com/yigit/questionbank/internal/app/models/dto"
	"github.com/yigit/questionbank/internal/middleware"
	"github.com/yigit/questionbank/internal/pkg/apperrors"
)

// parseIDParam reads a positive int64 path parameter. On failure the error
// response is written and false is returned.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewBadRequestError("Invalid "+name+": must be a positive integer"))
		return 0, false
	}
	return id, true
}

// requireActor returns the authenticated caller or writes 401
func requireActor(ctx *gin.Context) (*appauth.Actor, bool) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrUnauthorized)
		return nil, false
	}
	return actor, true
}

func respondOK(ctx *gin.Context, data interface{}, message string) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(data, message))
}

func respondCreated(ctx *gin.Context, data interface{}, message string) {
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(data, message))
}

func respondPage(ctx *gin.Context, items interface{}, page dto.PaginationInfo) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.PaginatedResponse{
		Items:      items,
		Pagination: page,
	}, ""))
}

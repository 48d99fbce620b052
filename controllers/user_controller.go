package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/bootcamp-tracker/models"
	"github.com/cppla/bootcamp-tracker/services"
	"github.com/cppla/bootcamp-tracker/utils"
)

// SessionTokenHeader carries the signed session issued at login.
const SessionTokenHeader = "X-Session-Token"

// UserController handles login, member listing and the leaderboard.
type UserController struct {
	users    *services.UserDirectory
	cache    ResponseCache
	sessions *utils.SessionSigner
}

// NewUserController creates a new controller instance. cache and sessions may be nil.
func NewUserController(users *services.UserDirectory, cache ResponseCache, sessions *utils.SessionSigner) *UserController {
	return &UserController{users: users, cache: orNoCache(cache), sessions: sessions}
}

type loginRequest struct {
	Name   string        `json:"name" binding:"required"`
	Gender models.Gender `json:"gender" binding:"required"`
}

// Login returns the user with the given name, creating it on first use.
func (u *UserController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "name and gender are required")
		return
	}

	user, err := u.users.LoginOrCreate(ctx.Request.Context(), req.Name, req.Gender)
	if err != nil {
		respondError(ctx, err, "user not found", 50001)
		return
	}
	// a first login can put a new member on a short leaderboard
	u.cache.Invalidate(ctx.Request.Context(), RankingsCacheKey)

	if u.sessions != nil {
		token, err := u.sessions.Issue(user.ID, user.Name)
		if err != nil {
			requestLogger(ctx).Warn("issue session token failed", zap.Error(err))
		} else {
			ctx.Header(SessionTokenHeader, token)
		}
	}

	utils.Success(ctx, user)
}

// ListUsers returns members ordered by points with optional name search and gender filter.
func (u *UserController) ListUsers(ctx *gin.Context) {
	skip, limit := parsePagination(ctx.Query("skip"), ctx.Query("limit"), defaultPageLimit)

	filter := services.UserFilter{Search: ctx.Query("search")}
	if g := strings.TrimSpace(ctx.Query("gender")); g != "" && g != "all" {
		filter.Gender = models.Gender(g)
		if !filter.Gender.Valid() {
			utils.Error(ctx, http.StatusBadRequest, 40002, "invalid gender")
			return
		}
	}

	users, err := u.users.ListUsersByRank(ctx.Request.Context(), skip, limit, filter)
	if err != nil {
		respondError(ctx, err, "user not found", 50002)
		return
	}
	utils.Success(ctx, users)
}

// GetUser returns a single user.
func (u *UserController) GetUser(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid user id")
		return
	}

	user, err := u.users.GetUser(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err, "user not found", 50003)
		return
	}
	utils.Success(ctx, user)
}

// UpdateGender changes a user's gender from the form field "gender".
func (u *UserController) UpdateGender(ctx *gin.Context) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40003, "invalid user id")
		return
	}
	gender, ok := ctx.GetPostForm("gender")
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40004, "gender is required")
		return
	}

	user, err := u.users.UpdateGender(ctx.Request.Context(), id, models.Gender(gender))
	if err != nil {
		respondError(ctx, err, "user not found", 50004)
		return
	}
	// cached rankings carry the gender
	u.cache.Invalidate(ctx.Request.Context(), RankingsCacheKey)
	utils.Success(ctx, user)
}

// Rankings returns the top users by points. Served from cache when Redis is enabled.
func (u *UserController) Rankings(ctx *gin.Context) {
	var users []models.User
	if u.cache.GetJSON(ctx.Request.Context(), RankingsCacheKey, &users) {
		utils.Success(ctx, users)
		return
	}

	users, err := u.users.ListUsersByRank(ctx.Request.Context(), 0, rankingsLimit, services.UserFilter{})
	if err != nil {
		respondError(ctx, err, "user not found", 50005)
		return
	}
	u.cache.SetJSON(ctx.Request.Context(), RankingsCacheKey, users)
	utils.Success(ctx, users)
}

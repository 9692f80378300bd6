package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-dashboard/internal/middleware"
	"github.com/noah-isme/attendance-dashboard/internal/session"
)

// Handlers groups every page of the dashboard.
type Handlers struct {
	Auth       *AuthHandler
	Home       *HomeHandler
	Users      *UserAccessHandler
	History    *HistoryHandler
	Rekap      *RekapHandler
	Attendance *AttendanceHandler
	Metrics    *MetricsHandler
}

// NewHandlers builds the page handlers.
func NewHandlers(attendance *AttendanceHandler, metrics *MetricsHandler) Handlers {
	return Handlers{
		Auth:       NewAuthHandler(),
		Home:       NewHomeHandler(),
		Users:      NewUserAccessHandler(),
		History:    NewHistoryHandler(),
		Rekap:      NewRekapHandler(),
		Attendance: attendance,
		Metrics:    metrics,
	}
}

// RegisterRoutes mounts the session-bound API on r. sessionMW must resolve
// the session before the gates run.
func RegisterRoutes(r gin.IRouter, h Handlers, sessionMW gin.HandlerFunc, policy session.Policy) {
	api := r.Group("/api", sessionMW)

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/signin", h.Auth.SignIn)
	auth.POST("/signout", h.Auth.SignOut)
	auth.GET("/me", h.Auth.Me)

	pages := api.Group("/pages")
	pages.GET("/home", middleware.Gate(policy, session.RouteHome), h.Home.Overview)

	users := pages.Group("/user-access", middleware.Gate(policy, session.RouteUserAccess))
	users.GET("", h.Users.List)
	users.POST("/:id/role", h.Users.SetRole)

	pages.GET("/history", middleware.Gate(policy, session.RouteHistory), h.History.List)

	rekap := pages.Group("/rekap-data", middleware.Gate(policy, session.RouteRekap))
	rekap.GET("", h.Rekap.List)
	rekap.GET("/export", h.Rekap.Export)

	attendance := pages.Group("/attendance", middleware.Gate(policy, session.RouteAttendance))
	attendance.GET("", h.Attendance.Today)
	attendance.POST("/checkin", h.Attendance.CheckIn)
	attendance.POST("/checkout", h.Attendance.CheckOut)
	attendance.GET("/clock", h.Attendance.Clock)

	api.GET("/status", h.Metrics.Status)
}

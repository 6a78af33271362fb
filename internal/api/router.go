package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"library-reservation-backend/config"
	"library-reservation-backend/internal/auth"
	"library-reservation-backend/internal/mw"
	"library-reservation-backend/internal/reservation"
	"library-reservation-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, svc *reservation.Service, tokens *auth.TokenIssuer, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, svc, tokens, cfg.Auth.BcryptCost)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/auth/register", handler.Register)
		api.POST("/auth/login", handler.Login)

		authed := api.Group("", mw.RequireAuth(tokens))
		{
			// The catalog is identical for every caller, so it is safe
			// to cache.
			authed.GET("/books", caching, handler.ListBooks)
			authed.GET("/books/suggest", caching, handler.SuggestBooks)
			authed.GET("/genres", caching, handler.ListGenres)

			student := authed.Group("", mw.RequireStudent())
			{
				student.GET("/books/mine", handler.MyBook)
				student.POST("/books/:book_id/reserve", handler.ReserveBook)
				student.POST("/books/:book_id/cancel", handler.CancelBookReservation)

				student.GET("/rooms", handler.ListRooms)
				student.POST("/rooms/:room_id/reserve", handler.ReserveRoom)
				student.POST("/rooms/:room_id/cancel", handler.CancelRoomReservation)
			}

			admin := authed.Group("/admin", mw.RequireAdmin())
			{
				admin.POST("/books", handler.CreateBook)
				admin.PUT("/books/:book_id", handler.UpdateBook)
				admin.DELETE("/books/:book_id", handler.DeleteBook)
				admin.GET("/books/active", handler.ActiveBooks)
				admin.POST("/books/:book_id/borrow", handler.MarkBorrowed)
				admin.POST("/books/:book_id/return", handler.MarkReturned)

				admin.GET("/students", handler.ListStudents)

				admin.POST("/rooms", handler.CreateRoom)
				admin.GET("/rooms", handler.RoomsOverview)
				admin.POST("/rooms/:room_id/reservations", handler.AddRoomReservation)
				admin.DELETE("/rooms/:room_id/reservations/:student_id", handler.CancelRoomReservationByStudent)
			}
		}
	}

	return r
}

package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	appauth "github.com/yigit/questionbank/internal/app/auth"
	"github.com/yigit/questionbank/internal/app/controllers"
	"github.com/yigit/questionbank/internal/middleware"
)

// Controllers groups every HTTP handler set mounted under /api/v1
type Controllers struct {
	Auth     *controllers.AuthController
	User     *controllers.UserController
	Role     *controllers.RoleController
	Form     *controllers.FormController
	Book     *controllers.BookController
	Taxonomy *controllers.TaxonomyController
	Health   *controllers.HealthController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
	})

	v1 := router.Group("/api/v1")

	if ctrl.Health != nil {
		v1.GET("/health", ctrl.Health.Health)
	}

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", ctrl.Auth.Register)
		auth.POST("/token", ctrl.Auth.Token)
		auth.POST("/token/refresh", ctrl.Auth.RefreshToken)
		auth.POST("/logout", ctrl.Auth.Logout)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	can := authMiddleware.RequirePermission

	users := authenticated.Group("/users")
	{
		users.GET("/me", can(appauth.ResourceUsers, appauth.ActionMe), ctrl.User.Me)
		users.GET("", can(appauth.ResourceUsers, appauth.ActionList), ctrl.User.ListUsers)
		users.POST("", can(appauth.ResourceUsers, appauth.ActionCreate), ctrl.User.CreateUser)
		users.GET("/:id", can(appauth.ResourceUsers, appauth.ActionRetrieve), ctrl.User.GetUser)
		users.PUT("/:id", can(appauth.ResourceUsers, appauth.ActionUpdate), ctrl.User.UpdateUser)
		users.PATCH("/:id", can(appauth.ResourceUsers, appauth.ActionPartialUpdate), ctrl.User.PatchUser)
		users.DELETE("/:id", can(appauth.ResourceUsers, appauth.ActionDestroy), ctrl.User.DeleteUser)
	}

	roles := authenticated.Group("/roles")
	{
		roles.GET("", can(appauth.ResourceRoles, appauth.ActionList), ctrl.Role.ListRoles)
		roles.POST("", can(appauth.ResourceRoles, appauth.ActionCreate), ctrl.Role.CreateRole)
		roles.GET("/:id", can(appauth.ResourceRoles, appauth.ActionRetrieve), ctrl.Role.GetRole)
		roles.PUT("/:id", can(appauth.ResourceRoles, appauth.ActionUpdate), ctrl.Role.UpdateRole)
		roles.PATCH("/:id", can(appauth.ResourceRoles, appauth.ActionPartialUpdate), ctrl.Role.PatchRole)
		roles.DELETE("/:id", can(appauth.ResourceRoles, appauth.ActionDestroy), ctrl.Role.DeleteRole)
	}

	forms := authenticated.Group("/forms")
	{
		forms.GET("", can(appauth.ResourceForms, appauth.ActionList), ctrl.Form.ListForms)
		forms.POST("", can(appauth.ResourceForms, appauth.ActionCreate), ctrl.Form.CreateForm)
		forms.GET("/:id", can(appauth.ResourceForms, appauth.ActionRetrieve), ctrl.Form.GetForm)
		forms.PUT("/:id", can(appauth.ResourceForms, appauth.ActionUpdate), ctrl.Form.UpdateForm)
		forms.PATCH("/:id", can(appauth.ResourceForms, appauth.ActionPartialUpdate), ctrl.Form.PatchForm)
		forms.DELETE("/:id", can(appauth.ResourceForms, appauth.ActionDestroy), ctrl.Form.DeleteForm)
		forms.POST("/:id/add_fields", can(appauth.ResourceForms, appauth.ActionAddFields), ctrl.Form.AddFields)
		forms.GET("/:id/export", can(appauth.ResourceResponses, appauth.ActionExport), ctrl.Form.ExportResponses)
	}

	responses := authenticated.Group("/responses")
	{
		responses.GET("", can(appauth.ResourceResponses, appauth.ActionList), ctrl.Form.ListResponses)
		responses.POST("", can(appauth.ResourceResponses, appauth.ActionCreate), ctrl.Form.SubmitResponse)
		responses.GET("/:id", can(appauth.ResourceResponses, appauth.ActionRetrieve), ctrl.Form.GetResponse)
	}

	// Update and delete are decided by BookService, which knows the uploader.
	books := authenticated.Group("/books")
	{
		books.GET("", can(appauth.ResourceBooks, appauth.ActionList), ctrl.Book.ListBooks)
		books.POST("", can(appauth.ResourceBooks, appauth.ActionCreate), ctrl.Book.UploadBook)
		books.GET("/:id", can(appauth.ResourceBooks, appauth.ActionRetrieve), ctrl.Book.GetBook)
		books.PUT("/:id", ctrl.Book.UpdateBook)
		books.PATCH("/:id", ctrl.Book.PatchBook)
		books.DELETE("/:id", ctrl.Book.DeleteBook)
		books.GET("/:id/pdf", can(appauth.ResourceBooks, appauth.ActionPDF), ctrl.Book.PDFLink)
		books.GET("/:id/download", can(appauth.ResourceBooks, appauth.ActionDownload), ctrl.Book.Download)
	}

	categories := authenticated.Group("/categories")
	{
		categories.GET("", can(appauth.ResourceCategories, appauth.ActionList), ctrl.Taxonomy.ListCategories)
		categories.GET("/:id", can(appauth.ResourceCategories, appauth.ActionRetrieve), ctrl.Taxonomy.GetCategory)
	}

	grades := authenticated.Group("/grades")
	{
		grades.GET("", can(appauth.ResourceGrades, appauth.ActionList), ctrl.Taxonomy.ListGrades)
		grades.GET("/:id", can(appauth.ResourceGrades, appauth.ActionRetrieve), ctrl.Taxonomy.GetGrade)
	}
}

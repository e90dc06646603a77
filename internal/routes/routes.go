package routes

import (
	"log"

	"github.com/KodingCommunity/koding_backend/internal/commands"
	"github.com/KodingCommunity/koding_backend/internal/config"
	"github.com/KodingCommunity/koding_backend/internal/controllers"
	"github.com/KodingCommunity/koding_backend/internal/cqrs"
	"github.com/KodingCommunity/koding_backend/internal/middlewares"
	"github.com/KodingCommunity/koding_backend/internal/queries"
	"github.com/KodingCommunity/koding_backend/internal/repository"
	"github.com/KodingCommunity/koding_backend/internal/sagas"
	"github.com/KodingCommunity/koding_backend/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter ルーターを設定
func SetupRouter(cfg *config.Config, db *gorm.DB) *gin.Engine {
	// Ginルーターを作成
	r := gin.Default()

	// ミドルウェアを設定
	r.Use(middlewares.ErrorMiddleware())
	r.Use(middlewares.CORSMiddleware())

	// リポジトリを作成
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	likeRepo := repository.NewPostLikeRepository(db)
	scrapRepo := repository.NewScrapPostRepository(db)
	rankingRepo := repository.NewRankingRepository(db)
	imageRepo := repository.NewS3ImageRepository(db)

	// バスを作成
	commandBus := cqrs.NewCommandBus()
	queryBus := cqrs.NewQueryBus()
	eventBus := cqrs.NewEventBus()

	// サービスを作成
	authService := services.NewAuthService(userRepo, cfg)
	githubService := services.NewGithubService(cfg)
	mailService := services.NewMailService(cfg)
	s3Service, err := services.NewS3Service(cfg)
	if err != nil {
		log.Fatalf("S3サービスの初期化に失敗しました: %v", err)
	}
	scrapService := services.NewPostScrapService(scrapRepo, postRepo, eventBus)

	// コマンドハンドラーを登録
	commandBus.Register(commands.SignupLocal, commands.NewSignupLocalHandler(userRepo, authService, mailService))
	commandBus.Register(commands.SignupGithub, commands.NewSignupGithubHandler(userRepo, githubService))
	commandBus.Register(commands.VerifyEmailSignup, commands.NewVerifyEmailSignupHandler(userRepo))
	commandBus.Register(commands.VerifyGithubSignup, commands.NewVerifyGithubSignupHandler(userRepo))
	commandBus.Register(commands.FollowUser, commands.NewFollowUserHandler(userRepo, eventBus))
	commandBus.Register(commands.UnfollowUser, commands.NewUnfollowUserHandler(userRepo, eventBus))
	commandBus.Register(commands.ChangeProfile, commands.NewChangeProfileHandler(userRepo))
	commandBus.Register(commands.ChangePassword, commands.NewChangePasswordHandler(userRepo, authService))
	commandBus.Register(commands.SendPasswordResetToken, commands.NewSendPasswordResetTokenHandler(userRepo, mailService))
	commandBus.Register(commands.ResetPassword, commands.NewResetPasswordHandler(userRepo, authService))
	commandBus.Register(commands.DeleteAccount, commands.NewDeleteAccountHandler(userRepo, eventBus))
	commandBus.Register(commands.DeleteAvatar, commands.NewDeleteAvatarHandler(userRepo, imageRepo, s3Service))
	commandBus.Register(commands.WritePost, commands.NewWritePostHandler(postRepo, userRepo, imageRepo))
	commandBus.Register(commands.ModifyPost, commands.NewModifyPostHandler(postRepo, imageRepo, s3Service))
	commandBus.Register(commands.DeletePost, commands.NewDeletePostHandler(postRepo, eventBus))
	commandBus.Register(commands.LikePost, commands.NewLikePostHandler(postRepo, likeRepo, eventBus))
	commandBus.Register(commands.UnlikePost, commands.NewUnlikePostHandler(postRepo, likeRepo, eventBus))
	commandBus.Register(commands.ScrapPost, commands.NewScrapPostHandler(postRepo, scrapService))
	commandBus.Register(commands.UnscrapPost, commands.NewUnscrapPostHandler(scrapService))
	commandBus.Register(commands.AddComment, commands.NewAddCommentHandler(commentRepo, postRepo, userRepo, eventBus))
	commandBus.Register(commands.ModifyComment, commands.NewModifyCommentHandler(commentRepo))
	commandBus.Register(commands.DeleteComment, commands.NewDeleteCommentHandler(commentRepo, eventBus))
	commandBus.Register(commands.SavePostImage, commands.NewSavePostImageHandler(userRepo, imageRepo, s3Service))

	rankingHandler := commands.NewDailyRankingHandler(rankingRepo)
	commandBus.Register(commands.IncreaseDailyRanking, cqrs.CommandHandlerFunc(rankingHandler.HandleIncrease))
	commandBus.Register(commands.DecreaseDailyRanking, cqrs.CommandHandlerFunc(rankingHandler.HandleDecrease))

	// クエリハンドラーを登録
	userQueries := queries.NewUserQueryHandler(userRepo, postRepo, commentRepo, likeRepo, scrapService)
	queryBus.Register(queries.GetUserInfo, cqrs.QueryHandlerFunc(userQueries.HandleGetUserInfo))
	queryBus.Register(queries.CheckExistence, cqrs.QueryHandlerFunc(userQueries.HandleCheckExistence))
	queryBus.Register(queries.GetFollowingUsers, cqrs.QueryHandlerFunc(userQueries.HandleGetFollowingUsers))
	queryBus.Register(queries.GetFollowerUsers, cqrs.QueryHandlerFunc(userQueries.HandleGetFollowerUsers))
	queryBus.Register(queries.CheckFollowing, cqrs.QueryHandlerFunc(userQueries.HandleCheckFollowing))
	queryBus.Register(queries.GetFollowingPosts, cqrs.QueryHandlerFunc(userQueries.HandleGetFollowingPosts))
	queryBus.Register(queries.GetScrapPosts, cqrs.QueryHandlerFunc(userQueries.HandleGetScrapPosts))
	queryBus.Register(queries.GetLikePosts, cqrs.QueryHandlerFunc(userQueries.HandleGetLikePosts))
	queryBus.Register(queries.GetWritingPosts, cqrs.QueryHandlerFunc(userQueries.HandleGetWritingPosts))
	queryBus.Register(queries.GetWritingComments, cqrs.QueryHandlerFunc(userQueries.HandleGetWritingComments))

	postQueries := queries.NewPostQueryHandler(postRepo, likeRepo)
	queryBus.Register(queries.GetPostList, cqrs.QueryHandlerFunc(postQueries.HandleGetPostList))
	queryBus.Register(queries.ReadPost, cqrs.QueryHandlerFunc(postQueries.HandleReadPost))
	queryBus.Register(queries.CheckUserLikePost, cqrs.QueryHandlerFunc(postQueries.HandleCheckUserLikePost))

	commentQueries := queries.NewCommentQueryHandler(commentRepo, postRepo)
	queryBus.Register(queries.GetComments, cqrs.QueryHandlerFunc(commentQueries.HandleGetComments))

	rankingQueries := queries.NewRankingQueryHandler(rankingRepo, postRepo)
	queryBus.Register(queries.GetDailyRanking, cqrs.QueryHandlerFunc(rankingQueries.HandleGetDailyRanking))

	// sagaを購読登録
	sagas.NewRankingSaga(commandBus).Register(eventBus)
	sagas.NewCommentCountSaga(postRepo).Register(eventBus)
	sagas.NewCleanupSaga(commentRepo, likeRepo, scrapRepo, imageRepo, userRepo, s3Service).Register(eventBus)

	// コントローラーを作成
	authController := controllers.NewAuthController(authService, githubService, commandBus, cfg)
	userController := controllers.NewUserController(commandBus, queryBus)
	postController := controllers.NewPostController(commandBus, queryBus)
	commentController := controllers.NewCommentController(commandBus, queryBus)
	uploadController := controllers.NewUploadController(commandBus, s3Service, imageRepo)
	rankingController := controllers.NewRankingController(queryBus)
	healthController := controllers.NewHealthController()

	// 認証ミドルウェア
	authMiddleware := middlewares.AuthMiddleware(authService, cfg)
	optionalAuthMiddleware := middlewares.OptionalAuthMiddleware(authService, cfg)

	// APIグループを作成
	api := r.Group("/api")
	{
		// ヘルスチェックルート（認証不要）
		api.GET("/health", healthController.Check)

		// 認証ルート
		auth := api.Group("/auth")
		{
			auth.POST("/login", authController.Login)
			auth.POST("/logout", authController.Logout)
			auth.GET("/me", authMiddleware, authController.GetMe)
			auth.GET("/github", authController.GithubLogin)
			auth.GET("/github/callback", authController.GithubCallback)
		}

		// ユーザールート
		users := api.Group("/users")
		{
			users.POST("", userController.Signup)
			users.HEAD("", userController.CheckDuplicate)
			users.POST("/verify-email", userController.VerifyEmail)
			users.POST("/verify-github", userController.VerifyGithub)
			users.POST("/password-reset-token", userController.SendPasswordResetToken)
			users.POST("/password-reset", userController.ResetPassword)
			users.POST("/change-password", authMiddleware, userController.ChangePassword)

			users.GET("/:nickname", optionalAuthMiddleware, userController.GetProfile)
			users.PATCH("/:nickname", authMiddleware, userController.UpdateProfile)
			users.DELETE("/:nickname", authMiddleware, userController.DeleteAccount)
			users.DELETE("/:nickname/avatar", authMiddleware, userController.DeleteAvatar)

			users.POST("/:nickname/follow", authMiddleware, userController.Follow)
			users.DELETE("/:nickname/follow", authMiddleware, userController.Unfollow)
			users.GET("/:nickname/following", authMiddleware, userController.CheckFollowing)
			users.GET("/:nickname/followings", userController.GetFollowings)
			users.GET("/:nickname/followings/posts", userController.GetFollowingPosts)
			users.GET("/:nickname/followers", userController.GetFollowers)

			users.GET("/:nickname/scraps", authMiddleware, userController.GetScraps)
			users.GET("/:nickname/likes", userController.GetLikes)
			users.GET("/:nickname/posts", userController.GetPosts)
			users.GET("/:nickname/comments", userController.GetComments)
		}

		// 掲示板ルート
		posts := api.Group("/boards/:board/posts")
		{
			posts.GET("", postController.List)
			posts.POST("", authMiddleware, postController.Write)
			posts.GET("/:id", postController.Read)
			posts.PUT("/:id", authMiddleware, postController.Modify)
			posts.DELETE("/:id", authMiddleware, postController.Delete)

			posts.POST("/:id/like", authMiddleware, postController.Like)
			posts.DELETE("/:id/like", authMiddleware, postController.Unlike)
			posts.GET("/:id/liked", authMiddleware, postController.HasLiked)
			posts.POST("/:id/scrap", authMiddleware, postController.Scrap)
			posts.DELETE("/:id/scrap", authMiddleware, postController.Unscrap)

			posts.GET("/:id/comments", commentController.List)
			posts.POST("/:id/comments", authMiddleware, commentController.Create)
		}

		// コメントルート
		comments := api.Group("/comments")
		{
			comments.PUT("/:commentId", authMiddleware, commentController.Update)
			comments.DELETE("/:commentId", authMiddleware, commentController.Delete)
		}

		// アップロードルート
		uploads := api.Group("/uploads")
		{
			uploads.POST("/post-image", authMiddleware, uploadController.UploadPostImage)
			uploads.POST("/avatar", authMiddleware, uploadController.UploadAvatar)
		}

		// ランキングルート
		api.GET("/ranking/daily", rankingController.Daily)
	}

	return r
}

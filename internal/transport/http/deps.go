package http

import (
	"github.com/bloodcamp-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/bloodcamp-api/internal/infrastructure/jwt"
	s3infra "github.com/bloodcamp-api/internal/infrastructure/s3"
	"github.com/bloodcamp-api/internal/infrastructure/smtp"
	"github.com/bloodcamp-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo         *dynamo.UserRepo
	AdminRepo        *dynamo.AdminRepo
	AdminRequestRepo *dynamo.AdminRequestRepo
	DonorRepo        *dynamo.DonorRepo
	NoticeRepo       *dynamo.NoticeRepo
	FormRepo         *dynamo.FormRepo
	S3Store          *s3infra.Store
	Mailer           smtp.Mailer
	SMSSender        sns.SMSSender
	JWTProvider      *jwtinfra.Provider
}

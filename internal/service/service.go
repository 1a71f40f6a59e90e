package service

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hmcts/fact-admin/internal/fact_errors"
	log "github.com/sirupsen/logrus"
)

type contextKey string

const (
	KeyCtxSessionClaims contextKey = "SessionClaims"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// InitializeServices prepares package level helpers shared by every service.
// It is safe to call more than once.
func InitializeServices() {
	validateOnce.Do(func() {
		validate = initValidator() // used for validating struct fields
	})
}

func initValidator() *validator.Validate {
	log.Info("initializing validator")
	validate := validator.New(validator.WithRequiredStructEnabled())

	// This makes error.Field() return "court_slug" instead of "CourtSlug"
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// court slugs are lower case words joined by single hyphens
	err := validate.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugRegex.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}

	return validate
}

// WithClaims returns a copy of ctx carrying the session claims of the acting user.
func WithClaims(ctx context.Context, claims SessionClaims) context.Context {
	return context.WithValue(ctx, KeyCtxSessionClaims, claims)
}

func GetClaimsFromContext(
	ctx context.Context,
) (claims SessionClaims, err error) {
	claimsValue := ctx.Value(KeyCtxSessionClaims)
	claims, ok := claimsValue.(SessionClaims)
	if !ok {
		err = fmt.Errorf(
			"%w, unable to parse claims to service.SessionClaims, type of claims found is %T",
			fact_errors.ErrUnauthenticated,
			claimsValue,
		)
		log.Error(err)
	}
	return
}

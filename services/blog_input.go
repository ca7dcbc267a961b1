package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
	"github.com/rpupo63/blog-admin-backend/errs"
)

// BlogInput is a submitted create or edit form.
type BlogInput struct {
	Title          string                `form:"title" validate:"required"`
	Slug           string                `form:"slug" validate:"required,max=255,blogslug"`
	CountryID      string                `form:"country_id" validate:"required,number"`
	Content        string                `form:"content"`
	SeoTitle       string                `form:"seo_title"`
	SeoURL         string                `form:"seo_url"`
	SeoH1          string                `form:"seo_h1"`
	SeoKeywords    string                `form:"seo_keywords"`
	SeoDescription string                `form:"seo_description"`
	CanComment     bool                  `form:"can_comment"`
	Published      bool                  `form:"published"`
	Tags           []string              `validate:"-"`
	Cover          *multipart.FileHeader `validate:"-"`
}

// trimmed strips surrounding whitespace from the fields the rules look at.
func (in BlogInput) trimmed() BlogInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.CountryID = strings.TrimSpace(in.CountryID)
	return in
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		if name := field.Tag.Get("form"); name != "" {
			return name
		}
		return field.Name
	})
	_ = v.RegisterValidation("blogslug", func(fl validator.FieldLevel) bool {
		return slug.IsSlug(fl.Field().String())
	})
	return v
}

// fieldErrors collects messages per form field, keeping the order they were added.
type fieldErrors map[string][]string

func (f fieldErrors) add(field, message string) {
	f[field] = append(f[field], message)
}

func (f fieldErrors) has(field string) bool {
	return len(f[field]) > 0
}

// validateInput runs every rule on trimmed input and returns the parsed country id and the inspected cover.
// exceptID excludes the edited blog from the slug uniqueness check.
func (s *BlogService) validateInput(ctx context.Context, in BlogInput, exceptID uint) (uint, *CoverUpload, error) {
	fields := fieldErrors{}

	if err := validate.Struct(in); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return 0, nil, errs.NewInternalError(err.Error())
		}
		for _, fe := range validationErrors {
			fields.add(fe.Field(), validationMessage(fe))
		}
	}

	if !fields.has("slug") {
		taken, err := s.blogs.SlugTaken(ctx, in.Slug, exceptID)
		if err != nil {
			return 0, nil, errs.NewDatabaseError("check slug of", "blog", err)
		}
		if taken {
			fields.add("slug", "The slug has already been taken.")
		}
	}

	var countryID uint
	if !fields.has("country_id") {
		id, err := strconv.ParseUint(in.CountryID, 10, 64)
		exists := false
		if err == nil {
			countryID = uint(id)
			if exists, err = s.countries.Exists(ctx, countryID); err != nil {
				return 0, nil, errs.NewDatabaseError("check country of", "blog", err)
			}
		}
		if !exists {
			fields.add("country_id", "The selected country id is invalid.")
		}
	}

	var upload *CoverUpload
	if in.Cover != nil {
		inspected, messages, err := InspectCover(in.Cover, s.coverMaxKB)
		if err != nil {
			return 0, nil, err
		}
		for _, message := range messages {
			fields.add("cover", message)
		}
		upload = inspected
	}

	if len(fields) > 0 {
		return 0, nil, errs.NewValidationError(fields)
	}
	return countryID, upload, nil
}

func validationMessage(fe validator.FieldError) string {
	attribute := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", attribute)
	case "max":
		return fmt.Sprintf("The %s must not be greater than %s characters.", attribute, fe.Param())
	case "number":
		return fmt.Sprintf("The %s must be a number.", attribute)
	case "blogslug":
		return fmt.Sprintf("The %s may only contain lower case letters, numbers, dashes and underscores.", attribute)
	default:
		return fmt.Sprintf("The %s is invalid.", attribute)
	}
}

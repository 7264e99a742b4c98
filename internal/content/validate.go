package content

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/angelcm/cowork-dashboard/internal/apperr"
	"github.com/angelcm/cowork-dashboard/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// checkAttachments validates the struct-tagged parts of an item: media,
// the outbound link and content links.
func checkAttachments(item models.ContentItem) error {
	for i, m := range item.Media {
		if err := validate.Struct(m); err != nil {
			return fieldError(fmt.Sprintf("media[%d]", i), err)
		}
	}
	if item.Link != nil {
		if err := validate.Struct(item.Link); err != nil {
			return fieldError("link", err)
		}
	}
	for i, l := range item.LinkedContent {
		if err := validate.Struct(l); err != nil {
			return fieldError(fmt.Sprintf("linkedContent[%d]", i), err)
		}
	}
	return nil
}

func fieldError(where string, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return apperr.Validation("%s.%s failed %q", where, fe.Field(), fe.Tag())
	}
	return apperr.Validation("%s: %v", where, err)
}

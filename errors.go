package admitdoc

import (
	"errors"
	"fmt"

	"github.com/alnah/go-admitdoc/internal/templatestore"
)

// Sentinel errors for library operations.
var (
	// ErrValidation is wrapped by every input check that fails before layout.
	ErrValidation = errors.New("invalid admission input")

	ErrPatientNameRequired  = fmt.Errorf("%w: patient name is required", ErrValidation)
	ErrPatientUnderage      = fmt.Errorf("%w: patient is under the minimum age", ErrValidation)
	ErrBirthDateInFuture    = fmt.Errorf("%w: birth date is in the future", ErrValidation)
	ErrInvalidAdmissionType = fmt.Errorf("%w: unknown admission type", ErrValidation)
	ErrEmptyTemplate        = fmt.Errorf("%w: template is empty", ErrValidation)

	// ErrImageLoad marks a header image that could not be fetched or decoded
	// in time. Generate logs it and renders without the image.
	ErrImageLoad = errors.New("header image load failed")

	// ErrRender means the PDF backend could not produce a document.
	ErrRender = errors.New("PDF rendering failed")

	// ErrImageDecode is the render failure caused by the header image alone.
	ErrImageDecode = fmt.Errorf("%w: header image cannot be drawn", ErrRender)

	// Generator configuration errors.
	ErrInvalidGeometry   = errors.New("invalid page geometry")
	ErrInvalidDateFormat = errors.New("invalid date format")

	// ErrImportFormat is returned when a configuration bundle lacks its
	// templates or config part.
	ErrImportFormat = templatestore.ErrImportFormat
)

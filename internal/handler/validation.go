package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/mail"
	"strings"

	"github.com/byiringiroaimefils/estg-tss/internal/apiclient"
	"github.com/byiringiroaimefils/estg-tss/internal/imaging"
	"github.com/byiringiroaimefils/estg-tss/internal/util"
)

// Form validation errors. Each maps to a translated warning.
var (
	errMissingFields = errors.New("required field missing")
	errInvalidEmail  = errors.New("invalid email")
	errTooLarge      = errors.New("upload too large")
	errInvalidForm   = errors.New("invalid form data")
)

// validationMessageKey maps a form error to its message key.
func validationMessageKey(err error) string {
	switch {
	case errors.Is(err, errMissingFields):
		return "form.required"
	case errors.Is(err, errInvalidEmail):
		return "form.invalid_email"
	case errors.Is(err, errTooLarge):
		return "form.too_large"
	case errors.Is(err, imaging.ErrNotImage):
		return "form.invalid_image"
	default:
		return "form.invalid"
	}
}

// requireFields returns errMissingFields if any value is blank.
func requireFields(values ...string) error {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return errMissingFields
		}
	}
	return nil
}

// validateEmail checks that s is a bare email address.
func validateEmail(s string) error {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return errInvalidEmail
	}
	return nil
}

// formValue returns the trimmed form value.
func formValue(r *http.Request, name string) string {
	return strings.TrimSpace(r.FormValue(name))
}

// parseMultipart limits the request body and parses the multipart form.
// A plain urlencoded body is accepted too.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	var err error
	if isMultipart(r) {
		err = r.ParseMultipartForm(maxBytes)
	} else {
		err = r.ParseForm()
	}
	if err == nil {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return errTooLarge
	}
	return fmt.Errorf("%w: %w", errInvalidForm, err)
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get(HeaderContentType))
	return err == nil && mediaType == "multipart/form-data"
}

// uploadedFile returns the file posted under name, or nil when none was chosen.
func uploadedFile(r *http.Request, name string) (multipart.File, *multipart.FileHeader, error) {
	if r.MultipartForm == nil {
		return nil, nil, nil
	}
	file, header, err := r.FormFile(name)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errInvalidForm, err)
	}
	if header.Size == 0 {
		_ = file.Close()
		return nil, nil, nil
	}
	return file, header, nil
}

// readEventImage normalises an uploaded event poster. It returns nil when
// no file was chosen.
func readEventImage(r *http.Request, processor *imaging.Processor) (*apiclient.File, error) {
	file, header, err := uploadedFile(r, fieldImage)
	if err != nil || file == nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	sniff := make([]byte, 512)
	n, _ := io.ReadFull(file, sniff)
	if !processor.IsImage(http.DetectContentType(sniff[:n])) {
		return nil, imaging.ErrNotImage
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding upload: %w", err)
	}

	result, err := processor.Normalize(file, header.Filename)
	if err != nil {
		return nil, err
	}
	return &apiclient.File{
		Name:        result.Name,
		ContentType: result.ContentType,
		Body:        result.Reader(),
	}, nil
}

// readAttachment returns the uploaded update attachment as-is, or nil.
// The caller closes the returned closer.
func readAttachment(r *http.Request) (*apiclient.File, io.Closer, error) {
	file, header, err := uploadedFile(r, fieldAttachment)
	if err != nil || file == nil {
		return nil, nil, err
	}

	name, err := util.SanitizeFilename(header.Filename)
	if err != nil {
		name = "attachment"
	}
	contentType := header.Header.Get(HeaderContentType)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &apiclient.File{Name: name, ContentType: contentType, Body: file}, file, nil
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"

	"kboard/apperr"
	"kboard/models"
	"kboard/utilities"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxUploadBytes = 10 << 20

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		utilities.LogError(err, "Encode response")
	}
}

// writeError maps err onto its HTTP status. Internal failures are logged with
// their cause and answered with a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()

	message := "Internal server error"
	var appErr *apperr.Error
	if kind != apperr.KindInternal && errors.As(err, &appErr) {
		message = appErr.Message
	} else {
		utilities.LogError(err, r.Method+" "+r.URL.Path)
	}
	writeJSON(w, status, ErrorResponse{Status: status, Message: message})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.New(apperr.KindBadRequest, "Request body is empty")
		}
		return apperr.Wrap(apperr.KindBadRequest, "Invalid request body", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.Newf(apperr.KindBadRequest, "Invalid %s: %s", name, raw)
	}
	return id, nil
}

func isMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// formUpload reads an optional file field from a parsed multipart form. The
// returned close func must be called once the upload has been consumed.
func formUpload(r *http.Request, field string) (*models.Upload, func(), error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, func() {}, nil
	}
	if err != nil {
		return nil, func() {}, apperr.Wrap(apperr.KindBadRequest, "Invalid "+field+" upload", err)
	}
	return uploadFrom(file, header), func() { file.Close() }, nil
}

func uploadFrom(file multipart.File, header *multipart.FileHeader) *models.Upload {
	return &models.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}
}

func parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return apperr.Wrap(apperr.KindBadRequest, "Invalid multipart form", err)
	}
	return nil
}

// formValue returns a pointer to the field's value, or nil when absent.
func formValue(r *http.Request, field string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[field]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

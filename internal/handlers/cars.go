package handlers

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/carhire/apiserver/internal/logging"
	"github.com/carhire/apiserver/internal/services"
	"github.com/carhire/apiserver/types"
)

const (
	formFieldImage     = "image"
	maxMultipartMemory = 2 << 20
	multipartOverhead  = 1 << 20
)

// CarHandler serves the car routes beyond plain CRUD.
type CarHandler struct {
	cars *services.CarService
}

func NewCarHandler(cars *services.CarService) *CarHandler {
	return &CarHandler{cars: cars}
}

// CarRouter registers car routes. Reads are public; writes require admin.
func CarRouter(r chi.Router, cars *services.CarService, admin Middlewares) {
	handler := NewCarHandler(cars)

	r.Get("/with-location", handler.ListWithLocation)
	NewResourceHandler[types.Car](cars, "car").Mount(r, Access{Write: admin}, func(r chi.Router) {
		r.Get("/image", handler.GetImage)
		r.With(admin...).Put("/image", handler.PutImage)
	})
}

func (h *CarHandler) ListWithLocation(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items, err := h.cars.ListWithLocation(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, r, err, "car", "list cars")
		return
	}
	if items == nil {
		items = []types.CarWithLocation{}
	}
	writeJSON(w, http.StatusOK, ListResponse[types.CarWithLocation]{Items: items, Page: page, Limit: limit, Total: len(items)})
}

// PutImage accepts a multipart upload in the "image" field. The content
// type is sniffed from the bytes, not taken from the client.
func (h *CarHandler) PutImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "carID", "car")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, services.MaxImageSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "uploaded file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, _, err := r.FormFile(formFieldImage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	data, err := readFileLimited(file, services.MaxImageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	car, err := h.cars.UploadImage(r.Context(), id, bytes.NewReader(data), int64(len(data)), http.DetectContentType(data))
	if err != nil {
		writeServiceError(w, r, err, "car", "store image")
		return
	}
	writeJSON(w, http.StatusOK, car)
}

func (h *CarHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "carID", "car")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rc, info, err := h.cars.OpenImage(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "car", "load image")
		return
	}
	defer rc.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	if info.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size, 10))
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		logging.FromContext(r.Context()).WarnContext(r.Context(), "image stream interrupted", "car_id", id, "err", err)
	}
}
